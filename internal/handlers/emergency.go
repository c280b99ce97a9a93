package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"fleetsync-backend/internal/location"
	"fleetsync-backend/internal/models"
	"fleetsync-backend/internal/repository"
	"fleetsync-backend/pkg/utils"

	"github.com/google/uuid"
)

// AddressLookup turns coordinates into a street address.
type AddressLookup interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// AlertNotifier pushes an alert to dispatch devices.
type AlertNotifier interface {
	SendEmergencyAlert(ctx context.Context, alert models.EmergencyAlert) error
}

// AlertBroadcaster fans messages out to live connections.
type AlertBroadcaster interface {
	BroadcastToRole(role string, data interface{}) int
	BroadcastToUser(userID string, data interface{})
}

// EmergencyDeps are the collaborators of CreateEmergencyAlert. Geocoder,
// Notifier and Broadcaster are optional.
type EmergencyDeps struct {
	Repo        repository.Repository
	Geocoder    AddressLookup
	Notifier    AlertNotifier
	Broadcaster AlertBroadcaster
	Now         func() time.Time
}

type EmergencyRequest struct {
	Kind      models.EmergencyKind `json:"kind"`
	Message   string               `json:"message"`
	Latitude  float64              `json:"latitude"`
	Longitude float64              `json:"longitude"`
}

const maxEmergencyMessage = 500

// CreateEmergencyAlert records a driver emergency and alerts dispatch.
// The alert is stored even when geocoding or push delivery fails.
// POST /api/driver/emergency
func CreateEmergencyAlert(deps EmergencyDeps) http.HandlerFunc {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := currentUser(w, r)
		if !ok {
			return
		}
		var req EmergencyRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		req.Message = strings.TrimSpace(req.Message)
		if !req.Kind.Valid() {
			utils.Error(w, http.StatusBadRequest, "Unknown emergency kind")
			return
		}
		if req.Message == "" || len(req.Message) > maxEmergencyMessage {
			utils.Error(w, http.StatusBadRequest, "Message is required (max 500 characters)")
			return
		}
		pos := location.Position{Latitude: req.Latitude, Longitude: req.Longitude}
		if err := pos.Validate(); err != nil {
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Printf("🚨 EMERGENCY from driver %s: %s", identity.UID, req.Kind)

		alert := models.EmergencyAlert{
			ID:        uuid.New().String(),
			DriverID:  identity.UID,
			Kind:      req.Kind,
			Message:   req.Message,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			CreatedAt: now().UTC().Format(time.RFC3339),
		}

		if deps.Geocoder != nil {
			address, err := deps.Geocoder.ReverseGeocode(r.Context(), alert.Latitude, alert.Longitude)
			if err != nil {
				log.Printf("⚠️  Reverse geocoding failed: %v", err)
			} else {
				alert.Address = address
				log.Printf("   📍 %s", address)
			}
		}

		if err := deps.Repo.RecordAlert(r.Context(), alert); err != nil {
			writeError(w, "record emergency alert", err)
			return
		}

		if deps.Broadcaster != nil {
			n := deps.Broadcaster.BroadcastToRole(roleAdmin, map[string]interface{}{
				"type":      "emergency_alert",
				"timestamp": alert.CreatedAt,
				"data":      alert,
			})
			log.Printf("   📤 Broadcast to %d dispatchers", n)

			// Lets the reporting driver's other sessions show the alert as sent.
			deps.Broadcaster.BroadcastToUser(identity.UID, map[string]interface{}{
				"type":      "emergency_ack",
				"timestamp": alert.CreatedAt,
				"data": map[string]interface{}{
					"alertId":     alert.ID,
					"dispatchers": n,
				},
			})
		}

		if deps.Notifier != nil {
			if err := deps.Notifier.SendEmergencyAlert(r.Context(), alert); err != nil {
				log.Printf("⚠️  Push notification failed: %v", err)
			}
		}
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

		utils.JSON(w, http.StatusCreated, alert)
	}
}
