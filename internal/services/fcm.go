package services

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"fleetsync-backend/internal/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
)

// DispatchTopic is the FCM topic dispatch consoles subscribe to.
const DispatchTopic = "dispatch"

type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMService handles Firebase Cloud Messaging
type FCMService struct {
	client messageSender
}

func NewFCMService(ctx context.Context, app *firebase.App) (*FCMService, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}
	return &FCMService{client: client}, nil
}

// SendEmergencyAlert pushes alert to every dispatcher on DispatchTopic.
func (s *FCMService) SendEmergencyAlert(ctx context.Context, alert models.EmergencyAlert) error {
	response, err := s.client.Send(ctx, emergencyMessage(alert))
	if err != nil {
		return fmt.Errorf("error sending FCM message: %w", err)
	}

	log.Printf("✅ Emergency alert %s pushed to %q: %s", alert.ID, DispatchTopic, response)
	return nil
}

func emergencyMessage(alert models.EmergencyAlert) *messaging.Message {
	where := alert.Address
	if where == "" {
		where = fmt.Sprintf("%.5f, %.5f", alert.Latitude, alert.Longitude)
	}

	return &messaging.Message{
		Topic: DispatchTopic,
		Notification: &messaging.Notification{
			Title: fmt.Sprintf("🚨 Driver emergency: %s", alert.Kind),
			Body:  fmt.Sprintf("%s (%s)", alert.Message, where),
		},
		Data: map[string]string{
			"type":      "emergency_alert",
			"alert_id":  alert.ID,
			"driver_id": alert.DriverID,
			"kind":      string(alert.Kind),
			"latitude":  strconv.FormatFloat(alert.Latitude, 'f', 6, 64),
			"longitude": strconv.FormatFloat(alert.Longitude, 'f', 6, 64),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					ContentAvailable: true,
					Sound:            "default",
				},
			},
		},
	}
}
