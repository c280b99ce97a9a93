package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"fleetsync-backend/internal/feed"
	"fleetsync-backend/internal/livestore"
	"fleetsync-backend/internal/location"
	"fleetsync-backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 2048

	roleAdmin = "admin"
)

// Outgoing message types.
const (
	TypePong           = "pong"
	TypeDriverLocation = "driver_location"
	TypeActiveTrips    = "active_trips"
	TypeFeedError      = "feed_error"
	TypeEmergencyAlert = "emergency_alert"
	TypeEmergencyAck   = "emergency_ack"
)

// Feeds are the live-store readers and writers a client works with.
type Feeds struct {
	Store     livestore.Store
	Locations *feed.LocationSubscriber
	Trips     *feed.TripSubscriber
	Now       func() time.Time
}

func NewFeeds(store livestore.Store) *Feeds {
	return &Feeds{
		Store:     store,
		Locations: feed.NewLocationSubscriber(store),
		Trips:     feed.NewTripSubscriber(store),
		Now:       time.Now,
	}
}

// Client is one websocket connection. Each client follows at most one
// driver's location and one driver's trips; both subscriptions end with
// the connection.
type Client struct {
	UserID   string
	UserRole string
	conn     *websocket.Conn
	hub      *Hub
	feeds    *Feeds
	send     chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	location *feed.Follower
	trips    *feed.Follower

	// closed guards send against writes after the hub closed it.
	mu     sync.RWMutex
	closed bool
}

// IncomingMessage is a message from the peer.
type IncomingMessage struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// OutgoingMessage is a message to the peer.
type OutgoingMessage struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data"`
}

type locationUpdate struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

type followRequest struct {
	DriverID string `json:"driver_id"`
}

type feedError struct {
	Feed  string `json:"feed"`
	Error string `json:"error"`
}

func NewClient(userID, userRole string, conn *websocket.Conn, hub *Hub, feeds *Feeds) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		UserID:   userID,
		UserRole: userRole,
		conn:     conn,
		hub:      hub,
		feeds:    feeds,
		send:     make(chan []byte, 256),
		ctx:      ctx,
		cancel:   cancel,
	}
	c.location = feed.FollowLocation(feeds.Locations, func(loc *models.DriverLocation, err error) {
		if err != nil {
			c.sendFeedError("location", err)
			return
		}
		c.sendMessage(TypeDriverLocation, loc)
	})
	c.trips = feed.FollowTrips(feeds.Trips, func(trips []models.Trip, err error) {
		if err != nil {
			c.sendFeedError("trips", err)
			return
		}
		c.sendMessage(TypeActiveTrips, trips)
	})
	return c
}

// ReadPump reads peer messages until the connection fails, then tears
// down the client's subscriptions and unregisters it.
func (c *Client) ReadPump() {
	defer func() {
		c.cancel()
		c.location.Stop()
		c.trips.Stop()
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Invalid message format: %v", err)
			continue
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg IncomingMessage) {
	switch msg.Type {
	case "ping":
		c.sendMessage(TypePong, nil)

	case "location_update":
		c.handleLocationUpdate(msg.Data)

	case "follow_driver":
		var req followRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil || req.DriverID == "" {
			c.sendFeedError("location", feed.ErrNoDriver)
			return
		}
		if !c.mayWatch(req.DriverID) {
			c.sendFeedError("location", errForbidden)
			return
		}
		if err := c.location.Follow(c.ctx, req.DriverID); err != nil {
			c.sendFeedError("location", err)
		}

	case "unfollow_driver":
		c.location.Stop()

	case "follow_trips":
		driverID := c.UserID
		var req followRequest
		if len(msg.Data) > 0 && json.Unmarshal(msg.Data, &req) == nil && req.DriverID != "" {
			driverID = req.DriverID
		}
		if !c.mayWatch(driverID) {
			c.sendFeedError("trips", errForbidden)
			return
		}
		if err := c.trips.Follow(c.ctx, driverID); err != nil {
			c.sendFeedError("trips", err)
		}

	default:
		log.Printf("⚠️  [WEBSOCKET] Unknown message type %q from %s", msg.Type, c.UserID)
	}
}

// mayWatch reports whether the client may read driverID's feeds. Drivers
// only see their own; admins see everyone.
func (c *Client) mayWatch(driverID string) bool {
	return c.UserRole == roleAdmin || driverID == c.UserID
}

// handleLocationUpdate publishes a position sent over the socket as the
// driver's location record.
func (c *Client) handleLocationUpdate(raw json.RawMessage) {
	if c.UserRole != "driver" {
		return
	}
	var update locationUpdate
	if err := json.Unmarshal(raw, &update); err != nil {
		log.Printf("❌ Invalid location update from %s: %v", c.UserID, err)
		return
	}
	pos := location.Position{Latitude: update.Latitude, Longitude: update.Longitude}
	if update.Accuracy != nil {
		pos.Accuracy = *update.Accuracy
	}
	if err := pos.Validate(); err != nil {
		log.Printf("❌ Invalid location update from %s: %v", c.UserID, err)
		return
	}
	if err := location.Publish(c.ctx, c.feeds.Store, c.UserID, pos, c.feeds.Now()); err != nil {
		log.Printf("❌ Error saving location for driver %s: %v", c.UserID, err)
		return
	}
	log.Printf("📍 Location updated for driver %s", c.UserID)
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendMessage(msgType string, data interface{}) {
	raw, err := json.Marshal(OutgoingMessage{
		Type:      msgType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	})
	if err != nil {
		log.Printf("❌ Failed to marshal %s message: %v", msgType, err)
		return
	}
	c.deliver(raw)
}

func (c *Client) sendFeedError(name string, err error) {
	log.Printf("⚠️  [WEBSOCKET] %s feed error for %s: %v", name, c.UserID, err)
	c.sendMessage(TypeFeedError, feedError{Feed: name, Error: err.Error()})
}

// deliver queues data without blocking. A full buffer drops the message.
func (c *Client) deliver(data []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		log.Printf("⚠️ Client buffer full, dropping message for %s", c.UserID)
		return false
	}
}

// closeSend closes the outgoing queue once.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
