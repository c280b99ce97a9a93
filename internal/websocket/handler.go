package websocket

import (
	"errors"
	"log"
	"net/http"

	"fleetsync-backend/internal/auth"
	"fleetsync-backend/internal/middleware"
	"fleetsync-backend/internal/models"

	"github.com/gorilla/websocket"
)

var errForbidden = errors.New("not allowed to watch this driver")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades the connection. Browsers cannot set headers on
// a websocket handshake, so the token may come as the token query
// parameter; otherwise the identity set by middleware.Auth is used.
func HandleWebSocket(hub *Hub, tokens *auth.Tokens, feeds *Feeds) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var identity *models.Identity

		if tokenString := r.URL.Query().Get("token"); tokenString != "" {
			var err error
			identity, err = tokens.Parse(tokenString)
			if err != nil {
				log.Printf("❌ Invalid token in query parameter: %v", err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		} else {
			var ok bool
			identity, ok = middleware.GetUserFromContext(r)
			if !ok {
				log.Println("❌ No user in context for WebSocket connection")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("❌ WebSocket upgrade failed: %v", err)
			return
		}

		client := NewClient(identity.UID, identity.Role, conn, hub, feeds)
		if !hub.add(client) {
			client.cancel()
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()

		log.Printf("✅ WebSocket connection established for user: %s (%s)", identity.Email, identity.UID)
	}
}
