package handlers

import (
	"net/http"

	"TalentDesk/server/internal/appMiddleware"
	"TalentDesk/server/internal/logger"
	"TalentDesk/server/internal/pool"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler upgrades the delivery channel. Identity comes from the
// session token; there is no separate handshake, the server just confirms
// the inherited identity with an authenticated event before any messages
// flow. The channel is delivery-only: inbound frames are drained and
// dropped, submission happens over the regular request path.
func WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	identity, err := appMiddleware.ParseToken(tokenStr, jwtSecret)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Errorf("Error upgrading to WebSocket: %v", err)
		return
	}

	// The ack goes out before the connection joins the pool; once registered
	// a concurrent broadcast may write immediately, and nothing else would
	// keep the ack ahead of it.
	if err := conn.WriteJSON(pool.Envelope{
		Type:         pool.EventAuthenticated,
		EmployeeName: identity.Name,
	}); err != nil {
		logger.Log.Errorf("Error sending authenticated event to employee %d: %v", identity.EmployeeID, err)
		_ = conn.Close()
		return
	}

	client := clientPool.AddClient(identity.EmployeeID, identity.Name, conn)
	defer clientPool.RemoveClient(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			logger.Log.Infof("Employee %d delivery channel closed: %v", identity.EmployeeID, err)
			return
		}
	}
}
