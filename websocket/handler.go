package websocket

import (
	"log"
	"net/http"

	"lingohub/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NotificationsHandler upgrades an authenticated request to a websocket and
// keeps it registered with the hub until the client goes away. Runs behind
// AuthMiddleware, which also accepts the token as a query parameter.
func NotificationsHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middlewares.UserID(c)

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade error: %v", err)
			return
		}

		client := &Client{
			Conn:   conn,
			UserID: userID.Hex(),
		}
		hub.Register(client)
		defer hub.Unregister(client)
		log.Printf("Notification client connected for user %s (%d open connections)", client.UserID, hub.ClientCount())

		client.SafeWriteJSON(map[string]interface{}{
			"type":   "connected",
			"userId": client.UserID,
		})

		// Drain incoming frames until the peer disconnects. Control frames
		// never surface here; the connection's ping handler answers pings.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("Notification WebSocket error: %v", err)
				}
				break
			}
		}
	}
}
