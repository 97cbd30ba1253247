package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lingohub/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// dialHub spins up a server that registers every incoming connection with the
// hub under the userID from the query string, then dials it.
func dialHub(t *testing.T, hub *Hub, userID string) (*websocket.Conn, func()) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		hub.Register(&Client{Conn: conn, UserID: r.URL.Query().Get("user")})
	}))

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	// Registration happens server-side after the handshake completes
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func TestHubNotifyDeliversToRecipient(t *testing.T) {
	hub := NewHub()
	recipient := primitive.NewObjectID()

	conn, cleanup := dialHub(t, hub, recipient.Hex())
	defer cleanup()
	require.Equal(t, 1, hub.ClientCount())

	hub.Notify(&models.Notification{
		Recipient: recipient,
		Sender:    primitive.NewObjectID(),
		Type:      models.NotificationNewMessage,
		CreatedAt: time.Now(),
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var envelope struct {
		Type         string               `json:"type"`
		Notification *models.Notification `json:"notification"`
	}
	require.NoError(t, conn.ReadJSON(&envelope))
	assert.Equal(t, "notification", envelope.Type)
	assert.Equal(t, models.NotificationNewMessage, envelope.Notification.Type)
	assert.Equal(t, recipient, envelope.Notification.Recipient)
}

func TestHubNotifySkipsOtherUsers(t *testing.T) {
	hub := NewHub()
	bystander := primitive.NewObjectID()

	conn, cleanup := dialHub(t, hub, bystander.Hex())
	defer cleanup()

	hub.Notify(&models.Notification{
		Recipient: primitive.NewObjectID(),
		Type:      models.NotificationCallInvite,
	})

	conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "bystander should not receive the push")
}

func TestHubUnregisterDropsClient(t *testing.T) {
	hub := NewHub()
	userID := primitive.NewObjectID().Hex()

	_, cleanup := dialHub(t, hub, userID)
	defer cleanup()
	require.Equal(t, 1, hub.ClientCount())

	hub.mu.RLock()
	var client *Client
	for c := range hub.clients[userID] {
		client = c
	}
	hub.mu.RUnlock()
	require.NotNil(t, client)

	hub.Unregister(client)
	assert.Equal(t, 0, hub.ClientCount())

	// Unregistering twice is harmless
	hub.Unregister(client)
	assert.Equal(t, 0, hub.ClientCount())
}
