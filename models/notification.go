package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotificationFriendRequestReceived = "friend_request_received"
	NotificationFriendRequestAccepted = "friend_request_accepted"
	NotificationNewMessage            = "new_message"
	NotificationCallInvite            = "call_invite"
)

// Notification is an append-only event record for a recipient. Clients poll
// for these; connected clients additionally get them pushed over a websocket.
type Notification struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	Recipient primitive.ObjectID     `bson:"recipient" json:"recipient"`
	Sender    primitive.ObjectID     `bson:"sender" json:"sender"`
	Type      string                 `bson:"type" json:"type"`
	RelatedID primitive.ObjectID     `bson:"relatedId,omitempty" json:"relatedId,omitempty"`
	Read      bool                   `bson:"read" json:"read"`
	Metadata  map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt time.Time              `bson:"createdAt" json:"createdAt"`
}
