package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Friend request statuses. A rejected request is deleted outright, so it never
// appears as a stored status.
const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
)

// FriendRequest is a directed proposal to establish a symmetric friendship edge.
type FriendRequest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Sender    primitive.ObjectID `bson:"sender" json:"sender"`
	Recipient primitive.ObjectID `bson:"recipient" json:"recipient"`
	Status    string             `bson:"status" json:"status"`
	// PairKey identifies the unordered {sender, recipient} pair. A unique
	// partial index on it (status == pending) makes the duplicate-send check
	// atomic at the storage layer.
	PairKey   string    `bson:"pairKey" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// PairKey returns the direction-independent key for two user IDs.
func PairKey(a, b primitive.ObjectID) string {
	ah, bh := a.Hex(), b.Hex()
	if ah > bh {
		ah, bh = bh, ah
	}
	return ah + ":" + bh
}
