package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MomentTTL is how long a moment stays visible.
const MomentTTL = 24 * time.Hour

// Moment is an ephemeral post. Expiry is enforced by a TTL index on
// expiresAt, not by application sweeps.
type Moment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Content   string             `bson:"content" json:"content"`
	Media     string             `bson:"media" json:"media"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
}
