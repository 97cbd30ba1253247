package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coordinates is an optional geocoordinate pair on a profile. Zero values mean
// the user has not set a location pin.
type Coordinates struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// User defines a user entity
type User struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Email            string               `bson:"email" json:"email"`
	FullName         string               `bson:"fullName" json:"fullName"`
	PasswordHash     string               `bson:"passwordHash" json:"-"`
	Bio              string               `bson:"bio" json:"bio"`
	NativeLanguage   string               `bson:"nativeLanguage" json:"nativeLanguage"`
	LearningLanguage string               `bson:"learningLanguage" json:"learningLanguage"`
	Location         string               `bson:"location" json:"location"`
	Coordinates      Coordinates          `bson:"coordinates" json:"coordinates"`
	Interests        []string             `bson:"interests" json:"interests"`
	ProfilePic       string               `bson:"profilePic" json:"profilePic"`
	IsOnboarded      bool                 `bson:"isOnboarded" json:"isOnboarded"`
	Friends          []primitive.ObjectID `bson:"friends" json:"friends"`
	Streak           int                  `bson:"streak" json:"streak"`
	XP               int                  `bson:"xp" json:"xp"`
	Level            int                  `bson:"level" json:"level"`
	LastActiveDate   time.Time            `bson:"lastActiveDate" json:"lastActiveDate"`
	CreatedAt        time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// UserCard is the projection used for friend lists, recommendations and the
// leaderboard, where the full document (friends array, hash) is never exposed.
type UserCard struct {
	ID               primitive.ObjectID `bson:"_id" json:"id"`
	FullName         string             `bson:"fullName" json:"fullName"`
	ProfilePic       string             `bson:"profilePic" json:"profilePic"`
	NativeLanguage   string             `bson:"nativeLanguage" json:"nativeLanguage"`
	LearningLanguage string             `bson:"learningLanguage" json:"learningLanguage"`
	Location         string             `bson:"location" json:"location"`
	Coordinates      Coordinates        `bson:"coordinates" json:"coordinates"`
	XP               int                `bson:"xp" json:"xp"`
	Level            int                `bson:"level" json:"level"`
}
