package db

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Database wraps the Mongo client and database handle. It is constructed once
// in main and passed to controllers and services; there are no package-level
// client singletons.
type Database struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// extractDBName parses the database name from the URI, defaulting to "lingohub"
func extractDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "lingohub"
	}
	if u.Path != "" && u.Path != "/" {
		return u.Path[1:] // Trim leading '/'
	}
	return "lingohub"
}

// Connect establishes a connection to MongoDB using the provided URI
func Connect(ctx context.Context, uri string) (*Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection with a ping
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Database{
		Client: client,
		DB:     client.Database(extractDBName(uri)),
	}, nil
}

// Close disconnects the underlying client.
func (d *Database) Close(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}

func (d *Database) Users() *mongo.Collection          { return d.DB.Collection("users") }
func (d *Database) FriendRequests() *mongo.Collection { return d.DB.Collection("friend_requests") }
func (d *Database) Notifications() *mongo.Collection  { return d.DB.Collection("notifications") }
func (d *Database) Moments() *mongo.Collection        { return d.DB.Collection("moments") }

// EnsureIndexes creates the indexes the application relies on:
//   - unique email on users
//   - unique pairKey on friend_requests while status is pending, which
//     serializes concurrent duplicate sends at the storage layer
//   - TTL index on moments.expiresAt so expiry is enforced by the store
func (d *Database) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	_, err := d.Users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users email index: %w", err)
	}

	_, err = d.FriendRequests().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "pairKey", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"status": "pending"}),
	})
	if err != nil {
		return fmt.Errorf("friend_requests pairKey index: %w", err)
	}

	_, err = d.Notifications().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("notifications recipient index: %w", err)
	}

	_, err = d.Moments().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("moments TTL index: %w", err)
	}

	return nil
}
