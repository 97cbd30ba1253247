package db

import (
	"context"
	"time"

	"lingohub/models"
	"lingohub/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Database implements services.FriendStore. Lookup methods return (nil, nil)
// when the document is absent; the service layer decides what that means.

func (d *Database) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := d.Users().FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) PendingBetween(ctx context.Context, a, b primitive.ObjectID) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := d.FriendRequests().FindOne(ctx, bson.M{
		"pairKey": models.PairKey(a, b),
		"status":  models.FriendRequestPending,
	}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (d *Database) InsertFriendRequest(ctx context.Context, req *models.FriendRequest) error {
	_, err := d.FriendRequests().InsertOne(ctx, req)
	if mongo.IsDuplicateKeyError(err) {
		// The unique partial pairKey index fired: a concurrent send won.
		return services.ErrDuplicateRequest
	}
	return err
}

func (d *Database) FriendRequestByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := d.FriendRequests().FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// MarkFriendRequestAccepted flips a pending request to accepted. The status
// filter re-validates the precondition, so the loser of a concurrent
// accept/reject race gets ErrNotPending instead of clobbering the winner.
func (d *Database) MarkFriendRequestAccepted(ctx context.Context, id primitive.ObjectID) error {
	res, err := d.FriendRequests().UpdateOne(ctx,
		bson.M{"_id": id, "status": models.FriendRequestPending},
		bson.M{"$set": bson.M{"status": models.FriendRequestAccepted}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return services.ErrNotPending
	}
	return nil
}

func (d *Database) DeleteFriendRequest(ctx context.Context, id primitive.ObjectID) error {
	_, err := d.FriendRequests().DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// LinkFriends adds each user to the other's friends set. $addToSet keeps the
// operation idempotent, so a retried accept never duplicates entries.
func (d *Database) LinkFriends(ctx context.Context, a, b primitive.ObjectID) error {
	users := d.Users()
	if _, err := users.UpdateOne(ctx, bson.M{"_id": a},
		bson.M{"$addToSet": bson.M{"friends": b}, "$set": bson.M{"updatedAt": time.Now()}}); err != nil {
		return err
	}
	_, err := users.UpdateOne(ctx, bson.M{"_id": b},
		bson.M{"$addToSet": bson.M{"friends": a}, "$set": bson.M{"updatedAt": time.Now()}})
	return err
}

func (d *Database) InsertNotification(ctx context.Context, n *models.Notification) error {
	res, err := d.Notifications().InsertOne(ctx, n)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		n.ID = oid
	}
	return nil
}

// DeleteRequestNotification removes the friend_request_received notification
// tied to a request. Deleting an already-deleted notification is a no-op.
func (d *Database) DeleteRequestNotification(ctx context.Context, recipient, requestID primitive.ObjectID) error {
	_, err := d.Notifications().DeleteOne(ctx, bson.M{
		"recipient": recipient,
		"relatedId": requestID,
		"type":      models.NotificationFriendRequestReceived,
	})
	return err
}

func (d *Database) PendingInvolving(ctx context.Context, userID primitive.ObjectID) ([]models.FriendRequest, error) {
	cursor, err := d.FriendRequests().Find(ctx, bson.M{
		"status": models.FriendRequestPending,
		"$or": []bson.M{
			{"sender": userID},
			{"recipient": userID},
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.FriendRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (d *Database) UsersExcluding(ctx context.Context, exclude []primitive.ObjectID, limit int64) ([]models.UserCard, error) {
	cursor, err := d.Users().Find(ctx,
		bson.M{"_id": bson.M{"$nin": exclude}},
		options.Find().SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.UserCard
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
