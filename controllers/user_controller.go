package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"lingohub/db"
	"lingohub/middlewares"
	"lingohub/models"
	"lingohub/services"
	"lingohub/websocket"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserController handles the friend graph: recommendations, friend lists and
// the friend-request lifecycle.
type UserController struct {
	DB      *db.Database
	Friends *services.FriendService
	Hub     *websocket.Hub
	Redis   *redis.Client // optional; rate limiting is skipped when nil
}

// friendRequestView is a request with its user references populated.
type friendRequestView struct {
	ID        primitive.ObjectID `json:"id"`
	Status    string             `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
	Sender    *models.UserCard   `json:"sender,omitempty"`
	Recipient *models.UserCard   `json:"recipient,omitempty"`
}

// mapFriendError converts a state-machine failure into the HTTP taxonomy:
// validation/conflict 400, unauthorized 403, missing 404.
func mapFriendError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSelfRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot send a friend request to yourself"})
	case errors.Is(err, services.ErrAlreadyFriends):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Already friends"})
	case errors.Is(err, services.ErrDuplicateRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Friend request already exists"})
	case errors.Is(err, services.ErrNotPending):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request is no longer pending"})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		log.Printf("Friend request error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}

// GetRecommendedUsers returns users the caller could befriend
func (u *UserController) GetRecommendedUsers(c *gin.Context) {
	userID := middlewares.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	users, err := u.Friends.Recommended(ctx, userID)
	if err != nil {
		mapFriendError(c, err)
		return
	}
	if users == nil {
		users = []models.UserCard{}
	}
	c.JSON(http.StatusOK, users)
}

// GetFriends returns the caller's friends as display cards
func (u *UserController) GetFriends(c *gin.Context) {
	userID := middlewares.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := u.DB.Users().FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	friends := []models.UserCard{}
	if len(user.Friends) > 0 {
		cursor, err := u.DB.Users().Find(ctx, bson.M{"_id": bson.M{"$in": user.Friends}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load friends"})
			return
		}
		defer cursor.Close(ctx)
		if err := cursor.All(ctx, &friends); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load friends"})
			return
		}
	}

	c.JSON(http.StatusOK, friends)
}

// SendFriendRequest creates a pending request to the given recipient
func (u *UserController) SendFriendRequest(c *gin.Context) {
	senderID := middlewares.UserID(c)

	recipientID, err := primitive.ObjectIDFromHex(c.Param("recipientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	// Rate limiting (5 seconds), only when Redis is configured
	if u.Redis != nil {
		rateKey := "friendreq:rate:" + senderID.Hex()
		ok, err := u.Redis.SetNX(c, rateKey, "1", 5*time.Second).Result()
		if err == nil && !ok {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Please wait a few seconds before sending another request"})
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	request, notif, err := u.Friends.Send(ctx, senderID, recipientID)
	if err != nil {
		mapFriendError(c, err)
		return
	}

	u.Hub.Notify(notif)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Friend request sent successfully",
		"request": request,
	})
}

// GetPendingRequests returns incoming pending requests, newest first
func (u *UserController) GetPendingRequests(c *gin.Context) {
	userID := middlewares.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	cursor, err := u.DB.FriendRequests().Find(ctx,
		bson.M{"recipient": userID, "status": models.FriendRequestPending},
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friend requests"})
		return
	}
	defer cursor.Close(ctx)

	var requests []models.FriendRequest
	if err := cursor.All(ctx, &requests); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friend requests"})
		return
	}

	views, err := u.populateRequests(ctx, requests, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load request details"})
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetAllPendingRequests returns pending requests in both directions, so the
// client can filter recommendation cards it has already acted on
func (u *UserController) GetAllPendingRequests(c *gin.Context) {
	userID := middlewares.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	requests, err := u.DB.PendingInvolving(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friend requests"})
		return
	}

	views, err := u.populateRequests(ctx, requests, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load request details"})
		return
	}
	c.JSON(http.StatusOK, views)
}

// AcceptFriendRequest accepts a pending request addressed to the caller
func (u *UserController) AcceptFriendRequest(c *gin.Context) {
	userID := middlewares.UserID(c)

	requestID, err := primitive.ObjectIDFromHex(c.Param("requestId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	notif, err := u.Friends.Accept(ctx, requestID, userID)
	if err != nil {
		mapFriendError(c, err)
		return
	}

	u.Hub.Notify(notif)
	c.JSON(http.StatusOK, gin.H{"message": "Friend request accepted"})
}

// RejectFriendRequest deletes a pending request addressed to the caller
func (u *UserController) RejectFriendRequest(c *gin.Context) {
	userID := middlewares.UserID(c)

	requestID, err := primitive.ObjectIDFromHex(c.Param("requestId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := u.Friends.Reject(ctx, requestID, userID); err != nil {
		mapFriendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend request rejected"})
}

// GetMapUsers returns users who have set a location pin, excluding the caller
func (u *UserController) GetMapUsers(c *gin.Context) {
	userID := middlewares.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	cursor, err := u.DB.Users().Find(ctx, bson.M{
		"coordinates.lat": bson.M{"$ne": 0},
		"coordinates.lng": bson.M{"$ne": 0},
		"_id":             bson.M{"$ne": userID},
	}, options.Find().SetLimit(50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch map users"})
		return
	}
	defer cursor.Close(ctx)

	users := []models.UserCard{}
	if err := cursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch map users"})
		return
	}

	c.JSON(http.StatusOK, users)
}

// populateRequests resolves sender (and optionally recipient) references to
// display cards in one batched query.
func (u *UserController) populateRequests(ctx context.Context, requests []models.FriendRequest, withRecipient bool) ([]friendRequestView, error) {
	ids := make([]primitive.ObjectID, 0, len(requests)*2)
	for _, req := range requests {
		ids = append(ids, req.Sender)
		if withRecipient {
			ids = append(ids, req.Recipient)
		}
	}

	cards := make(map[primitive.ObjectID]*models.UserCard)
	if len(ids) > 0 {
		cursor, err := u.DB.Users().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var users []models.UserCard
		if err := cursor.All(ctx, &users); err != nil {
			return nil, err
		}
		for i := range users {
			cards[users[i].ID] = &users[i]
		}
	}

	views := make([]friendRequestView, 0, len(requests))
	for _, req := range requests {
		view := friendRequestView{
			ID:        req.ID,
			Status:    req.Status,
			CreatedAt: req.CreatedAt,
			Sender:    cards[req.Sender],
		}
		if withRecipient {
			view.Recipient = cards[req.Recipient]
		}
		views = append(views, view)
	}
	return views, nil
}
