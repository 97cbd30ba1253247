package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"lingohub/db"
	"lingohub/middlewares"
	"lingohub/models"
	"lingohub/websocket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationController serves the notification feed. Clients poll it; the
// websocket hub additionally pushes new notifications to connected clients.
type NotificationController struct {
	DB  *db.Database
	Hub *websocket.Hub
}

// notificationView is a notification with its sender populated.
type notificationView struct {
	models.Notification `json:",inline"`
	SenderUser          *models.UserCard `json:"senderUser,omitempty"`
}

// GetNotifications returns the caller's notifications, newest first
func (n *NotificationController) GetNotifications(c *gin.Context) {
	userID := middlewares.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	cursor, err := n.DB.Notifications().Find(ctx,
		bson.M{"recipient": userID},
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	// Populate senders in one batched query
	senderIDs := make([]primitive.ObjectID, 0, len(notifications))
	for _, notif := range notifications {
		senderIDs = append(senderIDs, notif.Sender)
	}
	cards := make(map[primitive.ObjectID]*models.UserCard)
	if len(senderIDs) > 0 {
		userCursor, err := n.DB.Users().Find(ctx, bson.M{"_id": bson.M{"$in": senderIDs}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notification senders"})
			return
		}
		defer userCursor.Close(ctx)

		var users []models.UserCard
		if err := userCursor.All(ctx, &users); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notification senders"})
			return
		}
		for i := range users {
			cards[users[i].ID] = &users[i]
		}
	}

	views := make([]notificationView, 0, len(notifications))
	for _, notif := range notifications {
		views = append(views, notificationView{
			Notification: notif,
			SenderUser:   cards[notif.Sender],
		})
	}

	c.JSON(http.StatusOK, views)
}

// MarkNotificationRead flags a notification as read
func (n *NotificationController) MarkNotificationRead(c *gin.Context) {
	userID := middlewares.UserID(c)

	notifID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	result, err := n.DB.Notifications().UpdateOne(ctx,
		bson.M{"_id": notifID, "recipient": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Marked as read"})
}

// DeleteNotification removes a notification owned by the caller
func (n *NotificationController) DeleteNotification(c *gin.Context) {
	userID := middlewares.UserID(c)

	notifID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	result, err := n.DB.Notifications().DeleteOne(ctx, bson.M{"_id": notifID, "recipient": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

type callInviteRequest struct {
	RecipientID string `json:"recipientId" binding:"required"`
	CallID      string `json:"callId" binding:"required"`
}

// SendCallInvite notifies another user about an incoming call
func (n *NotificationController) SendCallInvite(c *gin.Context) {
	senderID := middlewares.UserID(c)

	var req callInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	recipientID, err := primitive.ObjectIDFromHex(req.RecipientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipient ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	notif := &models.Notification{
		Recipient: recipientID,
		Sender:    senderID,
		Type:      models.NotificationCallInvite,
		Metadata:  map[string]interface{}{"callId": req.CallID},
		CreatedAt: time.Now(),
	}
	if err := n.DB.InsertNotification(ctx, notif); err != nil {
		log.Printf("Error sending call invite: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	n.Hub.Notify(notif)
	c.JSON(http.StatusOK, gin.H{"message": "Invite sent"})
}
