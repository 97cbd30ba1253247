package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"lingohub/db"
	"lingohub/middlewares"
	"lingohub/models"
	"lingohub/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ChatController vouches for user identities towards the hosted chat/video
// provider. Message and call transport never touches this backend.
type ChatController struct {
	DB     *db.Database
	Stream *services.StreamService
}

// GetStreamToken mints a Stream user token for the caller. The user is
// upserted first because Stream rejects tokens for unknown users.
func (ch *ChatController) GetStreamToken(c *gin.Context) {
	userID := middlewares.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := ch.DB.Users().FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		}
		return
	}

	// Continue on upsert failure: the user may already exist in Stream and
	// the connection attempt will validate either way
	if err := ch.Stream.UpsertUser(ctx, &user); err != nil {
		log.Printf("Error upserting stream user for token: %v", err)
	}

	token, err := ch.Stream.CreateToken(userID.Hex())
	if err != nil {
		log.Printf("Error generating stream token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// EnsureStreamUser mirrors any existing user into Stream, used before opening
// a channel with someone who may never have requested a token themselves
func (ch *ChatController) EnsureStreamUser(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := ch.DB.Users().FindOne(ctx, bson.M{"_id": targetID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		}
		return
	}

	if err := ch.Stream.UpsertUser(ctx, &user); err != nil {
		log.Printf("Error ensuring stream user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync user to Stream Chat"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User synced to Stream Chat"})
}
