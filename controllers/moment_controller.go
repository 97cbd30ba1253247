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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MomentController handles the ephemeral moments feed. Expiry is the TTL
// index's job; nothing here sweeps old documents.
type MomentController struct {
	DB    *db.Database
	Media *services.MediaService
}

type createMomentRequest struct {
	Content string `json:"content"`
	Image   string `json:"image"` // base64 data URI
}

// momentView is a moment with its author populated.
type momentView struct {
	models.Moment `json:",inline"`
	Author        *models.UserCard `json:"author,omitempty"`
}

// CreateMoment posts a new moment, uploading attached media first
func (m *MomentController) CreateMoment(c *gin.Context) {
	userID := middlewares.UserID(c)

	var req createMomentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}
	if req.Content == "" && req.Image == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Moment needs content or an image"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	var mediaURL string
	if req.Image != "" {
		if m.Media == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image uploads are not configured"})
			return
		}
		url, err := m.Media.UploadImage(ctx, req.Image, "lingohub/moments/"+userID.Hex())
		if err != nil {
			log.Printf("Error uploading moment media: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
			return
		}
		mediaURL = url
	}

	now := time.Now()
	moment := models.Moment{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Content:   req.Content,
		Media:     mediaURL,
		CreatedAt: now,
		ExpiresAt: now.Add(models.MomentTTL),
	}

	if _, err := m.DB.Moments().InsertOne(ctx, moment); err != nil {
		log.Printf("Error creating moment: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusCreated, moment)
}

// GetMomentsFeed returns unexpired moments from the caller and their friends
func (m *MomentController) GetMomentsFeed(c *gin.Context) {
	userID := middlewares.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := m.DB.Users().FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		}
		return
	}

	authorIDs := append([]primitive.ObjectID{userID}, user.Friends...)

	// TTL deletion runs on a background cadence, so also filter here to keep
	// the never-visible-after-expiry guarantee exact.
	cursor, err := m.DB.Moments().Find(ctx, bson.M{
		"userId":    bson.M{"$in": authorIDs},
		"expiresAt": bson.M{"$gt": time.Now()},
	}, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	defer cursor.Close(ctx)

	var moments []models.Moment
	if err := cursor.All(ctx, &moments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	// Populate authors in one batched query
	cards := make(map[primitive.ObjectID]*models.UserCard)
	if len(moments) > 0 {
		userCursor, err := m.DB.Users().Find(ctx, bson.M{"_id": bson.M{"$in": authorIDs}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		defer userCursor.Close(ctx)

		var authors []models.UserCard
		if err := userCursor.All(ctx, &authors); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		for i := range authors {
			cards[authors[i].ID] = &authors[i]
		}
	}

	views := make([]momentView, 0, len(moments))
	for _, moment := range moments {
		views = append(views, momentView{
			Moment: moment,
			Author: cards[moment.UserID],
		})
	}

	c.JSON(http.StatusOK, views)
}

// DeleteMoment removes one of the caller's own moments
func (m *MomentController) DeleteMoment(c *gin.Context) {
	userID := middlewares.UserID(c)

	momentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid moment ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var moment models.Moment
	if err := m.DB.Moments().FindOne(ctx, bson.M{"_id": momentID}).Decode(&moment); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Moment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		}
		return
	}

	if moment.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return
	}

	// Best-effort remote cleanup; a stale asset is preferable to a failed delete
	if moment.Media != "" && m.Media != nil {
		if err := m.Media.DeleteByURL(ctx, moment.Media); err != nil {
			log.Printf("Error deleting moment media: %v", err)
		}
	}

	if _, err := m.DB.Moments().DeleteOne(ctx, bson.M{"_id": momentID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Moment deleted"})
}
