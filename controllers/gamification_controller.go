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
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GamificationController handles daily check-ins and the XP leaderboard.
type GamificationController struct {
	DB *db.Database
}

// UpdateStreak runs the daily check-in for the authenticated user. The streak
// and XP decision is a pure function of the stored fields and "now"; the
// result is persisted in a single write.
func (g *GamificationController) UpdateStreak(c *gin.Context) {
	userID := middlewares.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := g.DB.Users().FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		}
		return
	}

	now := time.Now()
	result := services.ApplyCheckIn(user.Streak, user.XP, user.Level, user.LastActiveDate, now)

	_, err = g.DB.Users().UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{
		"streak":         result.Streak,
		"xp":             result.XP,
		"level":          result.Level,
		"lastActiveDate": result.LastActive,
		"updatedAt":      now,
	}})
	if err != nil {
		log.Printf("Error updating streak for %s: %v", userID.Hex(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"streak":    result.Streak,
		"xp":        result.XP,
		"level":     result.Level,
		"leveledUp": result.LeveledUp,
		"message":   result.Message,
	})
}

// GetLeaderboard returns the top 10 users by XP
func (g *GamificationController) GetLeaderboard(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	cursor, err := g.DB.Users().Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"xp": -1}).SetLimit(10),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard data"})
		return
	}
	defer cursor.Close(ctx)

	leaderboard := []models.UserCard{}
	if err := cursor.All(ctx, &leaderboard); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode leaderboard data"})
		return
	}

	c.JSON(http.StatusOK, leaderboard)
}
