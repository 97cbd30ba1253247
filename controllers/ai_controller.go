package controllers

import (
	"context"
	"encoding/base64"
	"log"
	"net/http"
	"regexp"
	"time"

	"lingohub/db"
	"lingohub/middlewares"
	"lingohub/models"
	"lingohub/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AIController backs the tutor chat and pronunciation practice pages.
type AIController struct {
	DB         *db.Database
	Tutor      *services.TutorService
	Transcribe *services.TranscriptionService
}

type tutorChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatWithTutor forwards one conversation turn to the tutor model,
// parameterized by the caller's language pair
func (a *AIController) ChatWithTutor(c *gin.Context) {
	var req tutorChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	userID := middlewares.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	var user models.User
	if err := a.DB.Users().FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		}
		return
	}

	response, err := a.Tutor.Chat(ctx, user.NativeLanguage, user.LearningLanguage, req.Message)
	if err != nil {
		log.Printf("Tutor generation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate response"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": response})
}

type transcribeRequest struct {
	Audio    string `json:"audio" binding:"required"` // base64, optionally a data URI
	Language string `json:"language"`
}

var dataURLPrefix = regexp.MustCompile(`^data:audio/\w+;base64,`)

// TranscribeAudio converts recorded practice audio to text
func (a *AIController) TranscribeAudio(c *gin.Context) {
	if !a.Transcribe.Configured() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transcription is not configured on the server"})
		return
	}

	var req transcribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Audio data is required"})
		return
	}

	raw := dataURLPrefix.ReplaceAllString(req.Audio, "")
	audio, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Audio data is not valid base64"})
		return
	}
	if len(audio) < 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Audio data is too short or empty"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	transcript, err := a.Transcribe.Transcribe(ctx, audio, req.Language)
	if err != nil {
		log.Printf("Transcription error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transcription failed"})
		return
	}
	if transcript == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No speech detected in audio. Please try speaking more clearly."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transcript": transcript})
}
