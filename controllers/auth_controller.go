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
	"lingohub/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AuthController handles signup, login and profile maintenance.
type AuthController struct {
	DB          *db.Database
	Stream      *services.StreamService
	Media       *services.MediaService
	JWTSecret   string
	TokenExpiry time.Duration
}

type signUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type onboardRequest struct {
	FullName         string             `json:"fullName" binding:"required"`
	Bio              string             `json:"bio"`
	NativeLanguage   string             `json:"nativeLanguage" binding:"required"`
	LearningLanguage string             `json:"learningLanguage" binding:"required"`
	Location         string             `json:"location"`
	Coordinates      models.Coordinates `json:"coordinates"`
	Interests        []string           `json:"interests"`
}

// Signup registers a new user and returns a token
func (a *AuthController) Signup(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign up"})
		return
	}

	now := time.Now()
	user := models.User{
		Email:          req.Email,
		FullName:       req.FullName,
		PasswordHash:   hash,
		ProfilePic:     "https://api.dicebear.com/9.x/adventurer/svg?seed=" + req.FullName,
		Friends:        []primitive.ObjectID{},
		Interests:      []string{},
		Streak:         0,
		XP:             0,
		Level:          1,
		LastActiveDate: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	result, err := a.DB.Users().InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already in use"})
			return
		}
		log.Printf("Error creating user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign up"})
		return
	}
	user.ID = result.InsertedID.(primitive.ObjectID)

	// Mirror the user into Stream so chat works as soon as they log in.
	// Failure here is not fatal; token issuance upserts again.
	if a.Stream != nil {
		if err := a.Stream.UpsertUser(ctx, &user); err != nil {
			log.Printf("Error upserting stream user on signup: %v", err)
		}
	}

	token, err := utils.GenerateJWTToken(a.JWTSecret, user.ID.Hex(), user.Email, a.TokenExpiry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login verifies credentials and returns a token
func (a *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := a.DB.Users().FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err != nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := utils.GenerateJWTToken(a.JWTSecret, user.ID.Hex(), user.Email, a.TokenExpiry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Logout exists for API symmetry; tokens are discarded client-side
func (a *AuthController) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Onboard completes the profile after first login
func (a *AuthController) Onboard(c *gin.Context) {
	var req onboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	userID := middlewares.UserID(c)
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"fullName":         req.FullName,
		"bio":              req.Bio,
		"nativeLanguage":   req.NativeLanguage,
		"learningLanguage": req.LearningLanguage,
		"location":         req.Location,
		"coordinates":      req.Coordinates,
		"interests":        req.Interests,
		"isOnboarded":      true,
		"updatedAt":        time.Now(),
	}}

	var user models.User
	err := a.DB.Users().FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, findAfter()).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			log.Printf("Error onboarding user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete onboarding"})
		}
		return
	}

	if a.Stream != nil {
		if err := a.Stream.UpsertUser(ctx, &user); err != nil {
			log.Printf("Error upserting stream user on onboard: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type updateProfileRequest struct {
	FullName         *string             `json:"fullName"`
	Bio              *string             `json:"bio"`
	NativeLanguage   *string             `json:"nativeLanguage"`
	LearningLanguage *string             `json:"learningLanguage"`
	Location         *string             `json:"location"`
	Coordinates      *models.Coordinates `json:"coordinates"`
	Interests        *[]string           `json:"interests"`
	ProfilePic       *string             `json:"profilePic"` // base64 data URI, uploaded to Cloudinary
}

// UpdateProfile applies a partial profile edit
func (a *AuthController) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	fields := bson.M{"updatedAt": time.Now()}
	if req.FullName != nil {
		fields["fullName"] = *req.FullName
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.NativeLanguage != nil {
		fields["nativeLanguage"] = *req.NativeLanguage
	}
	if req.LearningLanguage != nil {
		fields["learningLanguage"] = *req.LearningLanguage
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.Coordinates != nil {
		fields["coordinates"] = *req.Coordinates
	}
	if req.Interests != nil {
		fields["interests"] = *req.Interests
	}

	userID := middlewares.UserID(c)
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	if req.ProfilePic != nil && *req.ProfilePic != "" {
		if a.Media == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image uploads are not configured"})
			return
		}
		url, err := a.Media.UploadImage(ctx, *req.ProfilePic, "lingohub/avatars/"+userID.Hex())
		if err != nil {
			log.Printf("Error uploading profile picture: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload profile picture"})
			return
		}
		fields["profilePic"] = url
	}

	var user models.User
	err := a.DB.Users().FindOneAndUpdate(ctx, bson.M{"_id": userID}, bson.M{"$set": fields}, findAfter()).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			log.Printf("Error updating profile: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		}
		return
	}

	if a.Stream != nil {
		if err := a.Stream.UpsertUser(ctx, &user); err != nil {
			log.Printf("Error upserting stream user on profile update: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Me returns the authenticated user
func (a *AuthController) Me(c *gin.Context) {
	userID := middlewares.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := a.DB.Users().FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
