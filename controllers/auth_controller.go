// controllers/auth_controller.go
package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/kanya01/freqspace-backend/config"
	"github.com/kanya01/freqspace-backend/middleware"
	"github.com/kanya01/freqspace-backend/models"
)

// AuthController contains authentication logic
type AuthController struct {
	DB *mongo.Client
}

func NewAuthController(db *mongo.Client) *AuthController {
	return &AuthController{DB: db}
}

// Register handles POST /api/auth/register
func (ac *AuthController) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	usersCollection := config.GetCollection(ac.DB, "users")

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	// Reject duplicate email or username up front for a friendlier
	// message; the unique indexes are the real guarantee.
	count, err := usersCollection.CountDocuments(ctx, bson.M{
		"$or": []bson.M{{"email": email}, {"username": username}},
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Error checking existing users",
		})
	}
	if count > 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Email or username is already taken",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Error processing password",
		})
	}

	now := time.Now()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Username:  username,
		Password:  string(hashedPassword),
		UserType:  "user",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := usersCollection.InsertOne(ctx, user); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Error creating user",
		})
	}

	token, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.UserType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Error generating token",
		})
	}

	return c.JSON(http.StatusCreated, models.AuthResponse{
		Status:  http.StatusCreated,
		Message: "User registered successfully",
		Token:   token,
		User:    &user,
	})
}

// Login handles POST /api/auth/login
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	usersCollection := config.GetCollection(ac.DB, "users")

	var user models.User
	err := usersCollection.FindOne(ctx, bson.M{
		"email": strings.ToLower(strings.TrimSpace(req.Email)),
	}).Decode(&user)
	if err != nil {
		// Same response for unknown email and wrong password.
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	token, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.UserType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Error generating token",
		})
	}

	return c.JSON(http.StatusOK, models.AuthResponse{
		Status:  http.StatusOK,
		Message: "Login successful",
		Token:   token,
		User:    &user,
	})
}
