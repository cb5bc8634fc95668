// controllers/interaction_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kanya01/freqspace-backend/middleware"
	"github.com/kanya01/freqspace-backend/models"
	"github.com/kanya01/freqspace-backend/services"
)

type InteractionController struct {
	service *services.ContentService
}

func NewInteractionController(service *services.ContentService) *InteractionController {
	return &InteractionController{service: service}
}

// ToggleLike handles POST /api/content/:id/like. Liked toggles to unliked
// and back; the response reports the resulting state.
func (ic *InteractionController) ToggleLike(c echo.Context) error {
	contentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid content ID",
		})
	}

	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID in token",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	liked, err := ic.service.ToggleLike(ctx, contentID, userID)
	if err != nil {
		return respondError(c, err)
	}

	message := "Content unliked"
	if liked {
		message = "Content liked"
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: message,
		Data:    map[string]interface{}{"liked": liked},
	})
}

// AddComment handles POST /api/content/:id/comments.
func (ic *InteractionController) AddComment(c echo.Context) error {
	contentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid content ID",
		})
	}

	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}
	authorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID in token",
		})
	}

	var req struct {
		Text      string  `json:"text"`
		Timestamp float64 `json:"timestamp"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	comment, err := ic.service.AddComment(ctx, contentID, authorID, req.Text, req.Timestamp)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Comment added successfully",
		Data:    comment,
	})
}

// DeleteComment handles DELETE /api/content/:id/comments/:commentId.
// Allowed for the comment's author and the content's owner.
func (ic *InteractionController) DeleteComment(c echo.Context) error {
	contentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid content ID",
		})
	}
	commentID, err := primitive.ObjectIDFromHex(c.Param("commentId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid comment ID",
		})
	}

	callerID := middleware.CallerID(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ic.service.DeleteComment(ctx, contentID, commentID, callerID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Comment deleted successfully",
	})
}
