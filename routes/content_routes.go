package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/kanya01/freqspace-backend/controllers"
	"github.com/kanya01/freqspace-backend/middleware"
	"github.com/kanya01/freqspace-backend/websocket"
)

// RegisterContentRoutes sets up content lifecycle and interaction routes.
// Reads allow anonymous callers; everything that mutates requires a token.
func RegisterContentRoutes(e *echo.Echo, contentController *controllers.ContentController, interactionController *controllers.InteractionController, hub *websocket.Hub) {
	// Public reads. The optional middleware resolves the caller when a
	// token is present so owners can see their private items.
	public := e.Group("/api/content")
	public.Use(middleware.OptionalJWTMiddleware())
	public.GET("", contentController.ListContent)
	public.GET("/:id", contentController.GetContent)

	// Protected mutations
	protected := e.Group("/api/content")
	protected.Use(middleware.JWTMiddleware())
	protected.POST("", contentController.CreateContent)
	protected.PUT("/:id", contentController.UpdateContent)
	protected.DELETE("/:id", contentController.DeleteContent)

	// Interactions
	protected.POST("/:id/like", interactionController.ToggleLike)
	protected.POST("/:id/comments", interactionController.AddComment)
	protected.DELETE("/:id/comments/:commentId", interactionController.DeleteComment)

	// WebSocket endpoint for interaction notifications
	ws := e.Group("/api/ws")
	ws.Use(middleware.JWTMiddleware())
	ws.GET("", func(c echo.Context) error {
		return websocket.HandleWebSocket(c, hub, middleware.CallerID(c))
	})
}
