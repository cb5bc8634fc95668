package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/kanya01/freqspace-backend/controllers"
)

// RegisterAuthRoutes sets up the public authentication routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	e.POST("/api/auth/register", authController.Register)
	e.POST("/api/auth/login", authController.Login)
}
