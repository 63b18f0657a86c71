package router

import (
	"github.com/labstack/echo/v4"

	"ourtime-api/core/middleware"
	"ourtime-api/modules/auth/controller"
)

type AuthRouter struct {
	controller *controller.AuthController
}

func NewAuthRouter(c *controller.AuthController) *AuthRouter {
	return &AuthRouter{controller: c}
}

func (r *AuthRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	auth := e.Group("/api/v1/auth")

	auth.POST("/register", r.controller.Register)
	auth.POST("/login", r.controller.Login)
	auth.POST("/refresh", r.controller.Refresh)
	auth.POST("/logout", r.controller.Logout, mw.AuthMiddleware())
	auth.GET("/me", r.controller.GetMe, mw.AuthMiddleware())
}
