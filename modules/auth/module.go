package auth

import (
	"github.com/labstack/echo/v4"

	"ourtime-api/core/cache"
	"ourtime-api/core/database"
	"ourtime-api/core/middleware"
	"ourtime-api/modules/auth/controller"
	"ourtime-api/modules/auth/repository"
	"ourtime-api/modules/auth/router"
	"ourtime-api/modules/auth/service"
)

// Init initializes the auth module and registers routes.
func Init(e *echo.Echo, db database.IDatabase, c *cache.Cache, mw *middleware.Middleware) service.AuthServiceInterface {
	repo := repository.NewUserRepository(db)
	svc := service.NewAuthService(repo, c)
	ctrl := controller.NewAuthController(svc)
	rtr := router.NewAuthRouter(ctrl)

	rtr.Setup(e, mw)
	return svc
}
