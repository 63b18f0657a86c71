package dashboard

import (
	"github.com/labstack/echo/v4"

	"ourtime-api/core/cache"
	"ourtime-api/core/database"
	"ourtime-api/core/middleware"
	"ourtime-api/modules/dashboard/controller"
	"ourtime-api/modules/dashboard/repository"
	"ourtime-api/modules/dashboard/router"
	"ourtime-api/modules/dashboard/service"
)

// Init initializes the dashboard module and registers routes.
func Init(e *echo.Echo, db database.IDatabase, c *cache.Cache, mw *middleware.Middleware) service.DashboardServiceInterface {
	repo := repository.NewDashboardRepository(db)
	svc := service.NewDashboardService(repo, c)
	ctrl := controller.NewDashboardController(svc)
	rtr := router.NewDashboardRouter(ctrl)

	rtr.Setup(e, mw)
	return svc
}
