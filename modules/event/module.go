package event

import (
	"github.com/labstack/echo/v4"

	"ourtime-api/core/cache"
	"ourtime-api/core/database"
	"ourtime-api/core/middleware"
	"ourtime-api/modules/event/controller"
	"ourtime-api/modules/event/repository"
	"ourtime-api/modules/event/router"
	"ourtime-api/modules/event/service"
)

// Init initializes the event module and registers routes. The returned
// service is reused by the notification dispatcher and the purge job.
func Init(e *echo.Echo, db database.IDatabase, c *cache.Cache, mw *middleware.Middleware) service.EventServiceInterface {
	repo := repository.NewEventRepository(db)
	svc := service.NewEventService(repo, c)
	ctrl := controller.NewEventController(svc)
	rtr := router.NewEventRouter(ctrl)

	rtr.Setup(e, mw)
	return svc
}
