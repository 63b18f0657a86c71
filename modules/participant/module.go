package participant

import (
	"github.com/labstack/echo/v4"

	"ourtime-api/core/cache"
	"ourtime-api/core/database"
	"ourtime-api/core/middleware"
	eventRepo "ourtime-api/modules/event/repository"
	"ourtime-api/modules/participant/controller"
	"ourtime-api/modules/participant/repository"
	"ourtime-api/modules/participant/router"
	"ourtime-api/modules/participant/service"
)

// Init initializes the participant module and registers routes.
func Init(e *echo.Echo, db database.IDatabase, c *cache.Cache, mw *middleware.Middleware) service.ParticipantServiceInterface {
	repo := repository.NewParticipantRepository(db)
	events := eventRepo.NewEventRepository(db)
	svc := service.NewParticipantService(repo, events, c)
	ctrl := controller.NewParticipantController(svc)
	rtr := router.NewParticipantRouter(ctrl)

	rtr.Setup(e, mw)
	return svc
}
