package notification

import (
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"

	"ourtime-api/core/database"
	"ourtime-api/core/mailer"
	"ourtime-api/core/middleware"
	"ourtime-api/core/worker"
	eventRepo "ourtime-api/modules/event/repository"
	"ourtime-api/modules/notification/controller"
	"ourtime-api/modules/notification/repository"
	"ourtime-api/modules/notification/router"
	"ourtime-api/modules/notification/service"
	participantRepo "ourtime-api/modules/participant/repository"
)

// Init initializes the notification module: routes for the in-app feed and
// dispatch trigger, plus the queue handlers registered on mux.
func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware, queue *asynq.Client, mail mailer.Mailer, frontendURL string, mux *asynq.ServeMux) service.DispatchServiceInterface {
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo)

	dispatch := service.NewDispatchService(
		eventRepo.NewEventRepository(db),
		participantRepo.NewParticipantRepository(db),
		svc,
		queue,
		mail,
		frontendURL,
	)

	ctrl := controller.NewNotificationController(svc, dispatch)
	rtr := router.NewNotificationRouter(ctrl)
	rtr.Setup(e, mw)

	if mux != nil {
		mux.HandleFunc(worker.TypeFinalChoiceEmail, dispatch.HandleFinalChoiceEmailTask)
		mux.HandleFunc(worker.TypeReminderEmail, dispatch.HandleReminderEmailTask)
	}

	return dispatch
}
