package router

import (
	"github.com/labstack/echo/v4"

	"ourtime-api/core/middleware"
	"ourtime-api/modules/event/controller"
)

// EventRouter handles event routes
type EventRouter struct {
	EventController *controller.EventController
}

func NewEventRouter(eventController *controller.EventController) *EventRouter {
	return &EventRouter{
		EventController: eventController,
	}
}

// Setup registers event routes
func (r *EventRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	events := v1.Group("/events")

	// Organizer routes
	events.POST("", r.EventController.CreateEvent, mw.AuthMiddleware())
	events.GET("/my", r.EventController.GetMyEvents, mw.AuthMiddleware())
	events.PATCH("/:id", r.EventController.UpdateEvent, mw.AuthMiddleware())
	events.DELETE("/:id", r.EventController.DeleteEvent, mw.AuthMiddleware())
	events.POST("/:id/final-choice", r.EventController.SetFinalChoice, mw.AuthMiddleware())

	// Public routes. The slug lookup lives under a static segment so the
	// numeric :id routes keep a single param name at this level.
	events.GET("/:id/final-choice", r.EventController.GetFinalChoice)
	events.GET("/slug/:slug", r.EventController.GetEventBySlug)
}
