package router

import (
	"github.com/labstack/echo/v4"

	"ourtime-api/core/middleware"
	"ourtime-api/modules/participant/controller"
)

type ParticipantRouter struct {
	controller *controller.ParticipantController
}

func NewParticipantRouter(c *controller.ParticipantController) *ParticipantRouter {
	return &ParticipantRouter{controller: c}
}

func (r *ParticipantRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	api := e.Group("/api/v1")

	events := api.Group("/events")
	events.POST("/slug/:slug/participants", r.controller.RegisterParticipant, mw.OptionalAuthMiddleware())
	events.GET("/:id/participants", r.controller.GetParticipants, mw.OptionalAuthMiddleware())

	participants := api.Group("/participants")
	participants.DELETE("/:id", r.controller.DeleteParticipant, mw.AuthMiddleware())
	participants.POST("/:id/availabilities", r.controller.SubmitAvailability)
	participants.GET("/:id/availabilities", r.controller.GetAvailability)
}
