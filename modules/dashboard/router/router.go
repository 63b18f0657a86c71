package router

import (
	"github.com/labstack/echo/v4"

	"ourtime-api/core/middleware"
	"ourtime-api/modules/dashboard/controller"
)

type DashboardRouter struct {
	controller *controller.DashboardController
}

func NewDashboardRouter(c *controller.DashboardController) *DashboardRouter {
	return &DashboardRouter{controller: c}
}

func (r *DashboardRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	events := e.Group("/api/v1/events", mw.OptionalAuthMiddleware())

	events.GET("/:id/dashboard", r.controller.GetDashboard)
	events.GET("/:id/recommend-time", r.controller.RecommendTime)
}
