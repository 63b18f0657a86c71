package router

import (
	"github.com/labstack/echo/v4"

	"ourtime-api/core/middleware"
	"ourtime-api/modules/notification/controller"
)

type NotificationRouter struct {
	controller *controller.NotificationController
}

func NewNotificationRouter(c *controller.NotificationController) *NotificationRouter {
	return &NotificationRouter{controller: c}
}

func (r *NotificationRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	group := e.Group("/api/v1/notifications", mw.AuthMiddleware())
	group.GET("", r.controller.GetMyNotifications)
	group.GET("/unread-count", r.controller.CountUnread)
	group.POST("/read", r.controller.MarkAsRead)
	group.POST("/read-all", r.controller.MarkAllAsRead)

	events := e.Group("/api/v1/events", mw.AuthMiddleware())
	events.POST("/:id/final-choice/send-email", r.controller.SendFinalChoiceEmail)
}
