package controller

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"ourtime-api/core/constants"
	"ourtime-api/core/controller"
	"ourtime-api/core/errors"
	"ourtime-api/core/params"
	"ourtime-api/core/utils"
	"ourtime-api/modules/notification/dto"
	"ourtime-api/modules/notification/service"
)

type NotificationController struct {
	controller.BaseController
	service  service.NotificationServiceInterface
	dispatch service.DispatchServiceInterface
}

func NewNotificationController(svc service.NotificationServiceInterface, dispatch service.DispatchServiceInterface) *NotificationController {
	return &NotificationController{
		BaseController: controller.NewBaseController(),
		service:        svc,
		dispatch:       dispatch,
	}
}

func getUserIDFromContext(ctx echo.Context) (uuid.UUID, bool) {
	claims, ok := ctx.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok || claims == nil {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

// GetMyNotifications godoc
// @Summary List the current user's notifications
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /notifications [get]
func (c *NotificationController) GetMyNotifications(ctx echo.Context) error {
	userID, ok := getUserIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "authentication required")
	}

	queryParams := params.NewQueryParams(ctx)
	result, appErr := c.service.GetMyNotifications(ctx.Request().Context(), userID, queryParams)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "success")
}

// MarkAsRead godoc
// @Summary Mark specific notifications as read
// @Tags notifications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.MarkAsReadRequest true "Notification IDs"
// @Success 200 {object} map[string]string
// @Router /notifications/read [post]
func (c *NotificationController) MarkAsRead(ctx echo.Context) error {
	userID, ok := getUserIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "authentication required")
	}

	req := new(dto.MarkAsReadRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}

	if appErr := c.service.MarkAsRead(ctx.Request().Context(), userID, req.IDs); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "marked as read")
}

// MarkAllAsRead godoc
// @Summary Mark all notifications as read
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /notifications/read-all [post]
func (c *NotificationController) MarkAllAsRead(ctx echo.Context) error {
	userID, ok := getUserIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "authentication required")
	}

	if appErr := c.service.MarkAllAsRead(ctx.Request().Context(), userID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "marked all as read")
}

// CountUnread godoc
// @Summary Count unread notifications
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]int
// @Router /notifications/unread-count [get]
func (c *NotificationController) CountUnread(ctx echo.Context) error {
	userID, ok := getUserIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "authentication required")
	}

	count, appErr := c.service.CountUnread(ctx.Request().Context(), userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, map[string]int{"count": count}, "success")
}

// SendFinalChoiceEmail godoc
// @Summary Announce the final choice to participants by email
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} map[string]string
// @Router /events/{id}/final-choice/send-email [post]
func (c *NotificationController) SendFinalChoiceEmail(ctx echo.Context) error {
	userID, ok := getUserIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "authentication required")
	}

	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid event ID")
	}

	if appErr := c.dispatch.SendFinalChoiceEmail(ctx.Request().Context(), eventID, userID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "announcement queued")
}
