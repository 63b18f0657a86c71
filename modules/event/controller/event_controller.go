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
	"ourtime-api/modules/event/dto"
	"ourtime-api/modules/event/service"
)

// EventController handles event HTTP requests
type EventController struct {
	controller.BaseController
	EventService service.EventServiceInterface
}

func NewEventController(svc service.EventServiceInterface) *EventController {
	return &EventController{
		BaseController: controller.NewBaseController(),
		EventService:   svc,
	}
}

// getUserIDFromContext extracts user ID from JWT context
func (c *EventController) getUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
	tokenData := ctx.Get(constants.ContextTokenData)
	if tokenData == nil {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "user not authenticated", nil)
	}
	claims, ok := tokenData.(*utils.TokenClaims)
	if !ok {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "invalid token data", nil)
	}
	return claims.UserID, nil
}

func parseEventID(ctx echo.Context) (int64, error) {
	return strconv.ParseInt(ctx.Param("id"), 10, 64)
}

// CreateEvent handles POST /events
// @Summary Create an event
// @Description Creates a coordination event and generates its slot grid
// @Tags Event
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateEventRequest true "Event details"
// @Success 201 {object} dto.EventResponse
// @Failure 400 {object} errors.AppError
// @Router /events [post]
func (c *EventController) CreateEvent(ctx echo.Context) error {
	organizerID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "user not authenticated")
	}

	var req dto.CreateEventRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid request body")
	}

	result, appErr := c.EventService.CreateEvent(ctx.Request().Context(), organizerID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.CreatedResponse(ctx, result, "event created")
}

// GetEventBySlug handles GET /events/:slug
// @Summary Get an event by slug
// @Tags Event
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} dto.EventDetailResponse
// @Failure 404 {object} errors.AppError
// @Router /events/slug/{slug} [get]
func (c *EventController) GetEventBySlug(ctx echo.Context) error {
	slug := ctx.Param("slug")

	result, appErr := c.EventService.GetEventBySlug(ctx.Request().Context(), slug)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "success")
}

// GetMyEvents handles GET /events/my
// @Summary List the organizer's events
// @Tags Event
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.PaginatedMyEvents
// @Router /events/my [get]
func (c *EventController) GetMyEvents(ctx echo.Context) error {
	organizerID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "user not authenticated")
	}

	result, appErr := c.EventService.GetMyEvents(ctx.Request().Context(), organizerID, params.NewQueryParams(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "success")
}

// UpdateEvent handles PATCH /events/:id
// @Summary Update an event
// @Description Partial update; editing the range regenerates slots. Rejected once finalized.
// @Tags Event
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param request body dto.UpdateEventRequest true "Fields to change"
// @Success 200 {object} dto.EventResponse
// @Router /events/{id} [patch]
func (c *EventController) UpdateEvent(ctx echo.Context) error {
	organizerID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "user not authenticated")
	}

	eventID, err := parseEventID(ctx)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid event ID")
	}

	var req dto.UpdateEventRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid request body")
	}

	result, appErr := c.EventService.UpdateEvent(ctx.Request().Context(), eventID, organizerID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "event updated")
}

// DeleteEvent handles DELETE /events/:id
// @Summary Delete an event
// @Tags Event
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} map[string]string
// @Router /events/{id} [delete]
func (c *EventController) DeleteEvent(ctx echo.Context) error {
	organizerID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "user not authenticated")
	}

	eventID, err := parseEventID(ctx)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid event ID")
	}

	if appErr := c.EventService.DeleteEvent(ctx.Request().Context(), eventID, organizerID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "event deleted")
}

// SetFinalChoice handles POST /events/:id/final-choice
// @Summary Commit the final slot
// @Description One-shot commitment; repeated attempts conflict.
// @Tags Event
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param request body dto.SetFinalChoiceRequest true "Slot to commit"
// @Success 200 {object} dto.FinalChoiceResponse
// @Failure 409 {object} errors.AppError
// @Router /events/{id}/final-choice [post]
func (c *EventController) SetFinalChoice(ctx echo.Context) error {
	organizerID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "user not authenticated")
	}

	eventID, err := parseEventID(ctx)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid event ID")
	}

	var req dto.SetFinalChoiceRequest
	if err := ctx.Bind(&req); err != nil || req.SlotID == 0 {
		return c.BadRequest(errors.ErrInvalidInput, "slot_id is required")
	}

	result, appErr := c.EventService.SetFinalChoice(ctx.Request().Context(), eventID, organizerID, req.SlotID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "final choice set")
}

// GetFinalChoice handles GET /events/:id/final-choice
// @Summary Get the committed final slot
// @Tags Event
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} dto.FinalChoiceResponse
// @Router /events/{id}/final-choice [get]
func (c *EventController) GetFinalChoice(ctx echo.Context) error {
	eventID, err := parseEventID(ctx)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid event ID")
	}

	result, appErr := c.EventService.GetFinalChoice(ctx.Request().Context(), eventID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "success")
}
