package controller

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"ourtime-api/core/constants"
	"ourtime-api/core/controller"
	"ourtime-api/core/errors"
	"ourtime-api/core/utils"
	"ourtime-api/modules/participant/dto"
	"ourtime-api/modules/participant/service"
)

type ParticipantController struct {
	controller.BaseController
	service service.ParticipantServiceInterface
}

func NewParticipantController(svc service.ParticipantServiceInterface) *ParticipantController {
	return &ParticipantController{
		BaseController: controller.NewBaseController(),
		service:        svc,
	}
}

// optionalUserID returns the authenticated user's ID when a token was
// presented, nil otherwise. Registration works for both cases.
func optionalUserID(ctx echo.Context) *uuid.UUID {
	raw := ctx.Get(constants.ContextTokenData)
	claims, ok := raw.(*utils.TokenClaims)
	if !ok || claims == nil {
		return nil
	}
	id := claims.UserID
	return &id
}

// RegisterParticipant godoc
// @Summary Join an event as a participant
// @Tags participants
// @Accept json
// @Produce json
// @Param slug path string true "Event slug"
// @Param request body dto.RegisterParticipantRequest true "Participant info"
// @Success 201 {object} dto.ParticipantResponse
// @Router /events/slug/{slug}/participants [post]
func (c *ParticipantController) RegisterParticipant(ctx echo.Context) error {
	slug := ctx.Param("slug")

	var req dto.RegisterParticipantRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid request body")
	}

	resp, appErr := c.service.RegisterParticipant(ctx.Request().Context(), slug, optionalUserID(ctx), &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.CreatedResponse(ctx, resp, "participant registered")
}

// listAccess builds the caller's claim from the token and the anonymous
// participant_id/email query pair.
func listAccess(ctx echo.Context) service.ListAccess {
	access := service.ListAccess{
		UserID: optionalUserID(ctx),
		Email:  ctx.QueryParam("email"),
	}
	if raw := ctx.QueryParam("participant_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			access.ParticipantID = &id
		}
	}
	return access
}

// GetParticipants godoc
// @Summary List participants of an event (organizer or participant)
// @Tags participants
// @Produce json
// @Param id path int true "Event ID"
// @Param participant_id query int false "Participant ID for anonymous access"
// @Param email query string false "Participant email for anonymous access"
// @Success 200 {array} dto.ParticipantResponse
// @Router /events/{id}/participants [get]
func (c *ParticipantController) GetParticipants(ctx echo.Context) error {
	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid event ID")
	}

	resp, appErr := c.service.GetParticipantsByEvent(ctx.Request().Context(), eventID, listAccess(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "success")
}

// DeleteParticipant godoc
// @Summary Remove a participant (organizer only)
// @Tags participants
// @Produce json
// @Param id path int true "Participant ID"
// @Success 204
// @Security BearerAuth
// @Router /participants/{id} [delete]
func (c *ParticipantController) DeleteParticipant(ctx echo.Context) error {
	participantID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid participant ID")
	}

	claims, ok := ctx.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok || claims == nil {
		return c.Unauthorized(errors.ErrUnauthorized, "authentication required")
	}

	if appErr := c.service.DeleteParticipant(ctx.Request().Context(), participantID, claims.UserID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// SubmitAvailability godoc
// @Summary Submit (fully replace) a participant's availability
// @Tags participants
// @Accept json
// @Produce json
// @Param id path int true "Participant ID"
// @Param request body dto.SubmitAvailabilityRequest true "Availability entries"
// @Success 200 {object} dto.AvailabilityResponse
// @Router /participants/{id}/availabilities [post]
func (c *ParticipantController) SubmitAvailability(ctx echo.Context) error {
	participantID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid participant ID")
	}

	var req dto.SubmitAvailabilityRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid request body")
	}

	if appErr := c.service.SubmitAvailability(ctx.Request().Context(), participantID, &req); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	resp, appErr := c.service.GetAvailability(ctx.Request().Context(), participantID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "availability saved")
}

// GetAvailability godoc
// @Summary Get a participant's current availability
// @Tags participants
// @Produce json
// @Param id path int true "Participant ID"
// @Success 200 {object} dto.AvailabilityResponse
// @Router /participants/{id}/availabilities [get]
func (c *ParticipantController) GetAvailability(ctx echo.Context) error {
	participantID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid participant ID")
	}

	resp, appErr := c.service.GetAvailability(ctx.Request().Context(), participantID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "success")
}
