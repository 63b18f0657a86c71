package controller

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"ourtime-api/core/constants"
	"ourtime-api/core/controller"
	"ourtime-api/core/errors"
	"ourtime-api/core/utils"
	"ourtime-api/modules/dashboard/service"
)

type DashboardController struct {
	controller.BaseController
	service service.DashboardServiceInterface
}

func NewDashboardController(svc service.DashboardServiceInterface) *DashboardController {
	return &DashboardController{
		BaseController: controller.NewBaseController(),
		service:        svc,
	}
}

// accessQuery assembles credentials from the token (when present) and the
// anonymous participant_id / email query parameters.
func accessQuery(ctx echo.Context) service.AccessQuery {
	access := service.AccessQuery{Email: ctx.QueryParam("email")}

	if claims, ok := ctx.Get(constants.ContextTokenData).(*utils.TokenClaims); ok && claims != nil {
		id := claims.UserID
		access.UserID = &id
	}
	if raw := ctx.QueryParam("participant_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			access.ParticipantID = &id
		}
	}
	return access
}

// GetDashboard godoc
// @Summary Aggregated availability dashboard for an event
// @Tags dashboard
// @Produce json
// @Param id path int true "Event ID"
// @Param participant_id query int false "Participant ID (anonymous access)"
// @Param email query string false "Participant email (anonymous access)"
// @Success 200 {object} dto.DashboardResponse
// @Router /events/{id}/dashboard [get]
func (c *DashboardController) GetDashboard(ctx echo.Context) error {
	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid event ID")
	}

	resp, appErr := c.service.GetDashboard(ctx.Request().Context(), eventID, accessQuery(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "success")
}

// RecommendTime godoc
// @Summary Ranked meeting time recommendations for an event
// @Tags dashboard
// @Produce json
// @Param id path int true "Event ID"
// @Param limit query int false "Maximum recommendations (default 5)"
// @Param min_participants query int false "Minimum available participants"
// @Success 200 {object} dto.RecommendationResponse
// @Router /events/{id}/recommend-time [get]
func (c *DashboardController) RecommendTime(ctx echo.Context) error {
	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid event ID")
	}

	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	minParticipants, _ := strconv.Atoi(ctx.QueryParam("min_participants"))

	resp, appErr := c.service.RecommendTimes(ctx.Request().Context(), eventID, accessQuery(ctx), limit, minParticipants)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "success")
}
