package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"ourtime-api/core/constants"
	"ourtime-api/core/controller"
	"ourtime-api/core/errors"
	"ourtime-api/core/utils"
	"ourtime-api/modules/auth/dto"
	"ourtime-api/modules/auth/service"
)

type AuthController struct {
	controller.BaseController
	service service.AuthServiceInterface
}

func NewAuthController(svc service.AuthServiceInterface) *AuthController {
	return &AuthController{
		BaseController: controller.NewBaseController(),
		service:        svc,
	}
}

// Register godoc
// @Summary Register a new organizer account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Account info"
// @Success 201 {object} dto.TokenPairResponse
// @Router /auth/register [post]
func (c *AuthController) Register(ctx echo.Context) error {
	var req dto.RegisterRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid request body")
	}

	resp, appErr := c.service.Register(ctx.Request().Context(), &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.CreatedResponse(ctx, resp, "account created")
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.TokenPairResponse
// @Router /auth/login [post]
func (c *AuthController) Login(ctx echo.Context) error {
	var req dto.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid request body")
	}

	resp, appErr := c.service.Login(ctx.Request().Context(), &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "login successful")
}

// Logout godoc
// @Summary Log out (blacklist the presented token)
// @Tags auth
// @Produce json
// @Success 204
// @Security BearerAuth
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx echo.Context) error {
	token, err := utils.GetTokenFromHeader(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrMissingAuthorizationHeader, "missing bearer token")
	}

	if appErr := c.service.Logout(ctx.Request().Context(), token); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Refresh godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Produce json
// @Success 200 {object} dto.TokenPairResponse
// @Security BearerAuth
// @Router /auth/refresh [post]
func (c *AuthController) Refresh(ctx echo.Context) error {
	token, err := utils.GetTokenFromHeader(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrMissingAuthorizationHeader, "missing bearer token")
	}

	resp, appErr := c.service.RefreshToken(ctx.Request().Context(), token)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "token refreshed")
}

// GetMe godoc
// @Summary Current account profile
// @Tags auth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (c *AuthController) GetMe(ctx echo.Context) error {
	claims, ok := ctx.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok || claims == nil {
		return c.Unauthorized(errors.ErrUnauthorized, "authentication required")
	}

	resp, appErr := c.service.GetMe(ctx.Request().Context(), claims.UserID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "success")
}
