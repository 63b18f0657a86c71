package middleware

import (
	"github.com/labstack/echo/v4"

	"ourtime-api/core/cache"
	"ourtime-api/core/constants"
	"ourtime-api/core/controller"
	"ourtime-api/core/errors"
	"ourtime-api/core/utils"
)

// Middleware bundles the cross-cutting request middlewares.
type Middleware struct {
	cache *cache.Cache
	base  controller.BaseController
}

func NewMiddleware(c *cache.Cache) *Middleware {
	return &Middleware{
		cache: c,
		base:  controller.NewBaseController(),
	}
}

// AuthMiddleware requires a valid, non-blacklisted access token and stores
// its claims on the request context.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := m.resolveClaims(c)
			if err != nil {
				return err
			}
			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

// OptionalAuthMiddleware attaches claims when a valid token is present and
// otherwise lets the request through anonymously.
func (m *Middleware) OptionalAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if claims, err := m.resolveClaims(c); err == nil {
				c.Set(constants.ContextTokenData, claims)
			}
			return next(c)
		}
	}
}

func (m *Middleware) resolveClaims(c echo.Context) (*utils.TokenClaims, error) {
	token, err := utils.GetTokenFromHeader(c)
	if err != nil {
		return nil, m.base.Unauthorized(errors.ErrMissingAuthorizationHeader, "missing or malformed authorization header")
	}

	if m.cache != nil {
		blacklisted, err := m.cache.IsTokenBlacklisted(c.Request().Context(), token)
		if err == nil && blacklisted {
			return nil, m.base.Unauthorized(errors.ErrUnauthorized, "token is no longer valid")
		}
	}

	claims, err := utils.ValidateAndParseToken(token)
	if err != nil {
		return nil, m.base.Unauthorized(errors.ErrInvalidTokenFormat, "invalid or expired token")
	}
	if claims.Scope != constants.ScopeTokenAccess {
		return nil, m.base.Unauthorized(errors.ErrUnauthorized, "wrong token scope")
	}
	return claims, nil
}
