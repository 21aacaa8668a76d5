package middleware

import (
	"net/http"
	"strings"

	"github.com/avishai12321/Trackera-sub000/core/cache"
	"github.com/avishai12321/Trackera-sub000/core/constants"
	"github.com/avishai12321/Trackera-sub000/core/controller"
	"github.com/avishai12321/Trackera-sub000/core/errors"
	"github.com/avishai12321/Trackera-sub000/core/logger"
	"github.com/avishai12321/Trackera-sub000/core/params"
	"github.com/avishai12321/Trackera-sub000/core/utils"

	"github.com/labstack/echo/v4"
)

type Middleware struct {
	cache cache.Cache
}

func NewMiddleware(cache cache.Cache) *Middleware {
	return &Middleware{cache: cache}
}

// AuthMiddleware verifies the bearer token and stashes tenant/user identity
// into the request context. Authentication itself happens elsewhere; this
// layer only verifies and extracts.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized,
					controller.NewErrorBody(errors.ErrMissingAuthorizationHeader, "authorization header is required"))
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized,
					controller.NewErrorBody(errors.ErrInvalidTokenFormat, "authorization header must be a bearer token"))
			}
			token := parts[1]

			if m.cache != nil {
				blacklisted, err := m.cache.IsTokenBlacklisted(c.Request().Context(), token)
				if err != nil {
					logger.Error("Middleware:Auth:IsTokenBlacklisted:Error", "error", err)
					return echo.NewHTTPError(http.StatusInternalServerError,
						controller.NewErrorBody(errors.ErrInternalServer, "failed to verify token"))
				}
				if blacklisted {
					return echo.NewHTTPError(http.StatusUnauthorized,
						controller.NewErrorBody(errors.ErrUnauthorized, "token is revoked"))
				}
			}

			claims, err := utils.ValidateAndParseToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized,
					controller.NewErrorBody(errors.ErrUnauthorized, "invalid or expired token"))
			}
			if claims.Scope != constants.ScopeTokenAccess {
				return echo.NewHTTPError(http.StatusUnauthorized,
					controller.NewErrorBody(errors.ErrUnauthorized, "token scope is not valid for API access"))
			}

			c.Set(params.ContextKeyUserID, claims.UserID)
			c.Set(params.ContextKeyTenantID, claims.TenantID)
			return next(c)
		}
	}
}

// RequestIDMiddleware attaches a short request id to the response headers
// and the request context for log correlation.
func (m *Middleware) RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqID := c.Request().Header.Get(echo.HeaderXRequestID)
			if reqID == "" {
				reqID = utils.NewRequestID()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, reqID)
			c.Set("request_id", reqID)
			return next(c)
		}
	}
}
