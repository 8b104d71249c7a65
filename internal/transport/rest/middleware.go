package rest

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"docbook/backend/internal/domain"
	"docbook/backend/internal/service/auth"
)

const (
	ctxUserID   = "user_id"
	ctxUserRole = "user_role"
	ctxToken    = "token"
)

// RequireAuth verifies the bearer token and stashes the caller's identity on
// the request context.
func RequireAuth(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return c.JSON(http.StatusUnauthorized, errorBody("missing bearer token"))
			}

			claims, err := svc.VerifyToken(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorBody("invalid or expired token"))
			}
			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorBody("invalid or expired token"))
			}

			c.Set(ctxUserID, userID)
			c.Set(ctxUserRole, claims.Role)
			c.Set(ctxToken, token)
			return next(c)
		}
	}
}

func currentUserID(c echo.Context) uuid.UUID {
	id, _ := c.Get(ctxUserID).(uuid.UUID)
	return id
}

func currentRole(c echo.Context) domain.Role {
	role, _ := c.Get(ctxUserRole).(domain.Role)
	return role
}

func currentToken(c echo.Context) string {
	token, _ := c.Get(ctxToken).(string)
	return token
}
