package params

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context keys set by the auth middleware.
const (
	ContextKeyUserID   = "user_id"
	ContextKeyTenantID = "tenant_id"
)

func GetUserID(c echo.Context) (uuid.UUID, error) {
	id, ok := c.Get(ContextKeyUserID).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("user id missing from request context")
	}
	return id, nil
}

func GetTenantID(c echo.Context) (uuid.UUID, error) {
	id, ok := c.Get(ContextKeyTenantID).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("tenant id missing from request context")
	}
	return id, nil
}
