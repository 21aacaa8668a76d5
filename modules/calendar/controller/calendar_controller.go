package controller

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/avishai12321/Trackera-sub000/core/cache"
	"github.com/avishai12321/Trackera-sub000/core/config"
	"github.com/avishai12321/Trackera-sub000/core/constants"
	"github.com/avishai12321/Trackera-sub000/core/controller"
	"github.com/avishai12321/Trackera-sub000/core/errors"
	"github.com/avishai12321/Trackera-sub000/core/logger"
	"github.com/avishai12321/Trackera-sub000/core/params"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/dto"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/entity"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CalendarController handles connection management, the OAuth redirect
// round trip, manual sync and provider push notifications.
type CalendarController struct {
	controller.BaseController
	OAuthService      service.OAuthService
	SyncService       service.SyncService
	ConnectionService service.ConnectionService
	Cache             cache.Cache
}

func NewCalendarController(
	oauthSvc service.OAuthService,
	syncSvc service.SyncService,
	connSvc service.ConnectionService,
	c cache.Cache,
) *CalendarController {
	return &CalendarController{
		BaseController:    controller.NewBaseController(),
		OAuthService:      oauthSvc,
		SyncService:       syncSvc,
		ConnectionService: connSvc,
		Cache:             c,
	}
}

// ListConnections handles GET /private/calendar/connections
func (c *CalendarController) ListConnections(ctx echo.Context) error {
	tenantID, userID, err := identity(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "user not authenticated")
	}

	result, err := c.ConnectionService.ListConnections(ctx.Request().Context(), tenantID, userID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, result, "success")
}

// Connect handles GET /private/calendar/connect/:provider and returns the
// provider authorization URL for the frontend to redirect to.
func (c *CalendarController) Connect(ctx echo.Context) error {
	tenantID, userID, err := identity(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "user not authenticated")
	}

	providerName := ctx.Param("provider")
	if !entity.IsKnownProvider(providerName) {
		return c.BadRequest(errors.ErrInvalidInput, "unknown provider: "+providerName)
	}

	result, err := c.OAuthService.BuildAuthorizationURL(ctx.Request().Context(), tenantID, userID, providerName)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, result, "success")
}

// Callback handles GET /public/calendar/callback/:provider. The provider
// redirects the browser here; the outcome is reported back to the frontend
// via redirect, never as a JSON body.
func (c *CalendarController) Callback(ctx echo.Context) error {
	providerName := ctx.Param("provider")
	state := ctx.QueryParam("state")
	code := ctx.QueryParam("code")

	if denied := ctx.QueryParam("error"); denied != "" {
		logger.Warn("CalendarController:Callback:ProviderError", "provider", providerName, "error", denied)
		return c.redirectToFrontend(ctx, "error")
	}
	if state == "" || code == "" {
		return c.redirectToFrontend(ctx, "error")
	}

	conn, err := c.OAuthService.HandleCallback(ctx.Request().Context(), providerName, state, code)
	if err != nil {
		logger.Error("CalendarController:Callback:Error", "provider", providerName, "error", err)
		return c.redirectToFrontend(ctx, "error")
	}

	// First sync runs inline so events are visible when the frontend lands.
	// The connection is brand new here, so the advisory lock is skipped and
	// a sync failure does not fail the connect itself.
	if _, err := c.SyncService.Sync(ctx.Request().Context(), conn.TenantID, conn.ID); err != nil {
		logger.Warn("CalendarController:Callback:InitialSync:Error", "connection_id", conn.ID, "error", err)
	}
	return c.redirectToFrontend(ctx, "success")
}

// Sync handles POST /private/calendar/sync/:connectionId. A per-connection
// advisory lock is held for the duration of the run; a concurrent caller
// gets a conflict instead of a second drain.
func (c *CalendarController) Sync(ctx echo.Context) error {
	tenantID, _, err := identity(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "user not authenticated")
	}

	connectionID, err := uuid.Parse(ctx.Param("connectionId"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid connection id")
	}

	reqCtx := ctx.Request().Context()
	acquired, err := c.Cache.AcquireSyncLock(reqCtx, connectionID.String(), constants.SyncLockTTL)
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInternalServer, "failed to acquire sync lock", err))
	}
	if !acquired {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrSyncInProgress, "a sync for this connection is already running", nil))
	}
	defer func() {
		if err := c.Cache.ReleaseSyncLock(reqCtx, connectionID.String()); err != nil {
			logger.Warn("CalendarController:Sync:ReleaseLock:Error", "connection_id", connectionID, "error", err)
		}
	}()

	result, err := c.SyncService.Sync(reqCtx, tenantID, connectionID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, result, "sync complete")
}

// Disconnect handles DELETE /private/calendar/connections/:connectionId
func (c *CalendarController) Disconnect(ctx echo.Context) error {
	tenantID, _, err := identity(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "user not authenticated")
	}

	connectionID, err := uuid.Parse(ctx.Param("connectionId"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid connection id")
	}

	if err := c.ConnectionService.Disconnect(ctx.Request().Context(), tenantID, connectionID); err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, nil, "connection revoked")
}

// Webhook handles POST /public/calendar/webhook/:provider. Push
// notifications are best effort: the provider retries on non-2xx, so the
// handler always acknowledges and treats sync failures as log-only.
func (c *CalendarController) Webhook(ctx echo.Context) error {
	providerName := ctx.Param("provider")

	// Google sends a one-time "sync" ping when the channel is created.
	if ctx.Request().Header.Get(dto.GoogleHeaderResourceState) == dto.GoogleResourceStateSync {
		return ctx.NoContent(http.StatusOK)
	}

	channelToken := ctx.Request().Header.Get(dto.GoogleHeaderChannelToken)
	tenantID, connectionID, err := decodeChannelToken(channelToken)
	if err != nil {
		logger.Warn("CalendarController:Webhook:BadChannelToken", "provider", providerName, "error", err)
		return ctx.NoContent(http.StatusOK)
	}

	reqCtx := ctx.Request().Context()
	acquired, err := c.Cache.AcquireSyncLock(reqCtx, connectionID.String(), constants.SyncLockTTL)
	if err != nil || !acquired {
		// A running sync will pick the change up through its cursor.
		return ctx.NoContent(http.StatusOK)
	}
	defer func() {
		if err := c.Cache.ReleaseSyncLock(reqCtx, connectionID.String()); err != nil {
			logger.Warn("CalendarController:Webhook:ReleaseLock:Error", "connection_id", connectionID, "error", err)
		}
	}()

	if _, err := c.SyncService.Sync(reqCtx, tenantID, connectionID); err != nil {
		logger.Error("CalendarController:Webhook:Sync:Error", "connection_id", connectionID, "error", err)
	}
	return ctx.NoContent(http.StatusOK)
}

func (c *CalendarController) redirectToFrontend(ctx echo.Context, status string) error {
	base := config.Get().App.FrontendURL
	q := url.Values{"status": {status}}
	return ctx.Redirect(http.StatusFound, base+"/settings/calendar?"+q.Encode())
}

func identity(ctx echo.Context) (tenantID, userID uuid.UUID, err error) {
	tenantID, err = params.GetTenantID(ctx)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	userID, err = params.GetUserID(ctx)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return tenantID, userID, nil
}

// decodeChannelToken reverses the token set at channel registration time:
// base64(JSON) of the owning tenant and connection ids.
func decodeChannelToken(token string) (tenantID, connectionID uuid.UUID, err error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	var decoded struct {
		TenantID     string `json:"tenant_id"`
		ConnectionID string `json:"connection_id"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	tenantID, err = uuid.Parse(decoded.TenantID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	connectionID, err = uuid.Parse(decoded.ConnectionID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return tenantID, connectionID, nil
}
