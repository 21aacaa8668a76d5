package controller

import (
	"time"

	"github.com/avishai12321/Trackera-sub000/core/controller"
	"github.com/avishai12321/Trackera-sub000/core/errors"
	"github.com/avishai12321/Trackera-sub000/core/params"
	"github.com/avishai12321/Trackera-sub000/modules/timesheet/dto"
	"github.com/avishai12321/Trackera-sub000/modules/timesheet/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TimesheetController serves suggestion listings and time entry creation.
type TimesheetController struct {
	controller.BaseController
	SuggestionService service.SuggestionService
	TimeEntryService  service.TimeEntryService
}

func NewTimesheetController(suggestionSvc service.SuggestionService, timeEntrySvc service.TimeEntryService) *TimesheetController {
	return &TimesheetController{
		BaseController:    controller.NewBaseController(),
		SuggestionService: suggestionSvc,
		TimeEntryService:  timeEntrySvc,
	}
}

// GetSuggestions handles GET /private/time-entries/suggestions
func (c *TimesheetController) GetSuggestions(ctx echo.Context) error {
	tenantID, userID, err := identity(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "user not authenticated")
	}

	from, to, err := parseRange(ctx.QueryParam("start_date"), ctx.QueryParam("end_date"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, err.Error())
	}

	suggestions, err := c.SuggestionService.GetSuggestions(ctx.Request().Context(), tenantID, userID, from, to)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, &dto.SuggestionListResponse{Suggestions: suggestions}, "success")
}

// CreateTimeEntry handles POST /private/time-entries
func (c *TimesheetController) CreateTimeEntry(ctx echo.Context) error {
	tenantID, userID, err := identity(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "user not authenticated")
	}

	var req dto.CreateTimeEntryRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid request body")
	}
	if req.StartTime == "" || req.EndTime == "" {
		return c.BadRequest(errors.ErrInvalidInput, "start_time and end_time are required")
	}

	result, err := c.TimeEntryService.Create(ctx.Request().Context(), tenantID, userID, &req)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, result, "time entry created")
}

// parseRange accepts date-only bounds and widens them to whole days: the
// range runs from the start of from-day to the end of to-day, UTC. Missing
// bounds default to the last seven days.
func parseRange(fromRaw, toRaw string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -7).Truncate(24 * time.Hour)
	to := now

	if fromRaw != "" {
		parsed, err := time.Parse("2006-01-02", fromRaw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "start_date must be YYYY-MM-DD", err)
		}
		from = parsed
	}
	if toRaw != "" {
		parsed, err := time.Parse("2006-01-02", toRaw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "end_date must be YYYY-MM-DD", err)
		}
		to = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "end_date must not precede start_date", nil)
	}
	return from, to, nil
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
