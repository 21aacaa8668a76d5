package router

import (
	"github.com/avishai12321/Trackera-sub000/core/middleware"
	"github.com/avishai12321/Trackera-sub000/modules/timesheet/controller"

	"github.com/labstack/echo/v4"
)

// TimesheetRouter registers time entry and suggestion routes.
type TimesheetRouter struct {
	TimesheetController *controller.TimesheetController
}

func NewTimesheetRouter(timesheetController *controller.TimesheetController) *TimesheetRouter {
	return &TimesheetRouter{
		TimesheetController: timesheetController,
	}
}

func (r *TimesheetRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	timeEntryRoutes := v1.Group("/private/time-entries", mw.AuthMiddleware())
	timeEntryRoutes.GET("/suggestions", r.TimesheetController.GetSuggestions)
	timeEntryRoutes.POST("", r.TimesheetController.CreateTimeEntry)
}
