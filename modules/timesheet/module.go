package timesheet

import (
	"github.com/avishai12321/Trackera-sub000/core/crypto"
	"github.com/avishai12321/Trackera-sub000/core/database"
	"github.com/avishai12321/Trackera-sub000/core/middleware"
	calendarRepo "github.com/avishai12321/Trackera-sub000/modules/calendar/repository"
	"github.com/avishai12321/Trackera-sub000/modules/timesheet/controller"
	"github.com/avishai12321/Trackera-sub000/modules/timesheet/repository"
	"github.com/avishai12321/Trackera-sub000/modules/timesheet/router"
	"github.com/avishai12321/Trackera-sub000/modules/timesheet/service"

	"github.com/labstack/echo/v4"
)

// Init wires the timesheet module and registers its routes. It returns the
// employee service so the calendar module can auto-provision profiles
// during the OAuth callback.
func Init(e *echo.Echo, db database.IDatabase, enc *crypto.Encryptor, mw *middleware.Middleware) service.EmployeeService {
	employeeRepo := repository.NewEmployeeRepository(db)
	timeEntryRepo := repository.NewTimeEntryRepository(db)
	connRepo := calendarRepo.NewConnectionRepository(db, enc)
	eventRepo := calendarRepo.NewEventRepository(db)

	employeeSvc := service.NewEmployeeService(employeeRepo)
	suggestionSvc := service.NewSuggestionService(connRepo, eventRepo, timeEntryRepo, employeeSvc)
	timeEntrySvc := service.NewTimeEntryService(timeEntryRepo, employeeSvc)

	ctrl := controller.NewTimesheetController(suggestionSvc, timeEntrySvc)
	rtr := router.NewTimesheetRouter(ctrl)

	rtr.Setup(e, mw)
	return employeeSvc
}
