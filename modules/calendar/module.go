package calendar

import (
	"github.com/avishai12321/Trackera-sub000/core/cache"
	"github.com/avishai12321/Trackera-sub000/core/crypto"
	"github.com/avishai12321/Trackera-sub000/core/database"
	"github.com/avishai12321/Trackera-sub000/core/middleware"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/controller"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/provider"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/repository"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/router"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/service"
	timesheetService "github.com/avishai12321/Trackera-sub000/modules/timesheet/service"

	"github.com/labstack/echo/v4"
)

// Init wires the calendar module and registers its routes.
func Init(
	e *echo.Echo,
	db database.IDatabase,
	c cache.Cache,
	enc *crypto.Encryptor,
	registry provider.Registry,
	employeeSvc timesheetService.EmployeeService,
	mw *middleware.Middleware,
) {
	connRepo := repository.NewConnectionRepository(db, enc)
	eventRepo := repository.NewEventRepository(db)

	reconciler := service.NewReconciler(eventRepo)
	syncSvc := service.NewSyncService(connRepo, reconciler, registry)
	oauthSvc := service.NewOAuthService(connRepo, registry, employeeSvc)
	connSvc := service.NewConnectionService(connRepo)

	ctrl := controller.NewCalendarController(oauthSvc, syncSvc, connSvc, c)
	rtr := router.NewCalendarRouter(ctrl)

	rtr.Setup(e, mw)
}
