package router

import (
	"github.com/avishai12321/Trackera-sub000/core/middleware"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/controller"

	"github.com/labstack/echo/v4"
)

// CalendarRouter registers calendar sync routes.
type CalendarRouter struct {
	CalendarController *controller.CalendarController
}

func NewCalendarRouter(calendarController *controller.CalendarController) *CalendarRouter {
	return &CalendarRouter{
		CalendarController: calendarController,
	}
}

func (r *CalendarRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	// Provider-facing endpoints carry their own identity (OAuth state,
	// channel token) and cannot present a bearer token.
	publicRoutes := v1.Group("/public/calendar")
	publicRoutes.GET("/callback/:provider", r.CalendarController.Callback)
	publicRoutes.POST("/webhook/:provider", r.CalendarController.Webhook)

	privateRoutes := v1.Group("/private/calendar", mw.AuthMiddleware())
	privateRoutes.GET("/connections", r.CalendarController.ListConnections)
	privateRoutes.DELETE("/connections/:connectionId", r.CalendarController.Disconnect)
	privateRoutes.GET("/connect/:provider", r.CalendarController.Connect)
	privateRoutes.POST("/sync/:connectionId", r.CalendarController.Sync)
}
