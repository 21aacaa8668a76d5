package service

import (
	"context"
	"time"

	"github.com/avishai12321/Trackera-sub000/core/errors"
	"github.com/avishai12321/Trackera-sub000/core/logger"
	"github.com/avishai12321/Trackera-sub000/modules/timesheet/dto"
	"github.com/avishai12321/Trackera-sub000/modules/timesheet/entity"
	"github.com/avishai12321/Trackera-sub000/modules/timesheet/repository"

	"github.com/google/uuid"
)

type TimeEntryService interface {
	// Create logs a time entry. When the request carries a calendar event
	// id the entry counts as a converted suggestion and the event stops
	// appearing in suggestion listings.
	Create(ctx context.Context, tenantID, userID uuid.UUID, req *dto.CreateTimeEntryRequest) (*dto.TimeEntryResponse, error)
}

type timeEntryService struct {
	repo        repository.TimeEntryRepository
	employeeSvc EmployeeService
}

func NewTimeEntryService(repo repository.TimeEntryRepository, employeeSvc EmployeeService) TimeEntryService {
	return &timeEntryService{repo: repo, employeeSvc: employeeSvc}
}

func (s *timeEntryService) Create(ctx context.Context, tenantID, userID uuid.UUID, req *dto.CreateTimeEntryRequest) (*dto.TimeEntryResponse, error) {
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "start_time must be RFC3339", err)
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "end_time must be RFC3339", err)
	}
	if !end.After(start) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "end_time must be after start_time", nil)
	}

	emp, err := s.employeeSvc.EnsureEmployee(ctx, tenantID, userID, "", "", "")
	if err != nil {
		return nil, err
	}

	te := &entity.TimeEntry{
		TenantID:        tenantID,
		EmployeeID:      emp.ID,
		Description:     req.Description,
		StartTime:       start,
		EndTime:         end,
		DurationMinutes: DurationMinutes(start, end),
	}
	if req.CalendarEventID != "" {
		te.CalendarEventID = &req.CalendarEventID
	}

	created, err := s.repo.Create(ctx, te)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to create time entry", err)
	}

	logger.Info("TimeEntryService:Create:Success",
		"tenant_id", tenantID, "employee_id", emp.ID, "time_entry_id", created.ID,
		"converted_from_event", req.CalendarEventID != "")

	return &dto.TimeEntryResponse{
		ID:              created.ID.String(),
		Description:     created.Description,
		StartTime:       created.StartTime.Format(time.RFC3339),
		EndTime:         created.EndTime.Format(time.RFC3339),
		DurationMinutes: created.DurationMinutes,
		CalendarEventID: created.CalendarEventID,
	}, nil
}
