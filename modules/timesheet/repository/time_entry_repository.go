package repository

import (
	"context"
	"time"

	"github.com/avishai12321/Trackera-sub000/core/database"
	"github.com/avishai12321/Trackera-sub000/core/logger"
	"github.com/avishai12321/Trackera-sub000/modules/timesheet/entity"

	"github.com/google/uuid"
)

type TimeEntryRepository interface {
	Create(ctx context.Context, te *entity.TimeEntry) (*entity.TimeEntry, error)

	// ListConvertedEventIDs returns the provider event ids of every time
	// entry in range that was converted from a calendar event.
	ListConvertedEventIDs(ctx context.Context, tenantID, employeeID uuid.UUID, from, to time.Time) ([]string, error)
}

type timeEntryRepository struct {
	db database.IDatabase
}

func NewTimeEntryRepository(db database.IDatabase) TimeEntryRepository {
	return &timeEntryRepository{db: db}
}

func (r *timeEntryRepository) Create(ctx context.Context, te *entity.TimeEntry) (*entity.TimeEntry, error) {
	query := `
		INSERT INTO time_entries (
			tenant_id, employee_id, description, start_time, end_time,
			duration_minutes, calendar_event_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		te.TenantID, te.EmployeeID, te.Description, te.StartTime, te.EndTime,
		te.DurationMinutes, te.CalendarEventID,
	).Scan(&te.ID, &te.CreatedAt, &te.UpdatedAt)
	if err != nil {
		logger.Error("TimeEntryRepository:Create:Error", "error", err, "employee_id", te.EmployeeID)
		return nil, err
	}
	return te, nil
}

func (r *timeEntryRepository) ListConvertedEventIDs(ctx context.Context, tenantID, employeeID uuid.UUID, from, to time.Time) ([]string, error) {
	var ids []string
	query := `
		SELECT calendar_event_id
		FROM time_entries
		WHERE tenant_id = $1
		  AND employee_id = $2
		  AND calendar_event_id IS NOT NULL
		  AND start_time >= $3
		  AND start_time <= $4
	`
	if err := r.db.SelectContext(ctx, &ids, query, tenantID, employeeID, from, to); err != nil {
		logger.Error("TimeEntryRepository:ListConvertedEventIDs:Error", "error", err, "employee_id", employeeID)
		return nil, err
	}
	return ids, nil
}
