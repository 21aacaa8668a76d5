package entity

import (
	"time"

	"github.com/avishai12321/Trackera-sub000/core/entity"

	"github.com/google/uuid"
)

// TimeEntry is one logged block of work. CalendarEventID carries the
// provider event id of the meeting this entry was converted from; nil for
// entries logged by hand.
type TimeEntry struct {
	entity.BaseEntity
	TenantID        uuid.UUID `db:"tenant_id" json:"tenant_id"`
	EmployeeID      uuid.UUID `db:"employee_id" json:"employee_id"`
	Description     string    `db:"description" json:"description"`
	StartTime       time.Time `db:"start_time" json:"start_time"`
	EndTime         time.Time `db:"end_time" json:"end_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	CalendarEventID *string   `db:"calendar_event_id" json:"calendar_event_id"`
}

func (TimeEntry) TableName() string {
	return "time_entries"
}
