package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avishai12321/Trackera-sub000/core/entity"

	"github.com/google/uuid"
)

// Event statuses as reported by the provider.
const (
	EventStatusConfirmed = "confirmed"
	EventStatusTentative = "tentative"
	EventStatusCancelled = "cancelled"
)

// Attendee is one participant on a calendar event.
type Attendee struct {
	Email          string `json:"email"`
	DisplayName    string `json:"display_name,omitempty"`
	ResponseStatus string `json:"response_status,omitempty"`
	Organizer      bool   `json:"organizer,omitempty"`
	Self           bool   `json:"self,omitempty"`
	Optional       bool   `json:"optional,omitempty"`
}

// AttendeeList is stored as a jsonb column.
type AttendeeList []Attendee

func (a AttendeeList) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *AttendeeList) Scan(src any) error {
	if src == nil {
		*a = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported attendee list source type %T", src)
	}
	return json.Unmarshal(raw, a)
}

// CalendarEvent is the locally stored copy of one provider event. The
// composite key (tenant_id, connection_id, provider, provider_event_id) is
// the only uniqueness constraint reconciliation relies on.
type CalendarEvent struct {
	entity.BaseEntity
	TenantID        uuid.UUID    `db:"tenant_id" json:"tenant_id"`
	ConnectionID    uuid.UUID    `db:"connection_id" json:"connection_id"`
	UserID          uuid.UUID    `db:"user_id" json:"user_id"`
	Provider        string       `db:"provider" json:"provider"`
	ProviderEventID string       `db:"provider_event_id" json:"provider_event_id"`
	Title           string       `db:"title" json:"title"`
	Description     string       `db:"description" json:"description"`
	StartTime       time.Time    `db:"start_time" json:"start_time"`
	EndTime         time.Time    `db:"end_time" json:"end_time"`
	AllDay          bool         `db:"all_day" json:"all_day"`
	Location        string       `db:"location" json:"location"`
	OrganizerEmail  string       `db:"organizer_email" json:"organizer_email"`
	Attendees       AttendeeList `db:"attendees" json:"attendees"`
	AttendeeCount   int          `db:"attendee_count" json:"attendee_count"`
	MeetingLink     string       `db:"meeting_link" json:"meeting_link"`
	Status          string       `db:"status" json:"status"`
	Visibility      string       `db:"visibility" json:"visibility"`
	LastSyncedAt    time.Time    `db:"last_synced_at" json:"last_synced_at"`
}

func (CalendarEvent) TableName() string {
	return "calendar_events"
}
