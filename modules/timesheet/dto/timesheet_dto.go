package dto

// ========== Suggestion DTOs ==========

// AttendeeResponse is one participant on a suggested meeting.
type AttendeeResponse struct {
	Email          string `json:"email"`
	DisplayName    string `json:"display_name,omitempty"`
	ResponseStatus string `json:"response_status,omitempty"`
	Organizer      bool   `json:"organizer,omitempty"`
	Self           bool   `json:"self,omitempty"`
	Optional       bool   `json:"optional,omitempty"`
}

// Suggestion is a calendar event not yet converted into a time entry. It is
// a read-only projection; nothing is persisted.
type Suggestion struct {
	ProviderEventID string             `json:"provider_event_id"`
	Provider        string             `json:"provider"`
	Title           string             `json:"title"`
	Description     string             `json:"description,omitempty"`
	StartTime       string             `json:"start_time"`
	EndTime         string             `json:"end_time"`
	DurationMinutes int                `json:"duration_minutes"`
	AllDay          bool               `json:"all_day"`
	Location        string             `json:"location,omitempty"`
	OrganizerEmail  string             `json:"organizer_email,omitempty"`
	Attendees       []AttendeeResponse `json:"attendees,omitempty"`
	AttendeeCount   int                `json:"attendee_count"`
	MeetingLink     string             `json:"meeting_link,omitempty"`
}

type SuggestionListResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// ========== Time entry DTOs ==========

// CreateTimeEntryRequest converts a suggestion (or logs a manual entry when
// calendar_event_id is empty).
type CreateTimeEntryRequest struct {
	Description     string `json:"description"`
	StartTime       string `json:"start_time" validate:"required"` // RFC3339
	EndTime         string `json:"end_time" validate:"required"`   // RFC3339
	CalendarEventID string `json:"calendar_event_id,omitempty"`
}

type TimeEntryResponse struct {
	ID              string  `json:"id"`
	Description     string  `json:"description"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	DurationMinutes int     `json:"duration_minutes"`
	CalendarEventID *string `json:"calendar_event_id,omitempty"`
}
