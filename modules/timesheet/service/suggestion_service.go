package service

import (
	"context"
	"math"
	"time"

	calendarEntity "github.com/avishai12321/Trackera-sub000/modules/calendar/entity"
	calendarRepo "github.com/avishai12321/Trackera-sub000/modules/calendar/repository"
	"github.com/avishai12321/Trackera-sub000/core/errors"
	"github.com/avishai12321/Trackera-sub000/core/logger"
	"github.com/avishai12321/Trackera-sub000/modules/timesheet/dto"
	"github.com/avishai12321/Trackera-sub000/modules/timesheet/repository"

	"github.com/google/uuid"
)

// SuggestionService computes the calendar events in a range a user has not
// yet converted into time entries.
type SuggestionService interface {
	GetSuggestions(ctx context.Context, tenantID, userID uuid.UUID, from, to time.Time) ([]dto.Suggestion, error)
}

type suggestionService struct {
	connRepo      calendarRepo.ConnectionRepository
	eventRepo     calendarRepo.EventRepository
	timeEntryRepo repository.TimeEntryRepository
	employeeSvc   EmployeeService
}

func NewSuggestionService(
	connRepo calendarRepo.ConnectionRepository,
	eventRepo calendarRepo.EventRepository,
	timeEntryRepo repository.TimeEntryRepository,
	employeeSvc EmployeeService,
) SuggestionService {
	return &suggestionService{
		connRepo:      connRepo,
		eventRepo:     eventRepo,
		timeEntryRepo: timeEntryRepo,
		employeeSvc:   employeeSvc,
	}
}

func (s *suggestionService) GetSuggestions(ctx context.Context, tenantID, userID uuid.UUID, from, to time.Time) ([]dto.Suggestion, error) {
	events, err := s.fetchEventsInRange(ctx, tenantID, userID, from, to)
	if err != nil {
		return nil, err
	}

	// The employee profile is auto-provisioned on first use so the
	// conversion lookup below always has an owner to key on.
	emp, err := s.employeeSvc.EnsureEmployee(ctx, tenantID, userID, "", "", "")
	if err != nil {
		return nil, err
	}

	convertedIDs, err := s.timeEntryRepo.ListConvertedEventIDs(ctx, tenantID, emp.ID, from, to)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load converted time entries", err)
	}
	converted := make(map[string]struct{}, len(convertedIDs))
	for _, id := range convertedIDs {
		converted[id] = struct{}{}
	}

	suggestions := make([]dto.Suggestion, 0, len(events))
	for _, ev := range events {
		if _, done := converted[ev.ProviderEventID]; done {
			continue
		}
		suggestions = append(suggestions, toSuggestion(ev))
	}
	return suggestions, nil
}

// fetchEventsInRange prefers the join query and falls back to resolving the
// user's connection ids first. Both paths produce identical results.
func (s *suggestionService) fetchEventsInRange(ctx context.Context, tenantID, userID uuid.UUID, from, to time.Time) ([]calendarEntity.CalendarEvent, error) {
	events, err := s.eventRepo.ListForUserInRange(ctx, tenantID, userID, from, to)
	if err == nil {
		return events, nil
	}
	logger.Warn("SuggestionService:FetchEvents:JoinPathFailed", "error", err, "user_id", userID)

	connections, err := s.connRepo.ListByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load calendar connections", err)
	}
	connectionIDs := make([]uuid.UUID, 0, len(connections))
	for _, conn := range connections {
		connectionIDs = append(connectionIDs, conn.ID)
	}

	events, err = s.eventRepo.ListByConnectionIDsInRange(ctx, tenantID, connectionIDs, from, to)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load calendar events", err)
	}
	return events, nil
}

func toSuggestion(ev calendarEntity.CalendarEvent) dto.Suggestion {
	attendees := make([]dto.AttendeeResponse, 0, len(ev.Attendees))
	for _, a := range ev.Attendees {
		attendees = append(attendees, dto.AttendeeResponse{
			Email:          a.Email,
			DisplayName:    a.DisplayName,
			ResponseStatus: a.ResponseStatus,
			Organizer:      a.Organizer,
			Self:           a.Self,
			Optional:       a.Optional,
		})
	}

	return dto.Suggestion{
		ProviderEventID: ev.ProviderEventID,
		Provider:        ev.Provider,
		Title:           ev.Title,
		Description:     ev.Description,
		StartTime:       ev.StartTime.Format(time.RFC3339),
		EndTime:         ev.EndTime.Format(time.RFC3339),
		DurationMinutes: DurationMinutes(ev.StartTime, ev.EndTime),
		AllDay:          ev.AllDay,
		Location:        ev.Location,
		OrganizerEmail:  ev.OrganizerEmail,
		Attendees:       attendees,
		AttendeeCount:   ev.AttendeeCount,
		MeetingLink:     ev.MeetingLink,
	}
}

// DurationMinutes rounds the event length to whole minutes.
func DurationMinutes(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}
