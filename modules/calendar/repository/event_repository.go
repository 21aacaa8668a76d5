package repository

import (
	"context"
	"time"

	"github.com/avishai12321/Trackera-sub000/core/database"
	"github.com/avishai12321/Trackera-sub000/core/logger"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// EventRepository persists locally mirrored calendar events. Upsert keys on
// the composite natural key (tenant, connection, provider, provider event
// id) so replaying a page is idempotent.
type EventRepository interface {
	Upsert(ctx context.Context, ev *entity.CalendarEvent) error
	DeleteByProviderEventID(ctx context.Context, tenantID, connectionID uuid.UUID, providerEventID string) error

	// ListForUserInRange resolves events through a join on the owning
	// connections. ListByConnectionIDsInRange is the join-free fallback;
	// both paths must produce identical results.
	ListForUserInRange(ctx context.Context, tenantID, userID uuid.UUID, from, to time.Time) ([]entity.CalendarEvent, error)
	ListByConnectionIDsInRange(ctx context.Context, tenantID uuid.UUID, connectionIDs []uuid.UUID, from, to time.Time) ([]entity.CalendarEvent, error)
}

type eventRepository struct {
	db database.IDatabase
}

func NewEventRepository(db database.IDatabase) EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `
	id, tenant_id, connection_id, user_id, provider, provider_event_id,
	title, description, start_time, end_time, all_day, location,
	organizer_email, attendees, attendee_count, meeting_link,
	status, visibility, last_synced_at, created_at, updated_at
`

func (r *eventRepository) Upsert(ctx context.Context, ev *entity.CalendarEvent) error {
	query := `
		INSERT INTO calendar_events (
			tenant_id, connection_id, user_id, provider, provider_event_id,
			title, description, start_time, end_time, all_day, location,
			organizer_email, attendees, attendee_count, meeting_link,
			status, visibility, last_synced_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (tenant_id, connection_id, provider, provider_event_id)
		DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			all_day = EXCLUDED.all_day,
			location = EXCLUDED.location,
			organizer_email = EXCLUDED.organizer_email,
			attendees = EXCLUDED.attendees,
			attendee_count = EXCLUDED.attendee_count,
			meeting_link = EXCLUDED.meeting_link,
			status = EXCLUDED.status,
			visibility = EXCLUDED.visibility,
			last_synced_at = EXCLUDED.last_synced_at,
			updated_at = NOW()
	`
	err := r.db.ExecContext(ctx, query,
		ev.TenantID, ev.ConnectionID, ev.UserID, ev.Provider, ev.ProviderEventID,
		ev.Title, ev.Description, ev.StartTime, ev.EndTime, ev.AllDay, ev.Location,
		ev.OrganizerEmail, ev.Attendees, ev.AttendeeCount, ev.MeetingLink,
		ev.Status, ev.Visibility, ev.LastSyncedAt,
	)
	if err != nil {
		logger.Error("EventRepository:Upsert:Error", "error", err,
			"connection_id", ev.ConnectionID, "provider_event_id", ev.ProviderEventID)
		return err
	}
	return nil
}

func (r *eventRepository) DeleteByProviderEventID(ctx context.Context, tenantID, connectionID uuid.UUID, providerEventID string) error {
	query := `
		DELETE FROM calendar_events
		WHERE tenant_id = $1 AND connection_id = $2 AND provider_event_id = $3
	`
	if err := r.db.ExecContext(ctx, query, tenantID, connectionID, providerEventID); err != nil {
		logger.Error("EventRepository:DeleteByProviderEventID:Error", "error", err,
			"connection_id", connectionID, "provider_event_id", providerEventID)
		return err
	}
	return nil
}

func (r *eventRepository) ListForUserInRange(ctx context.Context, tenantID, userID uuid.UUID, from, to time.Time) ([]entity.CalendarEvent, error) {
	var events []entity.CalendarEvent
	query := `
		SELECT ` + prefixedEventColumns("ce") + `
		FROM calendar_events ce
		JOIN calendar_connections cc ON cc.id = ce.connection_id
		WHERE ce.tenant_id = $1
		  AND cc.user_id = $2
		  AND ce.start_time >= $3
		  AND ce.start_time <= $4
	`
	if err := r.db.SelectContext(ctx, &events, query, tenantID, userID, from, to); err != nil {
		logger.Error("EventRepository:ListForUserInRange:Error", "error", err, "user_id", userID)
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) ListByConnectionIDsInRange(ctx context.Context, tenantID uuid.UUID, connectionIDs []uuid.UUID, from, to time.Time) ([]entity.CalendarEvent, error) {
	if len(connectionIDs) == 0 {
		return []entity.CalendarEvent{}, nil
	}

	ids := make([]string, len(connectionIDs))
	for i, id := range connectionIDs {
		ids[i] = id.String()
	}

	var events []entity.CalendarEvent
	query := `
		SELECT ` + eventColumns + `
		FROM calendar_events
		WHERE tenant_id = $1
		  AND connection_id = ANY($2::uuid[])
		  AND start_time >= $3
		  AND start_time <= $4
	`
	if err := r.db.SelectContext(ctx, &events, query, tenantID, pq.Array(ids), from, to); err != nil {
		logger.Error("EventRepository:ListByConnectionIDsInRange:Error", "error", err)
		return nil, err
	}
	return events, nil
}

func prefixedEventColumns(alias string) string {
	return alias + `.id, ` + alias + `.tenant_id, ` + alias + `.connection_id, ` + alias + `.user_id, ` +
		alias + `.provider, ` + alias + `.provider_event_id, ` + alias + `.title, ` + alias + `.description, ` +
		alias + `.start_time, ` + alias + `.end_time, ` + alias + `.all_day, ` + alias + `.location, ` +
		alias + `.organizer_email, ` + alias + `.attendees, ` + alias + `.attendee_count, ` + alias + `.meeting_link, ` +
		alias + `.status, ` + alias + `.visibility, ` + alias + `.last_synced_at, ` + alias + `.created_at, ` + alias + `.updated_at`
}
