package service

import (
	"context"
	"time"

	"github.com/avishai12321/Trackera-sub000/core/errors"
	"github.com/avishai12321/Trackera-sub000/core/logger"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/entity"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/provider"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/repository"

	"github.com/google/uuid"
)

// ApplyResult classifies what one reconciliation did.
type ApplyResult int

const (
	ApplyUpserted ApplyResult = iota
	ApplyDeleted
	ApplySkipped
)

// Reconciler applies one provider event to local storage: cancellations
// delete, everything else upserts on the composite natural key. Malformed
// events (no usable start or end) are skipped with a warning; storage
// failures are fatal to the surrounding sync run.
type Reconciler interface {
	Apply(ctx context.Context, conn *entity.CalendarConnection, ev provider.Event) (ApplyResult, error)
}

type reconciler struct {
	eventRepo repository.EventRepository
}

func NewReconciler(eventRepo repository.EventRepository) Reconciler {
	return &reconciler{eventRepo: eventRepo}
}

func (r *reconciler) Apply(ctx context.Context, conn *entity.CalendarConnection, ev provider.Event) (ApplyResult, error) {
	if ev.Status == entity.EventStatusCancelled {
		if err := r.eventRepo.DeleteByProviderEventID(ctx, conn.TenantID, conn.ID, ev.ProviderEventID); err != nil {
			return ApplySkipped, errors.NewAppError(errors.ErrInternalServer, "failed to delete cancelled event", err)
		}
		return ApplyDeleted, nil
	}

	// Partial provider payloads are expected; skipping keeps the batch alive.
	if ev.ProviderEventID == "" || ev.Start.IsZero() || ev.End.IsZero() {
		logger.Warn("Reconciler:Apply:MalformedEventSkipped",
			"connection_id", conn.ID, "provider_event_id", ev.ProviderEventID,
			"has_start", !ev.Start.IsZero(), "has_end", !ev.End.IsZero())
		return ApplySkipped, nil
	}

	record := r.normalize(conn.TenantID, conn.ID, conn.UserID, conn.Provider, ev)
	if err := r.eventRepo.Upsert(ctx, record); err != nil {
		return ApplySkipped, errors.NewAppError(errors.ErrInternalServer, "failed to upsert calendar event", err)
	}
	return ApplyUpserted, nil
}

func (r *reconciler) normalize(tenantID, connectionID, userID uuid.UUID, providerName string, ev provider.Event) *entity.CalendarEvent {
	status := ev.Status
	if status == "" {
		status = entity.EventStatusConfirmed
	}

	return &entity.CalendarEvent{
		TenantID:        tenantID,
		ConnectionID:    connectionID,
		UserID:          userID,
		Provider:        providerName,
		ProviderEventID: ev.ProviderEventID,
		Title:           ev.Title,
		Description:     ev.Description,
		StartTime:       ev.Start,
		EndTime:         ev.End,
		AllDay:          !ev.StartHasTime,
		Location:        ev.Location,
		OrganizerEmail:  ev.OrganizerEmail,
		Attendees:       entity.AttendeeList(ev.Attendees),
		AttendeeCount:   len(ev.Attendees),
		MeetingLink:     resolveMeetingLink(ev),
		Status:          status,
		Visibility:      ev.Visibility,
		LastSyncedAt:    time.Now().UTC(),
	}
}

// resolveMeetingLink prefers the provider's direct meeting-link field and
// falls back to the first video entry point in structured conference data.
func resolveMeetingLink(ev provider.Event) string {
	if ev.MeetingLink != "" {
		return ev.MeetingLink
	}
	for _, ep := range ev.ConferenceEntryPoints {
		if ep.Type == "video" && ep.URI != "" {
			return ep.URI
		}
	}
	return ""
}
