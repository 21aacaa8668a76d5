package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/avishai12321/Trackera-sub000/modules/calendar/entity"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/provider"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConnection() *entity.CalendarConnection {
	conn := &entity.CalendarConnection{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Provider: entity.ProviderGoogle,
		Status:   entity.ConnectionStatusActive,
	}
	conn.ID = uuid.New()
	return conn
}

func timedEvent(id string) provider.Event {
	start := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	return provider.Event{
		ProviderEventID: id,
		Status:          entity.EventStatusConfirmed,
		Title:           "Planning",
		Start:           start,
		End:             start.Add(45 * time.Minute),
		StartHasTime:    true,
	}
}

func TestApplyUpsertsTimedEvent(t *testing.T) {
	repo := &fakeEventRepo{}
	rec := NewReconciler(repo)
	conn := testConnection()

	ev := timedEvent("ev-1")
	ev.Attendees = []entity.Attendee{{Email: "a@example.com"}, {Email: "b@example.com"}}

	result, err := rec.Apply(context.Background(), conn, ev)
	require.NoError(t, err)
	assert.Equal(t, ApplyUpserted, result)

	require.Len(t, repo.upserted, 1)
	stored := repo.upserted[0]
	assert.Equal(t, conn.TenantID, stored.TenantID)
	assert.Equal(t, conn.ID, stored.ConnectionID)
	assert.Equal(t, conn.UserID, stored.UserID)
	assert.Equal(t, "ev-1", stored.ProviderEventID)
	assert.False(t, stored.AllDay)
	assert.Equal(t, 2, stored.AttendeeCount)
	assert.False(t, stored.LastSyncedAt.IsZero())
}

func TestApplyDeletesCancelledEvent(t *testing.T) {
	repo := &fakeEventRepo{}
	rec := NewReconciler(repo)

	ev := provider.Event{ProviderEventID: "gone-1", Status: entity.EventStatusCancelled}
	result, err := rec.Apply(context.Background(), testConnection(), ev)
	require.NoError(t, err)
	assert.Equal(t, ApplyDeleted, result)
	assert.Equal(t, []string{"gone-1"}, repo.deleted)
	assert.Empty(t, repo.upserted)
}

func TestApplySkipsMalformedEvents(t *testing.T) {
	repo := &fakeEventRepo{}
	rec := NewReconciler(repo)
	conn := testConnection()

	noStart := timedEvent("no-start")
	noStart.Start = time.Time{}
	noEnd := timedEvent("no-end")
	noEnd.End = time.Time{}
	noID := timedEvent("")

	for _, ev := range []provider.Event{noStart, noEnd, noID} {
		result, err := rec.Apply(context.Background(), conn, ev)
		require.NoError(t, err)
		assert.Equal(t, ApplySkipped, result)
	}
	assert.Empty(t, repo.upserted)
}

func TestApplyMarksAllDayEvents(t *testing.T) {
	repo := &fakeEventRepo{}
	rec := NewReconciler(repo)

	ev := provider.Event{
		ProviderEventID: "allday-1",
		Start:           time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC),
		End:             time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC),
		StartHasTime:    false,
	}
	_, err := rec.Apply(context.Background(), testConnection(), ev)
	require.NoError(t, err)
	require.Len(t, repo.upserted, 1)
	assert.True(t, repo.upserted[0].AllDay)
}

func TestApplyDefaultsMissingStatusToConfirmed(t *testing.T) {
	repo := &fakeEventRepo{}
	rec := NewReconciler(repo)

	ev := timedEvent("no-status")
	ev.Status = ""
	_, err := rec.Apply(context.Background(), testConnection(), ev)
	require.NoError(t, err)
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, entity.EventStatusConfirmed, repo.upserted[0].Status)
}

func TestApplyResolvesMeetingLink(t *testing.T) {
	repo := &fakeEventRepo{}
	rec := NewReconciler(repo)
	conn := testConnection()

	direct := timedEvent("direct")
	direct.MeetingLink = "https://meet.example.com/abc"
	direct.ConferenceEntryPoints = []provider.ConferenceEntryPoint{{Type: "video", URI: "https://fallback.example.com"}}

	fallback := timedEvent("fallback")
	fallback.ConferenceEntryPoints = []provider.ConferenceEntryPoint{
		{Type: "phone", URI: "tel:+15551234"},
		{Type: "video", URI: "https://video.example.com/xyz"},
	}

	none := timedEvent("none")
	none.ConferenceEntryPoints = []provider.ConferenceEntryPoint{{Type: "phone", URI: "tel:+15551234"}}

	for _, ev := range []provider.Event{direct, fallback, none} {
		_, err := rec.Apply(context.Background(), conn, ev)
		require.NoError(t, err)
	}

	require.Len(t, repo.upserted, 3)
	assert.Equal(t, "https://meet.example.com/abc", repo.upserted[0].MeetingLink)
	assert.Equal(t, "https://video.example.com/xyz", repo.upserted[1].MeetingLink)
	assert.Equal(t, "", repo.upserted[2].MeetingLink)
}

func TestApplyPropagatesStorageErrors(t *testing.T) {
	repo := &fakeEventRepo{upsertErr: fmt.Errorf("connection reset")}
	rec := NewReconciler(repo)

	_, err := rec.Apply(context.Background(), testConnection(), timedEvent("ev-1"))
	assert.Error(t, err)
}
