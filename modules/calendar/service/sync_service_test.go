package service

import (
	"context"
	"testing"
	"time"

	"github.com/avishai12321/Trackera-sub000/core/errors"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/entity"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/provider"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newSyncFixture(conn *entity.CalendarConnection, adapter *fakeAdapter) (SyncService, *fakeConnRepo, *fakeEventRepo) {
	connRepo := &fakeConnRepo{conn: conn}
	eventRepo := &fakeEventRepo{}
	registry := provider.Registry{adapter.name: adapter}
	svc := NewSyncService(connRepo, NewReconciler(eventRepo), registry)
	return svc, connRepo, eventRepo
}

func TestSyncPaginatesAndPersistsCursorAfterFinalPage(t *testing.T) {
	conn := testConnection()
	cancelled := provider.Event{ProviderEventID: "dead", Status: entity.EventStatusCancelled}
	malformed := provider.Event{ProviderEventID: "broken"}

	adapter := &fakeAdapter{
		name: entity.ProviderGoogle,
		script: []listResult{
			{page: &provider.EventPage{
				Events:        []provider.Event{timedEvent("a"), timedEvent("b")},
				NextPageToken: "page-2",
			}},
			{page: &provider.EventPage{
				Events:         []provider.Event{timedEvent("c"), cancelled, malformed},
				NextSyncCursor: "cursor-after",
			}},
		},
	}
	svc, connRepo, eventRepo := newSyncFixture(conn, adapter)

	result, err := svc.Sync(context.Background(), conn.TenantID, conn.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, 3, result.Upserted)
	assert.Equal(t, 1, result.Deleted)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, eventRepo.upserted, 3)

	// First request opens the fallback window; second continues pagination.
	require.Len(t, adapter.queries, 2)
	assert.Empty(t, adapter.queries[0].Cursor)
	assert.Empty(t, adapter.queries[0].PageToken)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, -30), adapter.queries[0].WindowStart, time.Minute)
	assert.Equal(t, "page-2", adapter.queries[1].PageToken)

	// Cursor persisted exactly once, after the final page.
	require.Len(t, connRepo.syncStates, 1)
	assert.Equal(t, "cursor-after", connRepo.syncStates[0].cursor)
	assert.False(t, connRepo.syncStates[0].lastSyncAt.IsZero())
}

func TestSyncUsesStoredCursor(t *testing.T) {
	conn := testConnection()
	stored := "token-1"
	conn.SyncCursor = &stored

	adapter := &fakeAdapter{
		name:   entity.ProviderGoogle,
		script: []listResult{{page: &provider.EventPage{NextSyncCursor: "token-2"}}},
	}
	svc, connRepo, _ := newSyncFixture(conn, adapter)

	_, err := svc.Sync(context.Background(), conn.TenantID, conn.ID)
	require.NoError(t, err)

	require.Len(t, adapter.queries, 1)
	assert.Equal(t, "token-1", adapter.queries[0].Cursor)
	require.Len(t, connRepo.syncStates, 1)
	assert.Equal(t, "token-2", connRepo.syncStates[0].cursor)
}

func TestSyncKeepsOldCursorWhenProviderReturnsNone(t *testing.T) {
	conn := testConnection()
	stored := "token-1"
	conn.SyncCursor = &stored

	adapter := &fakeAdapter{
		name:   entity.ProviderGoogle,
		script: []listResult{{page: &provider.EventPage{}}},
	}
	svc, connRepo, _ := newSyncFixture(conn, adapter)

	_, err := svc.Sync(context.Background(), conn.TenantID, conn.ID)
	require.NoError(t, err)
	require.Len(t, connRepo.syncStates, 1)
	assert.Equal(t, "token-1", connRepo.syncStates[0].cursor)
}

func TestSyncRecoversOnceFromInvalidCursor(t *testing.T) {
	conn := testConnection()
	stored := "stale-token"
	conn.SyncCursor = &stored

	adapter := &fakeAdapter{
		name: entity.ProviderGoogle,
		script: []listResult{
			{err: errors.NewAppError(errors.ErrCursorInvalid, "sync token expired", nil)},
			{page: &provider.EventPage{
				Events:         []provider.Event{timedEvent("a")},
				NextSyncCursor: "fresh-token",
			}},
		},
	}
	svc, connRepo, _ := newSyncFixture(conn, adapter)

	result, err := svc.Sync(context.Background(), conn.TenantID, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Upserted)

	assert.Equal(t, 1, connRepo.cursorCleared)
	require.Len(t, adapter.queries, 2)
	assert.Equal(t, "stale-token", adapter.queries[0].Cursor)
	assert.Empty(t, adapter.queries[1].Cursor)
	require.Len(t, connRepo.syncStates, 1)
	assert.Equal(t, "fresh-token", connRepo.syncStates[0].cursor)
}

func TestSyncFailsWhenCursorInvalidTwice(t *testing.T) {
	conn := testConnection()
	stored := "stale-token"
	conn.SyncCursor = &stored

	adapter := &fakeAdapter{
		name: entity.ProviderGoogle,
		script: []listResult{
			{err: errors.NewAppError(errors.ErrCursorInvalid, "sync token expired", nil)},
			{err: errors.NewAppError(errors.ErrCursorInvalid, "sync token expired", nil)},
		},
	}
	svc, connRepo, _ := newSyncFixture(conn, adapter)

	_, err := svc.Sync(context.Background(), conn.TenantID, conn.ID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCursorInvalid))
	assert.Equal(t, 1, connRepo.cursorCleared)
	assert.Empty(t, connRepo.syncStates)
	assert.Contains(t, connRepo.statusUpdates, entity.ConnectionStatusError)
}

func TestSyncPersistsRefreshedTokensImmediately(t *testing.T) {
	conn := testConnection()
	conn.AccessToken = "old-access"

	refresh := "rotated-refresh"
	adapter := &fakeAdapter{
		name:   entity.ProviderGoogle,
		script: []listResult{{page: &provider.EventPage{NextSyncCursor: "c1"}}},
		refreshTo: &oauth2.Token{
			AccessToken:  "new-access",
			RefreshToken: refresh,
			Expiry:       time.Now().Add(time.Hour),
		},
	}
	svc, connRepo, _ := newSyncFixture(conn, adapter)

	_, err := svc.Sync(context.Background(), conn.TenantID, conn.ID)
	require.NoError(t, err)

	require.Len(t, connRepo.tokenUpdates, 1)
	assert.Equal(t, "new-access", connRepo.tokenUpdates[0].accessToken)
	require.NotNil(t, connRepo.tokenUpdates[0].refreshToken)
	assert.Equal(t, refresh, *connRepo.tokenUpdates[0].refreshToken)
	assert.Equal(t, "new-access", conn.AccessToken)
}

func TestSyncUnknownConnection(t *testing.T) {
	adapter := &fakeAdapter{name: entity.ProviderGoogle}
	svc, _, _ := newSyncFixture(testConnection(), adapter)

	_, err := svc.Sync(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConnectionNotFound))
}

func TestSyncReactivatesErroredConnection(t *testing.T) {
	conn := testConnection()
	conn.Status = entity.ConnectionStatusError

	adapter := &fakeAdapter{
		name:   entity.ProviderGoogle,
		script: []listResult{{page: &provider.EventPage{NextSyncCursor: "c1"}}},
	}
	svc, connRepo, _ := newSyncFixture(conn, adapter)

	_, err := svc.Sync(context.Background(), conn.TenantID, conn.ID)
	require.NoError(t, err)
	assert.Contains(t, connRepo.statusUpdates, entity.ConnectionStatusActive)
}
