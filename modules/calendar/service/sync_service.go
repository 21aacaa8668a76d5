package service

import (
	"context"
	"time"

	"github.com/avishai12321/Trackera-sub000/core/constants"
	"github.com/avishai12321/Trackera-sub000/core/errors"
	"github.com/avishai12321/Trackera-sub000/core/logger"
	"github.com/avishai12321/Trackera-sub000/core/utils"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/dto"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/entity"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/provider"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/repository"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// SyncService drives one full drain of a connection's provider changes:
// pick cursor or fallback window, page through the listing, reconcile every
// item, then persist the next cursor. One call, one drain; there is no
// daemon behind it.
//
// The service does not serialize concurrent syncs of the same connection;
// callers that need exclusivity hold the advisory lock in core/cache for
// the duration of the call.
type SyncService interface {
	Sync(ctx context.Context, tenantID, connectionID uuid.UUID) (*dto.SyncResponse, error)
}

type syncService struct {
	connRepo   repository.ConnectionRepository
	reconciler Reconciler
	registry   provider.Registry
}

func NewSyncService(connRepo repository.ConnectionRepository, reconciler Reconciler, registry provider.Registry) SyncService {
	return &syncService{
		connRepo:   connRepo,
		reconciler: reconciler,
		registry:   registry,
	}
}

func (s *syncService) Sync(ctx context.Context, tenantID, connectionID uuid.UUID) (*dto.SyncResponse, error) {
	conn, err := s.connRepo.GetByID(ctx, tenantID, connectionID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load connection", err)
	}
	if conn == nil {
		return nil, errors.NewAppError(errors.ErrConnectionNotFound, "calendar connection not found", nil)
	}

	adapter, err := s.registry.Resolve(conn.Provider)
	if err != nil {
		return nil, err
	}

	runID := utils.NewSyncRunID()
	logger.Info("SyncService:Sync:Start",
		"run_id", runID, "connection_id", conn.ID, "provider", conn.Provider,
		"has_cursor", conn.SyncCursor != nil)

	result, err := s.drain(ctx, conn, adapter, runID)
	if errors.IsCode(err, errors.ErrCursorInvalid) {
		// The provider rejected the stored cursor. Clear it and rerun the
		// whole sync once in fallback-window mode. A second rejection
		// during the retry propagates as fatal.
		logger.Warn("SyncService:Sync:CursorInvalidated", "run_id", runID, "connection_id", conn.ID)
		if clearErr := s.connRepo.ClearSyncCursor(ctx, conn.ID); clearErr != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "failed to clear invalidated cursor", clearErr)
		}
		conn.SyncCursor = nil
		result, err = s.drain(ctx, conn, adapter, runID)
	}
	if err != nil {
		s.markError(ctx, conn)
		logger.Error("SyncService:Sync:Failed", "run_id", runID, "connection_id", conn.ID, "error", err)
		return nil, err
	}

	logger.Info("SyncService:Sync:Complete",
		"run_id", runID, "connection_id", conn.ID,
		"pages", result.Pages, "upserted", result.Upserted, "deleted", result.Deleted, "skipped", result.Skipped)
	return result, nil
}

// drain pages through everything the provider has for this connection and
// reconciles each item before the next page is requested. The new cursor
// and last-sync timestamp are persisted only after the final page.
func (s *syncService) drain(ctx context.Context, conn *entity.CalendarConnection, adapter provider.SyncAdapter, runID string) (*dto.SyncResponse, error) {
	cursor := ""
	if conn.SyncCursor != nil {
		cursor = *conn.SyncCursor
	}
	windowStart := time.Now().UTC().AddDate(0, 0, -constants.SyncFallbackWindowDays)

	// Refreshed tokens are persisted the moment the HTTP client hands them
	// back, regardless of how the rest of the run ends.
	onTokenRefresh := func(refreshCtx context.Context, token *oauth2.Token) error {
		conn.AccessToken = token.AccessToken
		conn.TokenExpiresAt = token.Expiry
		var refresh *string
		if token.RefreshToken != "" {
			rt := token.RefreshToken
			refresh = &rt
			conn.RefreshToken = &rt
		}
		logger.Info("SyncService:TokenRefreshed", "run_id", runID, "connection_id", conn.ID)
		return s.connRepo.UpdateTokens(refreshCtx, conn.ID, token.AccessToken, refresh, token.Expiry)
	}

	result := &dto.SyncResponse{ConnectionID: conn.ID.String()}
	pageToken := ""
	finalCursor := ""

	for {
		query := provider.ListQuery{
			Cursor:      cursor,
			WindowStart: windowStart,
			PageToken:   pageToken,
			PageSize:    constants.SyncPageSize,
		}
		page, err := adapter.ListEvents(ctx, s.credentials(conn), query, onTokenRefresh)
		if err != nil {
			return nil, err
		}
		result.Pages++

		for _, ev := range page.Events {
			applied, err := s.reconciler.Apply(ctx, conn, ev)
			if err != nil {
				return nil, err
			}
			switch applied {
			case ApplyUpserted:
				result.Upserted++
			case ApplyDeleted:
				result.Deleted++
			case ApplySkipped:
				result.Skipped++
			}
		}

		if page.NextPageToken == "" {
			finalCursor = page.NextSyncCursor
			break
		}
		pageToken = page.NextPageToken
	}

	// A provider that returns no new cursor keeps the old baseline.
	if finalCursor == "" {
		finalCursor = cursor
	}

	now := time.Now().UTC()
	if err := s.connRepo.UpdateSyncState(ctx, conn.ID, finalCursor, now); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to persist sync cursor", err)
	}
	conn.LastSyncAt = &now
	if finalCursor != "" {
		conn.SyncCursor = &finalCursor
	}

	if conn.Status == entity.ConnectionStatusError {
		if err := s.connRepo.UpdateStatus(ctx, conn.TenantID, conn.ID, entity.ConnectionStatusActive); err != nil {
			logger.Warn("SyncService:Drain:ReactivateStatus:Error", "connection_id", conn.ID, "error", err)
		} else {
			conn.Status = entity.ConnectionStatusActive
		}
	}
	return result, nil
}

func (s *syncService) credentials(conn *entity.CalendarConnection) provider.Credentials {
	creds := provider.Credentials{
		AccessToken: conn.AccessToken,
		Expiry:      conn.TokenExpiresAt,
	}
	if conn.RefreshToken != nil {
		creds.RefreshToken = *conn.RefreshToken
	}
	return creds
}

func (s *syncService) markError(ctx context.Context, conn *entity.CalendarConnection) {
	if conn.Status == entity.ConnectionStatusError {
		return
	}
	if err := s.connRepo.UpdateStatus(ctx, conn.TenantID, conn.ID, entity.ConnectionStatusError); err != nil {
		logger.Warn("SyncService:MarkError:UpdateStatus:Error", "connection_id", conn.ID, "error", err)
	}
}
