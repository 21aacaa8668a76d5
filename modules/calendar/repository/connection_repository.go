package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/avishai12321/Trackera-sub000/core/crypto"
	"github.com/avishai12321/Trackera-sub000/core/database"
	"github.com/avishai12321/Trackera-sub000/core/logger"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/entity"

	"github.com/google/uuid"
)

// ConnectionRepository persists calendar connections. Token columns are
// encrypted on write and decrypted on read; callers always see plaintext.
//
// Sync-state and token updates are deliberately field-level statements so
// the token-refresh side channel and the cursor persistence step cannot
// clobber each other with stale whole-row writes.
type ConnectionRepository interface {
	Create(ctx context.Context, conn *entity.CalendarConnection) (*entity.CalendarConnection, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.CalendarConnection, error)
	GetByUserAndProvider(ctx context.Context, tenantID, userID uuid.UUID, provider string) (*entity.CalendarConnection, error)
	ListByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]entity.CalendarConnection, error)

	UpdateAfterCallback(ctx context.Context, conn *entity.CalendarConnection) error
	UpdateTokens(ctx context.Context, id uuid.UUID, accessToken string, refreshToken *string, expiresAt time.Time) error
	UpdateSyncState(ctx context.Context, id uuid.UUID, cursor string, lastSyncAt time.Time) error
	ClearSyncCursor(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error
}

type connectionRepository struct {
	db  database.IDatabase
	enc *crypto.Encryptor
}

func NewConnectionRepository(db database.IDatabase, enc *crypto.Encryptor) ConnectionRepository {
	return &connectionRepository{db: db, enc: enc}
}

const connectionColumns = `
	id, tenant_id, user_id, provider, provider_account_id,
	access_token, refresh_token, token_expires_at,
	sync_cursor, status, last_sync_at, created_at, updated_at
`

func (r *connectionRepository) sealTokens(conn *entity.CalendarConnection) (string, *string, error) {
	access, err := r.enc.Encrypt(conn.AccessToken)
	if err != nil {
		return "", nil, err
	}
	var refresh *string
	if conn.RefreshToken != nil && *conn.RefreshToken != "" {
		sealed, err := r.enc.Encrypt(*conn.RefreshToken)
		if err != nil {
			return "", nil, err
		}
		refresh = &sealed
	}
	return access, refresh, nil
}

func (r *connectionRepository) openTokens(conn *entity.CalendarConnection) error {
	access, err := r.enc.Decrypt(conn.AccessToken)
	if err != nil {
		return err
	}
	conn.AccessToken = access
	if conn.RefreshToken != nil && *conn.RefreshToken != "" {
		refresh, err := r.enc.Decrypt(*conn.RefreshToken)
		if err != nil {
			return err
		}
		conn.RefreshToken = &refresh
	}
	return nil
}

func (r *connectionRepository) Create(ctx context.Context, conn *entity.CalendarConnection) (*entity.CalendarConnection, error) {
	access, refresh, err := r.sealTokens(conn)
	if err != nil {
		logger.Error("ConnectionRepository:Create:Seal:Error", "error", err)
		return nil, err
	}

	query := `
		INSERT INTO calendar_connections (
			tenant_id, user_id, provider, provider_account_id,
			access_token, refresh_token, token_expires_at, sync_cursor, status, last_sync_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err = r.db.QueryRowContext(ctx, query,
		conn.TenantID, conn.UserID, conn.Provider, conn.ProviderAccountID,
		access, refresh, conn.TokenExpiresAt, conn.SyncCursor, conn.Status, conn.LastSyncAt,
	).Scan(&conn.ID, &conn.CreatedAt, &conn.UpdatedAt)
	if err != nil {
		logger.Error("ConnectionRepository:Create:Error", "error", err, "tenant_id", conn.TenantID, "user_id", conn.UserID)
		return nil, err
	}
	return conn, nil
}

func (r *connectionRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.CalendarConnection, error) {
	var conn entity.CalendarConnection
	query := `SELECT ` + connectionColumns + ` FROM calendar_connections WHERE tenant_id = $1 AND id = $2`
	err := r.db.GetContext(ctx, &conn, query, tenantID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("ConnectionRepository:GetByID:Error", "error", err, "connection_id", id)
		return nil, err
	}
	if err := r.openTokens(&conn); err != nil {
		logger.Error("ConnectionRepository:GetByID:Open:Error", "error", err, "connection_id", id)
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) GetByUserAndProvider(ctx context.Context, tenantID, userID uuid.UUID, provider string) (*entity.CalendarConnection, error) {
	var conn entity.CalendarConnection
	query := `
		SELECT ` + connectionColumns + `
		FROM calendar_connections
		WHERE tenant_id = $1 AND user_id = $2 AND provider = $3
	`
	err := r.db.GetContext(ctx, &conn, query, tenantID, userID, provider)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("ConnectionRepository:GetByUserAndProvider:Error", "error", err, "user_id", userID, "provider", provider)
		return nil, err
	}
	if err := r.openTokens(&conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) ListByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]entity.CalendarConnection, error) {
	var connections []entity.CalendarConnection
	query := `
		SELECT ` + connectionColumns + `
		FROM calendar_connections
		WHERE tenant_id = $1 AND user_id = $2
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &connections, query, tenantID, userID); err != nil {
		logger.Error("ConnectionRepository:ListByUser:Error", "error", err, "user_id", userID)
		return nil, err
	}
	for i := range connections {
		if err := r.openTokens(&connections[i]); err != nil {
			return nil, err
		}
	}
	return connections, nil
}

// UpdateAfterCallback refreshes identity, tokens and status after a
// completed OAuth exchange. The sync cursor is left untouched so a
// reconnection keeps its incremental baseline.
func (r *connectionRepository) UpdateAfterCallback(ctx context.Context, conn *entity.CalendarConnection) error {
	access, refresh, err := r.sealTokens(conn)
	if err != nil {
		logger.Error("ConnectionRepository:UpdateAfterCallback:Seal:Error", "error", err)
		return err
	}

	query := `
		UPDATE calendar_connections
		SET provider_account_id = $1,
		    access_token = $2,
		    refresh_token = COALESCE($3, refresh_token),
		    token_expires_at = $4,
		    status = $5,
		    updated_at = NOW()
		WHERE id = $6
	`
	if err := r.db.ExecContext(ctx, query,
		conn.ProviderAccountID, access, refresh, conn.TokenExpiresAt, conn.Status, conn.ID,
	); err != nil {
		logger.Error("ConnectionRepository:UpdateAfterCallback:Error", "error", err, "connection_id", conn.ID)
		return err
	}
	return nil
}

func (r *connectionRepository) UpdateTokens(ctx context.Context, id uuid.UUID, accessToken string, refreshToken *string, expiresAt time.Time) error {
	access, err := r.enc.Encrypt(accessToken)
	if err != nil {
		return err
	}
	var refresh *string
	if refreshToken != nil && *refreshToken != "" {
		sealed, err := r.enc.Encrypt(*refreshToken)
		if err != nil {
			return err
		}
		refresh = &sealed
	}

	query := `
		UPDATE calendar_connections
		SET access_token = $1,
		    refresh_token = COALESCE($2, refresh_token),
		    token_expires_at = $3,
		    updated_at = NOW()
		WHERE id = $4
	`
	if err := r.db.ExecContext(ctx, query, access, refresh, expiresAt, id); err != nil {
		logger.Error("ConnectionRepository:UpdateTokens:Error", "error", err, "connection_id", id)
		return err
	}
	return nil
}

func (r *connectionRepository) UpdateSyncState(ctx context.Context, id uuid.UUID, cursor string, lastSyncAt time.Time) error {
	query := `
		UPDATE calendar_connections
		SET sync_cursor = NULLIF($1, ''),
		    last_sync_at = $2,
		    updated_at = NOW()
		WHERE id = $3
	`
	if err := r.db.ExecContext(ctx, query, cursor, lastSyncAt, id); err != nil {
		logger.Error("ConnectionRepository:UpdateSyncState:Error", "error", err, "connection_id", id)
		return err
	}
	return nil
}

func (r *connectionRepository) ClearSyncCursor(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE calendar_connections SET sync_cursor = NULL, updated_at = NOW() WHERE id = $1`
	if err := r.db.ExecContext(ctx, query, id); err != nil {
		logger.Error("ConnectionRepository:ClearSyncCursor:Error", "error", err, "connection_id", id)
		return err
	}
	return nil
}

func (r *connectionRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	query := `UPDATE calendar_connections SET status = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`
	if err := r.db.ExecContext(ctx, query, status, tenantID, id); err != nil {
		logger.Error("ConnectionRepository:UpdateStatus:Error", "error", err, "connection_id", id)
		return err
	}
	return nil
}
