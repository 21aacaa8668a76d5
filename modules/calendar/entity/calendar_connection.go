package entity

import (
	"time"

	"github.com/avishai12321/Trackera-sub000/core/entity"

	"github.com/google/uuid"
)

// Provider names
const (
	ProviderGoogle    = "google"
	ProviderMicrosoft = "microsoft"
)

// Connection statuses
const (
	ConnectionStatusActive  = "active"
	ConnectionStatusRevoked = "revoked"
	ConnectionStatusError   = "error"
)

// CalendarConnection binds one tenant+user+provider to calendar access.
// At most one row exists per (tenant_id, user_id, provider); a repeated
// OAuth completion updates the existing row in place.
//
// AccessToken and RefreshToken are stored encrypted; the repository is the
// only layer that sees ciphertext.
type CalendarConnection struct {
	entity.BaseEntity
	TenantID          uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	UserID            uuid.UUID  `db:"user_id" json:"user_id"`
	Provider          string     `db:"provider" json:"provider"`
	ProviderAccountID string     `db:"provider_account_id" json:"provider_account_id"`
	AccessToken       string     `db:"access_token" json:"-"`
	RefreshToken      *string    `db:"refresh_token" json:"-"`
	TokenExpiresAt    time.Time  `db:"token_expires_at" json:"token_expires_at"`
	SyncCursor        *string    `db:"sync_cursor" json:"-"`
	Status            string     `db:"status" json:"status"`
	LastSyncAt        *time.Time `db:"last_sync_at" json:"last_sync_at"`
}

func (CalendarConnection) TableName() string {
	return "calendar_connections"
}

func IsKnownProvider(provider string) bool {
	return provider == ProviderGoogle || provider == ProviderMicrosoft
}
