package dto

// ========== Connection DTOs ==========

// ConnectionResponse describes one calendar connection.
type ConnectionResponse struct {
	ID                string  `json:"id"`
	Provider          string  `json:"provider"`
	ProviderAccountID string  `json:"provider_account_id"`
	Status            string  `json:"status"`
	LastSyncAt        *string `json:"last_sync_at"`
	ConnectedAt       string  `json:"connected_at"`
}

type ConnectionListResponse struct {
	Connections []ConnectionResponse `json:"connections"`
}

// ========== OAuth DTOs ==========

// AuthURLResponse carries the provider authorization URL the browser must
// be redirected to.
type AuthURLResponse struct {
	URL string `json:"url"`
}

// OAuthState is the intent carried across the OAuth redirect, encoded as
// base64(JSON) in the state query parameter. The round trip must be exact.
type OAuthState struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
}

// ========== Sync DTOs ==========

// SyncResponse summarizes one completed sync run.
type SyncResponse struct {
	ConnectionID string `json:"connection_id"`
	Upserted     int    `json:"upserted"`
	Deleted      int    `json:"deleted"`
	Skipped      int    `json:"skipped"`
	Pages        int    `json:"pages"`
}

// ========== Webhook DTOs ==========

// Google delivers push notifications with an empty body; everything rides
// in headers.
const (
	GoogleHeaderResourceState = "X-Goog-Resource-State"
	GoogleHeaderChannelToken  = "X-Goog-Channel-Token"
	GoogleHeaderChannelID     = "X-Goog-Channel-Id"

	GoogleResourceStateSync = "sync"
)
