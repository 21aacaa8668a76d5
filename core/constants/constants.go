package constants

import "time"

// Database pool settings
const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
)

// Timeouts
const (
	DefaultTimeout     = 10 * time.Second
	ProviderTimeout    = 30 * time.Second
	ServerReadTimeout  = 15 * time.Second
	ServerWriteTimeout = 60 * time.Second
)

// Calendar sync
const (
	// SyncPageSize bounds one page of provider events.
	SyncPageSize = 250
	// SyncFallbackWindowDays anchors the first-sync time window.
	SyncFallbackWindowDays = 30
	// SyncLockTTL caps how long the per-connection advisory lock may be held.
	SyncLockTTL = 5 * time.Minute
	// TokenRefreshSkew refreshes access tokens this long before expiry.
	TokenRefreshSkew = 5 * time.Minute
)

// Redis key prefixes
const (
	RedisKeySyncLock       = "calendar:sync:lock:"
	RedisKeyTokenBlacklist = "auth:token:blacklist:"
)

// JWT scopes
const (
	ScopeTokenAccess  = "access"
	ScopeTokenRefresh = "refresh"
)

// Token lifetimes
const (
	AccessTokenTTL  = 24 * time.Hour
	RefreshTokenTTL = 30 * 24 * time.Hour
)
