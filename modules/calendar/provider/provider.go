package provider

import (
	"context"
	"time"

	"github.com/avishai12321/Trackera-sub000/core/config"
	"github.com/avishai12321/Trackera-sub000/core/errors"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/entity"

	"golang.org/x/oauth2"
)

// Profile is the provider account identity resolved after an OAuth exchange.
type Profile struct {
	AccountID  string
	Email      string
	Name       string
	GivenName  string
	FamilyName string
}

// Credentials are the decrypted OAuth tokens for one connection. Storage
// encryption never crosses this boundary.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// TokenRefreshFunc is invoked synchronously whenever the HTTP client
// refreshes the access token mid-request, so the caller can persist the
// new token immediately, independent of whether the surrounding operation
// succeeds.
type TokenRefreshFunc func(ctx context.Context, token *oauth2.Token) error

// ConferenceEntryPoint is one way to join a meeting from structured
// conference data.
type ConferenceEntryPoint struct {
	Type string
	URI  string
}

// Event is the canonical shape every adapter maps provider payloads into.
// Start/End are zero when the provider omitted them; the reconciler treats
// such events as malformed and skips them.
type Event struct {
	ProviderEventID       string
	Status                string
	Title                 string
	Description           string
	Location              string
	Start                 time.Time
	End                   time.Time
	StartHasTime          bool
	OrganizerEmail        string
	Attendees             []entity.Attendee
	MeetingLink           string
	ConferenceEntryPoints []ConferenceEntryPoint
	Visibility            string
}

// EventPage is one page of a listing. NextSyncCursor is only populated on
// the final page (no NextPageToken).
type EventPage struct {
	Events         []Event
	NextPageToken  string
	NextSyncCursor string
}

// ListQuery selects cursor mode (Cursor set) or window mode (WindowStart
// set). PageToken continues a pagination loop within one mode.
type ListQuery struct {
	Cursor      string
	WindowStart time.Time
	PageToken   string
	PageSize    int
}

// SyncAdapter is the per-provider strategy for the OAuth flow and the
// incremental event listing.
type SyncAdapter interface {
	Provider() string
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	ResolveProfile(ctx context.Context, token *oauth2.Token) (*Profile, error)
	ListEvents(ctx context.Context, creds Credentials, query ListQuery, onTokenRefresh TokenRefreshFunc) (*EventPage, error)
}

// Registry maps provider names to adapters, resolved once at startup.
type Registry map[string]SyncAdapter

func NewRegistry(cfg *config.Config) Registry {
	return Registry{
		entity.ProviderGoogle:    NewGoogleAdapter(cfg.GoogleAPI),
		entity.ProviderMicrosoft: NewMicrosoftAdapter(cfg.MicrosoftAPI),
	}
}

// Resolve returns the adapter for provider or ErrProviderNotSupported.
func (r Registry) Resolve(provider string) (SyncAdapter, error) {
	adapter, ok := r[provider]
	if !ok {
		return nil, errors.NewAppError(errors.ErrProviderNotSupported, "unknown calendar provider: "+provider, nil)
	}
	return adapter, nil
}
