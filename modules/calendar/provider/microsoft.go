package provider

import (
	"context"

	"github.com/avishai12321/Trackera-sub000/core/config"
	"github.com/avishai12321/Trackera-sub000/core/errors"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/entity"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

// microsoftAdapter registers the Microsoft provider so dispatch stays
// uniform, but calendar sync itself is not implemented yet.
//
// TODO: implement against the Graph calendarView delta API once a
// Microsoft app registration exists for this service.
type microsoftAdapter struct {
	oauthCfg *oauth2.Config
}

func NewMicrosoftAdapter(cfg config.MicrosoftAPIConfig) SyncAdapter {
	return &microsoftAdapter{
		oauthCfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes: []string{
				"offline_access",
				"User.Read",
				"Calendars.Read",
			},
			Endpoint: microsoft.AzureADEndpoint("common"),
		},
	}
}

func (m *microsoftAdapter) Provider() string {
	return entity.ProviderMicrosoft
}

func (m *microsoftAdapter) AuthCodeURL(state string) string {
	return m.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (m *microsoftAdapter) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return nil, errors.NewAppError(errors.ErrProviderNotSupported, "Microsoft calendar sync is not implemented", nil)
}

func (m *microsoftAdapter) ResolveProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	return nil, errors.NewAppError(errors.ErrProviderNotSupported, "Microsoft calendar sync is not implemented", nil)
}

func (m *microsoftAdapter) ListEvents(ctx context.Context, creds Credentials, query ListQuery, onTokenRefresh TokenRefreshFunc) (*EventPage, error) {
	return nil, errors.NewAppError(errors.ErrProviderNotSupported, "Microsoft calendar sync is not implemented", nil)
}
