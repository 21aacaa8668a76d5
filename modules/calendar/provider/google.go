package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avishai12321/Trackera-sub000/core/config"
	"github.com/avishai12321/Trackera-sub000/core/constants"
	"github.com/avishai12321/Trackera-sub000/core/errors"
	"github.com/avishai12321/Trackera-sub000/core/logger"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/entity"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleCalendarAPIBase = "https://www.googleapis.com/calendar/v3"
	googleUserinfoURL     = "https://www.googleapis.com/oauth2/v2/userinfo"

	googleEntryPointVideo = "video"
)

type googleAdapter struct {
	oauthCfg *oauth2.Config

	// Overridable for tests.
	apiBase     string
	userinfoURL string
	httpClient  *http.Client
}

func NewGoogleAdapter(cfg config.GoogleAPIConfig) SyncAdapter {
	return &googleAdapter{
		oauthCfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/calendar.readonly",
			},
			Endpoint: google.Endpoint,
		},
		apiBase:     googleCalendarAPIBase,
		userinfoURL: googleUserinfoURL,
		httpClient:  &http.Client{Timeout: constants.ProviderTimeout},
	}
}

func (g *googleAdapter) Provider() string {
	return entity.ProviderGoogle
}

// AuthCodeURL requests offline access and forces the consent screen so a
// refresh token is issued even when the user reconnects.
func (g *googleAdapter) AuthCodeURL(state string) string {
	return g.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (g *googleAdapter) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := g.oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrTokenExchange, "failed to exchange authorization code", err)
	}
	return token, nil
}

func (g *googleAdapter) ResolveProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userinfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrProviderUnavailable, "failed to reach Google userinfo endpoint", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAppError(errors.ErrProfileResolution,
			fmt.Sprintf("Google userinfo returned status %d", resp.StatusCode), fmt.Errorf("%s", body))
	}

	var info struct {
		ID         string `json:"id"`
		Email      string `json:"email"`
		Name       string `json:"name"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, errors.NewAppError(errors.ErrProfileResolution, "failed to parse Google userinfo response", err)
	}
	if info.ID == "" {
		return nil, errors.NewAppError(errors.ErrProfileResolution, "Google userinfo response has no account id", nil)
	}

	return &Profile{
		AccountID:  info.ID,
		Email:      info.Email,
		Name:       info.Name,
		GivenName:  info.GivenName,
		FamilyName: info.FamilyName,
	}, nil
}

// googleEvent mirrors the fields of the Calendar v3 event resource this
// adapter consumes.
type googleEvent struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Summary string `json:"summary"`

	Description string `json:"description"`
	Location    string `json:"location"`
	Visibility  string `json:"visibility"`
	HangoutLink string `json:"hangoutLink"`

	Start *googleEventTime `json:"start"`
	End   *googleEventTime `json:"end"`

	Organizer *struct {
		Email string `json:"email"`
	} `json:"organizer"`

	Attendees []struct {
		Email          string `json:"email"`
		DisplayName    string `json:"displayName"`
		ResponseStatus string `json:"responseStatus"`
		Organizer      bool   `json:"organizer"`
		Self           bool   `json:"self"`
		Optional       bool   `json:"optional"`
	} `json:"attendees"`

	ConferenceData *struct {
		EntryPoints []struct {
			EntryPointType string `json:"entryPointType"`
			URI            string `json:"uri"`
		} `json:"entryPoints"`
	} `json:"conferenceData"`
}

type googleEventTime struct {
	Date     string `json:"date"`
	DateTime string `json:"dateTime"`
}

type googleEventsResponse struct {
	Items         []googleEvent `json:"items"`
	NextPageToken string        `json:"nextPageToken"`
	NextSyncToken string        `json:"nextSyncToken"`
}

// ListEvents fetches one page of the primary calendar. Cursor mode sends
// syncToken; window mode sends timeMin. A 410 from Google means the stored
// sync token expired and is surfaced as ErrCursorInvalid.
func (g *googleAdapter) ListEvents(ctx context.Context, creds Credentials, query ListQuery, onTokenRefresh TokenRefreshFunc) (*EventPage, error) {
	accessToken, err := g.currentToken(ctx, creds, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("maxResults", strconv.Itoa(query.PageSize))
	if query.Cursor != "" {
		params.Set("syncToken", query.Cursor)
	} else {
		params.Set("timeMin", query.WindowStart.UTC().Format(time.RFC3339))
		params.Set("singleEvents", "true")
		params.Set("showDeleted", "true")
	}
	if query.PageToken != "" {
		params.Set("pageToken", query.PageToken)
	}

	listURL := g.apiBase + "/calendars/primary/events?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrProviderUnavailable, "failed to reach Google Calendar API", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to parsing
	case resp.StatusCode == http.StatusGone:
		return nil, errors.NewAppError(errors.ErrCursorInvalid, "Google sync token expired", fmt.Errorf("%s", body))
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, errors.NewAppError(errors.ErrProviderUnavailable,
			fmt.Sprintf("Google Calendar API returned status %d", resp.StatusCode), fmt.Errorf("%s", body))
	default:
		return nil, errors.NewAppError(errors.ErrProviderUnavailable,
			fmt.Sprintf("Google Calendar API error: status %d", resp.StatusCode), fmt.Errorf("%s", body))
	}

	var parsed googleEventsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.NewAppError(errors.ErrProviderUnavailable, "failed to parse Google events response", err)
	}

	page := &EventPage{
		Events:         make([]Event, 0, len(parsed.Items)),
		NextPageToken:  parsed.NextPageToken,
		NextSyncCursor: parsed.NextSyncToken,
	}
	for _, item := range parsed.Items {
		page.Events = append(page.Events, g.toCanonical(item))
	}
	return page, nil
}

// currentToken obtains a valid access token through the oauth2 token
// source. When the source hands back a refreshed token, onTokenRefresh is
// invoked synchronously before the token is used.
func (g *googleAdapter) currentToken(ctx context.Context, creds Credentials, onTokenRefresh TokenRefreshFunc) (string, error) {
	stored := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		Expiry:       creds.Expiry.Add(-constants.TokenRefreshSkew),
	}

	token, err := g.oauthCfg.TokenSource(ctx, stored).Token()
	if err != nil {
		return "", errors.NewAppError(errors.ErrProviderUnavailable, "failed to refresh Google access token", err)
	}

	if token.AccessToken != creds.AccessToken && onTokenRefresh != nil {
		if err := onTokenRefresh(ctx, token); err != nil {
			logger.Warn("GoogleAdapter:TokenRefresh:PersistError", "error", err)
		}
	}
	return token.AccessToken, nil
}

func (g *googleAdapter) toCanonical(item googleEvent) Event {
	ev := Event{
		ProviderEventID: item.ID,
		Status:          item.Status,
		Title:           item.Summary,
		Description:     item.Description,
		Location:        item.Location,
		Visibility:      item.Visibility,
		MeetingLink:     item.HangoutLink,
	}

	ev.Start, ev.StartHasTime = parseGoogleEventTime(item.Start)
	ev.End, _ = parseGoogleEventTime(item.End)

	if item.Organizer != nil {
		ev.OrganizerEmail = item.Organizer.Email
	}
	for _, a := range item.Attendees {
		ev.Attendees = append(ev.Attendees, entity.Attendee{
			Email:          a.Email,
			DisplayName:    a.DisplayName,
			ResponseStatus: a.ResponseStatus,
			Organizer:      a.Organizer,
			Self:           a.Self,
			Optional:       a.Optional,
		})
	}
	if item.ConferenceData != nil {
		for _, ep := range item.ConferenceData.EntryPoints {
			ev.ConferenceEntryPoints = append(ev.ConferenceEntryPoints, ConferenceEntryPoint{
				Type: ep.EntryPointType,
				URI:  ep.URI,
			})
		}
	}
	return ev
}

// parseGoogleEventTime handles both timed events (dateTime) and all-day
// events (date only). The second return reports whether the instant
// carried a time-of-day component.
func parseGoogleEventTime(t *googleEventTime) (time.Time, bool) {
	if t == nil {
		return time.Time{}, false
	}
	if t.DateTime != "" {
		parsed, err := time.Parse(time.RFC3339, t.DateTime)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	if t.Date != "" {
		parsed, err := time.Parse("2006-01-02", t.Date)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, false
	}
	return time.Time{}, false
}
