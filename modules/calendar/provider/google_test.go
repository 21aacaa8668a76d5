package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avishai12321/Trackera-sub000/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestGoogleAdapter(apiBase, userinfoURL, tokenURL string) *googleAdapter {
	return &googleAdapter{
		oauthCfg: &oauth2.Config{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
		},
		apiBase:     apiBase,
		userinfoURL: userinfoURL,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
	}
}

func freshCreds() Credentials {
	return Credentials{
		AccessToken:  "valid-access",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(time.Hour),
	}
}

const windowListing = `{
	"items": [
		{
			"id": "evt-1",
			"status": "confirmed",
			"summary": "Design review",
			"location": "Room 4",
			"hangoutLink": "https://meet.google.com/abc-defg-hij",
			"start": {"dateTime": "2026-08-20T10:00:00Z"},
			"end": {"dateTime": "2026-08-20T10:45:00Z"},
			"organizer": {"email": "lee@example.com"},
			"attendees": [
				{"email": "lee@example.com", "organizer": true, "responseStatus": "accepted"},
				{"email": "kim@example.com", "optional": true}
			]
		},
		{
			"id": "evt-2",
			"status": "confirmed",
			"summary": "Company holiday",
			"start": {"date": "2026-08-21"},
			"end": {"date": "2026-08-22"}
		},
		{
			"id": "evt-3",
			"status": "confirmed",
			"summary": "Vendor call",
			"start": {"dateTime": "2026-08-20T15:00:00Z"},
			"end": {"dateTime": "2026-08-20T15:30:00Z"},
			"conferenceData": {
				"entryPoints": [
					{"entryPointType": "phone", "uri": "tel:+15551234"},
					{"entryPointType": "video", "uri": "https://zoom.example.com/j/123"}
				]
			}
		}
	],
	"nextSyncToken": "sync-token-1"
}`

func TestListEventsWindowMode(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)
		assert.Equal(t, "Bearer valid-access", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(windowListing))
	}))
	defer srv.Close()

	g := newTestGoogleAdapter(srv.URL, srv.URL+"/userinfo", srv.URL+"/token")
	windowStart := time.Now().UTC().AddDate(0, 0, -30)
	page, err := g.ListEvents(context.Background(), freshCreds(), ListQuery{
		WindowStart: windowStart,
		PageSize:    250,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"250"}, gotQuery["maxResults"])
	assert.Equal(t, []string{"true"}, gotQuery["singleEvents"])
	assert.Equal(t, []string{"true"}, gotQuery["showDeleted"])
	assert.NotEmpty(t, gotQuery["timeMin"])
	assert.Empty(t, gotQuery["syncToken"])

	assert.Equal(t, "sync-token-1", page.NextSyncCursor)
	assert.Empty(t, page.NextPageToken)
	require.Len(t, page.Events, 3)

	timed := page.Events[0]
	assert.Equal(t, "evt-1", timed.ProviderEventID)
	assert.Equal(t, "Design review", timed.Title)
	assert.True(t, timed.StartHasTime)
	assert.Equal(t, 45*time.Minute, timed.End.Sub(timed.Start))
	assert.Equal(t, "lee@example.com", timed.OrganizerEmail)
	assert.Equal(t, "https://meet.google.com/abc-defg-hij", timed.MeetingLink)
	require.Len(t, timed.Attendees, 2)
	assert.True(t, timed.Attendees[0].Organizer)
	assert.True(t, timed.Attendees[1].Optional)

	allDay := page.Events[1]
	assert.False(t, allDay.StartHasTime)
	assert.Equal(t, time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC), allDay.Start)

	conference := page.Events[2]
	assert.Empty(t, conference.MeetingLink)
	require.Len(t, conference.ConferenceEntryPoints, 2)
	assert.Equal(t, "video", conference.ConferenceEntryPoints[1].Type)
}

func TestListEventsCursorMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "stored-token", r.URL.Query().Get("syncToken"))
		assert.Empty(t, r.URL.Query().Get("timeMin"))
		assert.Equal(t, "next-page", r.URL.Query().Get("pageToken"))
		w.Write([]byte(`{"items": [], "nextPageToken": "page-3"}`))
	}))
	defer srv.Close()

	g := newTestGoogleAdapter(srv.URL, srv.URL+"/userinfo", srv.URL+"/token")
	page, err := g.ListEvents(context.Background(), freshCreds(), ListQuery{
		Cursor:    "stored-token",
		PageToken: "next-page",
		PageSize:  250,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "page-3", page.NextPageToken)
	assert.Empty(t, page.NextSyncCursor)
}

func TestListEventsExpiredSyncToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": 410, "message": "Sync token is no longer valid"}}`, http.StatusGone)
	}))
	defer srv.Close()

	g := newTestGoogleAdapter(srv.URL, srv.URL+"/userinfo", srv.URL+"/token")
	_, err := g.ListEvents(context.Background(), freshCreds(), ListQuery{Cursor: "stale", PageSize: 250}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCursorInvalid))
}

func TestListEventsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := newTestGoogleAdapter(srv.URL, srv.URL+"/userinfo", srv.URL+"/token")
	_, err := g.ListEvents(context.Background(), freshCreds(), ListQuery{PageSize: 250, WindowStart: time.Now()}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrProviderUnavailable))
}

func TestListEventsRefreshesExpiredToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "refresh-1", r.Form.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "rotated-access", "token_type": "Bearer", "expires_in": 3600}`))
	})
	mux.HandleFunc("/calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer rotated-access", r.Header.Get("Authorization"))
		w.Write([]byte(`{"items": [], "nextSyncToken": "s1"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	g := newTestGoogleAdapter(srv.URL, srv.URL+"/userinfo", srv.URL+"/token")
	expired := Credentials{
		AccessToken:  "expired-access",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(-time.Hour),
	}

	var persisted *oauth2.Token
	onRefresh := func(ctx context.Context, token *oauth2.Token) error {
		persisted = token
		return nil
	}

	_, err := g.ListEvents(context.Background(), expired, ListQuery{PageSize: 250, WindowStart: time.Now()}, onRefresh)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "rotated-access", persisted.AccessToken)
}

func TestResolveProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		w.Write([]byte(`{
			"id": "acct-42",
			"email": "dana@example.com",
			"name": "Dana Reeve",
			"given_name": "Dana",
			"family_name": "Reeve"
		}`))
	}))
	defer srv.Close()

	g := newTestGoogleAdapter(srv.URL, srv.URL, srv.URL+"/token")
	profile, err := g.ResolveProfile(context.Background(), &oauth2.Token{AccessToken: "access-1"})
	require.NoError(t, err)
	assert.Equal(t, "acct-42", profile.AccountID)
	assert.Equal(t, "dana@example.com", profile.Email)
	assert.Equal(t, "Dana", profile.GivenName)
}

func TestResolveProfileMissingAccountID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"email": "dana@example.com"}`))
	}))
	defer srv.Close()

	g := newTestGoogleAdapter(srv.URL, srv.URL, srv.URL+"/token")
	_, err := g.ResolveProfile(context.Background(), &oauth2.Token{AccessToken: "access-1"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrProfileResolution))
}

func TestParseGoogleEventTime(t *testing.T) {
	instant, hasTime := parseGoogleEventTime(&googleEventTime{DateTime: "2026-08-20T10:00:00+02:00"})
	assert.True(t, hasTime)
	assert.Equal(t, 8, instant.UTC().Hour())

	day, hasTime := parseGoogleEventTime(&googleEventTime{Date: "2026-08-21"})
	assert.False(t, hasTime)
	assert.Equal(t, time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC), day)

	zero, hasTime := parseGoogleEventTime(nil)
	assert.False(t, hasTime)
	assert.True(t, zero.IsZero())
}

func TestRegistryResolve(t *testing.T) {
	registry := Registry{"google": &googleAdapter{}}

	_, err := registry.Resolve("google")
	require.NoError(t, err)

	_, err = registry.Resolve("caldav")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrProviderNotSupported))
}
