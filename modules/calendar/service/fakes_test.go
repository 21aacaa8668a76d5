package service

import (
	"context"
	"time"

	"github.com/avishai12321/Trackera-sub000/modules/calendar/entity"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/provider"
	timesheetEntity "github.com/avishai12321/Trackera-sub000/modules/timesheet/entity"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// ---- event repository fake ----

type fakeEventRepo struct {
	upserted  []*entity.CalendarEvent
	deleted   []string
	upsertErr error
	deleteErr error
}

func (f *fakeEventRepo) Upsert(ctx context.Context, ev *entity.CalendarEvent) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, ev)
	return nil
}

func (f *fakeEventRepo) DeleteByProviderEventID(ctx context.Context, tenantID, connectionID uuid.UUID, providerEventID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, providerEventID)
	return nil
}

func (f *fakeEventRepo) ListForUserInRange(ctx context.Context, tenantID, userID uuid.UUID, from, to time.Time) ([]entity.CalendarEvent, error) {
	return nil, nil
}

func (f *fakeEventRepo) ListByConnectionIDsInRange(ctx context.Context, tenantID uuid.UUID, connectionIDs []uuid.UUID, from, to time.Time) ([]entity.CalendarEvent, error) {
	return nil, nil
}

// ---- connection repository fake ----

type syncStateUpdate struct {
	cursor     string
	lastSyncAt time.Time
}

type tokenUpdate struct {
	accessToken  string
	refreshToken *string
	expiresAt    time.Time
}

type fakeConnRepo struct {
	conn           *entity.CalendarConnection
	byUserProvider *entity.CalendarConnection

	created       *entity.CalendarConnection
	afterCallback *entity.CalendarConnection
	tokenUpdates  []tokenUpdate
	syncStates    []syncStateUpdate
	cursorCleared int
	statusUpdates []string

	getErr error
}

func (f *fakeConnRepo) Create(ctx context.Context, conn *entity.CalendarConnection) (*entity.CalendarConnection, error) {
	if conn.ID == uuid.Nil {
		conn.ID = uuid.New()
	}
	conn.CreatedAt = time.Now()
	f.created = conn
	return conn, nil
}

func (f *fakeConnRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.CalendarConnection, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.conn == nil || f.conn.ID != id {
		return nil, nil
	}
	return f.conn, nil
}

func (f *fakeConnRepo) GetByUserAndProvider(ctx context.Context, tenantID, userID uuid.UUID, provider string) (*entity.CalendarConnection, error) {
	return f.byUserProvider, nil
}

func (f *fakeConnRepo) ListByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]entity.CalendarConnection, error) {
	if f.conn == nil {
		return nil, nil
	}
	return []entity.CalendarConnection{*f.conn}, nil
}

func (f *fakeConnRepo) UpdateAfterCallback(ctx context.Context, conn *entity.CalendarConnection) error {
	f.afterCallback = conn
	return nil
}

func (f *fakeConnRepo) UpdateTokens(ctx context.Context, id uuid.UUID, accessToken string, refreshToken *string, expiresAt time.Time) error {
	f.tokenUpdates = append(f.tokenUpdates, tokenUpdate{accessToken, refreshToken, expiresAt})
	return nil
}

func (f *fakeConnRepo) UpdateSyncState(ctx context.Context, id uuid.UUID, cursor string, lastSyncAt time.Time) error {
	f.syncStates = append(f.syncStates, syncStateUpdate{cursor, lastSyncAt})
	return nil
}

func (f *fakeConnRepo) ClearSyncCursor(ctx context.Context, id uuid.UUID) error {
	f.cursorCleared++
	if f.conn != nil {
		f.conn.SyncCursor = nil
	}
	return nil
}

func (f *fakeConnRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	f.statusUpdates = append(f.statusUpdates, status)
	return nil
}

// ---- sync adapter fake ----

type listResult struct {
	page *provider.EventPage
	err  error
}

type fakeAdapter struct {
	name    string
	script  []listResult
	queries []provider.ListQuery

	// refreshTo, when set, is handed to onTokenRefresh on the first
	// ListEvents call, simulating a mid-request token refresh.
	refreshTo *oauth2.Token

	exchangeToken *oauth2.Token
	exchangeErr   error
	profile       *provider.Profile
	profileErr    error
}

func (f *fakeAdapter) Provider() string { return f.name }

func (f *fakeAdapter) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (f *fakeAdapter) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return f.exchangeToken, f.exchangeErr
}

func (f *fakeAdapter) ResolveProfile(ctx context.Context, token *oauth2.Token) (*provider.Profile, error) {
	return f.profile, f.profileErr
}

func (f *fakeAdapter) ListEvents(ctx context.Context, creds provider.Credentials, query provider.ListQuery, onTokenRefresh provider.TokenRefreshFunc) (*provider.EventPage, error) {
	f.queries = append(f.queries, query)
	if f.refreshTo != nil && len(f.queries) == 1 && onTokenRefresh != nil {
		if err := onTokenRefresh(ctx, f.refreshTo); err != nil {
			return nil, err
		}
	}
	i := len(f.queries) - 1
	if i >= len(f.script) {
		return &provider.EventPage{}, nil
	}
	return f.script[i].page, f.script[i].err
}

// ---- employee service fake ----

type fakeEmployeeService struct {
	ensured  int
	lastName string
	err      error
}

func (f *fakeEmployeeService) EnsureEmployee(ctx context.Context, tenantID, userID uuid.UUID, firstName, lastName, email string) (*timesheetEntity.Employee, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.ensured++
	f.lastName = lastName
	emp := &timesheetEntity.Employee{
		TenantID:  tenantID,
		UserID:    userID,
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
	}
	emp.ID = uuid.New()
	return emp, nil
}
