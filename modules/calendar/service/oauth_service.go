package service

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/avishai12321/Trackera-sub000/core/errors"
	"github.com/avishai12321/Trackera-sub000/core/logger"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/dto"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/entity"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/provider"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/repository"
	timesheetService "github.com/avishai12321/Trackera-sub000/modules/timesheet/service"

	"github.com/google/uuid"
)

// OAuthService runs the provider authorization flow. The state parameter
// round-trips the caller's identity through the provider as base64(JSON);
// the callback trusts nothing else about who initiated the flow.
type OAuthService interface {
	BuildAuthorizationURL(ctx context.Context, tenantID, userID uuid.UUID, providerName string) (*dto.AuthURLResponse, error)
	HandleCallback(ctx context.Context, providerName, state, code string) (*entity.CalendarConnection, error)
}

type oauthService struct {
	connRepo    repository.ConnectionRepository
	registry    provider.Registry
	employeeSvc timesheetService.EmployeeService
}

func NewOAuthService(connRepo repository.ConnectionRepository, registry provider.Registry, employeeSvc timesheetService.EmployeeService) OAuthService {
	return &oauthService{
		connRepo:    connRepo,
		registry:    registry,
		employeeSvc: employeeSvc,
	}
}

func (s *oauthService) BuildAuthorizationURL(ctx context.Context, tenantID, userID uuid.UUID, providerName string) (*dto.AuthURLResponse, error) {
	adapter, err := s.registry.Resolve(providerName)
	if err != nil {
		return nil, err
	}

	state, err := encodeState(dto.OAuthState{
		TenantID: tenantID.String(),
		UserID:   userID.String(),
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to encode oauth state", err)
	}

	return &dto.AuthURLResponse{URL: adapter.AuthCodeURL(state)}, nil
}

// HandleCallback finishes the flow: decode state, exchange the code,
// resolve the provider identity, then create the connection or refresh the
// existing one for the same (tenant, user, provider).
func (s *oauthService) HandleCallback(ctx context.Context, providerName, state, code string) (*entity.CalendarConnection, error) {
	adapter, err := s.registry.Resolve(providerName)
	if err != nil {
		return nil, err
	}

	tenantID, userID, err := decodeState(state)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidState, "oauth state is malformed", err)
	}

	token, err := adapter.ExchangeCode(ctx, code)
	if err != nil {
		logger.Error("OAuthService:HandleCallback:Exchange:Error", "provider", providerName, "error", err)
		return nil, errors.NewAppError(errors.ErrTokenExchange, "authorization code exchange failed", err)
	}

	profile, err := adapter.ResolveProfile(ctx, token)
	if err != nil {
		logger.Error("OAuthService:HandleCallback:Profile:Error", "provider", providerName, "error", err)
		return nil, errors.NewAppError(errors.ErrProfileResolution, "failed to resolve provider profile", err)
	}

	// Employee provisioning rides along so suggestions work immediately
	// after connecting. A failure here does not abort the connection.
	if _, err := s.employeeSvc.EnsureEmployee(ctx, tenantID, userID, profile.GivenName, profile.FamilyName, profile.Email); err != nil {
		logger.Warn("OAuthService:HandleCallback:EnsureEmployee:Error", "user_id", userID, "error", err)
	}

	conn, err := s.connRepo.GetByUserAndProvider(ctx, tenantID, userID, providerName)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to look up connection", err)
	}

	if conn != nil {
		conn.ProviderAccountID = profile.AccountID
		conn.AccessToken = token.AccessToken
		conn.TokenExpiresAt = token.Expiry
		if token.RefreshToken != "" {
			rt := token.RefreshToken
			conn.RefreshToken = &rt
		} else {
			conn.RefreshToken = nil
		}
		conn.Status = entity.ConnectionStatusActive
		if err := s.connRepo.UpdateAfterCallback(ctx, conn); err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "failed to update connection", err)
		}
		logger.Info("OAuthService:HandleCallback:Reconnected",
			"connection_id", conn.ID, "provider", providerName, "account", profile.Email)
		return conn, nil
	}

	conn = &entity.CalendarConnection{
		TenantID:          tenantID,
		UserID:            userID,
		Provider:          providerName,
		ProviderAccountID: profile.AccountID,
		AccessToken:       token.AccessToken,
		TokenExpiresAt:    token.Expiry,
		Status:            entity.ConnectionStatusActive,
	}
	if token.RefreshToken != "" {
		rt := token.RefreshToken
		conn.RefreshToken = &rt
	}

	created, err := s.connRepo.Create(ctx, conn)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to create connection", err)
	}
	logger.Info("OAuthService:HandleCallback:Connected",
		"connection_id", created.ID, "provider", providerName, "account", profile.Email)
	return created, nil
}

func encodeState(state dto.OAuthState) (string, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

func decodeState(state string) (tenantID, userID uuid.UUID, err error) {
	raw, err := base64.URLEncoding.DecodeString(state)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	var decoded dto.OAuthState
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	tenantID, err = uuid.Parse(decoded.TenantID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	userID, err = uuid.Parse(decoded.UserID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return tenantID, userID, nil
}
