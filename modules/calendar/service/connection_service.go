package service

import (
	"context"
	"time"

	"github.com/avishai12321/Trackera-sub000/core/errors"
	"github.com/avishai12321/Trackera-sub000/core/logger"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/dto"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/entity"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/repository"

	"github.com/google/uuid"
)

type ConnectionService interface {
	ListConnections(ctx context.Context, tenantID, userID uuid.UUID) (*dto.ConnectionListResponse, error)
	// Disconnect marks the connection revoked. Synced events stay in place;
	// they simply stop receiving updates.
	Disconnect(ctx context.Context, tenantID, connectionID uuid.UUID) error
}

type connectionService struct {
	connRepo repository.ConnectionRepository
}

func NewConnectionService(connRepo repository.ConnectionRepository) ConnectionService {
	return &connectionService{connRepo: connRepo}
}

func (s *connectionService) ListConnections(ctx context.Context, tenantID, userID uuid.UUID) (*dto.ConnectionListResponse, error) {
	connections, err := s.connRepo.ListByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to list connections", err)
	}

	resp := &dto.ConnectionListResponse{Connections: make([]dto.ConnectionResponse, 0, len(connections))}
	for _, conn := range connections {
		resp.Connections = append(resp.Connections, toConnectionResponse(conn))
	}
	return resp, nil
}

func (s *connectionService) Disconnect(ctx context.Context, tenantID, connectionID uuid.UUID) error {
	conn, err := s.connRepo.GetByID(ctx, tenantID, connectionID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to load connection", err)
	}
	if conn == nil {
		return errors.NewAppError(errors.ErrConnectionNotFound, "calendar connection not found", nil)
	}

	if err := s.connRepo.UpdateStatus(ctx, tenantID, connectionID, entity.ConnectionStatusRevoked); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to revoke connection", err)
	}
	logger.Info("ConnectionService:Disconnect:Success", "connection_id", connectionID, "provider", conn.Provider)
	return nil
}

func toConnectionResponse(conn entity.CalendarConnection) dto.ConnectionResponse {
	resp := dto.ConnectionResponse{
		ID:                conn.ID.String(),
		Provider:          conn.Provider,
		ProviderAccountID: conn.ProviderAccountID,
		Status:            conn.Status,
		ConnectedAt:       conn.CreatedAt.Format(time.RFC3339),
	}
	if conn.LastSyncAt != nil {
		last := conn.LastSyncAt.Format(time.RFC3339)
		resp.LastSyncAt = &last
	}
	return resp
}
