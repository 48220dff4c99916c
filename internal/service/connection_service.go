package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/platform"
	"github.com/maheshrc27/contentflow/internal/repository"
	"github.com/maheshrc27/contentflow/internal/transfer"
)

type ConnectionService interface {
	List(ctx context.Context, organizationID string) ([]*models.PlatformConnection, error)
	Connect(ctx context.Context, organizationID string, req *transfer.ConnectRequest) (*models.PlatformConnection, error)
	Disconnect(ctx context.Context, organizationID, connectionID string) error
}

type connectionService struct {
	connections repository.PlatformConnectionRepository
	mp          repository.MetaPageRepository
	gc          repository.GoogleConnectionRepository
}

func NewConnectionService(
	connections repository.PlatformConnectionRepository,
	mp repository.MetaPageRepository,
	gc repository.GoogleConnectionRepository) ConnectionService {
	return &connectionService{
		connections: connections,
		mp:          mp,
		gc:          gc,
	}
}

func (s *connectionService) List(ctx context.Context, organizationID string) ([]*models.PlatformConnection, error) {
	conns, err := s.connections.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("error listing connections: %w", err)
	}
	return conns, nil
}

// Connect turns an OAuth source row the organization owns into a publishable
// account. Connecting the same account again reactivates the existing row.
func (s *connectionService) Connect(ctx context.Context, organizationID string, req *transfer.ConnectRequest) (*models.PlatformConnection, error) {
	if !platform.IsSupported(req.Platform) {
		return nil, newValidationError("platform", fmt.Sprintf("unsupported platform %q", req.Platform))
	}
	if req.SourceID == "" {
		return nil, newValidationError("source_id", "source_id is required")
	}

	conn := &models.PlatformConnection{
		ID:             uuid.NewString(),
		OrganizationID: organizationID,
		Platform:       req.Platform,
		SourceType:     req.SourceType,
		SourceID:       req.SourceID,
		Status:         models.ConnectionStatusActive,
	}

	switch req.SourceType {
	case models.SourceTypeMetaPage:
		if req.Platform != platform.Facebook && req.Platform != platform.Instagram {
			return nil, newValidationError("platform", "a Meta page can only back facebook or instagram accounts")
		}
		page, err := s.mp.GetByID(ctx, req.SourceID)
		if err != nil {
			return nil, fmt.Errorf("error loading meta page: %w", err)
		}
		if page == nil || page.OrganizationID != organizationID {
			return nil, fmt.Errorf("%w: meta page %s", ErrNotFound, req.SourceID)
		}
		conn.DisplayName = page.PageName
		conn.PlatformAccountID = page.PageID
		if req.Platform == platform.Instagram {
			if page.InstagramBusinessID == "" {
				return nil, newValidationError("source_id", "page has no linked Instagram business account")
			}
			conn.PlatformAccountID = page.InstagramBusinessID
		}

	case models.SourceTypeGMBConnection:
		if req.Platform != platform.GMB {
			return nil, newValidationError("platform", "a Business Profile location can only back gmb accounts")
		}
		location, err := s.gc.GetLocationByID(ctx, req.SourceID)
		if err != nil {
			return nil, fmt.Errorf("error loading location: %w", err)
		}
		if location == nil {
			return nil, fmt.Errorf("%w: location %s", ErrNotFound, req.SourceID)
		}
		google, err := s.gc.GetByID(ctx, location.GoogleConnectionID)
		if err != nil {
			return nil, fmt.Errorf("error loading google connection: %w", err)
		}
		if google == nil || google.OrganizationID != organizationID {
			return nil, fmt.Errorf("%w: location %s", ErrNotFound, req.SourceID)
		}
		conn.DisplayName = location.Title
		conn.PlatformAccountID = location.LocationID

	default:
		return nil, fmt.Errorf("%w: connecting source type %q", ErrNotImplemented, req.SourceType)
	}

	if err := s.connections.Create(ctx, nil, conn); err != nil {
		return nil, fmt.Errorf("error saving connection: %w", err)
	}
	return conn, nil
}

func (s *connectionService) Disconnect(ctx context.Context, organizationID, connectionID string) error {
	conn, err := s.connections.GetByID(ctx, connectionID)
	if err != nil {
		return fmt.Errorf("error loading connection: %w", err)
	}
	if conn == nil || conn.OrganizationID != organizationID {
		return fmt.Errorf("%w: connection %s", ErrNotFound, connectionID)
	}
	if err := s.connections.UpdateStatus(ctx, conn.ID, models.ConnectionStatusDisconnected); err != nil {
		return fmt.Errorf("error disconnecting: %w", err)
	}
	return nil
}
