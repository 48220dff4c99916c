package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/contentflow/internal/models"
)

type PlatformConnectionRepository interface {
	Create(ctx context.Context, tx *sql.Tx, pc *models.PlatformConnection) error
	GetByID(ctx context.Context, id string) (*models.PlatformConnection, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]*models.PlatformConnection, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type platformConnectionRepository struct {
	db *sql.DB
}

func NewPlatformConnectionRepository(db *sql.DB) PlatformConnectionRepository {
	return &platformConnectionRepository{db: db}
}

const platformConnectionColumns = `id, organization_id, platform, platform_account_id, display_name, source_type, source_id, status, created_at, updated_at`

// Create inserts a connection, or refreshes the existing row for the same
// organization, platform and account.
func (r *platformConnectionRepository) Create(ctx context.Context, tx *sql.Tx, pc *models.PlatformConnection) error {
	query := `
		INSERT INTO platform_connections (id, organization_id, platform, platform_account_id, display_name, source_type, source_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (organization_id, platform, platform_account_id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
			source_type = EXCLUDED.source_type,
			source_id = EXCLUDED.source_id,
			status = EXCLUDED.status,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := pick(r.db, tx).QueryRowContext(ctx, query,
		pc.ID,
		pc.OrganizationID,
		pc.Platform,
		pc.PlatformAccountID,
		pc.DisplayName,
		pc.SourceType,
		pc.SourceID,
		pc.Status,
	).Scan(&pc.ID, &pc.CreatedAt, &pc.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *platformConnectionRepository) GetByID(ctx context.Context, id string) (*models.PlatformConnection, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT ` + platformConnectionColumns + ` FROM platform_connections WHERE id = $1`

	var pc models.PlatformConnection
	err := r.db.QueryRowContext(ctx, query, id).Scan(&pc.ID, &pc.OrganizationID, &pc.Platform, &pc.PlatformAccountID,
		&pc.DisplayName, &pc.SourceType, &pc.SourceID, &pc.Status, &pc.CreatedAt, &pc.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &pc, nil
}

func (r *platformConnectionRepository) ListByOrganization(ctx context.Context, organizationID string) ([]*models.PlatformConnection, error) {
	query := `SELECT ` + platformConnectionColumns + ` FROM platform_connections WHERE organization_id = $1 ORDER BY platform, display_name`
	rows, err := r.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	connections := []*models.PlatformConnection{}
	for rows.Next() {
		var pc models.PlatformConnection
		if err := rows.Scan(&pc.ID, &pc.OrganizationID, &pc.Platform, &pc.PlatformAccountID,
			&pc.DisplayName, &pc.SourceType, &pc.SourceID, &pc.Status, &pc.CreatedAt, &pc.UpdatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		connections = append(connections, &pc)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return connections, nil
}

func (r *platformConnectionRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE platform_connections SET status = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
