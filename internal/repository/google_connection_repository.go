package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/contentflow/internal/models"
)

type GoogleConnectionRepository interface {
	GetByID(ctx context.Context, id string) (*models.GoogleConnection, error)
	GetByOrganization(ctx context.Context, organizationID string) (*models.GoogleConnection, error)
	ListExpiring(ctx context.Context, before time.Time) ([]*models.GoogleConnection, error)
	SetToken(ctx context.Context, id, accessToken string, expiresAt time.Time) error
	GetLocationByID(ctx context.Context, id string) (*models.GMBLocation, error)
	ListLocations(ctx context.Context, googleConnectionID string) ([]*models.GMBLocation, error)
}

type googleConnectionRepository struct {
	db *sql.DB
}

func NewGoogleConnectionRepository(db *sql.DB) GoogleConnectionRepository {
	return &googleConnectionRepository{db: db}
}

const googleConnectionColumns = `id, organization_id, email, access_token, refresh_token, token_expires_at, ga_property_id, created_at, updated_at`

func scanGoogleConnection(row rowScanner) (*models.GoogleConnection, error) {
	var gc models.GoogleConnection
	err := row.Scan(&gc.ID, &gc.OrganizationID, &gc.Email, &gc.AccessToken, &gc.RefreshToken,
		&gc.TokenExpiresAt, &gc.GAPropertyID, &gc.CreatedAt, &gc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &gc, nil
}

func (r *googleConnectionRepository) GetByID(ctx context.Context, id string) (*models.GoogleConnection, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT ` + googleConnectionColumns + ` FROM google_connections WHERE id = $1`
	gc, err := scanGoogleConnection(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return gc, nil
}

func (r *googleConnectionRepository) GetByOrganization(ctx context.Context, organizationID string) (*models.GoogleConnection, error) {
	query := `SELECT ` + googleConnectionColumns + ` FROM google_connections WHERE organization_id = $1 ORDER BY updated_at DESC LIMIT 1`
	gc, err := scanGoogleConnection(r.db.QueryRowContext(ctx, query, organizationID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return gc, nil
}

// ListExpiring returns connections whose token expires before the given time.
func (r *googleConnectionRepository) ListExpiring(ctx context.Context, before time.Time) ([]*models.GoogleConnection, error) {
	query := `SELECT ` + googleConnectionColumns + ` FROM google_connections WHERE token_expires_at < $1 AND refresh_token <> ''`
	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var connections []*models.GoogleConnection
	for rows.Next() {
		gc, err := scanGoogleConnection(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		connections = append(connections, gc)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return connections, nil
}

func (r *googleConnectionRepository) SetToken(ctx context.Context, id, accessToken string, expiresAt time.Time) error {
	query := `
		UPDATE google_connections
		SET access_token = $1,
			token_expires_at = $2,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, accessToken, expiresAt, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		slog.Info("no rows affected; google connection may not exist")
		return errors.New("no rows affected; google connection may not exist")
	}
	return nil
}

func (r *googleConnectionRepository) GetLocationByID(ctx context.Context, id string) (*models.GMBLocation, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT id, google_connection_id, account_id, location_id, title, created_at FROM gmb_locations WHERE id = $1`
	var loc models.GMBLocation
	err := r.db.QueryRowContext(ctx, query, id).Scan(&loc.ID, &loc.GoogleConnectionID, &loc.AccountID, &loc.LocationID, &loc.Title, &loc.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &loc, nil
}

func (r *googleConnectionRepository) ListLocations(ctx context.Context, googleConnectionID string) ([]*models.GMBLocation, error) {
	query := `SELECT id, google_connection_id, account_id, location_id, title, created_at FROM gmb_locations WHERE google_connection_id = $1 ORDER BY title`
	rows, err := r.db.QueryContext(ctx, query, googleConnectionID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var locations []*models.GMBLocation
	for rows.Next() {
		var loc models.GMBLocation
		if err := rows.Scan(&loc.ID, &loc.GoogleConnectionID, &loc.AccountID, &loc.LocationID, &loc.Title, &loc.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		locations = append(locations, &loc)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return locations, nil
}
