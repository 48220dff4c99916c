package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/contentflow/internal/models"
)

type MetaPageRepository interface {
	GetByID(ctx context.Context, id string) (*models.MetaPage, error)
}

type metaPageRepository struct {
	db *sql.DB
}

func NewMetaPageRepository(db *sql.DB) MetaPageRepository {
	return &metaPageRepository{db: db}
}

func (r *metaPageRepository) GetByID(ctx context.Context, id string) (*models.MetaPage, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `
		SELECT id, organization_id, page_id, page_name, page_access_token, instagram_business_id, created_at, updated_at
		FROM meta_pages
		WHERE id = $1
	`
	var mp models.MetaPage
	err := r.db.QueryRowContext(ctx, query, id).Scan(&mp.ID, &mp.OrganizationID, &mp.PageID, &mp.PageName,
		&mp.PageAccessToken, &mp.InstagramBusinessID, &mp.CreatedAt, &mp.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &mp, nil
}
