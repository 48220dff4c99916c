package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/maheshrc27/contentflow/internal/models"
)

type PostFilter struct {
	Status string
	Limit  int
	Offset int
}

type ContentPostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.ContentPost) error
	GetByID(ctx context.Context, organizationID, id string) (*models.ContentPost, error)
	List(ctx context.Context, organizationID string, filter PostFilter) ([]*models.ContentPost, error)
	UpdateContent(ctx context.Context, tx *sql.Tx, post *models.ContentPost) (bool, error)
	ClaimForPublish(ctx context.Context, organizationID, id string) (bool, error)
	Finalize(ctx context.Context, id, status, lastError string) error
	Remove(ctx context.Context, organizationID, id string) (bool, error)
}

type contentPostRepository struct {
	db *sql.DB
}

func NewContentPostRepository(db *sql.DB) ContentPostRepository {
	return &contentPostRepository{db: db}
}

const contentPostColumns = `id, organization_id, platforms, caption, hashtags, media, status, COALESCE(last_error, ''), created_by, created_at, updated_at`

func (r *contentPostRepository) Create(ctx context.Context, tx *sql.Tx, post *models.ContentPost) error {
	media, err := json.Marshal(post.Media)
	if err != nil {
		return fmt.Errorf("marshal media: %w", err)
	}

	query := `
		INSERT INTO content_posts (id, organization_id, platforms, caption, hashtags, media, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err = pick(r.db, tx).QueryRowContext(ctx, query,
		post.ID,
		post.OrganizationID,
		pq.Array(post.Platforms),
		post.Caption,
		pq.Array(post.Hashtags),
		media,
		post.Status,
		post.CreatedBy,
	).Scan(&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentPostRepository) GetByID(ctx context.Context, organizationID, id string) (*models.ContentPost, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT ` + contentPostColumns + ` FROM content_posts WHERE id = $1 AND organization_id = $2`
	post, err := scanContentPost(r.db.QueryRowContext(ctx, query, id, organizationID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *contentPostRepository) List(ctx context.Context, organizationID string, filter PostFilter) ([]*models.ContentPost, error) {
	query := `SELECT ` + contentPostColumns + ` FROM content_posts
		WHERE organization_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, query, organizationID, filter.Status, limit, filter.Offset)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	posts := []*models.ContentPost{}
	for rows.Next() {
		post, err := scanContentPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}

// UpdateContent writes content fields only while the post is still editable.
// It reports false when the row was claimed or published in the meantime.
func (r *contentPostRepository) UpdateContent(ctx context.Context, tx *sql.Tx, post *models.ContentPost) (bool, error) {
	if !validID(post.ID) {
		return false, nil
	}
	media, err := json.Marshal(post.Media)
	if err != nil {
		return false, fmt.Errorf("marshal media: %w", err)
	}

	query := `
		UPDATE content_posts
		SET platforms = $1,
			caption = $2,
			hashtags = $3,
			media = $4,
			updated_at = $5
		WHERE id = $6 AND organization_id = $7 AND status IN ('draft', 'failed')
	`
	result, err := pick(r.db, tx).ExecContext(ctx, query,
		pq.Array(post.Platforms), post.Caption, pq.Array(post.Hashtags), media, time.Now(), post.ID, post.OrganizationID)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

// ClaimForPublish moves a post to pending unless it is already pending or
// published. Only one concurrent caller can see true for the same post.
func (r *contentPostRepository) ClaimForPublish(ctx context.Context, organizationID, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	query := `
		UPDATE content_posts
		SET status = 'pending',
			updated_at = $1
		WHERE id = $2 AND organization_id = $3 AND status NOT IN ('published', 'pending')
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id, organizationID)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

func (r *contentPostRepository) Finalize(ctx context.Context, id, status, lastError string) error {
	query := `
		UPDATE content_posts
		SET status = $1,
			last_error = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, status, nullString(lastError), time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// Remove deletes a post that has never been claimed or has failed.
func (r *contentPostRepository) Remove(ctx context.Context, organizationID, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	query := `DELETE FROM content_posts WHERE id = $1 AND organization_id = $2 AND status IN ('draft', 'failed')`
	result, err := r.db.ExecContext(ctx, query, id, organizationID)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContentPost(row rowScanner) (*models.ContentPost, error) {
	var post models.ContentPost
	var media []byte
	err := row.Scan(
		&post.ID,
		&post.OrganizationID,
		pq.Array(&post.Platforms),
		&post.Caption,
		pq.Array(&post.Hashtags),
		&media,
		&post.Status,
		&post.LastError,
		&post.CreatedBy,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(media) > 0 {
		if err := json.Unmarshal(media, &post.Media); err != nil {
			return nil, fmt.Errorf("unmarshal media: %w", err)
		}
	}
	return &post, nil
}
