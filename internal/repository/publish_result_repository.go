package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/contentflow/internal/models"
)

type PublishResultRepository interface {
	Upsert(ctx context.Context, result *models.PublishResult) error
	ListByPostID(ctx context.Context, postID string) ([]*models.PublishResult, error)
}

type publishResultRepository struct {
	db *sql.DB
}

func NewPublishResultRepository(db *sql.DB) PublishResultRepository {
	return &publishResultRepository{db: db}
}

// Upsert keeps one result per post account; a retry overwrites the previous attempt.
func (r *publishResultRepository) Upsert(ctx context.Context, result *models.PublishResult) error {
	query := `
		INSERT INTO publish_results (id, content_post_account_id, success, platform_post_id, permalink, error_message, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (content_post_account_id) DO UPDATE
		SET success = EXCLUDED.success,
			platform_post_id = EXCLUDED.platform_post_id,
			permalink = EXCLUDED.permalink,
			error_message = EXCLUDED.error_message,
			published_at = EXCLUDED.published_at,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		result.ID,
		result.ContentPostAccountID,
		result.Success,
		nullString(result.PlatformPostID),
		nullString(result.Permalink),
		nullString(result.ErrorMessage),
		result.PublishedAt,
	).Scan(&result.ID, &result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *publishResultRepository) ListByPostID(ctx context.Context, postID string) ([]*models.PublishResult, error) {
	if !validID(postID) {
		return nil, nil
	}
	query := `
		SELECT pr.id, pr.content_post_account_id, pr.success,
			COALESCE(pr.platform_post_id, ''), COALESCE(pr.permalink, ''), COALESCE(pr.error_message, ''),
			pr.published_at, pr.created_at, pr.updated_at
		FROM publish_results pr
		JOIN content_post_accounts cpa ON cpa.id = pr.content_post_account_id
		WHERE cpa.post_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var results []*models.PublishResult
	for rows.Next() {
		var pr models.PublishResult
		var publishedAt sql.NullTime
		if err := rows.Scan(&pr.ID, &pr.ContentPostAccountID, &pr.Success, &pr.PlatformPostID, &pr.Permalink,
			&pr.ErrorMessage, &publishedAt, &pr.CreatedAt, &pr.UpdatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		if publishedAt.Valid {
			pr.PublishedAt = &publishedAt.Time
		}
		results = append(results, &pr)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return results, nil
}
