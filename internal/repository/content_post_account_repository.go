package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/contentflow/internal/models"
)

type ContentPostAccountRepository interface {
	Create(ctx context.Context, tx *sql.Tx, a *models.ContentPostAccount) error
	ListByPostID(ctx context.Context, postID string) ([]*models.ContentPostAccount, error)
	UpdateStatus(ctx context.Context, id, status string) error
	RemoveByPostID(ctx context.Context, tx *sql.Tx, postID string) error
}

type contentPostAccountRepository struct {
	db *sql.DB
}

func NewContentPostAccountRepository(db *sql.DB) ContentPostAccountRepository {
	return &contentPostAccountRepository{db: db}
}

func (r *contentPostAccountRepository) Create(ctx context.Context, tx *sql.Tx, a *models.ContentPostAccount) error {
	query := `
		INSERT INTO content_post_accounts (id, post_id, connection_id, status, position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := pick(r.db, tx).QueryRowContext(ctx, query, a.ID, a.PostID, a.ConnectionID, a.Status, a.Position).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentPostAccountRepository) ListByPostID(ctx context.Context, postID string) ([]*models.ContentPostAccount, error) {
	if !validID(postID) {
		return nil, nil
	}
	query := `
		SELECT id, post_id, connection_id, status, position, created_at, updated_at
		FROM content_post_accounts
		WHERE post_id = $1
		ORDER BY position, created_at
	`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var accounts []*models.ContentPostAccount
	for rows.Next() {
		var a models.ContentPostAccount
		if err := rows.Scan(&a.ID, &a.PostID, &a.ConnectionID, &a.Status, &a.Position, &a.CreatedAt, &a.UpdatedAt); err != nil {
			slog.Info(err.Error())
			return nil, fmt.Errorf("scan row: %w", err)
		}
		accounts = append(accounts, &a)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return accounts, nil
}

func (r *contentPostAccountRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE content_post_accounts SET status = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentPostAccountRepository) RemoveByPostID(ctx context.Context, tx *sql.Tx, postID string) error {
	query := `DELETE FROM content_post_accounts WHERE post_id = $1`
	_, err := pick(r.db, tx).ExecContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
