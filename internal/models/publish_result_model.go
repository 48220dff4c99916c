package models

import "time"

type PublishResult struct {
	ID                   string     `db:"id" json:"id"`
	ContentPostAccountID string     `db:"content_post_account_id" json:"content_post_account_id"`
	Success              bool       `db:"success" json:"success"`
	PlatformPostID       string     `db:"platform_post_id" json:"platform_post_id,omitempty"`
	Permalink            string     `db:"permalink" json:"permalink,omitempty"`
	ErrorMessage         string     `db:"error_message" json:"error_message,omitempty"`
	PublishedAt          *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}
