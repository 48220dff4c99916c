package models

import "time"

type PlatformConnection struct {
	ID                string    `db:"id" json:"id"`
	OrganizationID    string    `db:"organization_id" json:"organization_id"`
	Platform          string    `db:"platform" json:"platform"`
	PlatformAccountID string    `db:"platform_account_id" json:"platform_account_id"`
	DisplayName       string    `db:"display_name" json:"display_name"`
	SourceType        string    `db:"source_type" json:"source_type"`
	SourceID          string    `db:"source_id" json:"source_id"`
	Status            string    `db:"status" json:"status"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

const (
	ConnectionStatusActive       = "active"
	ConnectionStatusDisconnected = "disconnected"
	ConnectionStatusError        = "error"
)

const (
	SourceTypeMetaPage           = "meta_page"
	SourceTypeGMBConnection      = "gmb_connection"
	SourceTypeLinkedInConnection = "linkedin_connection"
	SourceTypeTwitterConnection  = "twitter_connection"
)

type ContentPostAccount struct {
	ID           string    `db:"id" json:"id"`
	PostID       string    `db:"post_id" json:"post_id"`
	ConnectionID string    `db:"connection_id" json:"connection_id"`
	Status       string    `db:"status" json:"status"` // pending, published, failed
	Position     int       `db:"position" json:"position"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

const (
	AccountStatusPending   = "pending"
	AccountStatusPublished = "published"
	AccountStatusFailed    = "failed"
)
