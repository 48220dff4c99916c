package models

import (
	"strings"
	"time"
)

type ContentPost struct {
	ID             string      `db:"id" json:"id"`
	OrganizationID string      `db:"organization_id" json:"organization_id"`
	Platforms      []string    `db:"platforms" json:"platforms"`
	Caption        string      `db:"caption" json:"caption"`
	Hashtags       []string    `db:"hashtags" json:"hashtags"`
	Media          []MediaItem `db:"media" json:"media"`
	Status         string      `db:"status" json:"status"` // draft, pending, published, failed
	LastError      string      `db:"last_error" json:"last_error,omitempty"`
	CreatedBy      string      `db:"created_by" json:"created_by"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`
}

// MediaItem is stored inline on the post as JSON.
type MediaItem struct {
	SourceURL  string `json:"source_url"`
	StoredURL  string `json:"stored_url,omitempty"`
	MimeType   string `json:"mime_type,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Provenance string `json:"provenance,omitempty"`
}

// PublishURL prefers the mirrored copy over the original source.
func (m MediaItem) PublishURL() string {
	if m.StoredURL != "" {
		return m.StoredURL
	}
	return m.SourceURL
}

func (m MediaItem) IsVideo() bool {
	return strings.HasPrefix(m.MimeType, "video/")
}

const (
	PostStatusDraft     = "draft"
	PostStatusPending   = "pending"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
)

const (
	MediaProvenanceUpload      = "upload"
	MediaProvenanceURL         = "url"
	MediaProvenanceAIGenerated = "ai_generated"
)

// IsEditable reports whether content fields may still change.
func (p *ContentPost) IsEditable() bool {
	return p.Status == PostStatusDraft || p.Status == PostStatusFailed
}
