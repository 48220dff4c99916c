package transfer

import (
	"time"

	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/platform"
)

type CreatePostRequest struct {
	Platforms     []string           `json:"platforms"`
	Caption       string             `json:"caption"`
	Hashtags      []string           `json:"hashtags"`
	Media         []models.MediaItem `json:"media"`
	ConnectionIDs []string           `json:"connection_ids"`
}

// UpdatePostRequest replaces only the fields that are present.
type UpdatePostRequest struct {
	Platforms     []string           `json:"platforms,omitempty"`
	Caption       *string            `json:"caption,omitempty"`
	Hashtags      []string           `json:"hashtags,omitempty"`
	Media         []models.MediaItem `json:"media,omitempty"`
	ConnectionIDs []string           `json:"connection_ids,omitempty"`
}

type ValidatePostRequest struct {
	Platforms []string           `json:"platforms"`
	Caption   string             `json:"caption"`
	Hashtags  []string           `json:"hashtags"`
	Media     []models.MediaItem `json:"media"`
}

type PostAccountDetail struct {
	models.ContentPostAccount
	Platform    string                `json:"platform"`
	DisplayName string                `json:"display_name"`
	Result      *models.PublishResult `json:"result,omitempty"`
}

type PostDetail struct {
	*models.ContentPost
	Accounts []*PostAccountDetail `json:"accounts"`
}

type AccountPublishResult struct {
	ConnectionID   string     `json:"connection_id"`
	Platform       string     `json:"platform"`
	Success        bool       `json:"success"`
	PlatformPostID string     `json:"platform_post_id,omitempty"`
	Permalink      string     `json:"permalink,omitempty"`
	Error          string     `json:"error,omitempty"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
}

type PublishResponse struct {
	PostID    string `json:"post_id"`
	Status    string `json:"status"`
	LastError string `json:"last_error,omitempty"`
	// Results is keyed by platform connection id.
	Results map[string]*AccountPublishResult `json:"results"`
}

type PublishAsyncRequest struct {
	PublishAt *time.Time `json:"publish_at,omitempty"`
}

type PlatformSpec struct {
	Name        string          `json:"name"`
	DisplayName string          `json:"display_name"`
	Limits      platform.Limits `json:"limits"`
	Publishable bool            `json:"publishable"`
}
