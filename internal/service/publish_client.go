package service

import (
	"context"

	"github.com/maheshrc27/contentflow/internal/models"
)

type PublishRequest struct {
	Caption     string
	Media       []models.MediaItem
	Credentials *Credentials
}

type PublishOutcome struct {
	PlatformPostID string
	Permalink      string
}

// PublishClient posts formatted content to one platform account.
type PublishClient interface {
	Publish(ctx context.Context, req *PublishRequest) (*PublishOutcome, error)
}
