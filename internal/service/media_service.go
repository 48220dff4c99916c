package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var allowedMediaTypes = map[string]struct{}{
	"jpg": {}, "png": {}, "gif": {}, "webp": {}, "mp4": {}, "mov": {},
}

type MediaService interface {
	UploadMediaFromURL(ctx context.Context, organizationID string, req *transfer.MediaUploadRequest) (*models.MediaItem, error)
}

type MediaOptions struct {
	MaxBytes int64
	// AllowPrivateNetworks lets loopback and private hosts through. Metadata
	// endpoints are refused regardless.
	AllowPrivateNetworks bool
}

type mediaService struct {
	log        *slog.Logger
	storage    ObjectStorage
	httpClient *http.Client
	opts       MediaOptions
}

func NewMediaService(log *slog.Logger, storage ObjectStorage, httpClient *http.Client, opts MediaOptions) MediaService {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 25 << 20
	}
	return &mediaService{
		log:        log,
		storage:    storage,
		httpClient: httpClient,
		opts:       opts,
	}
}

// UploadMediaFromURL copies a remote image or video into object storage so
// platforms fetch it from a stable public URL.
func (s *mediaService) UploadMediaFromURL(ctx context.Context, organizationID string, req *transfer.MediaUploadRequest) (*models.MediaItem, error) {
	u, err := CheckFetchURL(req.URL, s.opts.AllowPrivateNetworks)
	if err != nil {
		s.log.Warn("blocked media url", "organization_id", organizationID, "error", err.Error())
		return nil, newValidationError("url", err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, newValidationError("url", err.Error())
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, ErrBlockedURL) {
			return nil, newValidationError("url", err.Error())
		}
		return nil, fmt.Errorf("error fetching media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newValidationError("url", fmt.Sprintf("fetching media returned HTTP %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.opts.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("error reading media: %w", err)
	}
	if int64(len(body)) > s.opts.MaxBytes {
		return nil, newValidationError("url", fmt.Sprintf("media is larger than %d bytes", s.opts.MaxBytes))
	}

	kind, err := filetype.Match(body)
	if err != nil || kind == types.Unknown {
		return nil, newValidationError("url", "unrecognized media type")
	}
	if _, ok := allowedMediaTypes[kind.Extension]; !ok {
		return nil, newValidationError("url", fmt.Sprintf("media type %s is not allowed", kind.Extension))
	}

	item := &models.MediaItem{
		SourceURL:  req.URL,
		MimeType:   kind.MIME.Value,
		Provenance: req.Provenance,
	}
	if item.Provenance == "" {
		item.Provenance = models.MediaProvenanceURL
	}

	if filetype.IsImage(body) {
		if dims, _, err := image.DecodeConfig(bytes.NewReader(body)); err == nil {
			item.Width = dims.Width
			item.Height = dims.Height
		} else {
			s.log.Debug("could not read image dimensions", "type", kind.Extension, "error", err.Error())
		}
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("error generating media key: %w", err)
	}
	key := fmt.Sprintf("%s/%s.%s", organizationID, id, kind.Extension)

	storedURL, err := s.storage.Put(ctx, key, body, kind.MIME.Value)
	if err != nil {
		return nil, fmt.Errorf("error storing media: %w", err)
	}
	item.StoredURL = storedURL

	s.log.Info("media mirrored", "organization_id", organizationID, "key", key, "bytes", len(body))
	return item, nil
}
