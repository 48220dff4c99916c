package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/maheshrc27/contentflow/internal/transfer"
)

type facebookPublisher struct {
	graph *graphClient
	log   *slog.Logger
}

func NewFacebookPublisher(baseURL string, httpClient *http.Client, log *slog.Logger) PublishClient {
	return &facebookPublisher{
		graph: newGraphClient(baseURL, httpClient),
		log:   log,
	}
}

func (f *facebookPublisher) Publish(ctx context.Context, req *PublishRequest) (*PublishOutcome, error) {
	pageID := req.Credentials.PageID
	if pageID == "" {
		return nil, errors.New("facebook page id is missing")
	}

	var postID string
	var err error

	switch {
	case len(req.Media) == 0:
		postID, err = f.publishText(ctx, pageID, req)
	case len(req.Media) == 1 && req.Media[0].IsVideo():
		postID, err = f.publishVideo(ctx, pageID, req)
	case len(req.Media) == 1:
		postID, err = f.publishPhoto(ctx, pageID, req)
	default:
		postID, err = f.publishMultiPhoto(ctx, pageID, req)
	}
	if err != nil {
		return nil, err
	}

	return &PublishOutcome{
		PlatformPostID: postID,
		Permalink:      "https://www.facebook.com/" + postID,
	}, nil
}

func (f *facebookPublisher) publishText(ctx context.Context, pageID string, req *PublishRequest) (string, error) {
	var result transfer.GraphIDResponse
	params := url.Values{"message": {req.Caption}}
	if err := f.graph.post(ctx, "/"+pageID+"/feed", req.Credentials.AccessToken, params, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", errors.New("no post ID returned from Facebook")
	}
	return result.ID, nil
}

func (f *facebookPublisher) publishPhoto(ctx context.Context, pageID string, req *PublishRequest) (string, error) {
	var result transfer.GraphIDResponse
	params := url.Values{"url": {req.Media[0].PublishURL()}}
	if req.Caption != "" {
		params.Set("caption", req.Caption)
	}
	if err := f.graph.post(ctx, "/"+pageID+"/photos", req.Credentials.AccessToken, params, &result); err != nil {
		return "", err
	}
	if result.PostID != "" {
		return result.PostID, nil
	}
	if result.ID == "" {
		return "", errors.New("no photo ID returned from Facebook")
	}
	return result.ID, nil
}

func (f *facebookPublisher) publishVideo(ctx context.Context, pageID string, req *PublishRequest) (string, error) {
	var result transfer.GraphIDResponse
	params := url.Values{"file_url": {req.Media[0].PublishURL()}}
	if req.Caption != "" {
		params.Set("description", req.Caption)
	}
	if err := f.graph.post(ctx, "/"+pageID+"/videos", req.Credentials.AccessToken, params, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", errors.New("no video ID returned from Facebook")
	}
	return result.ID, nil
}

// publishMultiPhoto uploads every photo unpublished and then attaches them to
// one feed post. Photos uploaded before a failed feed call stay on the page
// unattached; nothing removes them.
func (f *facebookPublisher) publishMultiPhoto(ctx context.Context, pageID string, req *PublishRequest) (string, error) {
	photoIDs := make([]string, 0, len(req.Media))
	for i, m := range req.Media {
		if m.IsVideo() {
			return "", fmt.Errorf("media item %d is a video; facebook multi-photo posts take images only", i)
		}

		var photo transfer.GraphIDResponse
		params := url.Values{
			"url":       {m.PublishURL()},
			"published": {"false"},
		}
		if err := f.graph.post(ctx, "/"+pageID+"/photos", req.Credentials.AccessToken, params, &photo); err != nil {
			return "", fmt.Errorf("error uploading photo %d: %w", i, err)
		}
		if photo.ID == "" {
			return "", fmt.Errorf("no photo ID returned from Facebook for photo %d", i)
		}
		photoIDs = append(photoIDs, photo.ID)
	}

	params := url.Values{"message": {req.Caption}}
	for i, id := range photoIDs {
		params.Set(fmt.Sprintf("attached_media[%d]", i), fmt.Sprintf(`{"media_fbid":"%s"}`, id))
	}

	var result transfer.GraphIDResponse
	if err := f.graph.post(ctx, "/"+pageID+"/feed", req.Credentials.AccessToken, params, &result); err != nil {
		f.log.Warn("facebook feed post failed after photo upload", "page_id", pageID, "unattached_photos", len(photoIDs))
		return "", err
	}
	if result.ID == "" {
		return "", errors.New("no post ID returned from Facebook")
	}
	return result.ID, nil
}
