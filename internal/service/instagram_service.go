package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/transfer"
)

var (
	ErrContainerFailed  = errors.New("instagram media container failed")
	ErrContainerTimeout = errors.New("instagram media container not ready")
)

type containerState int

const (
	containerReady containerState = iota
	containerFailed
	containerTimedOut
)

type containerCheck struct {
	State  containerState
	Reason string
}

type instagramPublisher struct {
	graph        *graphClient
	log          *slog.Logger
	pollInterval time.Duration
	maxAttempts  int
}

func NewInstagramPublisher(baseURL string, httpClient *http.Client, pollInterval time.Duration, maxAttempts int, log *slog.Logger) PublishClient {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &instagramPublisher{
		graph:        newGraphClient(baseURL, httpClient),
		log:          log,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
	}
}

func (p *instagramPublisher) Publish(ctx context.Context, req *PublishRequest) (*PublishOutcome, error) {
	igID := req.Credentials.InstagramBusinessID
	if igID == "" {
		return nil, errors.New("instagram business account id is missing")
	}
	if len(req.Media) == 0 {
		return nil, errors.New("instagram posts need at least one media item")
	}

	var containerID string
	var err error
	if len(req.Media) == 1 {
		containerID, err = p.createContainer(ctx, igID, req.Credentials.AccessToken, mediaParams(req.Media[0], false, req.Caption))
	} else {
		containerID, err = p.createCarousel(ctx, igID, req)
	}
	if err != nil {
		return nil, err
	}

	if err := p.awaitReady(ctx, containerID, req.Credentials.AccessToken); err != nil {
		return nil, err
	}

	var published transfer.GraphIDResponse
	params := url.Values{"creation_id": {containerID}}
	if err := p.graph.post(ctx, "/"+igID+"/media_publish", req.Credentials.AccessToken, params, &published); err != nil {
		return nil, fmt.Errorf("error publishing container %s: %w", containerID, err)
	}
	if published.ID == "" {
		return nil, errors.New("no media ID returned from Instagram")
	}

	outcome := &PublishOutcome{PlatformPostID: published.ID}

	// The media is live at this point; a missing permalink does not fail it.
	var link transfer.PermalinkResponse
	err = p.graph.get(ctx, "/"+published.ID, req.Credentials.AccessToken, url.Values{"fields": {"permalink"}}, &link)
	if err != nil {
		p.log.Warn("instagram permalink lookup failed", "media_id", published.ID, "error", err.Error())
	} else {
		outcome.Permalink = link.Permalink
	}

	return outcome, nil
}

// createCarousel creates every child container, waits for all of them and
// only then creates the parent CAROUSEL container.
func (p *instagramPublisher) createCarousel(ctx context.Context, igID string, req *PublishRequest) (string, error) {
	token := req.Credentials.AccessToken

	children := make([]string, 0, len(req.Media))
	for i, m := range req.Media {
		id, err := p.createContainer(ctx, igID, token, mediaParams(m, true, ""))
		if err != nil {
			return "", fmt.Errorf("error creating carousel item %d: %w", i, err)
		}
		children = append(children, id)
	}

	for i, id := range children {
		if err := p.awaitReady(ctx, id, token); err != nil {
			return "", fmt.Errorf("carousel item %d: %w", i, err)
		}
	}

	params := url.Values{
		"media_type": {"CAROUSEL"},
		"children":   {strings.Join(children, ",")},
	}
	if req.Caption != "" {
		params.Set("caption", req.Caption)
	}
	return p.createContainer(ctx, igID, token, params)
}

func (p *instagramPublisher) createContainer(ctx context.Context, igID, token string, params url.Values) (string, error) {
	var result transfer.GraphIDResponse
	if err := p.graph.post(ctx, "/"+igID+"/media", token, params, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", errors.New("no container ID returned from Instagram")
	}
	return result.ID, nil
}

func (p *instagramPublisher) awaitReady(ctx context.Context, containerID, token string) error {
	check, err := p.waitForContainer(ctx, containerID, token)
	if err != nil {
		return err
	}
	switch check.State {
	case containerReady:
		return nil
	case containerFailed:
		return fmt.Errorf("%w: container %s: %s", ErrContainerFailed, containerID, check.Reason)
	default:
		return fmt.Errorf("%w: container %s still processing after %d status checks", ErrContainerTimeout, containerID, p.maxAttempts)
	}
}

// waitForContainer polls the container status until it finishes, fails or the
// attempt budget runs out. Transport and API errors end the wait immediately.
func (p *instagramPublisher) waitForContainer(ctx context.Context, containerID, token string) (containerCheck, error) {
	params := url.Values{"fields": {"status_code,status"}}

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		var status transfer.ContainerStatusResponse
		if err := p.graph.get(ctx, "/"+containerID, token, params, &status); err != nil {
			return containerCheck{}, fmt.Errorf("error checking container %s: %w", containerID, err)
		}

		switch status.StatusCode {
		case "FINISHED", "PUBLISHED":
			return containerCheck{State: containerReady}, nil
		case "ERROR", "EXPIRED":
			reason := status.Status
			if reason == "" {
				reason = status.StatusCode
			}
			return containerCheck{State: containerFailed, Reason: reason}, nil
		}

		if attempt < p.maxAttempts {
			if err := sleepContext(ctx, p.pollInterval); err != nil {
				return containerCheck{}, err
			}
		}
	}

	return containerCheck{State: containerTimedOut}, nil
}

func mediaParams(m models.MediaItem, carouselItem bool, caption string) url.Values {
	params := url.Values{}
	if m.IsVideo() {
		params.Set("video_url", m.PublishURL())
		if carouselItem {
			params.Set("media_type", "VIDEO")
		} else {
			params.Set("media_type", "REELS")
		}
	} else {
		params.Set("image_url", m.PublishURL())
	}
	if carouselItem {
		params.Set("is_carousel_item", "true")
	}
	if caption != "" {
		params.Set("caption", caption)
	}
	return params
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
