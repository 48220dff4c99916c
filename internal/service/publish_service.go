package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/platform"
	"github.com/maheshrc27/contentflow/internal/repository"
	"github.com/maheshrc27/contentflow/internal/transfer"
)

type PublishService interface {
	Publish(ctx context.Context, organizationID, postID string) (*transfer.PublishResponse, error)
}

// Publishers holds one client per platform that can be published to.
type Publishers struct {
	Facebook  PublishClient
	Instagram PublishClient
}

type publishService struct {
	log         *slog.Logger
	posts       repository.ContentPostRepository
	accounts    repository.ContentPostAccountRepository
	connections repository.PlatformConnectionRepository
	results     repository.PublishResultRepository
	creds       CredentialResolver
	publishers  Publishers
	now         func() time.Time
}

func NewPublishService(
	log *slog.Logger,
	posts repository.ContentPostRepository,
	accounts repository.ContentPostAccountRepository,
	connections repository.PlatformConnectionRepository,
	results repository.PublishResultRepository,
	creds CredentialResolver,
	publishers Publishers) PublishService {
	if log == nil {
		log = slog.Default()
	}
	return &publishService{
		log:         log,
		posts:       posts,
		accounts:    accounts,
		connections: connections,
		results:     results,
		creds:       creds,
		publishers:  publishers,
		now:         time.Now,
	}
}

// Publish claims the post, publishes it to every linked account in order and
// finalizes it. Per-account failures are returned as data in the result map.
func (s *publishService) Publish(ctx context.Context, organizationID, postID string) (*transfer.PublishResponse, error) {
	post, err := s.posts.GetByID(ctx, organizationID, postID)
	if err != nil {
		return nil, fmt.Errorf("error loading post: %w", err)
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
	}

	switch post.Status {
	case models.PostStatusPublished:
		return nil, fmt.Errorf("%w: post is already published", ErrConflict)
	case models.PostStatusPending:
		return nil, fmt.Errorf("%w: post is already being processed", ErrConflict)
	}

	accounts, err := s.accounts.ListByPostID(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading post accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, newValidationError("connection_ids", "post has no linked accounts to publish to")
	}

	claimed, err := s.posts.ClaimForPublish(ctx, organizationID, post.ID)
	if err != nil {
		return nil, fmt.Errorf("error claiming post: %w", err)
	}
	if !claimed {
		return nil, fmt.Errorf("%w: post is already published or being processed", ErrConflict)
	}

	// Once claimed the run goes to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	log := s.log.With("post_id", post.ID, "organization_id", organizationID)

	// Dispatch from the post as stored after the claim, not the pre-check read.
	post, accounts, err = s.loadClaimed(ctx, organizationID, post.ID)
	if err != nil {
		log.Error("error reloading claimed post", "error", err.Error())
		resp := &transfer.PublishResponse{
			PostID:    postID,
			Status:    models.PostStatusFailed,
			LastError: err.Error(),
			Results:   map[string]*transfer.AccountPublishResult{},
		}
		s.finalize(ctx, log, postID, resp.Status, resp.LastError)
		return resp, nil
	}

	log.Info("publishing post", "accounts", len(accounts))

	resp := &transfer.PublishResponse{
		PostID:  post.ID,
		Results: make(map[string]*transfer.AccountPublishResult, len(accounts)),
	}

	anySuccess := false
	for _, account := range accounts {
		result := s.publishAccount(ctx, post, account)
		resp.Results[account.ConnectionID] = result

		if result.Success {
			anySuccess = true
			log.Info("account published", "connection_id", account.ConnectionID, "platform", result.Platform, "platform_post_id", result.PlatformPostID)
		} else {
			resp.LastError = result.Error
			log.Warn("account publish failed", "connection_id", account.ConnectionID, "platform", result.Platform, "error", result.Error)
		}

		s.recordResult(ctx, account, result)
	}

	resp.Status = models.PostStatusFailed
	if anySuccess {
		resp.Status = models.PostStatusPublished
	}

	s.finalize(ctx, log, post.ID, resp.Status, resp.LastError)

	log.Info("post publish finished", "status", resp.Status)
	return resp, nil
}

func (s *publishService) loadClaimed(ctx context.Context, organizationID, postID string) (*models.ContentPost, []*models.ContentPostAccount, error) {
	post, err := s.posts.GetByID(ctx, organizationID, postID)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading post: %w", err)
	}
	if post == nil {
		return nil, nil, fmt.Errorf("post %s disappeared after claim", postID)
	}

	accounts, err := s.accounts.ListByPostID(ctx, post.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading post accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, nil, errors.New("post has no linked accounts to publish to")
	}
	return post, accounts, nil
}

// finalize writes the terminal status, trying once more before giving up.
// A post whose finalize fails twice stays pending.
func (s *publishService) finalize(ctx context.Context, log *slog.Logger, postID, status, lastError string) {
	err := s.posts.Finalize(ctx, postID, status, lastError)
	if err == nil {
		return
	}
	log.Warn("retrying post finalize", "status", status, "error", err.Error())

	if err := s.posts.Finalize(ctx, postID, status, lastError); err != nil {
		log.Error("error finalizing post, left pending", "status", status, "error", err.Error())
	}
}

func (s *publishService) publishAccount(ctx context.Context, post *models.ContentPost, account *models.ContentPostAccount) *transfer.AccountPublishResult {
	result := &transfer.AccountPublishResult{ConnectionID: account.ConnectionID}

	conn, err := s.connections.GetByID(ctx, account.ConnectionID)
	if err != nil {
		result.Error = fmt.Sprintf("error loading connection: %s", err.Error())
		return result
	}
	if conn == nil || conn.OrganizationID != post.OrganizationID {
		result.Error = fmt.Sprintf("connection %s not found", account.ConnectionID)
		return result
	}
	result.Platform = conn.Platform

	if conn.Status != models.ConnectionStatusActive {
		result.Error = fmt.Sprintf("connection %s is %s", conn.ID, conn.Status)
		return result
	}

	adapter, err := platform.Lookup(conn.Platform)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	creds, err := s.creds.ResolveCredentials(ctx, conn)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	client, err := s.clientFor(conn.Platform)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	outcome, err := client.Publish(ctx, &PublishRequest{
		Caption:     adapter.FormatCaption(post.Caption, post.Hashtags),
		Media:       post.Media,
		Credentials: creds,
	})
	if err != nil {
		result.Error = err.Error()
		return result
	}

	publishedAt := s.now()
	result.Success = true
	result.PlatformPostID = outcome.PlatformPostID
	result.Permalink = outcome.Permalink
	result.PublishedAt = &publishedAt
	return result
}

func (s *publishService) clientFor(name string) (PublishClient, error) {
	var client PublishClient
	switch name {
	case platform.Facebook:
		client = s.publishers.Facebook
	case platform.Instagram:
		client = s.publishers.Instagram
	case platform.GMB, platform.LinkedIn, platform.Twitter:
		return nil, fmt.Errorf("%w: publishing to %s", ErrNotImplemented, name)
	default:
		return nil, fmt.Errorf("%w: %s", platform.ErrUnsupportedPlatform, name)
	}
	if client == nil {
		return nil, fmt.Errorf("%w: no %s publish client configured", ErrNotImplemented, name)
	}
	return client, nil
}

// recordResult persists the attempt. A storage failure here is logged and the
// run continues with the remaining accounts.
func (s *publishService) recordResult(ctx context.Context, account *models.ContentPostAccount, result *transfer.AccountPublishResult) {
	row := &models.PublishResult{
		ID:                   uuid.NewString(),
		ContentPostAccountID: account.ID,
		Success:              result.Success,
		PlatformPostID:       result.PlatformPostID,
		Permalink:            result.Permalink,
		ErrorMessage:         result.Error,
		PublishedAt:          result.PublishedAt,
	}
	if err := s.results.Upsert(ctx, row); err != nil {
		s.log.Error("error saving publish result", "content_post_account_id", account.ID, "error", err.Error())
	}

	status := models.AccountStatusFailed
	if result.Success {
		status = models.AccountStatusPublished
	}
	if err := s.accounts.UpdateStatus(ctx, account.ID, status); err != nil {
		s.log.Error("error updating post account status", "content_post_account_id", account.ID, "error", err.Error())
	}
}

// IsPublishGuardError reports whether err came from the publish entry guards
// rather than from infrastructure.
func IsPublishGuardError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) || errors.Is(err, ErrValidation)
}
