package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/platform"
	"github.com/maheshrc27/contentflow/internal/repository"
	"github.com/maheshrc27/contentflow/internal/transfer"
)

type ContentService interface {
	Create(ctx context.Context, organizationID, userID string, req *transfer.CreatePostRequest) (*transfer.PostDetail, error)
	Get(ctx context.Context, organizationID, postID string) (*transfer.PostDetail, error)
	List(ctx context.Context, organizationID string, filter repository.PostFilter) ([]*models.ContentPost, error)
	Update(ctx context.Context, organizationID, postID string, req *transfer.UpdatePostRequest) (*transfer.PostDetail, error)
	Delete(ctx context.Context, organizationID, postID string) error
	ValidatePost(req *transfer.ValidatePostRequest) (*platform.ValidationResult, error)
	GetPlatformSpecs() []transfer.PlatformSpec
}

type contentService struct {
	tx          repository.Transactor
	posts       repository.ContentPostRepository
	accounts    repository.ContentPostAccountRepository
	connections repository.PlatformConnectionRepository
	results     repository.PublishResultRepository
}

func NewContentService(
	tx repository.Transactor,
	posts repository.ContentPostRepository,
	accounts repository.ContentPostAccountRepository,
	connections repository.PlatformConnectionRepository,
	results repository.PublishResultRepository) ContentService {
	return &contentService{
		tx:          tx,
		posts:       posts,
		accounts:    accounts,
		connections: connections,
		results:     results,
	}
}

func (s *contentService) Create(ctx context.Context, organizationID, userID string, req *transfer.CreatePostRequest) (*transfer.PostDetail, error) {
	post := &models.ContentPost{
		ID:             uuid.NewString(),
		OrganizationID: organizationID,
		Platforms:      uniqueStrings(req.Platforms),
		Caption:        req.Caption,
		Hashtags:       cleanHashtags(req.Hashtags),
		Media:          normalizeMedia(req.Media),
		Status:         models.PostStatusDraft,
		CreatedBy:      userID,
	}

	if err := validateContent(post); err != nil {
		return nil, err
	}

	connectionIDs := uniqueStrings(req.ConnectionIDs)
	if err := s.checkConnections(ctx, organizationID, post.Platforms, connectionIDs); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.posts.Create(ctx, tx, post); err != nil {
			return fmt.Errorf("error creating post: %w", err)
		}
		return s.linkAccounts(ctx, tx, post.ID, connectionIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, organizationID, post.ID)
}

func (s *contentService) Get(ctx context.Context, organizationID, postID string) (*transfer.PostDetail, error) {
	post, err := s.posts.GetByID(ctx, organizationID, postID)
	if err != nil {
		return nil, fmt.Errorf("error loading post: %w", err)
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
	}

	accounts, err := s.accounts.ListByPostID(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading post accounts: %w", err)
	}

	results, err := s.results.ListByPostID(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading publish results: %w", err)
	}
	resultByAccount := make(map[string]*models.PublishResult, len(results))
	for _, r := range results {
		resultByAccount[r.ContentPostAccountID] = r
	}

	conns, err := s.connections.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("error loading connections: %w", err)
	}
	connByID := make(map[string]*models.PlatformConnection, len(conns))
	for _, c := range conns {
		connByID[c.ID] = c
	}

	detail := &transfer.PostDetail{ContentPost: post, Accounts: make([]*transfer.PostAccountDetail, 0, len(accounts))}
	for _, a := range accounts {
		d := &transfer.PostAccountDetail{ContentPostAccount: *a, Result: resultByAccount[a.ID]}
		if c, ok := connByID[a.ConnectionID]; ok {
			d.Platform = c.Platform
			d.DisplayName = c.DisplayName
		}
		detail.Accounts = append(detail.Accounts, d)
	}
	return detail, nil
}

func (s *contentService) List(ctx context.Context, organizationID string, filter repository.PostFilter) ([]*models.ContentPost, error) {
	switch filter.Status {
	case "", models.PostStatusDraft, models.PostStatusPending, models.PostStatusPublished, models.PostStatusFailed:
	default:
		return nil, newValidationError("status", fmt.Sprintf("unknown status %q", filter.Status))
	}

	posts, err := s.posts.List(ctx, organizationID, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, nil
}

func (s *contentService) Update(ctx context.Context, organizationID, postID string, req *transfer.UpdatePostRequest) (*transfer.PostDetail, error) {
	post, err := s.posts.GetByID(ctx, organizationID, postID)
	if err != nil {
		return nil, fmt.Errorf("error loading post: %w", err)
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
	}
	if !post.IsEditable() {
		return nil, fmt.Errorf("%w: post is %s and can no longer be edited", ErrConflict, post.Status)
	}

	if req.Platforms != nil {
		post.Platforms = uniqueStrings(req.Platforms)
	}
	if req.Caption != nil {
		post.Caption = *req.Caption
	}
	if req.Hashtags != nil {
		post.Hashtags = cleanHashtags(req.Hashtags)
	}
	if req.Media != nil {
		post.Media = normalizeMedia(req.Media)
	}

	if err := validateContent(post); err != nil {
		return nil, err
	}

	replaceAccounts := req.ConnectionIDs != nil
	var connectionIDs []string
	if replaceAccounts {
		connectionIDs = uniqueStrings(req.ConnectionIDs)
	} else {
		existing, err := s.accounts.ListByPostID(ctx, post.ID)
		if err != nil {
			return nil, fmt.Errorf("error loading post accounts: %w", err)
		}
		for _, a := range existing {
			connectionIDs = append(connectionIDs, a.ConnectionID)
		}
	}
	if err := s.checkConnections(ctx, organizationID, post.Platforms, connectionIDs); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		updated, err := s.posts.UpdateContent(ctx, tx, post)
		if err != nil {
			return fmt.Errorf("error updating post: %w", err)
		}
		if !updated {
			return fmt.Errorf("%w: post was claimed for publishing", ErrConflict)
		}
		if !replaceAccounts {
			return nil
		}
		if err := s.accounts.RemoveByPostID(ctx, tx, post.ID); err != nil {
			return fmt.Errorf("error removing post accounts: %w", err)
		}
		return s.linkAccounts(ctx, tx, post.ID, connectionIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, organizationID, post.ID)
}

func (s *contentService) Delete(ctx context.Context, organizationID, postID string) error {
	post, err := s.posts.GetByID(ctx, organizationID, postID)
	if err != nil {
		return fmt.Errorf("error loading post: %w", err)
	}
	if post == nil {
		return fmt.Errorf("%w: post %s", ErrNotFound, postID)
	}
	if !post.IsEditable() {
		return fmt.Errorf("%w: %s posts cannot be deleted", ErrConflict, post.Status)
	}

	removed, err := s.posts.Remove(ctx, organizationID, postID)
	if err != nil {
		return fmt.Errorf("error deleting post: %w", err)
	}
	if !removed {
		return fmt.Errorf("%w: post was claimed for publishing", ErrConflict)
	}
	return nil
}

func (s *contentService) ValidatePost(req *transfer.ValidatePostRequest) (*platform.ValidationResult, error) {
	res, err := platform.ValidateAll(uniqueStrings(req.Platforms), platform.Content{
		Caption:  req.Caption,
		Hashtags: req.Hashtags,
		Media:    req.Media,
	})
	if err != nil {
		return nil, &ValidationError{Issues: []platform.Issue{{Field: "platforms", Message: err.Error()}}}
	}
	return &res, nil
}

func (s *contentService) GetPlatformSpecs() []transfer.PlatformSpec {
	names := platform.Names()
	specs := make([]transfer.PlatformSpec, 0, len(names))
	for _, name := range names {
		adapter, err := platform.Lookup(name)
		if err != nil {
			continue
		}
		specs = append(specs, transfer.PlatformSpec{
			Name:        adapter.Name(),
			DisplayName: adapter.DisplayName(),
			Limits:      adapter.Limits(),
			Publishable: name == platform.Facebook || name == platform.Instagram,
		})
	}
	return specs
}

// checkConnections requires every connection to belong to the organization,
// be active and target one of the post's platforms.
func (s *contentService) checkConnections(ctx context.Context, organizationID string, platforms, connectionIDs []string) error {
	targets := make(map[string]struct{}, len(platforms))
	for _, p := range platforms {
		targets[p] = struct{}{}
	}

	var issues []platform.Issue
	for _, id := range connectionIDs {
		conn, err := s.connections.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("error loading connection: %w", err)
		}
		if conn == nil || conn.OrganizationID != organizationID {
			return fmt.Errorf("%w: connection %s", ErrNotFound, id)
		}
		if conn.Status != models.ConnectionStatusActive {
			issues = append(issues, platform.Issue{Platform: conn.Platform, Field: "connection_ids",
				Message: fmt.Sprintf("connection %s is %s", conn.DisplayName, conn.Status)})
			continue
		}
		if _, ok := targets[conn.Platform]; !ok {
			issues = append(issues, platform.Issue{Platform: conn.Platform, Field: "connection_ids",
				Message: fmt.Sprintf("connection %s is a %s account but the post does not target %s", conn.DisplayName, conn.Platform, conn.Platform)})
		}
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func (s *contentService) linkAccounts(ctx context.Context, tx *sql.Tx, postID string, connectionIDs []string) error {
	for i, id := range connectionIDs {
		account := &models.ContentPostAccount{
			ID:           uuid.NewString(),
			PostID:       postID,
			ConnectionID: id,
			Status:       models.AccountStatusPending,
			Position:     i,
		}
		if err := s.accounts.Create(ctx, tx, account); err != nil {
			if repository.IsUniqueViolation(err) {
				return fmt.Errorf("%w: connection %s is already linked to this post", ErrConflict, id)
			}
			return fmt.Errorf("error linking connection %s: %w", id, err)
		}
	}
	return nil
}

func validateContent(post *models.ContentPost) error {
	res, err := platform.ValidateAll(post.Platforms, platform.Content{
		Caption:  post.Caption,
		Hashtags: post.Hashtags,
		Media:    post.Media,
	})
	if err != nil {
		if errors.Is(err, platform.ErrUnsupportedPlatform) {
			return &ValidationError{Issues: []platform.Issue{{Field: "platforms", Message: err.Error()}}}
		}
		return err
	}
	if !res.IsValid {
		return &ValidationError{Issues: res.Errors}
	}
	return nil
}

func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func cleanHashtags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, tag := range in {
		if t := strings.TrimSpace(tag); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func normalizeMedia(in []models.MediaItem) []models.MediaItem {
	out := make([]models.MediaItem, len(in))
	for i, m := range in {
		m.SourceURL = strings.TrimSpace(m.SourceURL)
		if m.Provenance == "" {
			m.Provenance = models.MediaProvenanceURL
		}
		out[i] = m
	}
	return out
}
