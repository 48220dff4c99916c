package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTransactor struct{}

func (fakeTransactor) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

type fakePostRepo struct {
	mu         sync.Mutex
	posts      map[string]*models.ContentPost
	claimCalls int
}

func newFakePostRepo(posts ...*models.ContentPost) *fakePostRepo {
	r := &fakePostRepo{posts: map[string]*models.ContentPost{}}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func (r *fakePostRepo) get(id string) *models.ContentPost {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (r *fakePostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.ContentPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	cp := *post
	r.posts[post.ID] = &cp
	return nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, organizationID, id string) (*models.ContentPost, error) {
	p := r.get(id)
	if p == nil || p.OrganizationID != organizationID {
		return nil, nil
	}
	return p, nil
}

func (r *fakePostRepo) List(ctx context.Context, organizationID string, filter repository.PostFilter) ([]*models.ContentPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ContentPost
	for _, p := range r.posts {
		if p.OrganizationID == organizationID && (filter.Status == "" || p.Status == filter.Status) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakePostRepo) UpdateContent(ctx context.Context, tx *sql.Tx, post *models.ContentPost) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[post.ID]
	if !ok || !p.IsEditable() {
		return false, nil
	}
	p.Platforms = post.Platforms
	p.Caption = post.Caption
	p.Hashtags = post.Hashtags
	p.Media = post.Media
	return true, nil
}

// ClaimForPublish mirrors the conditional UPDATE: the check and the write
// happen under one lock.
func (r *fakePostRepo) ClaimForPublish(ctx context.Context, organizationID, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claimCalls++
	p, ok := r.posts[id]
	if !ok || p.OrganizationID != organizationID {
		return false, nil
	}
	if p.Status == models.PostStatusPublished || p.Status == models.PostStatusPending {
		return false, nil
	}
	p.Status = models.PostStatusPending
	return true, nil
}

func (r *fakePostRepo) Finalize(ctx context.Context, id, status, lastError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return errors.New("no such post")
	}
	p.Status = status
	p.LastError = lastError
	return nil
}

func (r *fakePostRepo) Remove(ctx context.Context, organizationID, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok || p.OrganizationID != organizationID || !p.IsEditable() {
		return false, nil
	}
	delete(r.posts, id)
	return true, nil
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts []*models.ContentPostAccount
}

func (r *fakeAccountRepo) Create(ctx context.Context, tx *sql.Tx, a *models.ContentPostAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.PostID == a.PostID && existing.ConnectionID == a.ConnectionID {
			return errors.New("duplicate post account")
		}
	}
	cp := *a
	r.accounts = append(r.accounts, &cp)
	return nil
}

func (r *fakeAccountRepo) ListByPostID(ctx context.Context, postID string) ([]*models.ContentPostAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ContentPostAccount
	for _, a := range r.accounts {
		if a.PostID == postID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeAccountRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.ID == id {
			a.Status = status
			return nil
		}
	}
	return errors.New("no such post account")
}

func (r *fakeAccountRepo) RemoveByPostID(ctx context.Context, tx *sql.Tx, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.accounts[:0]
	for _, a := range r.accounts {
		if a.PostID != postID {
			kept = append(kept, a)
		}
	}
	r.accounts = kept
	return nil
}

func (r *fakeAccountRepo) status(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.ID == id {
			return a.Status
		}
	}
	return ""
}

type fakeConnectionRepo struct {
	mu    sync.Mutex
	conns map[string]*models.PlatformConnection
}

func newFakeConnectionRepo(conns ...*models.PlatformConnection) *fakeConnectionRepo {
	r := &fakeConnectionRepo{conns: map[string]*models.PlatformConnection{}}
	for _, c := range conns {
		r.conns[c.ID] = c
	}
	return r
}

func (r *fakeConnectionRepo) Create(ctx context.Context, tx *sql.Tx, pc *models.PlatformConnection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.conns {
		if c.OrganizationID == pc.OrganizationID && c.Platform == pc.Platform && c.PlatformAccountID == pc.PlatformAccountID {
			pc.ID = c.ID
		}
	}
	cp := *pc
	r.conns[pc.ID] = &cp
	return nil
}

func (r *fakeConnectionRepo) GetByID(ctx context.Context, id string) (*models.PlatformConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeConnectionRepo) ListByOrganization(ctx context.Context, organizationID string) ([]*models.PlatformConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PlatformConnection
	for _, c := range r.conns {
		if c.OrganizationID == organizationID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeConnectionRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	if !ok {
		return errors.New("no such connection")
	}
	c.Status = status
	return nil
}

type fakeResultRepo struct {
	mu      sync.Mutex
	results map[string]*models.PublishResult
	upserts int
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{results: map[string]*models.PublishResult{}}
}

func (r *fakeResultRepo) Upsert(ctx context.Context, result *models.PublishResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	cp := *result
	r.results[result.ContentPostAccountID] = &cp
	return nil
}

func (r *fakeResultRepo) ListByPostID(ctx context.Context, postID string) ([]*models.PublishResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PublishResult
	for _, res := range r.results {
		cp := *res
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeResultRepo) get(accountID string) *models.PublishResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.results[accountID]
}

type fakeMetaPageRepo struct {
	pages map[string]*models.MetaPage
}

func (r *fakeMetaPageRepo) GetByID(ctx context.Context, id string) (*models.MetaPage, error) {
	return r.pages[id], nil
}

type fakeGoogleRepo struct {
	mu          sync.Mutex
	connections map[string]*models.GoogleConnection
	locations   map[string]*models.GMBLocation
}

func (r *fakeGoogleRepo) GetByID(ctx context.Context, id string) (*models.GoogleConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connections[id], nil
}

func (r *fakeGoogleRepo) GetByOrganization(ctx context.Context, organizationID string) (*models.GoogleConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, gc := range r.connections {
		if gc.OrganizationID == organizationID {
			return gc, nil
		}
	}
	return nil, nil
}

func (r *fakeGoogleRepo) ListExpiring(ctx context.Context, before time.Time) ([]*models.GoogleConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.GoogleConnection
	for _, gc := range r.connections {
		if gc.TokenExpiresAt.Before(before) {
			out = append(out, gc)
		}
	}
	return out, nil
}

func (r *fakeGoogleRepo) SetToken(ctx context.Context, id, accessToken string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	gc, ok := r.connections[id]
	if !ok {
		return errors.New("no such google connection")
	}
	gc.AccessToken = accessToken
	gc.TokenExpiresAt = expiresAt
	return nil
}

func (r *fakeGoogleRepo) GetLocationByID(ctx context.Context, id string) (*models.GMBLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locations[id], nil
}

func (r *fakeGoogleRepo) ListLocations(ctx context.Context, googleConnectionID string) ([]*models.GMBLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.GMBLocation
	for _, l := range r.locations {
		if l.GoogleConnectionID == googleConnectionID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type staticResolver struct {
	err error
}

func (r staticResolver) ResolveCredentials(ctx context.Context, conn *models.PlatformConnection) (*Credentials, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &Credentials{
		AccessToken:         "token-" + conn.ID,
		PageID:              "page-1",
		InstagramBusinessID: "ig-1",
	}, nil
}

type fakePublishClient struct {
	calls   atomic.Int32
	mu      sync.Mutex
	seen    []*PublishRequest
	outcome *PublishOutcome
	err     error
	block   chan struct{}
}

func (c *fakePublishClient) Publish(ctx context.Context, req *PublishRequest) (*PublishOutcome, error) {
	c.calls.Add(1)
	c.mu.Lock()
	c.seen = append(c.seen, req)
	c.mu.Unlock()
	if c.block != nil {
		<-c.block
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.outcome, nil
}
