package service

import (
	"context"
	"fmt"

	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/platform"
	"github.com/maheshrc27/contentflow/internal/repository"
	"github.com/maheshrc27/contentflow/pkg/utils"
)

// Credentials is what a publish client needs to act as a connected account.
type Credentials struct {
	AccessToken         string
	PageID              string
	InstagramBusinessID string
	GMBAccountID        string
	GMBLocationID       string
}

type CredentialResolver interface {
	ResolveCredentials(ctx context.Context, conn *models.PlatformConnection) (*Credentials, error)
}

type credentialResolver struct {
	cipher *utils.TokenCipher
	mp     repository.MetaPageRepository
	gc     repository.GoogleConnectionRepository
}

func NewCredentialResolver(
	cipher *utils.TokenCipher,
	mp repository.MetaPageRepository,
	gc repository.GoogleConnectionRepository) CredentialResolver {
	return &credentialResolver{
		cipher: cipher,
		mp:     mp,
		gc:     gc,
	}
}

// ResolveCredentials reads the OAuth row behind a connection. Tokens are used
// as stored; refreshing them is the token refresh job's concern.
func (r *credentialResolver) ResolveCredentials(ctx context.Context, conn *models.PlatformConnection) (*Credentials, error) {
	switch conn.SourceType {
	case models.SourceTypeMetaPage:
		return r.resolveMetaPage(ctx, conn)
	case models.SourceTypeGMBConnection:
		return r.resolveGMBLocation(ctx, conn)
	case models.SourceTypeLinkedInConnection, models.SourceTypeTwitterConnection:
		return nil, fmt.Errorf("%w: credentials for source type %s", ErrNotImplemented, conn.SourceType)
	default:
		return nil, fmt.Errorf("%w: unknown source type %q", ErrNotImplemented, conn.SourceType)
	}
}

func (r *credentialResolver) resolveMetaPage(ctx context.Context, conn *models.PlatformConnection) (*Credentials, error) {
	page, err := r.mp.GetByID(ctx, conn.SourceID)
	if err != nil {
		return nil, fmt.Errorf("error loading meta page %s: %w", conn.SourceID, err)
	}
	if page == nil || page.OrganizationID != conn.OrganizationID {
		return nil, fmt.Errorf("%w: meta page %s", ErrNotFound, conn.SourceID)
	}

	token, err := r.cipher.Decrypt(page.PageAccessToken)
	if err != nil {
		return nil, fmt.Errorf("error decrypting page token: %w", err)
	}

	creds := &Credentials{AccessToken: token, PageID: page.PageID}
	if conn.Platform == platform.Instagram {
		creds.InstagramBusinessID = page.InstagramBusinessID
		if creds.InstagramBusinessID == "" {
			creds.InstagramBusinessID = conn.PlatformAccountID
		}
		if creds.InstagramBusinessID == "" {
			return nil, fmt.Errorf("%w: no instagram business account linked to page %s", ErrNotFound, page.PageID)
		}
	}
	return creds, nil
}

func (r *credentialResolver) resolveGMBLocation(ctx context.Context, conn *models.PlatformConnection) (*Credentials, error) {
	loc, err := r.gc.GetLocationByID(ctx, conn.SourceID)
	if err != nil {
		return nil, fmt.Errorf("error loading gmb location %s: %w", conn.SourceID, err)
	}
	if loc == nil {
		return nil, fmt.Errorf("%w: gmb location %s", ErrNotFound, conn.SourceID)
	}

	gc, err := r.gc.GetByID(ctx, loc.GoogleConnectionID)
	if err != nil {
		return nil, fmt.Errorf("error loading google connection %s: %w", loc.GoogleConnectionID, err)
	}
	if gc == nil || gc.OrganizationID != conn.OrganizationID {
		return nil, fmt.Errorf("%w: google connection %s", ErrNotFound, loc.GoogleConnectionID)
	}

	token, err := r.cipher.Decrypt(gc.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("error decrypting google token: %w", err)
	}

	return &Credentials{
		AccessToken:   token,
		GMBAccountID:  loc.AccountID,
		GMBLocationID: loc.LocationID,
	}, nil
}
