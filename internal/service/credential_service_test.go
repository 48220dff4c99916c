package service

import (
	"context"
	"errors"
	"testing"

	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/pkg/utils"
)

func testCipher(t *testing.T) *utils.TokenCipher {
	t.Helper()
	c, err := utils.NewTokenCipher([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("failed to create cipher: %v", err)
	}
	return c
}

func seal(t *testing.T, c *utils.TokenCipher, plain string) string {
	t.Helper()
	s, err := c.Encrypt(plain)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	return s
}

func TestResolveCredentials(t *testing.T) {
	cipher := testCipher(t)
	pages := &fakeMetaPageRepo{pages: map[string]*models.MetaPage{
		"mp-1": {ID: "mp-1", OrganizationID: testOrg, PageID: "page-1", PageAccessToken: seal(t, cipher, "page-token"), InstagramBusinessID: "ig-1"},
		"mp-2": {ID: "mp-2", OrganizationID: testOrg, PageID: "page-2", PageAccessToken: seal(t, cipher, "page-token-2")},
		"mp-9": {ID: "mp-9", OrganizationID: "org-2", PageID: "page-9", PageAccessToken: seal(t, cipher, "other-token")},
	}}
	google := &fakeGoogleRepo{
		connections: map[string]*models.GoogleConnection{
			"gc-1": {ID: "gc-1", OrganizationID: testOrg, AccessToken: seal(t, cipher, "google-token")},
			"gc-9": {ID: "gc-9", OrganizationID: "org-2", AccessToken: seal(t, cipher, "other-google-token")},
		},
		locations: map[string]*models.GMBLocation{
			"loc-1":      {ID: "loc-1", GoogleConnectionID: "gc-1", AccountID: "accounts/1", LocationID: "locations/9"},
			"loc-orphan": {ID: "loc-orphan", GoogleConnectionID: "gc-gone", LocationID: "locations/8"},
			"loc-9":      {ID: "loc-9", GoogleConnectionID: "gc-9", LocationID: "locations/7"},
		},
	}
	r := NewCredentialResolver(cipher, pages, google)

	tests := []struct {
		name    string
		conn    *models.PlatformConnection
		want    Credentials
		wantErr error
	}{
		{
			name: "facebook page",
			conn: &models.PlatformConnection{Platform: "facebook", SourceType: models.SourceTypeMetaPage, SourceID: "mp-1"},
			want: Credentials{AccessToken: "page-token", PageID: "page-1"},
		},
		{
			name: "instagram through page",
			conn: &models.PlatformConnection{Platform: "instagram", SourceType: models.SourceTypeMetaPage, SourceID: "mp-1"},
			want: Credentials{AccessToken: "page-token", PageID: "page-1", InstagramBusinessID: "ig-1"},
		},
		{
			name: "instagram falls back to account id",
			conn: &models.PlatformConnection{Platform: "instagram", SourceType: models.SourceTypeMetaPage, SourceID: "mp-2", PlatformAccountID: "ig-2"},
			want: Credentials{AccessToken: "page-token-2", PageID: "page-2", InstagramBusinessID: "ig-2"},
		},
		{
			name:    "instagram without business account",
			conn:    &models.PlatformConnection{Platform: "instagram", SourceType: models.SourceTypeMetaPage, SourceID: "mp-2"},
			wantErr: ErrNotFound,
		},
		{
			name:    "deleted page",
			conn:    &models.PlatformConnection{Platform: "facebook", SourceType: models.SourceTypeMetaPage, SourceID: "mp-gone"},
			wantErr: ErrNotFound,
		},
		{
			name: "business profile location",
			conn: &models.PlatformConnection{Platform: "gmb", SourceType: models.SourceTypeGMBConnection, SourceID: "loc-1"},
			want: Credentials{AccessToken: "google-token", GMBAccountID: "accounts/1", GMBLocationID: "locations/9"},
		},
		{
			name:    "page of another organization",
			conn:    &models.PlatformConnection{Platform: "facebook", SourceType: models.SourceTypeMetaPage, SourceID: "mp-9"},
			wantErr: ErrNotFound,
		},
		{
			name:    "location of another organization",
			conn:    &models.PlatformConnection{Platform: "gmb", SourceType: models.SourceTypeGMBConnection, SourceID: "loc-9"},
			wantErr: ErrNotFound,
		},
		{
			name:    "location without google connection",
			conn:    &models.PlatformConnection{Platform: "gmb", SourceType: models.SourceTypeGMBConnection, SourceID: "loc-orphan"},
			wantErr: ErrNotFound,
		},
		{
			name:    "linkedin",
			conn:    &models.PlatformConnection{Platform: "linkedin", SourceType: models.SourceTypeLinkedInConnection, SourceID: "li-1"},
			wantErr: ErrNotImplemented,
		},
		{
			name:    "unknown source",
			conn:    &models.PlatformConnection{Platform: "facebook", SourceType: "carrier_pigeon", SourceID: "x"},
			wantErr: ErrNotImplemented,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := *tt.conn
			conn.OrganizationID = testOrg
			got, err := r.ResolveCredentials(context.Background(), &conn)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveCredentials failed: %v", err)
			}
			if *got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, *got)
			}
		})
	}
}
