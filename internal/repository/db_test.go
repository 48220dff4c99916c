package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/maheshrc27/contentflow/internal/models"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"unique violation", &pq.Error{Code: "23505"}, true},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), true},
		{"foreign key violation", &pq.Error{Code: "23503"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestNullString(t *testing.T) {
	if ns := nullString(""); ns.Valid {
		t.Error("Expected empty string to be NULL")
	}
	if ns := nullString("x"); !ns.Valid || ns.String != "x" {
		t.Errorf("Expected valid x, got %+v", ns)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("failed to read embedded migrations: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("Expected two up and down migration pairs, got %d files", len(entries))
	}
}

// The repositories below have no database; a lookup that reached Postgres
// would panic.
func TestMalformedIDsAreNotFound(t *testing.T) {
	ctx := context.Background()
	posts := NewContentPostRepository(nil)
	accounts := NewContentPostAccountRepository(nil)
	connections := NewPlatformConnectionRepository(nil)
	results := NewPublishResultRepository(nil)
	pages := NewMetaPageRepository(nil)
	google := NewGoogleConnectionRepository(nil)

	for _, id := range []string{"abc", "", "123e4567-e89b-12d3-a456-42661417400"} {
		t.Run(id, func(t *testing.T) {
			if p, err := posts.GetByID(ctx, "org-1", id); p != nil || err != nil {
				t.Errorf("post: expected nil, nil, got %v, %v", p, err)
			}
			if ok, err := posts.ClaimForPublish(ctx, "org-1", id); ok || err != nil {
				t.Errorf("claim: expected false, nil, got %v, %v", ok, err)
			}
			if ok, err := posts.UpdateContent(ctx, nil, &models.ContentPost{ID: id, OrganizationID: "org-1"}); ok || err != nil {
				t.Errorf("update: expected false, nil, got %v, %v", ok, err)
			}
			if ok, err := posts.Remove(ctx, "org-1", id); ok || err != nil {
				t.Errorf("remove: expected false, nil, got %v, %v", ok, err)
			}
			if a, err := accounts.ListByPostID(ctx, id); a != nil || err != nil {
				t.Errorf("accounts: expected nil, nil, got %v, %v", a, err)
			}
			if c, err := connections.GetByID(ctx, id); c != nil || err != nil {
				t.Errorf("connection: expected nil, nil, got %v, %v", c, err)
			}
			if r, err := results.ListByPostID(ctx, id); r != nil || err != nil {
				t.Errorf("results: expected nil, nil, got %v, %v", r, err)
			}
			if mp, err := pages.GetByID(ctx, id); mp != nil || err != nil {
				t.Errorf("meta page: expected nil, nil, got %v, %v", mp, err)
			}
			if gc, err := google.GetByID(ctx, id); gc != nil || err != nil {
				t.Errorf("google connection: expected nil, nil, got %v, %v", gc, err)
			}
			if loc, err := google.GetLocationByID(ctx, id); loc != nil || err != nil {
				t.Errorf("location: expected nil, nil, got %v, %v", loc, err)
			}
		})
	}
}
