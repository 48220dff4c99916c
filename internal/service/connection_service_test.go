package service

import (
	"context"
	"errors"
	"testing"

	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/transfer"
)

func newConnectionFixture() (*fakeConnectionRepo, ConnectionService) {
	conns := newFakeConnectionRepo()
	pages := &fakeMetaPageRepo{pages: map[string]*models.MetaPage{
		"mp-1": {ID: "mp-1", OrganizationID: testOrg, PageID: "page-1", PageName: "Corner Bistro", InstagramBusinessID: "ig-1"},
		"mp-9": {ID: "mp-9", OrganizationID: "org-2", PageID: "page-9", PageName: "Elsewhere"},
	}}
	google := &fakeGoogleRepo{
		connections: map[string]*models.GoogleConnection{"gc-1": {ID: "gc-1", OrganizationID: testOrg}},
		locations:   map[string]*models.GMBLocation{"loc-1": {ID: "loc-1", GoogleConnectionID: "gc-1", LocationID: "locations/9", Title: "Corner Bistro Downtown"}},
	}
	return conns, NewConnectionService(conns, pages, google)
}

func TestConnect(t *testing.T) {
	tests := []struct {
		name        string
		req         transfer.ConnectRequest
		wantAccount string
		wantName    string
	}{
		{"facebook page", transfer.ConnectRequest{Platform: "facebook", SourceType: models.SourceTypeMetaPage, SourceID: "mp-1"}, "page-1", "Corner Bistro"},
		{"instagram account", transfer.ConnectRequest{Platform: "instagram", SourceType: models.SourceTypeMetaPage, SourceID: "mp-1"}, "ig-1", "Corner Bistro"},
		{"business profile", transfer.ConnectRequest{Platform: "gmb", SourceType: models.SourceTypeGMBConnection, SourceID: "loc-1"}, "locations/9", "Corner Bistro Downtown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svc := newConnectionFixture()
			conn, err := svc.Connect(context.Background(), testOrg, &tt.req)
			if err != nil {
				t.Fatalf("Connect failed: %v", err)
			}
			if conn.PlatformAccountID != tt.wantAccount || conn.DisplayName != tt.wantName {
				t.Errorf("Unexpected connection %+v", conn)
			}
			if conn.Status != models.ConnectionStatusActive {
				t.Errorf("Expected active, got %s", conn.Status)
			}
		})
	}
}

func TestConnectRejections(t *testing.T) {
	tests := []struct {
		name    string
		req     transfer.ConnectRequest
		wantErr error
	}{
		{"unknown platform", transfer.ConnectRequest{Platform: "myspace", SourceType: models.SourceTypeMetaPage, SourceID: "mp-1"}, ErrValidation},
		{"page of another organization", transfer.ConnectRequest{Platform: "facebook", SourceType: models.SourceTypeMetaPage, SourceID: "mp-9"}, ErrNotFound},
		{"platform mismatch", transfer.ConnectRequest{Platform: "gmb", SourceType: models.SourceTypeMetaPage, SourceID: "mp-1"}, ErrValidation},
		{"linkedin", transfer.ConnectRequest{Platform: "linkedin", SourceType: models.SourceTypeLinkedInConnection, SourceID: "li-1"}, ErrNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svc := newConnectionFixture()
			if _, err := svc.Connect(context.Background(), testOrg, &tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestReconnectReusesRow(t *testing.T) {
	conns, svc := newConnectionFixture()
	req := &transfer.ConnectRequest{Platform: "facebook", SourceType: models.SourceTypeMetaPage, SourceID: "mp-1"}

	first, err := svc.Connect(context.Background(), testOrg, req)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := svc.Disconnect(context.Background(), testOrg, first.ID); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	second, err := svc.Connect(context.Background(), testOrg, req)
	if err != nil {
		t.Fatalf("Reconnect failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("Expected the same row, got %s and %s", first.ID, second.ID)
	}
	if got, _ := conns.GetByID(context.Background(), first.ID); got.Status != models.ConnectionStatusActive {
		t.Errorf("Expected reactivated connection, got %s", got.Status)
	}
}

func TestDisconnectOtherOrganization(t *testing.T) {
	conns, svc := newConnectionFixture()
	conns.conns["conn-x"] = &models.PlatformConnection{ID: "conn-x", OrganizationID: "org-2", Status: models.ConnectionStatusActive}

	if err := svc.Disconnect(context.Background(), testOrg, "conn-x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}
