package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/transfer"
)

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memoryStorage) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = body
	s.types[key] = contentType
	return "https://media.example.com/" + key, nil
}

type failingTransport struct {
	t *testing.T
}

func (f failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.t.Error("Expected no outbound request")
	return nil, errors.New("unexpected request")
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

func serve(t *testing.T, body []byte, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestUploadMediaFromURL(t *testing.T) {
	srv := serve(t, pngBytes(t, 40, 30), http.StatusOK)
	storage := newMemoryStorage()
	svc := NewMediaService(discardLogger(), storage, srv.Client(), MediaOptions{MaxBytes: 1 << 20, AllowPrivateNetworks: true})

	item, err := svc.UploadMediaFromURL(context.Background(), testOrg, &transfer.MediaUploadRequest{
		URL:        srv.URL + "/photo.png",
		Provenance: models.MediaProvenanceAIGenerated,
	})
	if err != nil {
		t.Fatalf("UploadMediaFromURL failed: %v", err)
	}

	if item.MimeType != "image/png" {
		t.Errorf("Expected image/png, got %s", item.MimeType)
	}
	if item.Width != 40 || item.Height != 30 {
		t.Errorf("Expected 40x30, got %dx%d", item.Width, item.Height)
	}
	if item.Provenance != models.MediaProvenanceAIGenerated {
		t.Errorf("Expected provenance kept, got %s", item.Provenance)
	}
	if !strings.HasPrefix(item.StoredURL, "https://media.example.com/"+testOrg+"/") || !strings.HasSuffix(item.StoredURL, ".png") {
		t.Errorf("Unexpected stored url %s", item.StoredURL)
	}
	if item.PublishURL() != item.StoredURL {
		t.Error("Expected the mirrored copy to be the publish url")
	}
	if len(storage.objects) != 1 {
		t.Errorf("Expected one stored object, got %d", len(storage.objects))
	}
}

func TestUploadMediaBlocksMetadataBeforeFetch(t *testing.T) {
	client := &http.Client{Transport: failingTransport{t: t}}
	storage := newMemoryStorage()

	for _, allowPrivate := range []bool{false, true} {
		svc := NewMediaService(discardLogger(), storage, client, MediaOptions{AllowPrivateNetworks: allowPrivate})

		_, err := svc.UploadMediaFromURL(context.Background(), testOrg, &transfer.MediaUploadRequest{
			URL: "http://169.254.169.254/latest/meta-data/iam/security-credentials/",
		})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	}
	if len(storage.objects) != 0 {
		t.Error("Expected nothing stored")
	}
}

func TestUploadMediaRejections(t *testing.T) {
	tests := []struct {
		name   string
		body   []byte
		status int
		max    int64
	}{
		{"not media", []byte("<html>hello</html>"), http.StatusOK, 1 << 20},
		{"upstream error", []byte("nope"), http.StatusNotFound, 1 << 20},
		{"too large", bytes.Repeat([]byte{0xFF}, 2048), http.StatusOK, 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.body, tt.status)
			storage := newMemoryStorage()
			svc := NewMediaService(discardLogger(), storage, srv.Client(), MediaOptions{MaxBytes: tt.max, AllowPrivateNetworks: true})

			_, err := svc.UploadMediaFromURL(context.Background(), testOrg, &transfer.MediaUploadRequest{URL: srv.URL})
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
			if len(storage.objects) != 0 {
				t.Error("Expected nothing stored")
			}
		})
	}
}

func TestGuardedClientRefusesLoopbackAtDial(t *testing.T) {
	srv := serve(t, []byte("ok"), http.StatusOK)
	client := NewGuardedHTTPClient(0, false)

	_, err := client.Get(srv.URL)
	if !errors.Is(err, ErrBlockedURL) {
		t.Fatalf("Expected dial to be refused, got %v", err)
	}

	resp, err := NewGuardedHTTPClient(0, true).Get(srv.URL)
	if err != nil {
		t.Fatalf("Expected private access when allowed, got %v", err)
	}
	resp.Body.Close()
}
