package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/maheshrc27/contentflow/internal/transfer"
)

const maxGraphResponseBytes = 1 << 20

// MetaAPIError is a non-2xx answer from the Graph API.
type MetaAPIError struct {
	StatusCode int
	Code       int
	Subcode    int
	Message    string
}

func (e *MetaAPIError) Error() string {
	return e.Message
}

type graphClient struct {
	baseURL    string
	httpClient *http.Client
}

func newGraphClient(baseURL string, httpClient *http.Client) *graphClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &graphClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (g *graphClient) post(ctx context.Context, path, accessToken string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return g.do(req, accessToken, out)
}

func (g *graphClient) get(ctx context.Context, path, accessToken string, params url.Values, out any) error {
	target := g.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	return g.do(req, accessToken, out)
}

func (g *graphClient) do(req *http.Request, accessToken string, out any) error {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxGraphResponseBytes))
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseGraphError(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("error parsing response: %w", err)
	}
	return nil
}

// parseGraphError prefers the message in the Graph error envelope and falls
// back to the HTTP status when the body is not the expected JSON.
func parseGraphError(status int, body []byte) error {
	apiErr := &MetaAPIError{StatusCode: status}

	var envelope transfer.GraphErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Subcode = envelope.Error.ErrorSubcode
		apiErr.Message = envelope.Error.Message
		return apiErr
	}

	apiErr.Message = fmt.Sprintf("Meta API request failed with HTTP %d %s", status, http.StatusText(status))
	return apiErr
}
