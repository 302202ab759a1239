// Package services contains clients for the upstream quoting service.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deliverycalc/quote-gateway/app/middleware"
	"github.com/deliverycalc/quote-gateway/models"
)

// UpstreamError carries the HTTP status and response body of a failed
// upstream call so handlers can surface both.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream: status %d for %s: %s", e.StatusCode, e.Endpoint, e.Body)
}

// CatalogClient fetches the reference data the gateway serves.
type CatalogClient interface {
	GetCategories(ctx context.Context) (map[string][]string, error)
	GetFactories(ctx context.Context) ([]models.RawRecord, error)
	GetTariffs(ctx context.Context) ([]models.RawRecord, error)
}

type catalogClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewCatalogClient creates a catalog client against the quoting service.
func NewCatalogClient(baseURL string, timeout time.Duration, httpClient *http.Client) CatalogClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &catalogClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: httpClient,
	}
}

func (c *catalogClient) GetCategories(ctx context.Context) (map[string][]string, error) {
	var out map[string][]string
	if err := c.getJSON(ctx, "/api/categories", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string][]string{}
	}
	return out, nil
}

func (c *catalogClient) GetFactories(ctx context.Context) ([]models.RawRecord, error) {
	return c.getRecords(ctx, "/api/factories")
}

func (c *catalogClient) GetTariffs(ctx context.Context) ([]models.RawRecord, error) {
	return c.getRecords(ctx, "/api/tariffs")
}

func (c *catalogClient) getRecords(ctx context.Context, endpoint string) ([]models.RawRecord, error) {
	var out []models.RawRecord
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.RawRecord{}
	}
	return out, nil
}

// getJSON performs a GET and decodes the response into out. Non-2xx statuses
// become an UpstreamError carrying the body text; 204 leaves out untouched.
func (c *catalogClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		middleware.RecordUpstreamRequest(endpoint, 0)
		return fmt.Errorf("upstream: request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	middleware.RecordUpstreamRequest(endpoint, resp.StatusCode)

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("upstream: read %s: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("upstream: decode %s: %w", endpoint, err)
	}
	return nil
}
