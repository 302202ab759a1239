package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deliverycalc/quote-gateway/app/middleware"
	"github.com/deliverycalc/quote-gateway/models"
)

// ErrMalformedResponse marks a quote response that decodes as JSON but
// carries none of the known shapes.
var ErrMalformedResponse = errors.New("upstream: malformed quote response")

// ReloadResult is the upstream response to an admin data reload.
type ReloadResult struct {
	Message   string `json:"message"`
	Factories int    `json:"factories"`
	Tariffs   int    `json:"tariffs"`
}

// QuoteClient submits quote requests and admin commands upstream.
type QuoteClient interface {
	SubmitQuote(ctx context.Context, req *models.QuoteRequest) ([]models.QuoteVariant, error)
	TriggerReload(ctx context.Context) (*ReloadResult, error)
}

type quoteClient struct {
	BaseURL    string
	AdminToken string
	HTTPClient *http.Client
}

// NewQuoteClient creates a quote client against the quoting service. The
// admin token is forwarded on reload calls only.
func NewQuoteClient(baseURL, adminToken string, timeout time.Duration, httpClient *http.Client) QuoteClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &quoteClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		AdminToken: adminToken,
		HTTPClient: httpClient,
	}
}

func (c *quoteClient) SubmitQuote(ctx context.Context, quoteReq *models.QuoteRequest) ([]models.QuoteVariant, error) {
	payload, err := json.Marshal(quoteReq)
	if err != nil {
		return nil, err
	}
	body, err := c.post(ctx, "/api/quote", payload, nil)
	if err != nil {
		return nil, err
	}
	return DecodeQuoteResponse(body)
}

func (c *quoteClient) TriggerReload(ctx context.Context) (*ReloadResult, error) {
	headers := map[string]string{}
	if c.AdminToken != "" {
		headers["X-Admin-Token"] = c.AdminToken
	}
	body, err := c.post(ctx, "/admin/reload", []byte("{}"), headers)
	if err != nil {
		return nil, err
	}
	var out ReloadResult
	if len(body) > 0 {
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("upstream: decode /admin/reload: %w", err)
		}
	}
	return &out, nil
}

func (c *quoteClient) post(ctx context.Context, endpoint string, payload []byte, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		middleware.RecordUpstreamRequest(endpoint, 0)
		return nil, fmt.Errorf("upstream: request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	middleware.RecordUpstreamRequest(endpoint, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("upstream: read %s: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// DecodeQuoteResponse normalizes the three quote response shapes into one
// variant list:
//   - {"variants": [...]} is decoded directly
//   - {"result": {...}} is unwrapped first, then re-examined
//   - legacy flat fields (totalCost, materialCost, ...) synthesize a single
//     variant with tripCount 0, empty transportDetails and empty details
//     when those fields are absent
//
// A response matching none of the shapes fails with ErrMalformedResponse.
func DecodeQuoteResponse(body []byte) ([]models.QuoteVariant, error) {
	var rec models.RawRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return variantsFromEnvelope(rec, true)
}

func variantsFromEnvelope(rec models.RawRecord, allowUnwrap bool) ([]models.QuoteVariant, error) {
	if allowUnwrap {
		if inner := rec.Map("result"); len(inner) > 0 {
			return variantsFromEnvelope(models.RawRecord(inner), false)
		}
	}
	if v, ok := rec["variants"]; ok && v != nil {
		variants := make([]models.QuoteVariant, 0)
		for _, el := range rec.List("variants") {
			variants = append(variants, models.VariantFromRecord(el))
		}
		return variants, nil
	}
	if rec.HasLegacyQuoteFields() {
		return []models.QuoteVariant{models.VariantFromRecord(rec)}, nil
	}
	return nil, ErrMalformedResponse
}
