package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliverycalc/quote-gateway/models"
)

// roundTripFunc lets a test stand in for the upstream service.
type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func fakeHTTPClient(status int, body string, capture *http.Request) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if capture != nil {
				*capture = *req
			}
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(strings.NewReader(body)),
				Header:     http.Header{"Content-Type": []string{"application/json"}},
			}, nil
		}),
	}
}

func TestDecodeQuoteResponseVariants(t *testing.T) {
	body := `{"success": true, "variants": [
		{"transportName": "КамАЗ", "totalCost": 100, "tripCount": 2},
		{"transportName": "Газель", "totalCost": 80}
	]}`

	variants, err := DecodeQuoteResponse([]byte(body))
	require.NoError(t, err)
	require.Len(t, variants, 2)
	assert.Equal(t, "КамАЗ", variants[0].TransportName)
	assert.Equal(t, 2, variants[0].TripCount)
	assert.Equal(t, 80.0, variants[1].TotalCost)
}

func TestDecodeQuoteResponseEmptyVariants(t *testing.T) {
	variants, err := DecodeQuoteResponse([]byte(`{"variants": []}`))
	require.NoError(t, err)
	assert.NotNil(t, variants)
	assert.Empty(t, variants)
}

func TestDecodeQuoteResponseResultWrapped(t *testing.T) {
	body := `{"result": {"variants": [{"transportName": "КамАЗ", "totalCost": 100}]}}`

	variants, err := DecodeQuoteResponse([]byte(body))
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "КамАЗ", variants[0].TransportName)
}

func TestDecodeQuoteResponseLegacyFlat(t *testing.T) {
	body := `{"totalCost": 150, "materialCost": 100, "deliveryCost": 50,
		"totalWeight": 12.5, "transportName": "КамАЗ"}`

	variants, err := DecodeQuoteResponse([]byte(body))
	require.NoError(t, err)
	require.Len(t, variants, 1)

	v := variants[0]
	assert.Equal(t, 150.0, v.TotalCost)
	assert.Equal(t, "КамАЗ", v.TransportName)
	assert.Zero(t, v.TripCount)
	assert.NotNil(t, v.TransportDetails)
	assert.Empty(t, v.TransportDetails)
	assert.NotNil(t, v.Details)
	assert.Empty(t, v.Details)
}

func TestDecodeQuoteResponseLegacyMatchesNativeSingleVariant(t *testing.T) {
	legacy := `{"totalCost": 150, "materialCost": 100, "deliveryCost": 50,
		"totalWeight": 12.5, "transportName": "КамАЗ", "trip_count": 2}`
	native := `{"variants": [{"totalCost": 150, "materialCost": 100, "deliveryCost": 50,
		"totalWeight": 12.5, "transportName": "КамАЗ", "tripCount": 2}]}`

	fromLegacy, err := DecodeQuoteResponse([]byte(legacy))
	require.NoError(t, err)
	fromNative, err := DecodeQuoteResponse([]byte(native))
	require.NoError(t, err)
	assert.Equal(t, fromNative, fromLegacy)
}

func TestDecodeQuoteResponseResultWrappedLegacy(t *testing.T) {
	body := `{"result": {"totalCost": 90, "transportName": "Газель"}}`

	variants, err := DecodeQuoteResponse([]byte(body))
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, 90.0, variants[0].TotalCost)
}

func TestDecodeQuoteResponseMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown object", `{"success": true}`},
		{"not json", `<html>err</html>`},
		{"empty object", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeQuoteResponse([]byte(tt.body))
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestSubmitQuoteSendsWirePayload(t *testing.T) {
	var captured http.Request
	client := NewQuoteClient("http://upstream", "", time.Second, fakeHTTPClient(200, `{"variants": []}`, &captured))

	req := &models.QuoteRequest{
		UploadLat:      55.75,
		UploadLon:      37.61,
		TransportType:  models.TransportAuto,
		AddManipulator: true,
		Items:          []models.QuoteLineItem{{Category: "sand", Subtype: "river", Quantity: 3}},
	}
	_, err := client.SubmitQuote(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "/api/quote", captured.URL.Path)
	assert.Equal(t, "application/json", captured.Header.Get("Content-Type"))
}

func TestSubmitQuoteUpstreamErrorCarriesStatusAndBody(t *testing.T) {
	client := NewQuoteClient("http://upstream", "", time.Second, fakeHTTPClient(500, `data not loaded`, nil))

	_, err := client.SubmitQuote(context.Background(), &models.QuoteRequest{})
	require.Error(t, err)

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, 500, ue.StatusCode)
	assert.Equal(t, "data not loaded", ue.Body)
	assert.Contains(t, ue.Error(), "500")
	assert.Contains(t, ue.Error(), "data not loaded")
}

func TestTriggerReloadForwardsAdminToken(t *testing.T) {
	var captured http.Request
	client := NewQuoteClient("http://upstream", "secret", time.Second,
		fakeHTTPClient(200, `{"message": "reloaded", "factories": 12, "tariffs": 40}`, &captured))

	out, err := client.TriggerReload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "secret", captured.Header.Get("X-Admin-Token"))
	assert.Equal(t, "reloaded", out.Message)
	assert.Equal(t, 12, out.Factories)
}
