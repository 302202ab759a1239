package dto

import (
	"time"

	"github.com/deliverycalc/quote-gateway/models"
)

// QuoteItemInput is one requested product line as submitted by the client.
// Quantity is deliberately untyped: legacy clients send it as a string.
type QuoteItemInput struct {
	Category string `json:"category" validate:"required"`
	Subtype  string `json:"subtype"`
	Quantity any    `json:"quantity"`
}

// SubmitQuoteRequest is the gateway quote submission payload. Coordinates
// arrive as free text "lat, lon" exactly as users paste them from a map.
type SubmitQuoteRequest struct {
	Coordinates     string           `json:"coordinates" validate:"required"`
	TransportType   string           `json:"transport_type" validate:"omitempty,oneof=auto manipulator long_haul"`
	AddManipulator  bool             `json:"add_manipulator"`
	SelectedSpecial string           `json:"selected_special"`
	Items           []QuoteItemInput `json:"items" validate:"required,min=1,dive"`
}

// SelectVariantRequest moves the selection of an existing session.
type SelectVariantRequest struct {
	Index *int `json:"index" validate:"required,min=0"`
}

// QuoteSessionResponse is a session with its variant state and the variant
// currently selected.
type QuoteSessionResponse struct {
	SessionID     string                `json:"session_id"`
	Variants      []models.QuoteVariant `json:"variants"`
	SelectedIndex int                   `json:"selected_index"`
	Selected      *models.QuoteVariant  `json:"selected,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

// QuoteHistoryItem is one past submission outcome.
type QuoteHistoryItem struct {
	UUID          string    `json:"uuid"`
	UploadLat     float64   `json:"upload_lat"`
	UploadLon     float64   `json:"upload_lon"`
	TransportType string    `json:"transport_type"`
	ItemCount     int       `json:"item_count"`
	VariantCount  int       `json:"variant_count"`
	TransportName string    `json:"transport_name"`
	TotalCost     float64   `json:"total_cost"`
	TotalWeight   float64   `json:"total_weight"`
	CreatedAt     time.Time `json:"created_at"`
}

// QuoteHistoryResponse lists past submissions, newest first.
type QuoteHistoryResponse struct {
	Items []QuoteHistoryItem `json:"items"`
}
