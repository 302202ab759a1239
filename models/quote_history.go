package models

import (
	"time"

	"github.com/google/uuid"
)

// QuoteHistory is one persisted quote submission outcome.
// Table: quote_history
// Indices on uuid and created_at; variants themselves live in the session
// store, only the headline numbers are kept here.
type QuoteHistory struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_quote_history_uuid" json:"uuid"`

	UploadLat     float64 `gorm:"type:numeric(10,6);not null" json:"upload_lat"`
	UploadLon     float64 `gorm:"type:numeric(10,6);not null" json:"upload_lon"`
	TransportType string  `gorm:"size:32;not null" json:"transport_type"`
	ItemCount     int     `gorm:"not null" json:"item_count"`

	ClientIP string `gorm:"size:64" json:"client_ip,omitempty"`

	VariantCount  int     `gorm:"not null" json:"variant_count"`
	TransportName string  `gorm:"size:255" json:"transport_name"`
	TotalCost     float64 `gorm:"type:numeric(14,2)" json:"total_cost"`
	TotalWeight   float64 `gorm:"type:numeric(14,3)" json:"total_weight"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_quote_history_created_at" json:"created_at"`
}

func (QuoteHistory) TableName() string {
	return "quote_history"
}

// QuoteHistoryFilter represents filter criteria for history queries
type QuoteHistoryFilter struct {
	UUID          *uuid.UUID
	TransportType *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Limit         int
}
