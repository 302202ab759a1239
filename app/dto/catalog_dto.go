package dto

import (
	"time"

	"github.com/deliverycalc/quote-gateway/models"
)

// CatalogStatusResponse reports the state of the current catalog snapshot.
type CatalogStatusResponse struct {
	Loaded       bool      `json:"loaded"`
	Degraded     bool      `json:"degraded"`
	Factories    int       `json:"factories"`
	TariffRows   int       `json:"tariff_rows"`
	Categories   int       `json:"categories"`
	LoadedAt     time.Time `json:"loaded_at,omitempty"`
	LoadMessages []string  `json:"load_messages,omitempty"`
}

// CategoriesResponse maps category names to their subtypes.
type CategoriesResponse struct {
	Categories map[string][]string `json:"categories"`
}

// FactoryGroup is one factory with its products sorted for display.
type FactoryGroup struct {
	Name     string           `json:"name"`
	Lat      float64          `json:"lat"`
	Lon      float64          `json:"lon"`
	Contact  string           `json:"contact"`
	Products []models.Product `json:"products"`
}

// TariffRowView is one tariff band prepared for display.
type TariffRowView struct {
	DistanceMin    float64 `json:"distance_min"`
	DistanceMax    float64 `json:"distance_max"`
	Price          float64 `json:"price"`
	PerKm          float64 `json:"per_km"`
	Notes          string  `json:"notes"`
	IsOverflowBand bool    `json:"is_overflow_band"`
}

// TariffGroupView is one vehicle with its bands sorted for display.
type TariffGroupView struct {
	VehicleName string          `json:"vehicle_name"`
	CapacityTon float64         `json:"capacity_ton"`
	Tag         string          `json:"tag"`
	Rows        []TariffRowView `json:"rows"`
}

// SpecialVehiclesResponse lists selectable special equipment. An empty list
// is a valid response, not an error.
type SpecialVehiclesResponse struct {
	Vehicles []models.SpecialVehicle `json:"vehicles"`
}

// ReloadResponse reports an admin reload round trip.
type ReloadResponse struct {
	UpstreamMessage string                `json:"upstream_message,omitempty"`
	Factories       int                   `json:"factories"`
	Tariffs         int                   `json:"tariffs"`
	Catalog         CatalogStatusResponse `json:"catalog"`
}
