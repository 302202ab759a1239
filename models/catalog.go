package models

import (
	"sort"
	"time"

	"github.com/deliverycalc/quote-gateway/utils"
)

// Product is one purchasable item a factory produces.
type Product struct {
	Category         string  `json:"category"`
	Subtype          string  `json:"subtype"`
	WeightPerItem    float64 `json:"weight_per_item"`
	MaxPerTrip       int     `json:"max_per_trip"`
	SpecialThreshold float64 `json:"special_threshold"`
	Price            float64 `json:"price"`
}

// Factory is a production site with its product list.
type Factory struct {
	Name     string    `json:"name"`
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
	Contact  string    `json:"contact"`
	Products []Product `json:"products"`
}

// SortedProducts returns the factory's products ordered by subtype. The
// stored order is preserved; callers get a copy.
func (f Factory) SortedProducts() []Product {
	out := make([]Product, len(f.Products))
	copy(out, f.Products)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Subtype < out[j].Subtype })
	return out
}

// TariffRow is one priced distance band for a named vehicle.
type TariffRow struct {
	VehicleName string  `json:"vehicle_name"`
	CapacityTon float64 `json:"capacity_ton"`
	Tag         string  `json:"tag"`
	DistanceMin float64 `json:"distance_min"`
	DistanceMax float64 `json:"distance_max"`
	Price       float64 `json:"price"`
	PerKm       float64 `json:"per_km"`
	Notes       string  `json:"notes"`
}

// SpecialTag marks vehicles selectable as special equipment.
const SpecialTag = "special"

// OverflowNotesFallback annotates an overflow band whose row carries no
// notes of its own.
const OverflowNotesFallback = "distance beyond band incurs surcharge"

// IsOverflowBand reports whether the row is a degenerate band that prices
// distance beyond the table rather than a real range.
func (t TariffRow) IsOverflowBand() bool {
	return t.DistanceMin == t.DistanceMax && t.PerKm > 0
}

// DisplayNotes returns the row's notes, synthesizing the overflow fallback
// only when the row has none of its own.
func (t TariffRow) DisplayNotes() string {
	if t.Notes != "" {
		return t.Notes
	}
	if t.IsOverflowBand() {
		return OverflowNotesFallback
	}
	return ""
}

// TariffGroup is the rows of one vehicle, ordered by ascending DistanceMin.
type TariffGroup struct {
	VehicleName string      `json:"vehicle_name"`
	CapacityTon float64     `json:"capacity_ton"`
	Tag         string      `json:"tag"`
	Rows        []TariffRow `json:"rows"`
}

// GroupTariffsByVehicle groups tariff rows by vehicle name in first-seen
// order, sorting each vehicle's bands by ascending DistanceMin. Capacity and
// tag come from the vehicle's first row.
func GroupTariffsByVehicle(rows []TariffRow) []TariffGroup {
	grouped := utils.GroupBy(rows, func(r TariffRow) string { return r.VehicleName })
	utils.SortWithin(grouped, func(a, b TariffRow) bool { return a.DistanceMin < b.DistanceMin })
	out := make([]TariffGroup, 0, len(grouped))
	for _, g := range grouped {
		out = append(out, TariffGroup{
			VehicleName: g.Key,
			CapacityTon: g.Items[0].CapacityTon,
			Tag:         g.Items[0].Tag,
			Rows:        g.Items,
		})
	}
	return out
}

// SpecialVehicle is one selectable special-equipment entry.
type SpecialVehicle struct {
	Name string `json:"name"`
	Tag  string `json:"tag"`
}

// SpecialVehicles returns the special-tagged vehicles from the tariff table,
// deduplicated by name in first-occurrence order. An empty result is a valid
// catalog state, not an error.
func SpecialVehicles(rows []TariffRow) []SpecialVehicle {
	seen := make(map[string]bool, len(rows))
	out := make([]SpecialVehicle, 0)
	for _, r := range rows {
		if r.Tag != SpecialTag || seen[r.VehicleName] {
			continue
		}
		seen[r.VehicleName] = true
		out = append(out, SpecialVehicle{Name: r.VehicleName, Tag: r.Tag})
	}
	return out
}

// CatalogSnapshot is one immutable load of the full catalog. A reload builds
// a fresh snapshot and swaps it in whole; partial upstream failures leave the
// failed section empty and recorded in Errors.
type CatalogSnapshot struct {
	Categories map[string][]string `json:"categories"`
	Factories  []Factory           `json:"factories"`
	Tariffs    []TariffRow         `json:"tariffs"`
	LoadedAt   time.Time           `json:"loaded_at"`
	Errors     []string            `json:"errors,omitempty"`
}

// Degraded reports whether any catalog section failed to load.
func (s *CatalogSnapshot) Degraded() bool {
	return len(s.Errors) > 0
}
