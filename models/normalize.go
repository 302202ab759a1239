// Package models contains the domain entities of the quote gateway.
package models

import (
	"strconv"
	"strings"
)

// RawRecord is one undecoded catalog or quote row as the upstream service
// emits it. Records mix legacy-locale keys with canonical ones, sometimes
// within a single row, so every field goes through the resolver below.
type RawRecord map[string]any

// UnnamedKey is the display name substituted when a record carries no name
// under any known key.
const UnnamedKey = "Unnamed"

// String returns the value of the first candidate key that is present and
// non-nil, rendered as a trimmed string. Falsy-but-present values (empty
// string) still win over later candidates.
func (r RawRecord) String(def string, keys ...string) string {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		return strings.TrimSpace(asString(v))
	}
	return def
}

// Float resolves like String but coerces the value to a float64. A present
// but non-numeric value coerces to 0 instead of falling through to def.
func (r RawRecord) Float(def float64, keys ...string) float64 {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		return asFloat(v)
	}
	return def
}

// Int resolves like Float but truncates to an integer.
func (r RawRecord) Int(def int, keys ...string) int {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		return int(asFloat(v))
	}
	return def
}

// Map resolves the first present candidate key whose value is an object.
func (r RawRecord) Map(keys ...string) map[string]any {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			if m, ok := v.(map[string]any); ok {
				return m
			}
		}
	}
	return map[string]any{}
}

// List resolves the first present candidate key whose value is an array,
// returning its elements as RawRecords. Non-object elements are skipped.
func (r RawRecord) List(keys ...string) []RawRecord {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		arr, ok := v.([]any)
		if !ok {
			continue
		}
		out := make([]RawRecord, 0, len(arr))
		for _, el := range arr {
			if m, ok := el.(map[string]any); ok {
				out = append(out, RawRecord(m))
			}
		}
		return out
	}
	return nil
}

// Has reports whether any candidate key is present with a non-nil value.
func (r RawRecord) Has(keys ...string) bool {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return true
		}
	}
	return false
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// asFloat coerces legacy numeric spellings: plain numbers, numeric strings
// with comma decimal separators, and strings padded with regular or
// non-breaking spaces. Anything else coerces to 0.
func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		s := strings.TrimSpace(t)
		s = strings.ReplaceAll(s, " ", "")
		s = strings.ReplaceAll(s, " ", "")
		s = strings.ReplaceAll(s, ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// Candidate key chains for factory and tariff records. The legacy keys come
// from the original data files, the canonical ones from the current API.
var (
	keysName        = []string{"name", "название", "имя"}
	keysContact     = []string{"contact", "контакты"}
	keysCapacity    = []string{"capacity_ton", "грузоподъёмность", "грузоподъемность"}
	keysTag         = []string{"tag", "тег", "тэг"}
	keysDistanceMin = []string{"distance_min", "min_distance", "дистанция_мин"}
	keysDistanceMax = []string{"distance_max", "max_distance", "дистанция_макс"}
	keysPrice       = []string{"price", "base", "цена"}
	keysPerKm       = []string{"per_km", "за_км"}
	keysNotes       = []string{"notes", "description", "описание", "заметки"}
)

// NormalizeFactoryRecords maps flat upstream factory rows (one row per
// factory/product pair) to Factory entities, grouping rows by resolved name
// in first-seen order. Two rows that both default to the unnamed sentinel
// merge into one factory.
func NormalizeFactoryRecords(raw []RawRecord) []Factory {
	index := make(map[string]int, len(raw))
	factories := make([]Factory, 0)
	for _, rec := range raw {
		name := rec.String("", keysName...)
		if name == "" {
			name = UnnamedKey
		}
		i, ok := index[name]
		if !ok {
			i = len(factories)
			index[name] = i
			factories = append(factories, Factory{
				Name:    name,
				Lat:     rec.Float(0, "lat"),
				Lon:     rec.Float(0, "lon"),
				Contact: rec.String("", keysContact...),
			})
		}
		factories[i].Products = append(factories[i].Products, Product{
			Category:         rec.String("", "category"),
			Subtype:          rec.String("", "subtype"),
			WeightPerItem:    rec.Float(0, "weight_per_item"),
			MaxPerTrip:       rec.Int(0, "max_per_trip"),
			SpecialThreshold: rec.Float(0, "special_threshold"),
			Price:            rec.Float(0, "price"),
		})
	}
	return factories
}

// NormalizeTariffRecords maps raw tariff rows to TariffRow entities, one per
// record. Records are never dropped; only the vehicle name is defaulted.
func NormalizeTariffRecords(raw []RawRecord) []TariffRow {
	rows := make([]TariffRow, 0, len(raw))
	for _, rec := range raw {
		name := rec.String("", keysName...)
		if name == "" {
			name = UnnamedKey
		}
		rows = append(rows, TariffRow{
			VehicleName: name,
			CapacityTon: rec.Float(0, keysCapacity...),
			Tag:         rec.String("", keysTag...),
			DistanceMin: rec.Float(0, keysDistanceMin...),
			DistanceMax: rec.Float(0, keysDistanceMax...),
			Price:       rec.Float(0, keysPrice...),
			PerKm:       rec.Float(0, keysPerKm...),
			Notes:       rec.String("", keysNotes...),
		})
	}
	return rows
}
