package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawRecordString(t *testing.T) {
	tests := []struct {
		name     string
		record   RawRecord
		keys     []string
		def      string
		expected string
	}{
		{
			name:     "canonical key wins when first",
			record:   RawRecord{"name": "Gravel Plant", "название": "Щебзавод"},
			keys:     []string{"name", "название"},
			expected: "Gravel Plant",
		},
		{
			name:     "legacy key resolves when canonical absent",
			record:   RawRecord{"название": "Щебзавод"},
			keys:     []string{"name", "название"},
			expected: "Щебзавод",
		},
		{
			name:     "empty string is present and wins over later candidates",
			record:   RawRecord{"name": "", "название": "Щебзавод"},
			keys:     []string{"name", "название"},
			expected: "",
		},
		{
			name:     "nil value falls through to next candidate",
			record:   RawRecord{"name": nil, "название": "Щебзавод"},
			keys:     []string{"name", "название"},
			expected: "Щебзавод",
		},
		{
			name:     "default only when every candidate absent",
			record:   RawRecord{"other": "x"},
			keys:     []string{"name", "название"},
			def:      "fallback",
			expected: "fallback",
		},
		{
			name:     "surrounding whitespace trimmed",
			record:   RawRecord{"name": "  Plant  "},
			keys:     []string{"name"},
			expected: "Plant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.record.String(tt.def, tt.keys...))
		})
	}
}

func TestRawRecordFloat(t *testing.T) {
	tests := []struct {
		name     string
		record   RawRecord
		keys     []string
		def      float64
		expected float64
	}{
		{
			name:     "plain number",
			record:   RawRecord{"per_km": 12.5},
			keys:     []string{"per_km", "за_км"},
			expected: 12.5,
		},
		{
			name:     "legacy key",
			record:   RawRecord{"за_км": 12.5},
			keys:     []string{"per_km", "за_км"},
			expected: 12.5,
		},
		{
			name:     "zero is present, not absent",
			record:   RawRecord{"per_km": 0.0, "за_км": 99.0},
			keys:     []string{"per_km", "за_км"},
			def:      7,
			expected: 0,
		},
		{
			name:     "comma decimal string",
			record:   RawRecord{"price": "1 250,50"},
			keys:     []string{"price"},
			expected: 1250.50,
		},
		{
			name:     "non-breaking space padding",
			record:   RawRecord{"price": "12 000"},
			keys:     []string{"price"},
			expected: 12000,
		},
		{
			name:     "non-numeric present value coerces to zero, not default",
			record:   RawRecord{"price": "n/a"},
			keys:     []string{"price"},
			def:      7,
			expected: 0,
		},
		{
			name:     "absent yields default",
			record:   RawRecord{},
			keys:     []string{"price"},
			def:      9999,
			expected: 9999,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.record.Float(tt.def, tt.keys...))
		})
	}
}

func TestRawRecordMixedSpellingsWithinOneRecord(t *testing.T) {
	rec := RawRecord{
		"название":     "КамАЗ",
		"distance_min": 0.0,
		"дистанция_макс": 50.0,
		"price":        "10 000",
		"за_км":        120.0,
	}
	rows := NormalizeTariffRecords([]RawRecord{rec})
	require.Len(t, rows, 1)
	assert.Equal(t, "КамАЗ", rows[0].VehicleName)
	assert.Equal(t, 0.0, rows[0].DistanceMin)
	assert.Equal(t, 50.0, rows[0].DistanceMax)
	assert.Equal(t, 10000.0, rows[0].Price)
	assert.Equal(t, 120.0, rows[0].PerKm)
}

func TestNormalizeTariffRecordsCapacitySpellings(t *testing.T) {
	// Upstream data uses both the ё and е spellings of the capacity key.
	rows := NormalizeTariffRecords([]RawRecord{
		{"название": "КамАЗ", "грузоподъёмность": 10.0},
		{"название": "МАЗ", "грузоподъемность": 20.0},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, 10.0, rows[0].CapacityTon)
	assert.Equal(t, 20.0, rows[1].CapacityTon)
}

func TestNormalizeFactoryRecords(t *testing.T) {
	raw := []RawRecord{
		{"название": "Завод А", "lat": 55.1, "lon": 37.2, "contact": "+7 900", "category": "sand", "subtype": "river", "price": 100.0, "weight_per_item": 1.5},
		{"name": "Завод А", "category": "sand", "subtype": "career", "price": 80.0},
		{"name": "Plant B", "lat": 54.0, "lon": 36.0, "category": "gravel", "subtype": "5-20", "price": 200.0, "max_per_trip": 10.0},
	}

	factories := NormalizeFactoryRecords(raw)
	require.Len(t, factories, 2)

	assert.Equal(t, "Завод А", factories[0].Name)
	assert.Equal(t, 55.1, factories[0].Lat)
	assert.Equal(t, "+7 900", factories[0].Contact)
	require.Len(t, factories[0].Products, 2)
	assert.Equal(t, "river", factories[0].Products[0].Subtype)
	assert.Equal(t, "career", factories[0].Products[1].Subtype)

	assert.Equal(t, "Plant B", factories[1].Name)
	require.Len(t, factories[1].Products, 1)
	assert.Equal(t, 10, factories[1].Products[0].MaxPerTrip)
}

func TestNormalizeFactoryRecordsUnnamedMerge(t *testing.T) {
	raw := []RawRecord{
		{"category": "sand", "subtype": "river"},
		{"name": "Plant B", "category": "gravel", "subtype": "5-20"},
		{"category": "sand", "subtype": "career"},
	}

	factories := NormalizeFactoryRecords(raw)
	require.Len(t, factories, 2)
	assert.Equal(t, UnnamedKey, factories[0].Name)
	assert.Len(t, factories[0].Products, 2)
	assert.Equal(t, "Plant B", factories[1].Name)
}

func TestNormalizeTariffRecordsIdempotent(t *testing.T) {
	raw := []RawRecord{
		{"название": "КамАЗ", "грузоподъёмность": 10.0, "тег": "", "дистанция_мин": 0.0, "дистанция_макс": 50.0, "цена": 10000.0, "за_км": 0.0, "описание": "городской"},
	}

	first := NormalizeTariffRecords(raw)
	require.Len(t, first, 1)

	canonical := []RawRecord{
		{
			"name":         first[0].VehicleName,
			"capacity_ton": first[0].CapacityTon,
			"tag":          first[0].Tag,
			"distance_min": first[0].DistanceMin,
			"distance_max": first[0].DistanceMax,
			"price":        first[0].Price,
			"per_km":       first[0].PerKm,
			"notes":        first[0].Notes,
		},
	}
	second := NormalizeTariffRecords(canonical)
	assert.Equal(t, first, second)
}

func TestNormalizeTariffRecordsDoesNotDropSparseRows(t *testing.T) {
	raw := []RawRecord{
		{"тэг": "special"},
		{},
	}
	rows := NormalizeTariffRecords(raw)
	require.Len(t, rows, 2)
	assert.Equal(t, UnnamedKey, rows[0].VehicleName)
	assert.Equal(t, "special", rows[0].Tag)
	assert.Equal(t, UnnamedKey, rows[1].VehicleName)
	assert.Zero(t, rows[1].Price)
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	rec := RawRecord{"название": "КамАЗ", "цена": 100.0}
	NormalizeTariffRecords([]RawRecord{rec})
	assert.Equal(t, RawRecord{"название": "КамАЗ", "цена": 100.0}, rec)
}
