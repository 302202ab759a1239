package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariantStateReceiveSelectsFirst(t *testing.T) {
	var s VariantState
	assert.False(t, s.Populated())

	s.Receive([]QuoteVariant{{TransportName: "A"}, {TransportName: "B"}})
	assert.True(t, s.Populated())
	assert.Equal(t, 0, s.SelectedIndex)

	require.True(t, s.Select(1))
	s.Receive([]QuoteVariant{{TransportName: "C"}})
	assert.Equal(t, 0, s.SelectedIndex)
}

func TestVariantStateSelectOutOfRangeIsNoOp(t *testing.T) {
	var s VariantState
	s.Receive([]QuoteVariant{{TransportName: "A"}, {TransportName: "B"}})
	require.True(t, s.Select(1))

	assert.False(t, s.Select(2))
	assert.False(t, s.Select(-1))
	assert.Equal(t, 1, s.SelectedIndex)
}

func TestVariantStateSelectedOnEmpty(t *testing.T) {
	var s VariantState
	_, ok := s.Selected()
	assert.False(t, ok)

	assert.False(t, s.Select(0))
}

func TestVariantFromRecordCamelCase(t *testing.T) {
	rec := RawRecord{
		"transportName": "КамАЗ 10т",
		"totalCost":     150000.0,
		"materialCost":  100000.0,
		"deliveryCost":  50000.0,
		"totalWeight":   24.5,
		"tripCount":     3.0,
		"transportDetails": map[string]any{"trips": 3.0},
		"details": []any{
			map[string]any{
				"factory":     "Завод А",
				"product":     "sand river",
				"vehicle":     "КамАЗ",
				"distance_km": 42.0,
				"materialCost": 100000.0,
				"deliveryCost": 50000.0,
				"total":       150000.0,
			},
		},
	}

	v := VariantFromRecord(rec)
	assert.Equal(t, "КамАЗ 10т", v.TransportName)
	assert.Equal(t, 150000.0, v.TotalCost)
	assert.Equal(t, 3, v.TripCount)
	require.Len(t, v.Details, 1)
	assert.Equal(t, "Завод А", v.Details[0].FactoryName)
	assert.Equal(t, 42.0, v.Details[0].DistanceKm)
	assert.Equal(t, 150000.0, v.Details[0].LineTotal)
}

func TestVariantFromRecordLegacyDetailKeys(t *testing.T) {
	rec := RawRecord{
		"transport_name": "Манипулятор",
		"total_cost":     "98 500,50",
		"details": []any{
			map[string]any{
				"завод":               "Щебзавод",
				"товар":               "щебень 5-20",
				"реальное_имя_машины": "Манипулятор 5т",
				"тариф":               "0-50 км",
				"расстояние_км":       18.0,
				"стоимость_материала": 60000.0,
				"стоимость_доставки":  38500.5,
				"итого":               98500.5,
			},
		},
	}

	v := VariantFromRecord(rec)
	assert.Equal(t, "Манипулятор", v.TransportName)
	assert.Equal(t, 98500.50, v.TotalCost)
	require.Len(t, v.Details, 1)
	assert.Equal(t, "Щебзавод", v.Details[0].FactoryName)
	assert.Equal(t, "Манипулятор 5т", v.Details[0].VehicleName)
	assert.Equal(t, "0-50 км", v.Details[0].Tariff)
	assert.Equal(t, 38500.5, v.Details[0].DeliveryCost)
}

func TestVariantFromRecordDefaults(t *testing.T) {
	v := VariantFromRecord(RawRecord{"transportName": "A"})
	assert.Zero(t, v.TripCount)
	assert.NotNil(t, v.TransportDetails)
	assert.Empty(t, v.TransportDetails)
	assert.NotNil(t, v.Details)
	assert.Empty(t, v.Details)
	assert.NotNil(t, v.TripItems)
}
