package models

// TransportType selects the vehicle planning mode for a quote.
type TransportType string

const (
	TransportAuto        TransportType = "auto"
	TransportManipulator TransportType = "manipulator"
	TransportLongHaul    TransportType = "long_haul"
)

// QuoteLineItem is one requested product line.
type QuoteLineItem struct {
	Category string `json:"category"`
	Subtype  string `json:"subtype"`
	Quantity int    `json:"quantity"`
}

// QuoteRequest is the payload submitted to the quoting service. Field names
// follow the upstream wire contract.
type QuoteRequest struct {
	UploadLat       float64         `json:"upload_lat"`
	UploadLon       float64         `json:"upload_lon"`
	TransportType   TransportType   `json:"transport_type"`
	AddManipulator  bool            `json:"addManipulator"`
	SelectedSpecial string          `json:"selectedSpecial,omitempty"`
	Items           []QuoteLineItem `json:"items"`
}

// DetailRow is one factory/product/vehicle assignment inside a variant.
type DetailRow struct {
	FactoryName  string  `json:"factory_name"`
	Contact      string  `json:"contact"`
	ProductName  string  `json:"product_name"`
	VehicleName  string  `json:"vehicle_name"`
	Tariff       string  `json:"tariff"`
	DistanceKm   float64 `json:"distance_km"`
	MaterialCost float64 `json:"material_cost"`
	DeliveryCost float64 `json:"delivery_cost"`
	LineTotal    float64 `json:"line_total"`
}

// TripItem is one physical vehicle dispatch inside a variant.
type TripItem struct {
	FactoryName  string  `json:"factory_name"`
	VehicleName  string  `json:"vehicle_name"`
	Tariff       string  `json:"tariff"`
	DistanceKm   float64 `json:"distance_km"`
	LoadTon      float64 `json:"load_ton"`
	ItemsSummary string  `json:"items_summary"`
	DeliveryCost float64 `json:"delivery_cost"`
}

// QuoteVariant is one priced option returned by the quoting service.
type QuoteVariant struct {
	TransportName    string         `json:"transport_name"`
	TotalCost        float64        `json:"total_cost"`
	MaterialCost     float64        `json:"material_cost"`
	DeliveryCost     float64        `json:"delivery_cost"`
	TotalWeight      float64        `json:"total_weight"`
	TripCount        int            `json:"trip_count"`
	TransportDetails map[string]any `json:"transport_details"`
	Details          []DetailRow    `json:"details"`
	TripItems        []TripItem     `json:"trip_items"`
}

// Candidate key chains for quote response records. Upstream variants use
// camelCase, detail rows may still carry legacy-locale keys.
var (
	keysTransportName    = []string{"transportName", "transport_name", "транспорт"}
	keysTotalCost        = []string{"totalCost", "total_cost", "итого"}
	keysMaterialCost     = []string{"materialCost", "material_cost", "стоимость_материала"}
	keysDeliveryCost     = []string{"deliveryCost", "delivery_cost", "стоимость_доставки"}
	keysTotalWeight      = []string{"totalWeight", "total_weight", "общий_вес"}
	keysTripCount        = []string{"tripCount", "trip_count", "количество_рейсов"}
	keysTransportDetails = []string{"transportDetails", "transport_details"}
	keysDetailFactory    = []string{"factory", "завод"}
	keysDetailProduct    = []string{"product", "товар"}
	keysDetailVehicle    = []string{"vehicle", "реальное_имя_машины", "машина"}
	keysDetailTariff     = []string{"tariff", "тариф"}
	keysDetailDistance   = []string{"distance_km", "расстояние_км"}
	keysDetailTotal      = []string{"total", "итого"}
	keysTripLoad         = []string{"load_ton", "загрузка_т"}
	keysTripItemsSummary = []string{"items", "товары"}
)

// VariantFromRecord normalizes one raw variant object into a QuoteVariant.
// Absent fields default to zero values, never to an error: a variant that
// decodes at all is rendered with whatever it carries.
func VariantFromRecord(rec RawRecord) QuoteVariant {
	v := QuoteVariant{
		TransportName:    rec.String("", keysTransportName...),
		TotalCost:        rec.Float(0, keysTotalCost...),
		MaterialCost:     rec.Float(0, keysMaterialCost...),
		DeliveryCost:     rec.Float(0, keysDeliveryCost...),
		TotalWeight:      rec.Float(0, keysTotalWeight...),
		TripCount:        rec.Int(0, keysTripCount...),
		TransportDetails: rec.Map(keysTransportDetails...),
		Details:          []DetailRow{},
		TripItems:        []TripItem{},
	}
	for _, d := range rec.List("details", "детали") {
		v.Details = append(v.Details, DetailRow{
			FactoryName:  d.String("", keysDetailFactory...),
			Contact:      d.String("", keysContact...),
			ProductName:  d.String("", keysDetailProduct...),
			VehicleName:  d.String("", keysDetailVehicle...),
			Tariff:       d.String("", keysDetailTariff...),
			DistanceKm:   d.Float(0, keysDetailDistance...),
			MaterialCost: d.Float(0, keysMaterialCost...),
			DeliveryCost: d.Float(0, keysDeliveryCost...),
			LineTotal:    d.Float(0, keysDetailTotal...),
		})
	}
	for _, t := range rec.List("tripItems", "trip_items", "рейсы") {
		v.TripItems = append(v.TripItems, TripItem{
			FactoryName:  t.String("", keysDetailFactory...),
			VehicleName:  t.String("", keysDetailVehicle...),
			Tariff:       t.String("", keysDetailTariff...),
			DistanceKm:   t.Float(0, keysDetailDistance...),
			LoadTon:      t.Float(0, keysTripLoad...),
			ItemsSummary: t.String("", keysTripItemsSummary...),
			DeliveryCost: t.Float(0, keysDeliveryCost...),
		})
	}
	return v
}

// HasLegacyQuoteFields reports whether the record looks like a legacy flat
// quote response rather than a variants envelope.
func (r RawRecord) HasLegacyQuoteFields() bool {
	return r.Has(keysTotalCost...) || r.Has(keysTransportName...) ||
		r.Has(keysMaterialCost...) || r.Has(keysDeliveryCost...)
}
