package assistant

import "github.com/shopspring/decimal"

const (
	minNights     = 1
	maxNights     = 14
	maxCompanions = 5
)

var (
	hotelPerNight    = decimal.NewFromInt(180_000)
	defaultTreatment = decimal.NewFromInt(500_000)

	treatmentCosts = map[string]decimal.Decimal{
		"botox":          decimal.NewFromInt(350_000),
		"filler":         decimal.NewFromInt(550_000),
		"rhinoplasty":    decimal.NewFromInt(3_500_000),
		"dental_implant": decimal.NewFromInt(1_200_000),
		"checkup":        decimal.NewFromInt(890_000),
		"whitening":      decimal.NewFromInt(250_000),
		"liposuction":    decimal.NewFromInt(2_800_000),
		"eyelid":         decimal.NewFromInt(1_800_000),
	}
)

// EstimateRequest is the price calculator input.
type EstimateRequest struct {
	Treatments []string
	Nights     int
	Companions int
}

// Estimate is the price calculator output.
type Estimate struct {
	TreatmentTotal decimal.Decimal
	HotelTotal     decimal.Decimal
	Total          decimal.Decimal
	Nights         int
	Companions     int
}

// EstimatePrice sums treatment costs and hotel nights for the visitor and
// companions. Unknown treatments cost a flat default. Nights are clamped to
// 1..14 and companions to 0..5.
func EstimatePrice(req EstimateRequest) Estimate {
	nights := min(max(req.Nights, minNights), maxNights)
	companions := min(max(req.Companions, 0), maxCompanions)

	treatments := decimal.Zero
	for _, t := range req.Treatments {
		cost, ok := treatmentCosts[t]
		if !ok {
			cost = defaultTreatment
		}
		treatments = treatments.Add(cost)
	}

	people := decimal.NewFromInt(int64(1 + companions))
	hotel := hotelPerNight.Mul(decimal.NewFromInt(int64(nights))).Mul(people)

	return Estimate{
		TreatmentTotal: treatments,
		HotelTotal:     hotel,
		Total:          treatments.Add(hotel),
		Nights:         nights,
		Companions:     companions,
	}
}
