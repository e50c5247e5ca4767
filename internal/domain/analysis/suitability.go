package analysis

import "github.com/kailas-cloud/propdex/internal/domain/location"

// Suitability holds the four location sub-scores and their equal-weight
// overall, each on a 0..100 scale.
type Suitability struct {
	Facility float64 `json:"facility_accessibility"`
	Safety   float64 `json:"safety"`
	Market   float64 `json:"market_potential"`
	Disaster float64 `json:"disaster_safety"`
	Overall  float64 `json:"overall"`
}

// Facility weights per nearby amenity. Closer rings count more and
// transit access counts most.
const (
	schools1KMWeight   = 20
	schools3KMWeight   = 10
	hospitals1KMWeight = 25
	hospitals3KMWeight = 15
	transit1KMWeight   = 30
	transit3KMWeight   = 20
)

// ComputeSuitability derives the sub-scores from location attributes.
// Missing counts and risks count as zero; missing demand and supply as the
// neutral 50.
func ComputeSuitability(attrs location.Attributes) Suitability {
	facility := float64(intOrZero(attrs.Schools1KM)*schools1KMWeight +
		intOrZero(attrs.Schools3KM)*schools3KMWeight +
		intOrZero(attrs.Hospitals1KM)*hospitals1KMWeight +
		intOrZero(attrs.Hospitals3KM)*hospitals3KMWeight +
		intOrZero(attrs.Transit1KM)*transit1KMWeight +
		intOrZero(attrs.Transit3KM)*transit3KMWeight)
	if facility > 100 {
		facility = 100
	}

	crime := floatOr(attrs.CrimeRate, 0)
	crimeShare := crime / 50
	if crimeShare > 1 {
		crimeShare = 1
	}
	safety := 100 * (1 - crimeShare)
	if safety < 0 {
		safety = 0
	}

	demand := floatOr(attrs.DemandScore, 50)
	supply := floatOr(attrs.SupplyScore, 50)
	if supply < 1 {
		supply = 1
	}
	trend := floatOr(attrs.PriceTrend1Y, 0)
	trendPart := 50 + trend*10
	if trendPart < 0 {
		trendPart = 0
	}
	market := demand/supply*30 + trendPart
	if market > 100 {
		market = 100
	}

	risks := attrs.RiskProbabilities()
	var total float64
	for _, r := range risks {
		total += r
	}
	disaster := 100 * (1 - total/float64(len(risks)))
	if disaster < 0 {
		disaster = 0
	}

	overall := (facility + safety + market + disaster) / 4
	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}
	return Suitability{
		Facility: facility,
		Safety:   safety,
		Market:   market,
		Disaster: disaster,
		Overall:  overall,
	}
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
