package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/explain"
	"github.com/kailas-cloud/propdex/internal/domain/location"
	"github.com/kailas-cloud/propdex/internal/domain/property"
	"github.com/kailas-cloud/propdex/internal/domain/recommend"
	"github.com/kailas-cloud/propdex/internal/domain/score"
)

func f64(v float64) *float64 { return &v }
func ip(v int) *int          { return &v }

func testRecord(t *testing.T) property.Record {
	t.Helper()
	loc, err := location.New(40.7, -74.0, "", "Hoboken", "NJ", location.Attributes{})
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	rec, err := property.New("prop-1", property.TypeResidential, 3, 2, 1500, nil, nil, loc)
	if err != nil {
		t.Fatalf("property: %v", err)
	}
	return rec
}

func TestNewRequest_Defaults(t *testing.T) {
	req, err := NewRequest(testRecord(t), "", score.Weights{}, nil, DefaultFlags(), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Tolerance() != RiskMedium {
		t.Errorf("tolerance = %q, want %q", req.Tolerance(), RiskMedium)
	}
	if req.MaxRecommendations() != recommend.DefaultMaxResults {
		t.Errorf("maxRecommendations = %d, want %d", req.MaxRecommendations(), recommend.DefaultMaxResults)
	}
	if req.RadiusKM() != recommend.DefaultRadiusKM {
		t.Errorf("radiusKM = %v, want %v", req.RadiusKM(), recommend.DefaultRadiusKM)
	}
	if !req.Flags().Valuation || !req.Flags().Score || req.Flags().MarketInsight {
		t.Errorf("unexpected default flags: %+v", req.Flags())
	}
}

func TestNewRequest_ClampsAndValidation(t *testing.T) {
	req, err := NewRequest(testRecord(t), RiskLow, score.Weights{}, nil, DefaultFlags(), 500, 400)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.MaxRecommendations() != recommend.MaxResults {
		t.Errorf("maxRecommendations = %d, want cap %d", req.MaxRecommendations(), recommend.MaxResults)
	}
	if req.RadiusKM() != recommend.MaxRadiusKM {
		t.Errorf("radiusKM = %v, want cap %v", req.RadiusKM(), recommend.MaxRadiusKM)
	}

	if _, err := NewRequest(testRecord(t), "reckless", score.Weights{}, nil, DefaultFlags(), 0, 0); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown tolerance: got %v, want validation error", err)
	}
	if _, err := NewRequest(testRecord(t), "", score.Weights{}, nil, DefaultFlags(), 0, -1); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("negative radius: got %v, want validation error", err)
	}
	if _, err := NewRequest(testRecord(t), "", score.Weights{}, map[string]float64{"karma": 3}, DefaultFlags(), 0, 0); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown weight key: got %v, want validation error", err)
	}
}

func TestNewRequest_CustomWeightsOverlayBase(t *testing.T) {
	base, err := score.NewWeights(10, 1, 1, 1, 1)
	if err != nil {
		t.Fatalf("base weights: %v", err)
	}
	req, err := NewRequest(testRecord(t), "", base, map[string]float64{score.ComponentSchool: 5}, DefaultFlags(), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.Weights().Get(score.ComponentValue); got != 10 {
		t.Errorf("base weight lost: value = %v, want 10", got)
	}
	if got := req.Weights().Get(score.ComponentSchool); got != 5 {
		t.Errorf("overlay ignored: school = %v, want 5", got)
	}
}

func TestRiskTolerance_Thresholds(t *testing.T) {
	cases := []struct {
		tolerance RiskTolerance
		buy       float64
		avoid     float64
	}{
		{RiskLow, 75, 50},
		{RiskMedium, 70, 45},
		{RiskHigh, 60, 35},
	}
	for _, tc := range cases {
		buy, avoid := tc.tolerance.Thresholds()
		if buy != tc.buy || avoid != tc.avoid {
			t.Errorf("%s: thresholds = (%v, %v), want (%v, %v)", tc.tolerance, buy, avoid, tc.buy, tc.avoid)
		}
	}
}

func TestDecide(t *testing.T) {
	cases := []struct {
		name        string
		suitability float64
		beneficiary float64
		safety      float64
		disaster    float64
		tolerance   RiskTolerance
		want        Verdict
	}{
		{"strong scores buy", 80, 70, 60, 90, RiskMedium, VerdictBuy},
		{"middling scores hold", 60, 60, 60, 90, RiskMedium, VerdictHold},
		{"weak scores avoid", 40, 40, 60, 90, RiskMedium, VerdictAvoid},
		{"low tolerance raises the bar", 72, 72, 60, 90, RiskLow, VerdictHold},
		{"high tolerance lowers the bar", 61, 61, 60, 90, RiskHigh, VerdictBuy},
		{"unsafe area forces avoid", 90, 90, 20, 90, RiskHigh, VerdictAvoid},
		{"extreme disaster risk forces avoid", 90, 90, 60, 15, RiskHigh, VerdictAvoid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decide(tc.suitability, tc.beneficiary, tc.safety, tc.disaster, tc.tolerance)
			if got != tc.want {
				t.Errorf("Decide = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestComputeSuitability(t *testing.T) {
	attrs := location.Attributes{
		Schools1KM:   ip(2),
		Schools3KM:   ip(1),
		Hospitals1KM: ip(1),
		Transit1KM:   ip(1),
		CrimeRate:    f64(25),
		DemandScore:  f64(60),
		SupplyScore:  f64(30),
		PriceTrend1Y: f64(0.1),
		FloodRisk:    f64(0.5),
	}
	s := ComputeSuitability(attrs)

	// 2*20 + 1*10 + 1*25 + 1*30 = 105, capped at 100.
	if s.Facility != 100 {
		t.Errorf("facility = %v, want 100", s.Facility)
	}
	if s.Safety != 50 {
		t.Errorf("safety = %v, want 50", s.Safety)
	}
	// 60/30*30 + (50 + 0.1*10) = 111, capped at 100.
	if s.Market != 100 {
		t.Errorf("market = %v, want 100", s.Market)
	}
	// mean risk 0.1 -> 90.
	if math.Abs(s.Disaster-90) > 1e-9 {
		t.Errorf("disaster = %v, want 90", s.Disaster)
	}
	if math.Abs(s.Overall-85) > 1e-9 {
		t.Errorf("overall = %v, want 85", s.Overall)
	}
}

func TestComputeSuitability_EmptyAttributes(t *testing.T) {
	s := ComputeSuitability(location.Attributes{})
	if s.Facility != 0 {
		t.Errorf("facility = %v, want 0", s.Facility)
	}
	if s.Safety != 100 {
		t.Errorf("safety = %v, want 100", s.Safety)
	}
	// demand 50 / supply 50 * 30 + 50 = 80.
	if math.Abs(s.Market-80) > 1e-9 {
		t.Errorf("market = %v, want 80", s.Market)
	}
	if s.Disaster != 100 {
		t.Errorf("disaster = %v, want 100", s.Disaster)
	}
}

func TestPredictValueChanges_Formula(t *testing.T) {
	attrs := location.Attributes{
		PriceTrend1Y: f64(0.1),
		DemandScore:  f64(60),
		SupplyScore:  f64(30),
	}
	p := PredictValueChanges(attrs)
	if math.Abs(p.OneYear-0.115) > 1e-9 {
		t.Errorf("1y = %v, want 0.115", p.OneYear)
	}
	if math.Abs(p.ThreeYear-0.3075) > 1e-9 {
		t.Errorf("3y = %v, want 0.3075", p.ThreeYear)
	}
	if math.Abs(p.FiveYear-0.5835) > 1e-9 {
		t.Errorf("5y = %v, want 0.5835", p.FiveYear)
	}
}

func TestPredictValueChanges_Clamps(t *testing.T) {
	hot := PredictValueChanges(location.Attributes{PriceTrend1Y: f64(0.9)})
	if hot.OneYear != 0.5 || hot.ThreeYear != 0.8 || hot.FiveYear != 1.2 {
		t.Errorf("hot market = %+v, want clamps 0.5/0.8/1.2", hot)
	}
	cold := PredictValueChanges(location.Attributes{PriceTrend1Y: f64(-0.6)})
	if cold.OneYear != -0.3 || cold.ThreeYear != -0.4 || cold.FiveYear != -0.5 {
		t.Errorf("cold market = %+v, want clamps -0.3/-0.4/-0.5", cold)
	}
}

func TestIdentifyRisks(t *testing.T) {
	attrs := location.Attributes{
		CrimeRate:      f64(30),
		FloodRisk:      f64(0.8),
		EarthquakeRisk: f64(0.7),
		HurricaneRisk:  f64(0.6),
		PriceTrend1Y:   f64(-0.1),
	}
	s := ComputeSuitability(attrs)
	risks := IdentifyRisks(attrs, s)
	if len(risks) != 3 {
		t.Fatalf("got %d risks, want 3: %+v", len(risks), risks)
	}

	crime := risks[0]
	if crime.Factor != "High Crime Rate" || crime.Severity != SeverityMedium {
		t.Errorf("crime risk = %+v", crime)
	}
	if crime.Description != "Crime rate is above average with safety score of 40.0" {
		t.Errorf("crime description = %q", crime.Description)
	}
	if math.Abs(crime.ImpactScore-60) > 1e-9 {
		t.Errorf("crime impact = %v, want 60", crime.ImpactScore)
	}

	disaster := risks[1]
	if disaster.Factor != "Natural Disaster Risk" || disaster.Severity != SeverityHigh {
		t.Errorf("disaster risk = %+v", disaster)
	}
	if disaster.Description != "High risk for: flood, earthquake, hurricane" {
		t.Errorf("disaster description = %q", disaster.Description)
	}

	trend := risks[2]
	if trend.Factor != "Declining Property Values" || trend.Severity != SeverityMedium {
		t.Errorf("trend risk = %+v", trend)
	}
	if trend.Description != "Property values have declined 10.0% in the past year" {
		t.Errorf("trend description = %q", trend.Description)
	}
	if math.Abs(trend.ImpactScore-10) > 1e-9 {
		t.Errorf("trend impact = %v, want 10", trend.ImpactScore)
	}
}

func TestIdentifyRisks_Quiet(t *testing.T) {
	attrs := location.Attributes{CrimeRate: f64(5), PriceTrend1Y: f64(0.02)}
	if risks := IdentifyRisks(attrs, ComputeSuitability(attrs)); len(risks) != 0 {
		t.Errorf("expected no risks, got %+v", risks)
	}
}

func TestIdentifyRisks_SingleDisasterIsMedium(t *testing.T) {
	// One elevated risk but a depressed disaster score overall.
	attrs := location.Attributes{
		FloodRisk:      f64(0.9),
		EarthquakeRisk: f64(0.3),
		HurricaneRisk:  f64(0.3),
		WildfireRisk:   f64(0.3),
		TornadoRisk:    f64(0.3),
	}
	s := ComputeSuitability(attrs)
	if s.Disaster >= disasterRiskThreshold {
		t.Fatalf("disaster score %v should be below threshold", s.Disaster)
	}
	risks := IdentifyRisks(attrs, s)
	if len(risks) != 1 {
		t.Fatalf("got %d risks, want 1: %+v", len(risks), risks)
	}
	if risks[0].Severity != SeverityMedium {
		t.Errorf("severity = %q, want medium", risks[0].Severity)
	}
	if risks[0].Description != "High risk for: flood" {
		t.Errorf("description = %q", risks[0].Description)
	}
}

func TestIdentifyOpportunities(t *testing.T) {
	attrs := location.Attributes{
		Transit1KM:   ip(3),
		PriceTrend1Y: f64(0.08),
		DemandScore:  f64(80),
		SupplyScore:  f64(40),
	}
	opps := IdentifyOpportunities(attrs, ComputeSuitability(attrs))
	if len(opps) != 3 {
		t.Fatalf("got %d opportunities, want 3: %+v", len(opps), opps)
	}
	if opps[0].Opportunity != "Excellent Facility Access" || opps[0].Confidence != 0.9 {
		t.Errorf("facility opportunity = %+v", opps[0])
	}
	if opps[1].Opportunity != "Rising Property Values" {
		t.Errorf("trend opportunity = %+v", opps[1])
	}
	if opps[1].Description != "Property values increased 8.0% in the past year" {
		t.Errorf("trend description = %q", opps[1].Description)
	}
	if opps[2].Opportunity != "Favorable Market Dynamics" || opps[2].PotentialImpact != SeverityMedium {
		t.Errorf("market opportunity = %+v", opps[2])
	}
}

func TestBuildSummary(t *testing.T) {
	valueExp, err := explain.New(explain.KindValuation, 100, 130, []explain.Attribution{
		{Feature: "sqft", Value: 20},
		{Feature: "norm_school", Value: 8},
		{Feature: "baths", Value: 5},
		{Feature: "beds", Value: -3},
	}, "2.0.0")
	if err != nil {
		t.Fatalf("valuation explanation: %v", err)
	}
	benefExp, err := explain.New(explain.KindBeneficiary, 50, 58, []explain.Attribution{
		{Feature: "value", Value: 6},
		{Feature: "school", Value: -2},
		{Feature: "safety", Value: 4},
	}, "2.0.0")
	if err != nil {
		t.Fatalf("beneficiary explanation: %v", err)
	}

	s := BuildSummary(&valueExp, &benefExp, 80)
	if s.ValueDrivers != "Property value is primarily driven by: sqft, norm_school, baths" {
		t.Errorf("value drivers = %q", s.ValueDrivers)
	}
	if s.BeneficiaryDrivers != "Investment attractiveness is mainly influenced by: value, safety, school" {
		t.Errorf("beneficiary drivers = %q", s.BeneficiaryDrivers)
	}
	if !strings.HasPrefix(s.InvestmentOutlook, "Strong investment potential") {
		t.Errorf("outlook = %q", s.InvestmentOutlook)
	}
}

func TestBuildSummary_OutlookBands(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{80, "Strong investment potential with favorable characteristics"},
		{65, "Moderate investment potential with some positive factors"},
		{50, "Mixed investment signals requiring careful consideration"},
		{30, "Limited investment potential with significant challenges"},
	}
	for _, tc := range cases {
		if got := BuildSummary(nil, nil, tc.score).InvestmentOutlook; got != tc.want {
			t.Errorf("score %v: outlook = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestTrace(t *testing.T) {
	var tr Trace
	tr = tr.Append(StageReceived, StatusDone, "")
	tr = tr.Append(StageValuation, StatusDegraded, "heuristic fallback")
	tr = tr.Append(StageRecommendations, StatusSkipped, "")
	if len(tr) != 3 {
		t.Fatalf("trace length = %d, want 3", len(tr))
	}
	if !tr.Degraded() {
		t.Error("expected degraded trace")
	}
	if Trace(nil).Degraded() {
		t.Error("empty trace should not be degraded")
	}
}
