package analysis

// Verdict is the final investment recommendation.
type Verdict string

const (
	// VerdictBuy means the combined scores clear the tolerance threshold.
	VerdictBuy Verdict = "buy"
	// VerdictHold means the scores fall between the buy and avoid cut-offs.
	VerdictHold Verdict = "hold"
	// VerdictAvoid means weak scores or a tripped hard-avoid rule.
	VerdictAvoid Verdict = "avoid"
)

// Hard-avoid cut-offs, applied regardless of tolerance.
const (
	minSafetyScore   = 30.0
	minDisasterScore = 20.0
)

const (
	suitabilityShare = 0.6
	beneficiaryShare = 0.4
)

// Decide combines the suitability and beneficiary scores into a verdict.
// safetyScore is the beneficiary safety component and disasterScore the
// suitability disaster sub-score; either tripping its hard cut-off forces
// avoid regardless of the combined score.
func Decide(suitability, beneficiary, safetyScore, disasterScore float64, tolerance RiskTolerance) Verdict {
	if safetyScore < minSafetyScore || disasterScore < minDisasterScore {
		return VerdictAvoid
	}
	combined := suitability*suitabilityShare + beneficiary*beneficiaryShare
	buy, avoid := tolerance.Thresholds()
	switch {
	case combined >= buy:
		return VerdictBuy
	case combined < avoid:
		return VerdictAvoid
	default:
		return VerdictHold
	}
}
