package insight

import (
	"fmt"
	"strings"

	domanl "github.com/kailas-cloud/propdex/internal/domain/analysis"
	"github.com/kailas-cloud/propdex/internal/domain/score"
)

// BuildPrompt renders the deterministic analysis numbers into the generation
// prompt. Only computed values go in; the closing instruction pins the model
// to them.
func BuildPrompt(res domanl.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a concise market insight for property %s based strictly on this analysis.\n\n", res.PropertyID)
	fmt.Fprintf(&b, "Verdict: %s (confidence %.2f)\n", res.Verdict, res.Confidence)

	if v := res.Valuation; v != nil {
		low, high := v.Band()
		fmt.Fprintf(&b, "Estimated value: %.0f, uncertainty band %.0f to %.0f, %.0f per sqft\n",
			v.Value(), low, high, v.PricePerSqft())
	}

	if s := res.Beneficiary; s != nil {
		fmt.Fprintf(&b, "Beneficiary score: %.1f/100 (", s.Overall())
		for i, name := range score.Components() {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s %.1f", name, s.Component(name))
		}
		b.WriteString(")\n")
	}

	suit := res.Suitability
	fmt.Fprintf(&b, "Location suitability: %.1f/100 (facilities %.1f, safety %.1f, market %.1f, disaster safety %.1f)\n",
		suit.Overall, suit.Facility, suit.Safety, suit.Market, suit.Disaster)

	p := res.Predictions
	fmt.Fprintf(&b, "Projected value change: 1y %+.1f%%, 3y %+.1f%%, 5y %+.1f%%\n",
		p.OneYear*100, p.ThreeYear*100, p.FiveYear*100)

	if len(res.RiskFactors) > 0 {
		b.WriteString("Risks:\n")
		for _, r := range res.RiskFactors {
			fmt.Fprintf(&b, "- %s (%s): %s\n", r.Factor, r.Severity, r.Description)
		}
	}
	if len(res.Opportunities) > 0 {
		b.WriteString("Opportunities:\n")
		for _, o := range res.Opportunities {
			fmt.Fprintf(&b, "- %s (%s impact): %s\n", o.Opportunity, o.PotentialImpact, o.Description)
		}
	}

	b.WriteString("\nGround every claim in the numbers above. Do not invent data.")
	return b.String()
}
