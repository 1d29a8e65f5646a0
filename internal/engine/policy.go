package engine

import (
	"fmt"
	"math"

	"github.com/raysh454/ziva/internal/scan"
)

// Verdicts produced by the engine.
const (
	VerdictSafe       = "✅ SAFE"
	VerdictSuspicious = "⚠️ SUSPICIOUS"
	VerdictHighRisk   = "🚨 HIGH RISK"
	VerdictBlocked    = "⚠️ SUSPICIOUS: BLOCKED"
	VerdictError      = "⚠️ SUSPICIOUS: ERROR"
)

// Policy turns a price and its context into a verdict.
type Policy struct {
	// InflatedRatio flags listings priced above average*InflatedRatio.
	InflatedRatio float64 `yaml:"inflated_ratio"`

	// UndercutRatio flags listings when another store sells the same item
	// below price*UndercutRatio. Such gaps usually mean one of the two
	// listings is not what it claims to be.
	UndercutRatio float64 `yaml:"undercut_ratio"`
}

func DefaultPolicy() Policy {
	return Policy{InflatedRatio: 1.25, UndercutRatio: 0.5}
}

// Evaluate returns the verdict and reason for a listing priced at price.
// An undercut outranks an inflated price.
func (p Policy) Evaluate(price scan.Price, history *scan.History, competitors []scan.Competitor) (verdict, reason string) {
	if price <= 0 {
		return VerdictSafe, "Listing found. The seller hides the price, so there is nothing to compare."
	}

	if p.UndercutRatio > 0 {
		for _, c := range competitors {
			if c.Price > 0 && float64(c.Price) < float64(price)*p.UndercutRatio {
				return VerdictHighRisk, fmt.Sprintf(
					"%s sells it for %s while this listing asks %s. A gap this wide usually means one listing is fake.",
					c.Site, scan.FormatPrice(c.Price), scan.FormatPrice(price))
			}
		}
	}

	if history != nil && history.Average > 0 && p.InflatedRatio > 0 &&
		float64(price) > float64(history.Average)*p.InflatedRatio {
		over := math.Round((float64(price)/float64(history.Average) - 1) * 100)
		return VerdictSuspicious, fmt.Sprintf(
			"Price is %.0f%% above its usual average of %s.", over, scan.FormatPrice(history.Average))
	}

	switch {
	case history != nil && history.Lowest > 0 && price < history.Lowest:
		return VerdictSafe, "Listing verified. This is the lowest price we have seen."
	case len(competitors) > 0:
		return VerdictSafe, "Listing verified. Price is in line with other stores."
	default:
		return VerdictSafe, "Listing verified. No red flags found."
	}
}
