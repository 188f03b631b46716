// Package risk maps a numeric failure-risk score onto the engagement tier
// that drives workflow branch selection.
package risk

// Tier is the risk-severity bucket, ordered by ascending engagement severity.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
	TierCritical
)

// Classification thresholds. Boundary values belong to the higher tier.
const (
	CriticalThreshold = 0.8
	HighThreshold     = 0.6
	MediumThreshold   = 0.4
)

// Classify maps a risk score to its tier. Pure and total: any float maps to
// a tier, scores below MediumThreshold (including negatives) are TierLow.
func Classify(score float64) Tier {
	switch {
	case score >= CriticalThreshold:
		return TierCritical
	case score >= HighThreshold:
		return TierHigh
	case score >= MediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// String returns the canonical upper-case tier name.
func (t Tier) String() string {
	switch t {
	case TierCritical:
		return "CRITICAL"
	case TierHigh:
		return "HIGH"
	case TierMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// Urgency returns the lower-case form used on voice scripts and ledgers.
func (t Tier) Urgency() string {
	switch t {
	case TierCritical:
		return "critical"
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	default:
		return "low"
	}
}

// AtLeast reports whether t is at or above the given tier.
func (t Tier) AtLeast(other Tier) bool {
	return t >= other
}

// MarshalText encodes the tier as its canonical name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier from its canonical name; unknown names
// default to LOW rather than erroring, matching Classify's totality.
func (t *Tier) UnmarshalText(b []byte) error {
	switch string(b) {
	case "CRITICAL":
		*t = TierCritical
	case "HIGH":
		*t = TierHigh
	case "MEDIUM":
		*t = TierMedium
	default:
		*t = TierLow
	}
	return nil
}
