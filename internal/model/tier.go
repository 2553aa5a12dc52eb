package model

// RiskTier is the presentation bucket for a risk score.
// Tiers are ordered: TierMinimal < TierLow < TierModerate < TierHigh < TierCritical.
type RiskTier int

const (
	// TierMinimal covers scores in [0, 30).
	TierMinimal RiskTier = iota

	// TierLow covers scores in [30, 50).
	TierLow

	// TierModerate covers scores in [50, 70).
	TierModerate

	// TierHigh covers scores in [70, 90).
	TierHigh

	// TierCritical covers scores in [90, 100].
	TierCritical
)

// Lower bounds of each tier, inclusive.
const (
	lowThreshold      = 30
	moderateThreshold = 50
	highThreshold     = 70
	criticalThreshold = 90
)

// String returns a human-readable representation of the tier.
func (t RiskTier) String() string {
	switch t {
	case TierMinimal:
		return "MINIMAL"
	case TierLow:
		return "LOW"
	case TierModerate:
		return "MODERATE"
	case TierHigh:
		return "HIGH"
	case TierCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// TierFor maps a risk score to its tier. Each lower edge is inclusive.
func TierFor(score int) RiskTier {
	switch {
	case score >= criticalThreshold:
		return TierCritical
	case score >= highThreshold:
		return TierHigh
	case score >= moderateThreshold:
		return TierModerate
	case score >= lowThreshold:
		return TierLow
	default:
		return TierMinimal
	}
}

// TierInfo holds the user-facing wording for a tier.
type TierInfo struct {
	Label          string
	Recommendation string
}

var tierInfoMapping = map[RiskTier]TierInfo{
	TierCritical: {
		Label:          "Very high risk of fraud",
		Recommendation: "Stop the conversation. Do not send money, codes or personal data, and report the sender.",
	},
	TierHigh: {
		Label:          "High risk of fraud",
		Recommendation: "Do not follow any instructions from this conversation until you verify the sender through another channel.",
	},
	TierModerate: {
		Label:          "Moderate risk",
		Recommendation: "Be careful. Verify the sender's identity before acting on any request.",
	},
	TierLow: {
		Label:          "Low risk",
		Recommendation: "Nothing alarming was found, but stay attentive to unusual requests.",
	},
	TierMinimal: {
		Label:          "Minimal risk",
		Recommendation: "The conversation looks safe.",
	},
}

// GetTierInfo returns the wording for a tier.
// Unknown tiers fall back to the minimal tier wording.
func GetTierInfo(t RiskTier) TierInfo {
	if info, ok := tierInfoMapping[t]; ok {
		return info
	}
	return tierInfoMapping[TierMinimal]
}
