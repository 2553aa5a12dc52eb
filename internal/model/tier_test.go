package model

import "testing"

// TestRiskTierString tests the String method of RiskTier.
func TestRiskTierString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		tier     RiskTier
		expected string
	}{
		{TierMinimal, "MINIMAL"},
		{TierLow, "LOW"},
		{TierModerate, "MODERATE"},
		{TierHigh, "HIGH"},
		{TierCritical, "CRITICAL"},
		{RiskTier(999), "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.tier.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.tier.String(), tc.expected)
			}
		})
	}
}

// TestTierFor tests the score-to-tier mapping including every boundary.
func TestTierFor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		score    int
		expected RiskTier
	}{
		{0, TierMinimal},
		{29, TierMinimal},
		{30, TierLow},
		{49, TierLow},
		{50, TierModerate},
		{69, TierModerate},
		{70, TierHigh},
		{89, TierHigh},
		{90, TierCritical},
		{100, TierCritical},
	}

	for _, tc := range testCases {
		t.Run(tc.expected.String(), func(t *testing.T) {
			t.Parallel()
			if got := TierFor(tc.score); got != tc.expected {
				t.Errorf("TierFor(%d) = %v, expected %v", tc.score, got, tc.expected)
			}
		})
	}
}

// TestTierOrdering tests that tiers are ordered and monotonic in the score.
func TestTierOrdering(t *testing.T) {
	t.Parallel()

	if !(TierMinimal < TierLow && TierLow < TierModerate && TierModerate < TierHigh && TierHigh < TierCritical) {
		t.Error("tiers are not ordered")
	}

	prev := TierFor(0)
	for score := 1; score <= 100; score++ {
		cur := TierFor(score)
		if cur < prev {
			t.Fatalf("TierFor(%d) = %v is lower than TierFor(%d) = %v", score, cur, score-1, prev)
		}
		prev = cur
	}
}

// TestGetTierInfo tests that every tier has wording and unknown tiers fall back.
func TestGetTierInfo(t *testing.T) {
	t.Parallel()

	for _, tier := range []RiskTier{TierMinimal, TierLow, TierModerate, TierHigh, TierCritical} {
		info := GetTierInfo(tier)
		if info.Label == "" || info.Recommendation == "" {
			t.Errorf("tier %v has empty wording", tier)
		}
	}

	if GetTierInfo(RiskTier(42)) != GetTierInfo(TierMinimal) {
		t.Error("unknown tier should fall back to minimal wording")
	}
}
