package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// defaultConfidence is used when the model omits the confidence field.
const defaultConfidence = 0.5

// Verdict is the JSON object the model is asked to produce.
type Verdict struct {
	RiskScore  int      `json:"risk_score"`
	Indicators []string `json:"scam_indicators"`
	Analysis   string   `json:"analysis"`
	Confidence float64  `json:"confidence"`
}

type rawVerdict struct {
	RiskScore  *float64 `json:"risk_score"`
	Indicators []string `json:"scam_indicators"`
	Analysis   string   `json:"analysis"`
	Confidence *float64 `json:"confidence"`
}

// ParseVerdict decodes the assistant content. Markdown code fences around
// the object are tolerated. The score is clamped to [0, 100] and the
// confidence to [0, 1]; a missing confidence becomes 0.5.
func ParseVerdict(content string) (Verdict, error) {
	content = stripCodeFence(content)

	var raw rawVerdict
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return Verdict{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if raw.RiskScore == nil {
		return Verdict{}, fmt.Errorf("%w: missing risk_score", ErrMalformedResponse)
	}

	v := Verdict{
		RiskScore:  int(math.Round(clampFloat(*raw.RiskScore, 0, 100))),
		Indicators: raw.Indicators,
		Analysis:   raw.Analysis,
		Confidence: defaultConfidence,
	}
	if raw.Confidence != nil {
		v.Confidence = clampFloat(*raw.Confidence, 0, 1)
	}
	if v.Indicators == nil {
		v.Indicators = []string{}
	}
	return v, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func clampFloat(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
