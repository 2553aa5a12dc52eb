package classifier

import (
	"errors"
	"testing"
)

func TestParseVerdict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    Verdict
		wantErr bool
	}{
		{
			name:    "complete object",
			content: `{"risk_score": 85, "scam_indicators": ["urgency"], "analysis": "pressure to pay", "confidence": 0.9}`,
			want:    Verdict{RiskScore: 85, Indicators: []string{"urgency"}, Analysis: "pressure to pay", Confidence: 0.9},
		},
		{
			name:    "missing confidence defaults to one half",
			content: `{"risk_score": 20, "scam_indicators": [], "analysis": "ok"}`,
			want:    Verdict{RiskScore: 20, Indicators: []string{}, Analysis: "ok", Confidence: 0.5},
		},
		{
			name:    "code fence",
			content: "```json\n{\"risk_score\": 40, \"analysis\": \"x\", \"confidence\": 0.3}\n```",
			want:    Verdict{RiskScore: 40, Indicators: []string{}, Analysis: "x", Confidence: 0.3},
		},
		{
			name:    "out of range values are clamped",
			content: `{"risk_score": 140, "confidence": 3}`,
			want:    Verdict{RiskScore: 100, Indicators: []string{}, Confidence: 1},
		},
		{
			name:    "fractional score is rounded",
			content: `{"risk_score": 49.6, "confidence": 0.1}`,
			want:    Verdict{RiskScore: 50, Indicators: []string{}, Confidence: 0.1},
		},
		{
			name:    "huge score is critical",
			content: `{"risk_score": 1e20, "confidence": 0.9}`,
			want:    Verdict{RiskScore: 100, Indicators: []string{}, Confidence: 0.9},
		},
		{
			name:    "negative score is zero",
			content: `{"risk_score": -1e20, "confidence": 0.9}`,
			want:    Verdict{RiskScore: 0, Indicators: []string{}, Confidence: 0.9},
		},
		{name: "prose", content: "This looks like a scam.", wantErr: true},
		{name: "missing score", content: `{"analysis": "x"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseVerdict(tt.content)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Errorf("expected ErrMalformedResponse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.RiskScore != tt.want.RiskScore || got.Analysis != tt.want.Analysis || got.Confidence != tt.want.Confidence {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if len(got.Indicators) != len(tt.want.Indicators) {
				t.Errorf("indicators: got %v, want %v", got.Indicators, tt.want.Indicators)
			}
		})
	}
}
