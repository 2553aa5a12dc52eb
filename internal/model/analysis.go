package model

// AnalysisStatus tells how an AnalysisResult was produced.
// Every status other than AnalysisOK marks a degraded result whose score
// and confidence are the inconclusive sentinel (0 and 0.0).
type AnalysisStatus int

const (
	// AnalysisOK means the classifier answered and the answer was parsed.
	AnalysisOK AnalysisStatus = iota

	// AnalysisInsufficientBalance means the quota was below the minimum
	// or the provider answered 402.
	AnalysisInsufficientBalance

	// AnalysisQuotaUnavailable means the balance could not be read.
	AnalysisQuotaUnavailable

	// AnalysisRateLimited means the provider answered 429.
	AnalysisRateLimited

	// AnalysisFormatError means the provider answered 200 with a body that
	// could not be parsed as the expected JSON object.
	AnalysisFormatError

	// AnalysisClientError means the provider rejected the request (4xx).
	AnalysisClientError

	// AnalysisServiceError means the provider answered with an unexpected status.
	AnalysisServiceError

	// AnalysisNetworkError means the request never got an answer.
	AnalysisNetworkError

	// AnalysisNotConfigured means no classifier credential is configured.
	AnalysisNotConfigured

	// AnalysisInternalError covers any other failure inside the pipeline.
	AnalysisInternalError
)

// String returns a stable identifier for the status, used as a metric label.
func (s AnalysisStatus) String() string {
	switch s {
	case AnalysisOK:
		return "ok"
	case AnalysisInsufficientBalance:
		return "insufficient_balance"
	case AnalysisQuotaUnavailable:
		return "quota_unavailable"
	case AnalysisRateLimited:
		return "rate_limited"
	case AnalysisFormatError:
		return "format_error"
	case AnalysisClientError:
		return "client_error"
	case AnalysisServiceError:
		return "service_error"
	case AnalysisNetworkError:
		return "network_error"
	case AnalysisNotConfigured:
		return "not_configured"
	case AnalysisInternalError:
		return "internal_error"
	default:
		return "unknown"
	}
}

// Retryable reports whether the same request may succeed later without
// any change on the caller's side.
func (s AnalysisStatus) Retryable() bool {
	switch s {
	case AnalysisInsufficientBalance, AnalysisQuotaUnavailable, AnalysisRateLimited,
		AnalysisServiceError, AnalysisNetworkError:
		return true
	default:
		return false
	}
}

// AnalysisResult is the outcome of classifying a conversation transcript.
type AnalysisResult struct {
	// RiskScore is in [0, 100].
	RiskScore int `json:"risk_score"`

	// Indicators are short labels of the scam signals found, or of the
	// failure that produced a degraded result.
	Indicators []string `json:"indicators"`

	// Analysis is free text explaining the score.
	Analysis string `json:"analysis"`

	// Confidence is in [0, 1].
	Confidence float64 `json:"confidence"`

	// Status tells a real answer apart from each degraded outcome.
	Status AnalysisStatus `json:"status"`
}

// Inconclusive reports whether the result carries the degraded sentinel
// (score 0 with confidence 0) rather than a real assessment.
func (r AnalysisResult) Inconclusive() bool {
	return r.RiskScore == 0 && r.Confidence == 0
}

// Degraded reports whether the result was produced without a usable
// classifier answer.
func (r AnalysisResult) Degraded() bool {
	return r.Status != AnalysisOK
}

// Tier returns the presentation tier for the result's score.
func (r AnalysisResult) Tier() RiskTier {
	return TierFor(r.RiskScore)
}
