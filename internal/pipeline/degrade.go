package pipeline

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/nao1215/scamguard/internal/classifier"
	"github.com/nao1215/scamguard/internal/model"
)

// Degrade maps a failure to a degraded result with the inconclusive
// sentinel score and confidence.
func Degrade(err error) model.AnalysisResult {
	var statusErr *classifier.StatusError
	var netErr net.Error

	switch {
	case err == nil:
		return degraded(model.AnalysisInternalError, "internal error",
			"The analysis failed unexpectedly.")
	case errors.Is(err, ErrNotConfigured):
		return degraded(model.AnalysisNotConfigured, "not configured",
			"The analysis service is not configured. Set the classifier API token.")
	case errors.Is(err, ErrInsufficientBalance):
		return balanceResult()
	case errors.Is(err, ErrQuotaUnavailable):
		return degraded(model.AnalysisQuotaUnavailable, "balance check failed",
			"The analysis service balance could not be checked. Try again later.")
	case errors.Is(err, ErrEmptyTranscript):
		return degraded(model.AnalysisInternalError, "no messages",
			"There is nothing to analyze.")
	case errors.Is(err, classifier.ErrMalformedResponse):
		return degraded(model.AnalysisFormatError, "format error",
			"The classifier answer could not be read.")
	case errors.As(err, &statusErr):
		return fromStatus(statusErr)
	case errors.Is(err, classifier.ErrNetwork), errors.As(err, &netErr):
		return degraded(model.AnalysisNetworkError, "network error",
			"The analysis service could not be reached. Try again later.")
	default:
		return degraded(model.AnalysisInternalError, "internal error",
			"The analysis failed unexpectedly.")
	}
}

func fromStatus(e *classifier.StatusError) model.AnalysisResult {
	switch e.StatusCode {
	case http.StatusPaymentRequired:
		return balanceResult()
	case http.StatusTooManyRequests:
		return degraded(model.AnalysisRateLimited, "rate limit exceeded",
			"The analysis service is overloaded. Try again in a few minutes.")
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusNotFound, http.StatusUnprocessableEntity:
		msg := ClientMessage(e.Message)
		return degraded(model.AnalysisClientError, msg, msg+".")
	default:
		msg := fmt.Sprintf("service error: %d", e.StatusCode)
		return degraded(model.AnalysisServiceError, msg, msg+".")
	}
}

// ClientMessage normalizes a provider's rejection message.
func ClientMessage(providerMessage string) string {
	lower := strings.ToLower(providerMessage)
	switch {
	case strings.Contains(lower, "model not found"):
		return "model unavailable"
	case strings.Contains(lower, "invalid api key"):
		return "invalid API key"
	case providerMessage == "":
		return "AI error: unknown provider error"
	default:
		return "AI error: " + providerMessage
	}
}

func balanceResult() model.AnalysisResult {
	return degraded(model.AnalysisInsufficientBalance, "insufficient balance",
		"The analysis service is temporarily unavailable due to insufficient balance. Try again later.")
}

func degraded(status model.AnalysisStatus, indicator, analysis string) model.AnalysisResult {
	return model.AnalysisResult{
		RiskScore:  0,
		Indicators: []string{indicator},
		Analysis:   analysis,
		Confidence: 0,
		Status:     status,
	}
}
