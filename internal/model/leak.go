package model

import "time"

// LeakRecord is a single breach entry returned by a leak provider.
// Records from different providers are never merged or deduplicated.
type LeakRecord struct {
	// Source is the name of the provider that reported the record.
	Source string `json:"source"`

	// Site is the breached service name. Empty means unknown, which is
	// always the case for anonymous password-range hits.
	Site string `json:"site,omitempty"`

	// BreachDate is when the breach happened, nil when unknown.
	BreachDate *time.Time `json:"breach_date,omitempty"`
}

// SiteOrUnknown returns the site name, or "unknown" for anonymous records.
func (r LeakRecord) SiteOrUnknown() string {
	if r.Site == "" {
		return "unknown"
	}
	return r.Site
}
