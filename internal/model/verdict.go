package model

// ScanVerdict is the normalized result of a completed engine analysis.
type ScanVerdict struct {
	// ReportID is the engine-assigned analysis identifier used to build
	// the human-facing report link.
	ReportID string `json:"report_id"`

	Malicious  int `json:"malicious"`
	Suspicious int `json:"suspicious"`
	Harmless   int `json:"harmless"`
	Undetected int `json:"undetected"`
}

// Dangerous reports whether at least one engine flagged the artifact
// as malicious or suspicious.
func (v ScanVerdict) Dangerous() bool {
	return v.Malicious+v.Suspicious > 0
}

// Total returns the number of engines that produced one of the four counted outcomes.
func (v ScanVerdict) Total() int {
	return v.Malicious + v.Suspicious + v.Harmless + v.Undetected
}
