// Package model defines the core data structures used throughout scamguard.
//
// This package contains the following main types:
//   - CheckItem: A classified user-supplied value (email, phone or credential)
//   - LeakRecord: One breach entry reported by a leak provider
//   - ScanVerdict: Normalized engine counts for a scanned link or file
//   - Message: One collected chat message with its provenance
//   - AnalysisResult: The outcome of a conversation risk classification
//   - RiskTier: Presentation tier derived from a risk score
//
// Models are kept free of network and storage concerns so that the leaks,
// scan, session and pipeline packages can share them without import cycles.
// All of them serialize to JSON for the report writers.
package model
