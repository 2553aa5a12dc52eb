// Package scan submits links and files to a multi-engine scanning service
// and waits for the verdict.
//
// Unlike leak lookups, scan failures are never hidden: every failure is
// returned as a *ScanError so the caller can tell the user the check did
// not happen and point them at ManualCheckURL.
package scan
