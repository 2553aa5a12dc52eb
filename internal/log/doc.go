// Package log provides secure logging built on the standard slog package.
//
// SecureHandler masks, before anything is written:
//   - provider credentials (x-apikey, Authorization, gateway tokens)
//   - values submitted for leak checks (query, email, phone, credential)
//   - conversation text collected for risk analysis
//
// Use Fingerprint to correlate log lines about the same lookup without
// logging the looked-up value.
//
//	logger := log.NewSecureLogger(os.Stderr, true)
//	logger.Debug("leak lookup", "fingerprint", log.Fingerprint(item.Value), "kind", item.Kind)
package log
