// Package transport provides the shared HTTP handles used to talk to the
// leak providers, the scan engine and the classifier.
//
// Each provider gets one Client. The underlying *http.Client is built on
// first use, reused for the life of the process, and released exactly once
// by Close during shutdown. Provider credentials and a User-Agent are
// injected by a RoundTripper so request-building code never handles them.
// Traffic can optionally be routed through a SOCKS5 proxy.
package transport
