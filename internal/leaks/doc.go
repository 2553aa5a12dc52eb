// Package leaks searches public breach databases for a classified value.
//
// Three providers are supported: a password-range API queried with a
// k-anonymity hash prefix, an e-mail breach API, and a generic lookup API
// that accepts any value. The Aggregator routes a CheckItem to the
// providers that apply to its kind, calls them concurrently, and merges
// their records. A failing provider contributes nothing and never fails
// the search.
package leaks
