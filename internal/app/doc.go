// Package app builds scamguard's components from a Config and owns
// their lifecycle.
//
// Every provider handle is created once and injected into the
// components that use it. Close stops the background tasks first and
// then closes each handle exactly once.
package app
