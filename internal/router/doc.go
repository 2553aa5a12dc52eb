// Package router maps decoded chat events onto scamguard's components.
//
// The Dispatcher answers every event at once. Leak checks, scans and
// conversation analyses run as supervised background tasks, and their
// results are delivered later through a Replier.
package router
