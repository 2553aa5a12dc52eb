// Package httpapi exposes the event router over HTTP.
//
// A chat adapter posts decoded events to POST /v1/events and receives
// replies at a webhook. GET /healthz and GET /metrics serve probes and
// Prometheus scrapes.
package httpapi
