// Package httpserver wraps net/http with env-driven configuration,
// graceful shutdown, and a readiness handler that aggregates probes.
package httpserver
