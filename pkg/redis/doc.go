// Package redis provides env-driven configuration and a retrying
// constructor for go-redis clients, plus a readiness probe.
package redis
