// Package quota enforces per-tier resource ceilings with an atomic
// reserve-before-persist counter, so concurrent requests can never
// overshoot a limit.
package quota
