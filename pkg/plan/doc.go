// Package plan defines the tier catalog: prices, per-resource ceilings,
// and feature flags, validated at startup so quota and pricing decisions
// never run against a misconfigured catalog.
package plan
