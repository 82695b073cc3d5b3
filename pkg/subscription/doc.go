// Package subscription manages the single subscription slot each user
// holds: activation by upsert, cancellation, and lazy expiry derived from
// the end date on every read.
package subscription
