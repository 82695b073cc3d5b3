// Package reconcile repairs the gap between payment resolution and
// subscription activation. A transaction is marked SUCCESS before its
// subscription side effect is applied; if the process dies or the
// subscription store errors in between, the user has paid without being
// upgraded. The reconciler periodically finds those rows and re-runs the
// activation, which is an idempotent upsert.
package reconcile
