// Package pg provides a thin bootstrap layer around pgx/v5 connection
// pooling: env-driven configuration, retrying connect, goose schema
// migrations, and a health check.
package pg
