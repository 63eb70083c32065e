// Package database provides the storage handle used by the service: a Bun
// connection manager for sqlite, postgres, pgx and mysql, a model registry,
// create-if-not-exists migrations, driver error classification, query
// logging hooks and health checks.
package database
