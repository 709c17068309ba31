// Package postgres implements the store and task persistence interfaces on
// PostgreSQL. Queries are built with squirrel, study units are stored as
// JSONB, and the schema is managed by embedded goose migrations.
package postgres
