// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces (repositories) defined in the internal/store package.
// It handles the details of query execution, constraint error mapping and
// data mapping between domain entities and database records.
//
// The schema lives in embedded goose migrations; see Migrate.
package postgres
