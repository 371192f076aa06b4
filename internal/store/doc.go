// Package store defines interfaces for data persistence operations.
// These interfaces keep services independent of the database driver;
// the PostgreSQL implementations live in internal/platform/postgres.
package store
