// Package postgres provides PostgreSQL implementations of the interfaces in
// internal/store, plus the embedded schema migrations.
//
// Stores run on any store.DBTX, so the same code serves a *sql.DB and a
// *sql.Tx. Driver errors are translated to store sentinels by MapError.
package postgres
