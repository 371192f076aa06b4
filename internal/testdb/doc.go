// Package testdb provides helpers for database integration tests.
//
// Tests run inside a transaction that is rolled back when the test
// completes, so they can run in parallel against one database:
//
//	func TestSomething(t *testing.T) {
//		db := testdb.Open(t)
//		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//			s := postgres.NewPostgresTaskStore(tx, nil)
//			// ...
//		})
//	}
//
// Open skips the test when no database URL is configured.
package testdb
