// Package database wraps GORM with dyne logging, connection retries and
// component lifecycle. It backs the SQL run registry; SQLite is the
// built-in driver:
//
//	db, err := database.New(ctx, database.Config{DSN: "runs.db"}, log)
//	defer db.Close()
package database
