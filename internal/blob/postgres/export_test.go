package postgres

import "database/sql"

// OverrideSQLOpen swaps the opener used by New and returns a restore func.
func OverrideSQLOpen(fn func(driverName, dsn string) (*sql.DB, error)) func() {
	prev := sqlOpen
	sqlOpen = fn
	return func() { sqlOpen = prev }
}
