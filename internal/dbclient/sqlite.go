package dbclient

import (
	"jsonsql/internal/domain"

	_ "modernc.org/sqlite"
)

// buildSQLiteDSN turns a file path into a modernc.org/sqlite URI with WAL
// journaling and a busy timeout for concurrent access.
func buildSQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// newSQLiteConnector creates a connector for an external SQLite file.
func newSQLiteConnector(conn *domain.DatabaseConnection) (*sqlConnector, error) {
	return newSQLConnector("sqlite", buildSQLiteDSN(conn.Host))
}
