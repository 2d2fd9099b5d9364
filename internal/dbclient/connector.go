package dbclient

import (
	"context"
	"encoding/json"
	"fmt"

	"jsonsql/internal/domain"
)

// Connector loads converted rows into an external database.
type Connector interface {
	// TestConnection verifies connectivity.
	TestConnection(ctx context.Context) error

	// Load inserts rows into table. Each row holds one value per column,
	// in column order. Returns the number of rows written.
	Load(ctx context.Context, table string, columns []string, rows [][]any) (int, error)

	// Close releases the underlying connection pool.
	Close() error
}

// NewConnector creates a Connector for the given database connection.
// The password must be provided separately (from SecretStore).
func NewConnector(conn *domain.DatabaseConnection, password string) (Connector, error) {
	switch conn.Driver {
	case domain.DatabaseDriverSQLite:
		return newSQLiteConnector(conn)
	case domain.DatabaseDriverMySQL:
		return newSQLConnector("mysql", buildMySQLDSN(conn, password))
	case domain.DatabaseDriverPostgres:
		return newSQLConnector("postgres", buildPostgresDSN(conn, password))
	case domain.DatabaseDriverMongoDB:
		return newMongoConnector(conn, password)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", conn.Driver)
	}
}

// extraOptions decodes the connection's driver-specific options. Malformed
// JSON is treated as no options.
func extraOptions(conn *domain.DatabaseConnection) map[string]string {
	if conn.ExtraJSON == "" || conn.ExtraJSON == "{}" {
		return nil
	}
	var extras map[string]string
	if err := json.Unmarshal([]byte(conn.ExtraJSON), &extras); err != nil {
		return nil
	}
	return extras
}
