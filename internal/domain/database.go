package domain

import (
	"fmt"
	"time"
)

// DatabaseDriver represents the type of database engine a conversion can be loaded into.
type DatabaseDriver string

const (
	DatabaseDriverMySQL    DatabaseDriver = "mysql"
	DatabaseDriverPostgres DatabaseDriver = "postgres"
	DatabaseDriverMongoDB  DatabaseDriver = "mongodb"
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"
)

// Drivers lists every supported driver, in display order.
var Drivers = []DatabaseDriver{
	DatabaseDriverPostgres,
	DatabaseDriverMySQL,
	DatabaseDriverSQLite,
	DatabaseDriverMongoDB,
}

// DatabaseConnection holds the metadata for connecting to an external database.
// The password is stored separately in the SecretStore (e.g. macOS Keychain).
type DatabaseConnection struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Driver    DatabaseDriver `json:"driver"`
	Host      string         `json:"host"`     // hostname or file path (sqlite)
	Port      int            `json:"port"`     // 0 for sqlite
	Database  string         `json:"database"` // db name or empty for sqlite
	Username  string         `json:"username"`
	SSLMode   string         `json:"sslMode"`
	ExtraJSON string         `json:"extraJson"` // driver-specific options
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Validate checks the fields every driver needs.
func (c *DatabaseConnection) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("connection name is required")
	}
	known := false
	for _, d := range Drivers {
		if c.Driver == d {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unsupported driver: %q", c.Driver)
	}
	if c.Host == "" {
		if c.Driver == DatabaseDriverSQLite {
			return fmt.Errorf("sqlite connection needs a file path")
		}
		return fmt.Errorf("host is required")
	}
	return nil
}

// SecretKey is the SecretStore key holding this connection's password.
func (c *DatabaseConnection) SecretKey() string {
	return "db:" + c.ID
}

// DatabaseConnectionStore manages CRUD operations for database connections.
type DatabaseConnectionStore interface {
	CreateConnection(c *DatabaseConnection) error
	GetConnection(id string) (*DatabaseConnection, error)
	ListConnections() ([]DatabaseConnection, error)
	UpdateConnection(c *DatabaseConnection) error
	DeleteConnection(id string) error
}
