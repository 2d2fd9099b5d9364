package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jsonsql/internal/domain"

	"github.com/google/uuid"
)

// ErrConnectionNotFound is returned when a connection ID has no row.
var ErrConnectionNotFound = errors.New("database connection not found")

// DBConnectionStore persists the database destinations jobs can load into.
// Passwords live in secret.SecretStore, never in this table.
type DBConnectionStore struct {
	db *DB
}

var _ domain.DatabaseConnectionStore = (*DBConnectionStore)(nil)

func NewDBConnectionStore(db *DB) *DBConnectionStore {
	return &DBConnectionStore{db: db}
}

const connColumns = `id, name, driver, host, port, database_name, username, ssl_mode, extra_json, created_at, updated_at`

func scanConnection(r rowScanner) (*domain.DatabaseConnection, error) {
	c := &domain.DatabaseConnection{}
	err := r.Scan(&c.ID, &c.Name, &c.Driver, &c.Host, &c.Port, &c.Database,
		&c.Username, &c.SSLMode, &c.ExtraJSON, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateConnection inserts c, assigning an ID when it has none.
func (s *DBConnectionStore) CreateConnection(c *domain.DatabaseConnection) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.ExtraJSON == "" {
		c.ExtraJSON = "{}"
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt

	_, err := s.db.conn.Exec(`INSERT INTO db_connections (`+connColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Driver, c.Host, c.Port, c.Database,
		c.Username, c.SSLMode, c.ExtraJSON, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert connection: %w", err)
	}
	return nil
}

func (s *DBConnectionStore) GetConnection(id string) (*domain.DatabaseConnection, error) {
	c, err := scanConnection(s.db.conn.QueryRow(`SELECT `+connColumns+` FROM db_connections WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrConnectionNotFound, id)
	}
	return c, err
}

// ListConnections returns all connections sorted by name.
func (s *DBConnectionStore) ListConnections() ([]domain.DatabaseConnection, error) {
	rows, err := s.db.conn.Query(`SELECT ` + connColumns + ` FROM db_connections ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conns := []domain.DatabaseConnection{}
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		conns = append(conns, *c)
	}
	return conns, rows.Err()
}

// UpdateConnection rewrites every field except ID and CreatedAt.
func (s *DBConnectionStore) UpdateConnection(c *domain.DatabaseConnection) error {
	c.UpdatedAt = time.Now()
	res, err := s.db.conn.Exec(`UPDATE db_connections
		SET name = ?, driver = ?, host = ?, port = ?, database_name = ?, username = ?,
		    ssl_mode = ?, extra_json = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.Driver, c.Host, c.Port, c.Database, c.Username,
		c.SSLMode, c.ExtraJSON, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update connection: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrConnectionNotFound, c.ID)
	}
	return nil
}

func (s *DBConnectionStore) DeleteConnection(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM db_connections WHERE id = ?`, id)
	return err
}
