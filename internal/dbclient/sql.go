package dbclient

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// sqlConnector is the shared implementation for MySQL, Postgres, and SQLite.
type sqlConnector struct {
	driverName string
	db         *sql.DB
}

// newSQLConnector creates a generic SQL connector.
func newSQLConnector(driverName, dsn string) (*sqlConnector, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	// Sensible pool settings for a desktop app
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	return &sqlConnector{driverName: driverName, db: db}, nil
}

func (c *sqlConnector) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return c.db.PingContext(ctx)
}

// Load inserts all rows in one transaction with a prepared, parameterised
// INSERT. Either every row lands or none does.
func (c *sqlConnector) Load(ctx context.Context, table string, columns []string, rows [][]any) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL(c.driverName, table, columns))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("row %d has %d values for %d columns", i, len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(rows), nil
}

func (c *sqlConnector) Close() error {
	return c.db.Close()
}

// insertSQL builds a parameterised INSERT for the driver's placeholder style.
// Column names come from JSON keys, so every identifier is quoted.
func insertSQL(driverName, table string, columns []string) string {
	cols := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = quoteIdent(driverName, c)
		marks[i] = placeholder(driverName, i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteTable(driverName, table), strings.Join(cols, ", "), strings.Join(marks, ", "))
}

// quoteIdent quotes one identifier: backticks for MySQL, double quotes for
// Postgres and SQLite. Embedded quote characters are doubled.
func quoteIdent(driverName, name string) string {
	q := `"`
	if driverName == "mysql" {
		q = "`"
	}
	return q + strings.ReplaceAll(name, q, q+q) + q
}

// quoteTable quotes each part of a schema-qualified table name.
func quoteTable(driverName, table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = quoteIdent(driverName, p)
	}
	return strings.Join(parts, ".")
}

// placeholder returns the n-th (1-based) bind marker.
func placeholder(driverName string, n int) string {
	if driverName == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}
