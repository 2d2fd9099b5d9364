package pipeline

import (
	"context"
	"fmt"
	"strings"

	"jsonsql/internal/convert"
	"jsonsql/internal/dbclient"
)

// ── Destination ────────────────────────────────────────────
// A Destination takes a fully converted statement list and puts it somewhere.
// It is only ever called after the whole conversion succeeded.

// WriteResult describes what a destination did.
type WriteResult struct {
	Written  int
	Location string
}

// Destination writes converted statements to a target.
type Destination interface {
	Write(ctx context.Context, job *Job, statements []convert.InsertStatement) (WriteResult, error)
}

// ── SQL File Destination ───────────────────────────────────

// SQLFileWriter writes <OutputDir>/<table>.sql, replacing any previous file.
type SQLFileWriter struct{}

func (w *SQLFileWriter) Write(_ context.Context, job *Job, statements []convert.InsertStatement) (WriteResult, error) {
	path := convert.OutputPath(job.OutputDir, strings.TrimSpace(job.TableName))
	if err := convert.Write(path, statements); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: len(statements), Location: path}, nil
}

// ── Database Destination ───────────────────────────────────

// ConnectorProvider resolves a saved connection ID to a live connector.
// Connectors are owned (and closed) by the provider.
type ConnectorProvider interface {
	Connector(ctx context.Context, connectionID string) (dbclient.Connector, error)
}

// DatabaseWriter loads the converted rows through a saved connection,
// using bind parameters rather than the rendered statement text.
type DatabaseWriter struct {
	Connectors ConnectorProvider
}

func (w *DatabaseWriter) Write(ctx context.Context, job *Job, statements []convert.InsertStatement) (WriteResult, error) {
	if job.ConnectionID == "" {
		return WriteResult{}, fmt.Errorf("job has no database connection")
	}
	location := fmt.Sprintf("connection %s, table %s", job.ConnectionID, strings.TrimSpace(job.TableName))
	if len(statements) == 0 {
		return WriteResult{Location: location}, nil
	}
	if w.Connectors == nil {
		return WriteResult{}, fmt.Errorf("no connector provider configured")
	}

	conn, err := w.Connectors.Connector(ctx, job.ConnectionID)
	if err != nil {
		return WriteResult{}, fmt.Errorf("open connection: %w", err)
	}

	rows := make([][]any, len(statements))
	for i, st := range statements {
		rows[i] = st.Args()
	}
	first := statements[0]
	n, err := conn.Load(ctx, first.Table, first.Columns, rows)
	if err != nil {
		return WriteResult{}, fmt.Errorf("load rows: %w", err)
	}
	return WriteResult{Written: n, Location: location}, nil
}
