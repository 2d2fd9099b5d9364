package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jsonsql/internal/convert"
)

// ── Engine ─────────────────────────────────────────────────
// Orchestrates: source.Load → convert → destination.Write.
// Nothing is written unless the whole input converted cleanly.

var (
	// ErrSource wraps failures obtaining the JSON text.
	ErrSource = errors.New("source")
	// ErrDestination wraps failures delivering converted statements.
	ErrDestination = errors.New("destination")
)

// Engine runs conversion jobs using the registered sources.
type Engine struct {
	Destinations map[DestinationKind]Destination
}

// NewEngine returns an Engine with the file destination and, when conns is
// non-nil, the database destination.
func NewEngine(conns ConnectorProvider) *Engine {
	dests := map[DestinationKind]Destination{
		DestSQLFile: &SQLFileWriter{},
	}
	if conns != nil {
		dests[DestDatabase] = &DatabaseWriter{Connectors: conns}
	}
	return &Engine{Destinations: dests}
}

// Run executes a job end-to-end. The returned result is always non-nil.
func (e *Engine) Run(ctx context.Context, job *Job) (*RunResult, error) {
	start := time.Now()

	// 1. Resolve destination first so a misconfigured job fails before any I/O.
	dest, err := e.destination(job)
	if err != nil {
		return failed(job, start, err)
	}

	// 2. Load JSON text.
	source, err := GetSource(job.SourceType)
	if err != nil {
		return failed(job, start, fmt.Errorf("%w: %w", ErrSource, err))
	}
	data, err := source.Load(ctx, job.SourceCfg)
	if err != nil {
		return failed(job, start, fmt.Errorf("%w: %w", ErrSource, err))
	}

	return e.deliver(ctx, job, dest, data, start)
}

// RunData converts data the caller already holds (a loaded file, pasted text)
// and writes it to the job's destination. The job's source is ignored.
func (e *Engine) RunData(ctx context.Context, job *Job, data []byte) (*RunResult, error) {
	start := time.Now()
	dest, err := e.destination(job)
	if err != nil {
		return failed(job, start, err)
	}
	return e.deliver(ctx, job, dest, data, start)
}

func (e *Engine) destination(job *Job) (Destination, error) {
	kind := job.Destination
	if kind == "" {
		kind = DestSQLFile
	}
	dest, ok := e.Destinations[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported destination %q", ErrDestination, kind)
	}
	return dest, nil
}

// deliver converts data and writes the statements. Nothing reaches the
// destination unless every record converted.
func (e *Engine) deliver(ctx context.Context, job *Job, dest Destination, data []byte, start time.Time) (*RunResult, error) {
	statements, err := convert.ConvertContext(ctx, string(data), job.TableName)
	if err != nil {
		return failed(job, start, err)
	}

	wr, err := dest.Write(ctx, job, statements)
	if err != nil {
		var ioErr *convert.IOError
		if !errors.As(err, &ioErr) {
			err = fmt.Errorf("%w: %w", ErrDestination, err)
		}
		res, _ := failed(job, start, err)
		res.RowsRead = len(statements)
		return res, err
	}

	return &RunResult{
		JobID:             job.ID,
		Status:            StatusSuccess,
		RowsRead:          len(statements),
		StatementsWritten: wr.Written,
		Location:          wr.Location,
		Duration:          time.Since(start),
	}, nil
}

func failed(job *Job, start time.Time, err error) (*RunResult, error) {
	return &RunResult{
		JobID:     job.ID,
		Status:    StatusError,
		ErrorKind: ErrorKind(err),
		Error:     err.Error(),
		Duration:  time.Since(start),
	}, err
}

// PreviewResult is the response from Preview.
type PreviewResult struct {
	Columns    []string `json:"columns"`
	Statements []string `json:"statements"`
	Total      int      `json:"total"`
}

// Preview loads and converts without writing, returning up to maxRows statements.
func (e *Engine) Preview(ctx context.Context, sourceType string, cfg SourceConfig, table string, maxRows int) (*PreviewResult, error) {
	source, err := GetSource(sourceType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSource, err)
	}
	data, err := source.Load(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSource, err)
	}
	statements, err := convert.ConvertContext(ctx, string(data), table)
	if err != nil {
		return nil, err
	}
	return NewPreview(statements, maxRows), nil
}

// NewPreview renders the first maxRows statements.
func NewPreview(statements []convert.InsertStatement, maxRows int) *PreviewResult {
	res := &PreviewResult{Columns: []string{}, Statements: []string{}, Total: len(statements)}
	if len(statements) > 0 {
		res.Columns = statements[0].Columns
	}
	for i, st := range statements {
		if maxRows > 0 && i >= maxRows {
			break
		}
		res.Statements = append(res.Statements, st.String())
	}
	return res
}

// Error kinds reported to front ends.
const (
	KindParse       = "parse"
	KindSchema      = "schema"
	KindTable       = "table"
	KindIO          = "io"
	KindSource      = "source"
	KindDestination = "destination"
	KindCanceled    = "canceled"
	KindOther       = "other"
)

// ErrorKind classifies an error chain for display.
func ErrorKind(err error) string {
	var (
		parseErr  *convert.ParseError
		schemaErr *convert.SchemaError
		ioErr     *convert.IOError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &parseErr):
		return KindParse
	case errors.As(err, &schemaErr):
		return KindSchema
	case errors.Is(err, convert.ErrEmptyTable):
		return KindTable
	case errors.As(err, &ioErr):
		return KindIO
	case errors.Is(err, ErrSource):
		return KindSource
	case errors.Is(err, ErrDestination):
		return KindDestination
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindOther
	}
}
