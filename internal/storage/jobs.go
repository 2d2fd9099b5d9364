package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jsonsql/internal/pipeline"

	"github.com/google/uuid"
)

// ErrJobNotFound is returned when a job ID has no row.
var ErrJobNotFound = errors.New("job not found")

// JobStore persists conversion jobs and their run history.
type JobStore struct {
	db *DB
}

// NewJobStore creates a new JobStore.
func NewJobStore(db *DB) *JobStore {
	return &JobStore{db: db}
}

const jobColumns = `id, name, description, source_type, source_config, table_name,
	destination, output_dir, connection_id, trigger_type, trigger_config, enabled,
	last_run_at, last_status, last_error, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (*pipeline.Job, error) {
	job := &pipeline.Job{}
	var srcCfg string
	var lastRun sql.NullTime
	if err := r.Scan(
		&job.ID, &job.Name, &job.Description, &job.SourceType, &srcCfg, &job.TableName,
		&job.Destination, &job.OutputDir, &job.ConnectionID, &job.TriggerType, &job.TriggerConfig, &job.Enabled,
		&lastRun, &job.LastStatus, &job.LastError, &job.CreatedAt, &job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lastRun.Valid {
		job.LastRunAt = lastRun.Time
	}
	if err := json.Unmarshal([]byte(srcCfg), &job.SourceCfg); err != nil {
		return nil, fmt.Errorf("decode source config of job %s: %w", job.ID, err)
	}
	return job, nil
}

// ── Job CRUD ───────────────────────────────────────────────

func (s *JobStore) CreateJob(job *pipeline.Job) error {
	now := time.Now()
	job.ID = uuid.New().String()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.TriggerType == "" {
		job.TriggerType = pipeline.TriggerManual
	}
	if job.Destination == "" {
		job.Destination = pipeline.DestSQLFile
	}

	srcCfg, err := json.Marshal(job.SourceCfg)
	if err != nil {
		return fmt.Errorf("encode source config: %w", err)
	}

	_, err = s.db.conn.Exec(
		`INSERT INTO conversion_jobs (id, name, description, source_type, source_config, table_name,
		 destination, output_dir, connection_id, trigger_type, trigger_config, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Name, job.Description, job.SourceType, string(srcCfg), job.TableName,
		job.Destination, job.OutputDir, job.ConnectionID, job.TriggerType, job.TriggerConfig, job.Enabled,
		job.CreatedAt, job.UpdatedAt,
	)
	return err
}

func (s *JobStore) GetJob(id string) (*pipeline.Job, error) {
	row := s.db.conn.QueryRow(`SELECT `+jobColumns+` FROM conversion_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return job, err
}

func (s *JobStore) UpdateJob(job *pipeline.Job) error {
	job.UpdatedAt = time.Now()
	srcCfg, err := json.Marshal(job.SourceCfg)
	if err != nil {
		return fmt.Errorf("encode source config: %w", err)
	}

	res, err := s.db.conn.Exec(
		`UPDATE conversion_jobs SET name=?, description=?, source_type=?, source_config=?, table_name=?,
		 destination=?, output_dir=?, connection_id=?, trigger_type=?, trigger_config=?,
		 enabled=?, updated_at=? WHERE id=?`,
		job.Name, job.Description, job.SourceType, string(srcCfg), job.TableName,
		job.Destination, job.OutputDir, job.ConnectionID, job.TriggerType, job.TriggerConfig,
		job.Enabled, job.UpdatedAt, job.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrJobNotFound, job.ID)
	}
	return nil
}

func (s *JobStore) UpdateJobStatus(id, status, errMsg string) error {
	now := time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE conversion_jobs SET last_run_at=?, last_status=?, last_error=?, updated_at=? WHERE id=?`,
		now, status, errMsg, now, id,
	)
	return err
}

// DeleteJob removes a job and its run history.
func (s *JobStore) DeleteJob(id string) error {
	if _, err := s.db.conn.Exec(`DELETE FROM run_logs WHERE job_id = ?`, id); err != nil {
		return err
	}
	_, err := s.db.conn.Exec(`DELETE FROM conversion_jobs WHERE id = ?`, id)
	return err
}

func (s *JobStore) ListJobs() ([]pipeline.Job, error) {
	return s.queryJobs(`SELECT ` + jobColumns + ` FROM conversion_jobs ORDER BY created_at ASC`)
}

// ListEnabledTriggeredJobs returns enabled jobs with a schedule or file_watch trigger.
func (s *JobStore) ListEnabledTriggeredJobs() ([]pipeline.Job, error) {
	return s.queryJobs(
		`SELECT `+jobColumns+` FROM conversion_jobs
		 WHERE enabled = 1 AND trigger_type IN (?, ?)
		 ORDER BY created_at ASC`,
		pipeline.TriggerSchedule, pipeline.TriggerFileWatch,
	)
}

func (s *JobStore) queryJobs(query string, args ...any) ([]pipeline.Job, error) {
	rows, err := s.db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []pipeline.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// ── Run Logs ───────────────────────────────────────────────

func (s *JobStore) CreateRunLog(l *pipeline.RunLog) error {
	l.ID = uuid.New().String()
	_, err := s.db.conn.Exec(
		`INSERT INTO run_logs (id, job_id, table_name, started_at, finished_at, status,
		 rows_read, statements_written, location, error_kind, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.JobID, l.TableName, l.StartedAt, l.FinishedAt, l.Status,
		l.RowsRead, l.StatementsWritten, l.Location, l.ErrorKind, l.Error,
	)
	return err
}

const runLogColumns = `id, job_id, table_name, started_at, finished_at, status,
	rows_read, statements_written, location, error_kind, error`

// ListRunLogs returns the newest runs of one job first. An empty jobID
// lists one-shot conversions.
func (s *JobStore) ListRunLogs(jobID string, limit int) ([]pipeline.RunLog, error) {
	return s.queryRunLogs(
		`SELECT `+runLogColumns+` FROM run_logs WHERE job_id = ? ORDER BY started_at DESC LIMIT ?`,
		jobID, limit,
	)
}

// ListRecentRuns returns the newest runs across all jobs.
func (s *JobStore) ListRecentRuns(limit int) ([]pipeline.RunLog, error) {
	return s.queryRunLogs(
		`SELECT `+runLogColumns+` FROM run_logs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
}

func (s *JobStore) queryRunLogs(query string, args ...any) ([]pipeline.RunLog, error) {
	rows, err := s.db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []pipeline.RunLog
	for rows.Next() {
		var l pipeline.RunLog
		if err := rows.Scan(&l.ID, &l.JobID, &l.TableName, &l.StartedAt, &l.FinishedAt, &l.Status,
			&l.RowsRead, &l.StatementsWritten, &l.Location, &l.ErrorKind, &l.Error); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
