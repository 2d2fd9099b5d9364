package pipeline

import "time"

// DestinationKind selects where a job's statements go.
type DestinationKind string

const (
	DestSQLFile  DestinationKind = "sql_file" // <outputDir>/<table>.sql
	DestDatabase DestinationKind = "database" // rows loaded through a saved connection
)

// Trigger types.
const (
	TriggerManual    = "manual"
	TriggerSchedule  = "schedule"   // TriggerConfig is a cron expression
	TriggerFileWatch = "file_watch" // TriggerConfig is the path to watch
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusRunning = "running"
)

// Job is a saved conversion: where the JSON comes from, which table the
// statements target, and where they go.
type Job struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	SourceType    string          `json:"sourceType"`
	SourceCfg     SourceConfig    `json:"sourceConfig"`
	TableName     string          `json:"tableName"`
	Destination   DestinationKind `json:"destination"`
	OutputDir     string          `json:"outputDir"`
	ConnectionID  string          `json:"connectionId"`
	TriggerType   string          `json:"triggerType"`
	TriggerConfig string          `json:"triggerConfig"`
	Enabled       bool            `json:"enabled"`
	LastRunAt     time.Time       `json:"lastRunAt"`
	LastStatus    string          `json:"lastStatus"` // "success" | "error" | "running" | ""
	LastError     string          `json:"lastError"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// RunResult is the outcome of running a job once.
type RunResult struct {
	JobID             string        `json:"jobId"`
	Status            string        `json:"status"`
	RowsRead          int           `json:"rowsRead"`
	StatementsWritten int           `json:"statementsWritten"`
	Location          string        `json:"location"` // output file path or target description
	Duration          time.Duration `json:"duration"`
	ErrorKind         string        `json:"errorKind,omitempty"`
	Error             string        `json:"error,omitempty"`
}

// RunLog is a historical record of a run.
type RunLog struct {
	ID                string    `json:"id"`
	JobID             string    `json:"jobId"` // empty for one-shot conversions
	TableName         string    `json:"tableName"`
	StartedAt         time.Time `json:"startedAt"`
	FinishedAt        time.Time `json:"finishedAt"`
	Status            string    `json:"status"`
	RowsRead          int       `json:"rowsRead"`
	StatementsWritten int       `json:"statementsWritten"`
	Location          string    `json:"location"`
	ErrorKind         string    `json:"errorKind,omitempty"`
	Error             string    `json:"error,omitempty"`
}

// LogFromResult builds the RunLog for a finished run.
func LogFromResult(r *RunResult, table string, startedAt time.Time) *RunLog {
	return &RunLog{
		JobID:             r.JobID,
		TableName:         table,
		StartedAt:         startedAt,
		FinishedAt:        startedAt.Add(r.Duration),
		Status:            r.Status,
		RowsRead:          r.RowsRead,
		StatementsWritten: r.StatementsWritten,
		Location:          r.Location,
		ErrorKind:         r.ErrorKind,
		Error:             r.Error,
	}
}
