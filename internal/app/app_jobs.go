package app

import (
	"encoding/json"
	"fmt"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"jsonsql/internal/pipeline"
	"jsonsql/internal/service"
)

// ============================================================
// Saved Conversion Jobs
// ============================================================

func (a *App) CreateJob(input service.CreateJobInput) (*pipeline.Job, error) {
	return a.convert.CreateJob(a.ctx, input)
}

func (a *App) GetJob(id string) (*pipeline.Job, error) {
	return a.convert.GetJob(id)
}

func (a *App) ListJobs() ([]pipeline.Job, error) {
	jobs, err := a.convert.ListJobs()
	if jobs == nil && err == nil {
		jobs = []pipeline.Job{}
	}
	return jobs, err
}

func (a *App) UpdateJob(id string, input service.CreateJobInput) error {
	return a.convert.UpdateJob(a.ctx, id, input)
}

func (a *App) DeleteJob(id string) error {
	return a.convert.DeleteJob(a.ctx, id)
}

// SetJobEnabled toggles a job's trigger without touching anything else.
func (a *App) SetJobEnabled(id string, enabled bool) error {
	job, err := a.convert.GetJob(id)
	if err != nil {
		return err
	}
	input := service.CreateJobInput{
		Name:          job.Name,
		Description:   job.Description,
		SourceType:    job.SourceType,
		SourceConfig:  job.SourceCfg,
		TableName:     job.TableName,
		Destination:   job.Destination,
		OutputDir:     job.OutputDir,
		ConnectionID:  job.ConnectionID,
		TriggerType:   job.TriggerType,
		TriggerConfig: job.TriggerConfig,
		Enabled:       enabled,
	}
	return a.convert.UpdateJob(a.ctx, id, input)
}

// RunJob runs a saved job now. Failures come back in the result.
func (a *App) RunJob(id string) (*ConvertOutcome, error) {
	res, err := a.convert.RunJob(a.ctx, id)
	if res == nil {
		return nil, err
	}
	if err != nil {
		wailsRuntime.LogErrorf(a.ctx, "[job] %s: %v", id, err)
	}
	return outcomeFor(res, err), nil
}

func (a *App) ListRunLogs(jobID string) ([]pipeline.RunLog, error) {
	logs, err := a.convert.ListRunLogs(jobID)
	if logs == nil && err == nil {
		logs = []pipeline.RunLog{}
	}
	return logs, err
}

func (a *App) ListRecentRuns() ([]pipeline.RunLog, error) {
	logs, err := a.convert.ListRecentRuns(0)
	if logs == nil && err == nil {
		logs = []pipeline.RunLog{}
	}
	return logs, err
}

// ── Sources ────────────────────────────────────────────────

func (a *App) ListSources() []pipeline.SourceSpec {
	return a.convert.ListSources()
}

// PreviewSource loads a source config (as JSON) and previews the statements.
func (a *App) PreviewSource(sourceType string, sourceConfig map[string]any, table string) (*PreviewView, error) {
	cfg, err := json.Marshal(sourceConfig)
	if err != nil {
		return nil, fmt.Errorf("encode source config: %w", err)
	}
	res, err := a.convert.Preview(a.ctx, sourceType, string(cfg), table)
	if err != nil {
		msg := UserMessage(err)
		return &PreviewView{Error: &msg}, nil
	}
	return &PreviewView{Columns: res.Columns, Statements: res.Statements, Total: res.Total}, nil
}
