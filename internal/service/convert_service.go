package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"jsonsql/internal/convert"
	"jsonsql/internal/pipeline"
	"jsonsql/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Convert Service: one-shot conversions and saved jobs
// ─────────────────────────────────────────────────────────────

const (
	oneShotKey     = "convert"
	jobTimeout     = 5 * time.Minute
	previewTimeout = 30 * time.Second
	previewRows    = 10
	runLogLimit    = 50
)

var (
	// ErrBusy is returned when a one-shot conversion is already running.
	ErrBusy = errors.New("a conversion is already running")
	// ErrNoStore is returned by job operations when the service has no JobStore.
	ErrNoStore = errors.New("job storage is not available")
)

// ConvertService runs conversions for every front end. It is decoupled
// from the Wails App struct via the EventEmitter interface.
type ConvertService struct {
	jobs    *storage.JobStore // nil when running without persistence
	engine  *pipeline.Engine
	emitter EventEmitter
	running runGuard

	// watcher / cron lifecycle
	mu          sync.Mutex
	watchCancel context.CancelFunc
	watcher     *fsnotify.Watcher
	cronSched   *cron.Cron
}

// NewConvertService creates a ConvertService. jobs and conns may be nil: without
// a store nothing is recorded, without conns database destinations are rejected.
func NewConvertService(jobs *storage.JobStore, conns pipeline.ConnectorProvider, emitter EventEmitter) *ConvertService {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	return &ConvertService{
		jobs:    jobs,
		engine:  pipeline.NewEngine(conns),
		emitter: emitter,
	}
}

// ── One-shot conversion ────────────────────────────────────

// ConvertInput is what the Convert button submits.
type ConvertInput struct {
	JSON      string `json:"json"`
	TableName string `json:"tableName"`
	OutputDir string `json:"outputDir"` // "" means the working directory
}

// ConvertText converts in.JSON and writes <OutputDir>/<table>.sql. Only one
// one-shot conversion runs at a time; a second call gets ErrBusy.
func (s *ConvertService) ConvertText(ctx context.Context, in ConvertInput) (*pipeline.RunResult, error) {
	release, ok := s.running.Acquire(oneShotKey)
	if !ok {
		return nil, ErrBusy
	}
	defer release()

	dir := in.OutputDir
	if dir == "" {
		dir = "."
	}
	job := &pipeline.Job{
		TableName:   in.TableName,
		Destination: pipeline.DestSQLFile,
		OutputDir:   dir,
	}

	start := time.Now()
	result, err := s.engine.RunData(ctx, job, []byte(in.JSON))
	s.record(result, in.TableName, start)

	if err != nil {
		log.Printf("[convert] table %q failed (%s): %v", in.TableName, result.ErrorKind, err)
		s.emitter.Emit(ctx, EventConvertError, result)
		return result, err
	}
	log.Printf("[convert] wrote %d statement(s) to %s", result.StatementsWritten, result.Location)
	s.emitter.Emit(ctx, EventConvertDone, result)
	return result, nil
}

// ConvertFile reads path and converts it like ConvertText. An empty
// outputDir writes next to the input file.
func (s *ConvertService) ConvertFile(ctx context.Context, path, table, outputDir string) (*pipeline.RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		ioErr := &convert.IOError{Op: "read", Path: path, Err: err}
		s.emitter.Emit(ctx, EventConvertError, &pipeline.RunResult{
			Status:    pipeline.StatusError,
			ErrorKind: pipeline.KindIO,
			Error:     ioErr.Error(),
		})
		return nil, ioErr
	}
	if outputDir == "" {
		outputDir = filepath.Dir(path)
	}
	return s.ConvertText(ctx, ConvertInput{JSON: string(data), TableName: table, OutputDir: outputDir})
}

// setStatus writes a job's last status. Failures are logged only; the run
// result is still returned to the caller.
func (s *ConvertService) setStatus(id, status, errMsg string) {
	if err := s.jobs.UpdateJobStatus(id, status, errMsg); err != nil {
		log.Printf("[convert] failed to set job %s status to %s: %v", id, status, err)
	}
}

// record stores a run log when a store is configured. Failures are logged only.
func (s *ConvertService) record(result *pipeline.RunResult, table string, start time.Time) {
	if s.jobs == nil || result == nil {
		return
	}
	if err := s.jobs.CreateRunLog(pipeline.LogFromResult(result, table, start)); err != nil {
		log.Printf("[convert] failed to save run log: %v", err)
	}
}

// ── Job CRUD ───────────────────────────────────────────────

// CreateJobInput is the service-layer DTO for creating/updating jobs.
type CreateJobInput struct {
	Name          string                   `json:"name"`
	Description   string                   `json:"description"`
	SourceType    string                   `json:"sourceType"`
	SourceConfig  map[string]any           `json:"sourceConfig"`
	TableName     string                   `json:"tableName"`
	Destination   pipeline.DestinationKind `json:"destination"`
	OutputDir     string                   `json:"outputDir"`
	ConnectionID  string                   `json:"connectionId"`
	TriggerType   string                   `json:"triggerType"`
	TriggerConfig string                   `json:"triggerConfig"`
	Enabled       bool                     `json:"enabled"`
}

// Validate checks the input before anything is stored.
func (in *CreateJobInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("job name is required")
	}
	if _, err := pipeline.GetSource(in.SourceType); err != nil {
		return err
	}
	if strings.TrimSpace(in.TableName) == "" {
		return convert.ErrEmptyTable
	}
	switch in.Destination {
	case "", pipeline.DestSQLFile:
	case pipeline.DestDatabase:
		if in.ConnectionID == "" {
			return fmt.Errorf("database destination needs a connection")
		}
	default:
		return fmt.Errorf("unsupported destination %q", in.Destination)
	}
	switch in.TriggerType {
	case "", pipeline.TriggerManual:
	case pipeline.TriggerSchedule:
		if _, err := cron.ParseStandard(in.TriggerConfig); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", in.TriggerConfig, err)
		}
	case pipeline.TriggerFileWatch:
		if strings.TrimSpace(in.TriggerConfig) == "" {
			return fmt.Errorf("file_watch trigger needs a path")
		}
	default:
		return fmt.Errorf("unsupported trigger %q", in.TriggerType)
	}
	return nil
}

func (in *CreateJobInput) apply(job *pipeline.Job) {
	job.Name = strings.TrimSpace(in.Name)
	job.Description = in.Description
	job.SourceType = in.SourceType
	job.SourceCfg = in.SourceConfig
	job.TableName = strings.TrimSpace(in.TableName)
	job.Destination = in.Destination
	job.OutputDir = in.OutputDir
	job.ConnectionID = in.ConnectionID
	job.TriggerType = in.TriggerType
	job.TriggerConfig = in.TriggerConfig
	job.Enabled = in.Enabled
	if job.Destination == "" {
		job.Destination = pipeline.DestSQLFile
	}
	if job.TriggerType == "" {
		job.TriggerType = pipeline.TriggerManual
	}
}

func (s *ConvertService) CreateJob(ctx context.Context, input CreateJobInput) (*pipeline.Job, error) {
	if s.jobs == nil {
		return nil, ErrNoStore
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	job := &pipeline.Job{}
	input.apply(job)

	if err := s.jobs.CreateJob(job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	s.RestartWatchers(ctx)
	return job, nil
}

func (s *ConvertService) GetJob(id string) (*pipeline.Job, error) {
	if s.jobs == nil {
		return nil, ErrNoStore
	}
	return s.jobs.GetJob(id)
}

func (s *ConvertService) ListJobs() ([]pipeline.Job, error) {
	if s.jobs == nil {
		return nil, ErrNoStore
	}
	return s.jobs.ListJobs()
}

func (s *ConvertService) UpdateJob(ctx context.Context, id string, input CreateJobInput) error {
	if s.jobs == nil {
		return ErrNoStore
	}
	if err := input.Validate(); err != nil {
		return err
	}
	job, err := s.jobs.GetJob(id)
	if err != nil {
		return err
	}
	input.apply(job)
	if err := s.jobs.UpdateJob(job); err != nil {
		return err
	}
	s.RestartWatchers(ctx)
	return nil
}

func (s *ConvertService) DeleteJob(ctx context.Context, id string) error {
	if s.jobs == nil {
		return ErrNoStore
	}
	err := s.jobs.DeleteJob(id)
	if err == nil {
		s.RestartWatchers(ctx)
	}
	return err
}

// ── Run ────────────────────────────────────────────────────

// RunJob executes a saved job synchronously, records the run and emits
// job:completed with the result.
func (s *ConvertService) RunJob(ctx context.Context, id string) (*pipeline.RunResult, error) {
	if s.jobs == nil {
		return nil, ErrNoStore
	}
	release, ok := s.running.Acquire(id)
	if !ok {
		return nil, fmt.Errorf("job %s is already running", id)
	}
	defer release()

	job, err := s.jobs.GetJob(id)
	if err != nil {
		return nil, err
	}

	s.setStatus(id, pipeline.StatusRunning, "")

	runCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	result, runErr := s.engine.Run(runCtx, job)
	s.record(result, job.TableName, start)
	s.setStatus(id, result.Status, result.Error)

	if runErr != nil {
		log.Printf("[convert] job %s (%s) failed: %v", job.Name, id, runErr)
	}
	s.emitter.Emit(ctx, EventJobCompleted, result)
	return result, runErr
}

// ListSources returns the available source descriptors.
func (s *ConvertService) ListSources() []pipeline.SourceSpec {
	return pipeline.ListSources()
}

// ListRunLogs returns the last 50 runs of a job. An empty jobID lists
// one-shot conversions.
func (s *ConvertService) ListRunLogs(jobID string) ([]pipeline.RunLog, error) {
	if s.jobs == nil {
		return nil, ErrNoStore
	}
	return s.jobs.ListRunLogs(jobID, runLogLimit)
}

// ListRecentRuns returns the newest runs across all jobs.
func (s *ConvertService) ListRecentRuns(limit int) ([]pipeline.RunLog, error) {
	if s.jobs == nil {
		return nil, ErrNoStore
	}
	if limit <= 0 {
		limit = runLogLimit
	}
	return s.jobs.ListRecentRuns(limit)
}

// ── Preview ────────────────────────────────────────────────

// Preview loads a source and returns the first statements without writing.
// cfgJSON is the source config as a JSON object.
func (s *ConvertService) Preview(ctx context.Context, sourceType, cfgJSON, table string) (*pipeline.PreviewResult, error) {
	var cfg pipeline.SourceConfig
	if err := json.Unmarshal([]byte(cfgJSON), &cfg); err != nil {
		return nil, fmt.Errorf("parse source config: %w", err)
	}

	previewCtx, cancel := context.WithTimeout(ctx, previewTimeout)
	defer cancel()

	return s.engine.Preview(previewCtx, sourceType, cfg, table, previewRows)
}

// PreviewText converts pasted JSON without writing.
func (s *ConvertService) PreviewText(ctx context.Context, jsonText, table string) (*pipeline.PreviewResult, error) {
	statements, err := convert.ConvertContext(ctx, jsonText, table)
	if err != nil {
		return nil, err
	}
	return pipeline.NewPreview(statements, previewRows), nil
}

// ── Watchers (cron + file_watch) ──────────────────────────

// RestartWatchers tears down the current watcher/cron and rebuilds them
// from the enabled triggered jobs.
func (s *ConvertService) RestartWatchers(ctx context.Context) {
	if s.jobs == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopWatchersLocked()

	jobs, err := s.jobs.ListEnabledTriggeredJobs()
	if err != nil {
		log.Printf("job watcher: failed to list jobs: %v", err)
		return
	}

	// ── Cron jobs ──
	var scheduled int
	c := cron.New()
	for _, j := range jobs {
		if j.TriggerType != pipeline.TriggerSchedule || j.TriggerConfig == "" {
			continue
		}
		jid := j.ID
		if _, err := c.AddFunc(j.TriggerConfig, func() {
			log.Printf("job cron: running job %s", jid)
			if _, err := s.RunJob(ctx, jid); err != nil {
				log.Printf("job cron: job %s failed: %v", jid, err)
			}
		}); err != nil {
			log.Printf("job cron: invalid expression %q for job %s: %v", j.TriggerConfig, jid, err)
			continue
		}
		scheduled++
	}
	if scheduled > 0 {
		c.Start()
		s.cronSched = c
		log.Printf("job cron: scheduled %d job(s)", scheduled)
	}

	// ── File watchers ──
	pathToJobs := make(map[string][]string)
	for _, j := range jobs {
		if j.TriggerType != pipeline.TriggerFileWatch || j.TriggerConfig == "" {
			continue
		}
		absPath, err := filepath.Abs(j.TriggerConfig)
		if err != nil {
			log.Printf("job watcher: bad path %q: %v", j.TriggerConfig, err)
			continue
		}
		pathToJobs[absPath] = append(pathToJobs[absPath], j.ID)
	}
	if len(pathToJobs) == 0 {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("job watcher: failed to create watcher: %v", err)
		return
	}
	s.watcher = watcher

	watchedDirs := make(map[string]bool)
	for absPath := range pathToJobs {
		dir := filepath.Dir(absPath)
		if watchedDirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			log.Printf("job watcher: failed to watch dir %q: %v", dir, err)
			continue
		}
		watchedDirs[dir] = true
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	s.watchCancel = cancel

	go s.watchLoop(ctx, watchCtx, watcher, pathToJobs)

	log.Printf("job watcher: watching %d file(s)", len(pathToJobs))
}

// watchLoop runs the jobs bound to a path 500ms after the last write to it.
func (s *ConvertService) watchLoop(ctx, watchCtx context.Context, watcher *fsnotify.Watcher, pathToJobs map[string][]string) {
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()
	for {
		select {
		case <-watchCtx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			absPath, _ := filepath.Abs(event.Name)
			jobIDs, ok := pathToJobs[absPath]
			if !ok {
				continue
			}
			if t, exists := timers[absPath]; exists {
				t.Stop()
			}
			timers[absPath] = time.AfterFunc(500*time.Millisecond, func() {
				if watchCtx.Err() != nil {
					return
				}
				for _, jid := range jobIDs {
					log.Printf("job watcher: file changed %q, running job %s", absPath, jid)
					if _, err := s.RunJob(ctx, jid); err != nil {
						log.Printf("job watcher: run failed for job %s: %v", jid, err)
					}
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("job watcher: error: %v", err)
		}
	}
}

// WaitRunning blocks until all running conversions finish or ctx is cancelled.
// Used for graceful shutdown.
func (s *ConvertService) WaitRunning(ctx context.Context) {
	s.running.Wait(ctx)
}

// IsConverting reports whether a one-shot conversion is in flight.
func (s *ConvertService) IsConverting() bool {
	return s.running.Held(oneShotKey)
}

// Stop tears down all watchers and schedulers.
func (s *ConvertService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopWatchersLocked()
}

func (s *ConvertService) stopWatchersLocked() {
	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}
