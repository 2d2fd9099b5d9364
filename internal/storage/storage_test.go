package storage_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"jsonsql/internal/domain"
	"jsonsql/internal/pipeline"
	"jsonsql/internal/storage"
)

func newTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "nested", "jsonsql.db"))
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNew_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jsonsql.db")
	db, err := storage.New(path)
	if err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = storage.New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	db.Close()
}

func TestJobStore_CRUD(t *testing.T) {
	store := storage.NewJobStore(newTestDB(t))

	job := &pipeline.Job{
		Name:       "people",
		SourceType: "json_file",
		SourceCfg:  pipeline.SourceConfig{"filePath": "/tmp/people.json", "dataPath": "data"},
		TableName:  "people",
		OutputDir:  "/tmp/out",
		Enabled:    true,
	}
	if err := store.CreateJob(job); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if job.ID == "" {
		t.Fatal("CreateJob did not assign an ID")
	}
	if job.TriggerType != pipeline.TriggerManual || job.Destination != pipeline.DestSQLFile {
		t.Errorf("defaults not applied: trigger=%q dest=%q", job.TriggerType, job.Destination)
	}

	got, err := store.GetJob(job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Name != "people" || got.SourceCfg.String("dataPath") != "data" || got.OutputDir != "/tmp/out" {
		t.Errorf("GetJob returned %+v", got)
	}
	if !got.LastRunAt.IsZero() {
		t.Errorf("LastRunAt = %v, want zero", got.LastRunAt)
	}

	got.TableName = "persons"
	got.TriggerType = pipeline.TriggerSchedule
	got.TriggerConfig = "@every 1h"
	if err := store.UpdateJob(got); err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}
	if err := store.UpdateJobStatus(job.ID, pipeline.StatusError, "boom"); err != nil {
		t.Fatalf("UpdateJobStatus: %v", err)
	}

	got, _ = store.GetJob(job.ID)
	if got.TableName != "persons" || got.LastStatus != pipeline.StatusError || got.LastError != "boom" {
		t.Errorf("after update: %+v", got)
	}
	if got.LastRunAt.IsZero() {
		t.Error("LastRunAt not set by UpdateJobStatus")
	}

	triggered, err := store.ListEnabledTriggeredJobs()
	if err != nil || len(triggered) != 1 {
		t.Fatalf("ListEnabledTriggeredJobs = %d jobs, %v", len(triggered), err)
	}

	if err := store.DeleteJob(job.ID); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if _, err := store.GetJob(job.ID); !errors.Is(err, storage.ErrJobNotFound) {
		t.Errorf("GetJob after delete: %v, want ErrJobNotFound", err)
	}
	if err := store.UpdateJob(got); !errors.Is(err, storage.ErrJobNotFound) {
		t.Errorf("UpdateJob after delete: %v, want ErrJobNotFound", err)
	}
}

func TestJobStore_ListEnabledTriggeredJobs_SkipsManualAndDisabled(t *testing.T) {
	store := storage.NewJobStore(newTestDB(t))
	jobs := []*pipeline.Job{
		{Name: "manual", SourceType: "json_text", TableName: "a", Enabled: true},
		{Name: "disabled", SourceType: "json_text", TableName: "b", TriggerType: pipeline.TriggerSchedule, TriggerConfig: "@hourly"},
		{Name: "watch", SourceType: "json_file", TableName: "c", TriggerType: pipeline.TriggerFileWatch, TriggerConfig: "/tmp/c.json", Enabled: true},
	}
	for _, j := range jobs {
		if err := store.CreateJob(j); err != nil {
			t.Fatal(err)
		}
	}

	all, _ := store.ListJobs()
	if len(all) != 3 {
		t.Errorf("ListJobs = %d, want 3", len(all))
	}
	triggered, err := store.ListEnabledTriggeredJobs()
	if err != nil {
		t.Fatal(err)
	}
	if len(triggered) != 1 || triggered[0].Name != "watch" {
		t.Errorf("ListEnabledTriggeredJobs = %+v", triggered)
	}
}

func TestJobStore_RunLogs(t *testing.T) {
	store := storage.NewJobStore(newTestDB(t))
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i := 0; i < 3; i++ {
		l := &pipeline.RunLog{
			JobID:             "job-1",
			TableName:         "people",
			StartedAt:         base.Add(time.Duration(i) * time.Minute),
			FinishedAt:        base.Add(time.Duration(i)*time.Minute + time.Second),
			Status:            pipeline.StatusSuccess,
			RowsRead:          i,
			StatementsWritten: i,
			Location:          "/tmp/people.sql",
		}
		if err := store.CreateRunLog(l); err != nil {
			t.Fatal(err)
		}
	}
	store.CreateRunLog(&pipeline.RunLog{
		StartedAt: base, FinishedAt: base, Status: pipeline.StatusError,
		ErrorKind: pipeline.KindParse, Error: "bad json",
	})

	logs, err := store.ListRunLogs("job-1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 || logs[0].RowsRead != 2 || logs[1].RowsRead != 1 {
		t.Errorf("ListRunLogs = %+v", logs)
	}

	oneShot, _ := store.ListRunLogs("", 10)
	if len(oneShot) != 1 || oneShot[0].ErrorKind != pipeline.KindParse {
		t.Errorf("one-shot logs = %+v", oneShot)
	}

	recent, _ := store.ListRecentRuns(10)
	if len(recent) != 4 {
		t.Errorf("ListRecentRuns = %d, want 4", len(recent))
	}
}

func TestDBConnectionStore_CRUD(t *testing.T) {
	store := storage.NewDBConnectionStore(newTestDB(t))

	c := &domain.DatabaseConnection{Name: "local", Driver: domain.DatabaseDriverSQLite, Host: "/tmp/x.db"}
	if err := store.CreateConnection(c); err != nil {
		t.Fatal(err)
	}
	if c.ID == "" || c.ExtraJSON != "{}" {
		t.Errorf("CreateConnection did not fill defaults: %+v", c)
	}

	c.Name = "renamed"
	if err := store.UpdateConnection(c); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetConnection(c.ID)
	if err != nil || got.Name != "renamed" || got.Driver != domain.DatabaseDriverSQLite {
		t.Errorf("GetConnection = %+v, %v", got, err)
	}

	list, _ := store.ListConnections()
	if len(list) != 1 {
		t.Errorf("ListConnections = %d, want 1", len(list))
	}

	store.DeleteConnection(c.ID)
	if _, err := store.GetConnection(c.ID); !errors.Is(err, storage.ErrConnectionNotFound) {
		t.Errorf("GetConnection after delete: %v", err)
	}
	if err := store.UpdateConnection(c); !errors.Is(err, storage.ErrConnectionNotFound) {
		t.Errorf("UpdateConnection after delete: %v", err)
	}
}

func TestSettings(t *testing.T) {
	db := newTestDB(t)

	if _, ok, err := db.GetSetting("last_table"); ok || err != nil {
		t.Errorf("GetSetting on empty db = %v, %v", ok, err)
	}
	db.SetSetting("last_table", "people")
	db.SetSetting("last_table", "orders")
	if v, ok, _ := db.GetSetting("last_table"); !ok || v != "orders" {
		t.Errorf("GetSetting = %q, %v", v, ok)
	}

	db.SetSetting("window_width", "1400")
	db.SetSetting("window_height", "tall")
	if got := db.GetIntSetting("window_width", 1); got != 1400 {
		t.Errorf("GetIntSetting(width) = %d", got)
	}
	if got := db.GetIntSetting("window_height", 800); got != 800 {
		t.Errorf("GetIntSetting(malformed) = %d, want default", got)
	}
}
