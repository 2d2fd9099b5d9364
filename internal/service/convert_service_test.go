package service_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"jsonsql/internal/convert"
	"jsonsql/internal/pipeline"
	_ "jsonsql/internal/pipeline/sources"
	"jsonsql/internal/service"
	"jsonsql/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// ConvertService tests
// Run against a real SQLite file in t.TempDir().
// ─────────────────────────────────────────────────────────────

func newStore(t *testing.T) (*storage.DB, *storage.JobStore) {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "jsonsql.db"))
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, storage.NewJobStore(db)
}

const peopleJSON = `[{"name":"John","age":30},{"name":"Alice","age":25}]`

func TestConvertService_ConvertText(t *testing.T) {
	_, jobs := newStore(t)
	emitter := &service.MockEmitter{}
	svc := service.NewConvertService(jobs, nil, emitter)
	dir := t.TempDir()

	res, err := svc.ConvertText(context.Background(), service.ConvertInput{
		JSON: peopleJSON, TableName: "people", OutputDir: dir,
	})
	if err != nil {
		t.Fatalf("ConvertText() error = %v", err)
	}
	if res.StatementsWritten != 2 {
		t.Errorf("StatementsWritten = %d, want 2", res.StatementsWritten)
	}

	data, err := os.ReadFile(filepath.Join(dir, "people.sql"))
	if err != nil {
		t.Fatal(err)
	}
	want := "INSERT INTO people (name, age) VALUES ('John', 30);\nINSERT INTO people (name, age) VALUES ('Alice', 25);\n"
	if string(data) != want {
		t.Errorf("people.sql = %q, want %q", data, want)
	}

	if names := emitter.Names(); len(names) != 1 || names[0] != service.EventConvertDone {
		t.Errorf("events = %v, want [%s]", names, service.EventConvertDone)
	}

	logs, err := svc.ListRunLogs("")
	if err != nil || len(logs) != 1 || logs[0].Status != pipeline.StatusSuccess {
		t.Errorf("ListRunLogs(\"\") = %+v, %v", logs, err)
	}
}

func TestConvertService_ConvertText_Errors(t *testing.T) {
	tests := []struct {
		name     string
		in       service.ConvertInput
		wantKind string
	}{
		{name: "parse", in: service.ConvertInput{JSON: `{"a":1}`, TableName: "t"}, wantKind: pipeline.KindParse},
		{name: "schema", in: service.ConvertInput{JSON: `[1,2]`, TableName: "t"}, wantKind: pipeline.KindSchema},
		{name: "empty table", in: service.ConvertInput{JSON: `[]`, TableName: " "}, wantKind: pipeline.KindTable},
		{name: "missing dir", in: service.ConvertInput{JSON: `[{"a":1}]`, TableName: "t", OutputDir: "/nonexistent/dir/for/test"}, wantKind: pipeline.KindIO},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emitter := &service.MockEmitter{}
			svc := service.NewConvertService(nil, nil, emitter)
			if tt.in.OutputDir == "" {
				tt.in.OutputDir = t.TempDir()
			}

			res, err := svc.ConvertText(context.Background(), tt.in)
			if err == nil {
				t.Fatal("expected error")
			}
			if res.ErrorKind != tt.wantKind {
				t.Errorf("ErrorKind = %q, want %q (err %v)", res.ErrorKind, tt.wantKind, err)
			}
			if names := emitter.Names(); len(names) != 1 || names[0] != service.EventConvertError {
				t.Errorf("events = %v", names)
			}
			if _, statErr := os.Stat(filepath.Join(tt.in.OutputDir, "t.sql")); !os.IsNotExist(statErr) {
				t.Error("no output file expected after a failed conversion")
			}
		})
	}
}

func TestConvertService_ConvertFile(t *testing.T) {
	svc := service.NewConvertService(nil, nil, nil)
	dir := t.TempDir()
	in := filepath.Join(dir, "people.json")
	os.WriteFile(in, []byte(peopleJSON), 0644)

	res, err := svc.ConvertFile(context.Background(), in, "people", "")
	if err != nil {
		t.Fatalf("ConvertFile() error = %v", err)
	}
	if res.Location != filepath.Join(dir, "people.sql") {
		t.Errorf("Location = %q, want next to input", res.Location)
	}

	_, err = svc.ConvertFile(context.Background(), filepath.Join(dir, "missing.json"), "people", dir)
	var ioErr *convert.IOError
	if !errors.As(err, &ioErr) || ioErr.Op != "read" {
		t.Errorf("ConvertFile(missing) error = %v, want read IOError", err)
	}
}

func TestConvertService_NoStore(t *testing.T) {
	svc := service.NewConvertService(nil, nil, nil)
	if _, err := svc.ListJobs(); !errors.Is(err, service.ErrNoStore) {
		t.Errorf("ListJobs() error = %v, want ErrNoStore", err)
	}
	if _, err := svc.RunJob(context.Background(), "x"); !errors.Is(err, service.ErrNoStore) {
		t.Errorf("RunJob() error = %v, want ErrNoStore", err)
	}
	svc.RestartWatchers(context.Background())
	svc.Stop()
}

func TestCreateJobInput_Validate(t *testing.T) {
	valid := service.CreateJobInput{Name: "j", SourceType: "json_text", TableName: "t"}
	tests := []struct {
		name    string
		mutate  func(in *service.CreateJobInput)
		wantErr bool
	}{
		{name: "valid", mutate: func(*service.CreateJobInput) {}},
		{name: "no name", mutate: func(in *service.CreateJobInput) { in.Name = "" }, wantErr: true},
		{name: "unknown source", mutate: func(in *service.CreateJobInput) { in.SourceType = "ftp" }, wantErr: true},
		{name: "blank table", mutate: func(in *service.CreateJobInput) { in.TableName = "  " }, wantErr: true},
		{name: "database without connection", mutate: func(in *service.CreateJobInput) { in.Destination = pipeline.DestDatabase }, wantErr: true},
		{name: "bad destination", mutate: func(in *service.CreateJobInput) { in.Destination = "s3" }, wantErr: true},
		{name: "bad cron", mutate: func(in *service.CreateJobInput) {
			in.TriggerType = pipeline.TriggerSchedule
			in.TriggerConfig = "every tuesday"
		}, wantErr: true},
		{name: "good cron", mutate: func(in *service.CreateJobInput) {
			in.TriggerType = pipeline.TriggerSchedule
			in.TriggerConfig = "*/5 * * * *"
		}},
		{name: "watch without path", mutate: func(in *service.CreateJobInput) { in.TriggerType = pipeline.TriggerFileWatch }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			if err := in.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConvertService_JobLifecycle(t *testing.T) {
	_, jobs := newStore(t)
	emitter := &service.MockEmitter{}
	svc := service.NewConvertService(jobs, nil, emitter)
	defer svc.Stop()
	ctx := context.Background()
	outDir := t.TempDir()

	job, err := svc.CreateJob(ctx, service.CreateJobInput{
		Name:         "people",
		SourceType:   "json_text",
		SourceConfig: map[string]any{"text": peopleJSON},
		TableName:    " people ",
		OutputDir:    outDir,
	})
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	if job.TableName != "people" || job.TriggerType != pipeline.TriggerManual {
		t.Errorf("CreateJob() = %+v", job)
	}

	res, err := svc.RunJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("RunJob() error = %v", err)
	}
	if res.StatementsWritten != 2 || res.Location != filepath.Join(outDir, "people.sql") {
		t.Errorf("RunJob() = %+v", res)
	}

	got, _ := svc.GetJob(job.ID)
	if got.LastStatus != pipeline.StatusSuccess {
		t.Errorf("LastStatus = %q, want success", got.LastStatus)
	}
	logs, _ := svc.ListRunLogs(job.ID)
	if len(logs) != 1 || logs[0].TableName != "people" {
		t.Errorf("ListRunLogs() = %+v", logs)
	}
	if names := emitter.Names(); len(names) != 1 || names[0] != service.EventJobCompleted {
		t.Errorf("events = %v", names)
	}

	// Break the job and run it again.
	err = svc.UpdateJob(ctx, job.ID, service.CreateJobInput{
		Name:         "people",
		SourceType:   "json_text",
		SourceConfig: map[string]any{"text": `[{"a":1},"oops"]`},
		TableName:    "people",
		OutputDir:    outDir,
	})
	if err != nil {
		t.Fatalf("UpdateJob() error = %v", err)
	}
	res, err = svc.RunJob(ctx, job.ID)
	if err == nil || res.ErrorKind != pipeline.KindSchema {
		t.Errorf("RunJob() after update = %+v, %v; want schema error", res, err)
	}
	got, _ = svc.GetJob(job.ID)
	if got.LastStatus != pipeline.StatusError || got.LastError == "" {
		t.Errorf("after failed run: status=%q error=%q", got.LastStatus, got.LastError)
	}

	// The earlier file is untouched by the failed run.
	data, _ := os.ReadFile(filepath.Join(outDir, "people.sql"))
	if len(data) == 0 {
		t.Error("failed run must not truncate the previous output")
	}

	if err := svc.DeleteJob(ctx, job.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetJob(job.ID); !errors.Is(err, storage.ErrJobNotFound) {
		t.Errorf("GetJob after delete: %v", err)
	}
}

func TestConvertService_Preview(t *testing.T) {
	svc := service.NewConvertService(nil, nil, nil)

	res, err := svc.Preview(context.Background(), "json_text", `{"text":`+quoteJSON(peopleJSON)+`}`, "people")
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if res.Total != 2 || len(res.Columns) != 2 {
		t.Errorf("Preview() = %+v", res)
	}

	if _, err := svc.Preview(context.Background(), "json_text", `not json`, "people"); err == nil {
		t.Error("expected error for malformed config")
	}

	text, err := svc.PreviewText(context.Background(), `[{"a":"it's"}]`, "t")
	if err != nil || text.Statements[0] != "INSERT INTO t (a) VALUES ('it''s');" {
		t.Errorf("PreviewText() = %+v, %v", text, err)
	}
}

func TestConvertService_FileWatchTrigger(t *testing.T) {
	_, jobs := newStore(t)
	svc := service.NewConvertService(jobs, nil, nil)
	defer svc.Stop()
	ctx := context.Background()

	dir := t.TempDir()
	input := filepath.Join(dir, "feed.json")
	os.WriteFile(input, []byte(`[]`), 0644)

	job, err := svc.CreateJob(ctx, service.CreateJobInput{
		Name:          "feed",
		SourceType:    "json_file",
		SourceConfig:  map[string]any{"filePath": input},
		TableName:     "feed",
		OutputDir:     dir,
		TriggerType:   pipeline.TriggerFileWatch,
		TriggerConfig: input,
		Enabled:       true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(input, []byte(`[{"id":1}]`), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		logs, _ := svc.ListRunLogs(job.ID)
		if len(logs) > 0 {
			if logs[0].Status != pipeline.StatusSuccess {
				t.Fatalf("watched run failed: %+v", logs[0])
			}
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("file change did not trigger the job")
}

func TestConvertService_WaitRunning_Immediate(t *testing.T) {
	svc := service.NewConvertService(nil, nil, nil)

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		svc.WaitRunning(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("WaitRunning hung with no running conversions")
	}
	if svc.IsConverting() {
		t.Error("IsConverting() = true with nothing running")
	}
}

func TestConvertService_ListSources(t *testing.T) {
	svc := service.NewConvertService(nil, nil, nil)
	seen := map[string]bool{}
	for _, s := range svc.ListSources() {
		seen[s.Type] = true
	}
	for _, typ := range []string{"json_file", "json_text", "http"} {
		if !seen[typ] {
			t.Errorf("source %q missing from ListSources()", typ)
		}
	}
}

func quoteJSON(s string) string {
	out := []byte{'"'}
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(append(out, '"'))
}

func TestConvertService_RunJobLogsStatusFailure(t *testing.T) {
	db, jobs := newStore(t)
	svc := service.NewConvertService(jobs, nil, nil)
	defer svc.Stop()
	ctx := context.Background()

	job, err := svc.CreateJob(ctx, service.CreateJobInput{
		Name:         "people",
		SourceType:   "json_text",
		SourceConfig: map[string]any{"text": peopleJSON},
		TableName:    "people",
		OutputDir:    t.TempDir(),
	})
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	_, err = db.Conn().Exec(`CREATE TRIGGER deny_status BEFORE UPDATE OF last_status ON conversion_jobs
		BEGIN SELECT RAISE(ABORT, 'status is read-only'); END`)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	res, err := svc.RunJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("RunJob() error = %v", err)
	}
	if res.Status != pipeline.StatusSuccess {
		t.Errorf("Status = %q, want success", res.Status)
	}
	if out := buf.String(); !strings.Contains(out, "failed to set job "+job.ID+" status") ||
		!strings.Contains(out, "status is read-only") {
		t.Errorf("expected status failure in log, got %q", out)
	}
}
