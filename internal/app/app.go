package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	_ "jsonsql/internal/pipeline/sources" // register all sources via init()
	"jsonsql/internal/secret"
	"jsonsql/internal/service"
	"jsonsql/internal/storage"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx context.Context

	db       *storage.DB
	convert  *service.ConvertService
	conns    *service.ConnectionService
	settings *service.SettingsService

	mu     sync.Mutex
	loaded *LoadedFile // file picked with PickJSONFile, consumed by Convert
}

// wailsEmitter forwards service events to the frontend.
type wailsEmitter struct{}

func (wailsEmitter) Emit(ctx context.Context, event string, data any) {
	wailsRuntime.EventsEmit(ctx, event, data)
}

// New creates a new App.
func New() *App {
	return &App{}
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	var jobs *storage.JobStore
	dbPath, err := storage.DefaultPath()
	if err == nil {
		a.db, err = storage.New(dbPath)
	}
	if err != nil {
		// The converter works without local state; jobs and history are disabled.
		wailsRuntime.LogErrorf(ctx, "Failed to open database, running without saved jobs: %v", err)
	} else {
		jobs = storage.NewJobStore(a.db)
		a.conns = service.NewConnectionService(storage.NewDBConnectionStore(a.db), secret.Default())
	}

	if a.conns != nil {
		a.convert = service.NewConvertService(jobs, a.conns, wailsEmitter{})
	} else {
		a.convert = service.NewConvertService(nil, nil, wailsEmitter{})
	}
	a.settings = service.NewSettingsService(a.db)

	if a.db != nil {
		size := a.settings.LoadWindowSize()
		wailsRuntime.WindowSetSize(ctx, size.Width, size.Height)
	}
	a.convert.RestartWatchers(ctx)
	wailsRuntime.LogInfof(ctx, "jsonsql started (db: %s)", dbPath)
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.db != nil {
		w, h := wailsRuntime.WindowGetSize(ctx)
		if err := a.settings.SaveWindowSize(w, h); err != nil {
			wailsRuntime.LogErrorf(ctx, "save window size: %v", err)
		}
	}
	if a.convert != nil {
		a.convert.Stop()
		waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		a.convert.WaitRunning(waitCtx)
		cancel()
	}
	if a.conns != nil {
		a.conns.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// ============================================================
// Convert
// ============================================================

// PickJSONFile opens a native file dialog and loads the chosen file.
// Returns nil when the dialog is cancelled.
func (a *App) PickJSONFile() (*LoadedFile, error) {
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: "Open JSON File",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "JSON Files", Pattern: "*.json"},
			{DisplayName: "All Files", Pattern: "*.*"},
		},
	})
	if err != nil || path == "" {
		return nil, err
	}
	return a.LoadJSONFile(path)
}

// LoadJSONFile reads path and keeps its content for Convert.
func (a *App) LoadJSONFile(path string) (*LoadedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	f := newLoadedFile(path, data)
	a.mu.Lock()
	a.loaded = f
	a.mu.Unlock()
	wailsRuntime.LogInfof(a.ctx, "[convert] loaded %s (%d bytes)", path, f.Size)
	return f, nil
}

// PickOutputDir opens a native directory dialog. Returns "" when cancelled.
func (a *App) PickOutputDir() (string, error) {
	return wailsRuntime.OpenDirectoryDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title:                "Choose Output Folder",
		CanCreateDirectories: true,
	})
}

// Convert converts the loaded file into <outputDir>/<table>.sql. An empty
// outputDir writes next to the loaded file.
func (a *App) Convert(table, outputDir string) (*ConvertOutcome, error) {
	a.mu.Lock()
	f := a.loaded
	a.mu.Unlock()
	if f == nil {
		return nil, fmt.Errorf("no JSON file loaded")
	}
	if outputDir == "" {
		outputDir = f.Dir
	}
	return a.ConvertText(f.content, table, outputDir)
}

// ConvertText converts pasted JSON and reports the outcome in a dialog.
func (a *App) ConvertText(jsonText, table, outputDir string) (*ConvertOutcome, error) {
	res, err := a.convert.ConvertText(a.ctx, service.ConvertInput{
		JSON:      jsonText,
		TableName: table,
		OutputDir: outputDir,
	})
	outcome := outcomeFor(res, err)

	if err == nil {
		if saveErr := a.settings.SaveLastUsed(service.LastUsed{TableName: strings.TrimSpace(table), OutputDir: outputDir}); saveErr != nil && a.db != nil {
			wailsRuntime.LogErrorf(a.ctx, "save last used: %v", saveErr)
		}
	} else {
		wailsRuntime.LogErrorf(a.ctx, "[convert] %v", err)
	}

	a.showMessage(outcome.Message)
	// The outcome carries the error for display, so the binding itself succeeds.
	return outcome, nil
}

// PreviewText returns the first statements of pasted JSON without writing.
func (a *App) PreviewText(jsonText, table string) (*PreviewView, error) {
	res, err := a.convert.PreviewText(a.ctx, jsonText, table)
	if err != nil {
		msg := UserMessage(err)
		return &PreviewView{Error: &msg}, nil
	}
	return &PreviewView{Columns: res.Columns, Statements: res.Statements, Total: res.Total}, nil
}

// LastUsed returns the table name and output directory to pre-fill the form.
func (a *App) LastUsed() service.LastUsed {
	return a.settings.LoadLastUsed()
}

func (a *App) showMessage(m Message) {
	typ := wailsRuntime.InfoDialog
	if m.IsError {
		typ = wailsRuntime.ErrorDialog
	}
	if _, err := wailsRuntime.MessageDialog(a.ctx, wailsRuntime.MessageDialogOptions{
		Type:    typ,
		Title:   m.Title,
		Message: m.Body,
	}); err != nil {
		wailsRuntime.LogErrorf(a.ctx, "message dialog: %v", err)
	}
}
