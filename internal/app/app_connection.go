package app

import (
	"fmt"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"jsonsql/internal/domain"
	"jsonsql/internal/service"
)

// ============================================================
// Database Connections (destinations for jobs)
// ============================================================

func (a *App) requireConns() error {
	if a.conns == nil {
		return fmt.Errorf("database connections are unavailable without local storage")
	}
	return nil
}

func (a *App) ListDBConnections() ([]DBConnView, error) {
	if err := a.requireConns(); err != nil {
		return nil, err
	}
	conns, err := a.conns.ListConnections()
	if err != nil {
		return nil, err
	}
	views := make([]DBConnView, len(conns))
	for i, c := range conns {
		views[i] = toDBConnView(c)
	}
	return views, nil
}

func (a *App) CreateDBConnection(input service.CreateDBConnInput) (*DBConnView, error) {
	if err := a.requireConns(); err != nil {
		return nil, err
	}
	c, err := a.conns.CreateConnection(input)
	if err != nil {
		return nil, err
	}
	v := toDBConnView(*c)
	v.Notice = a.conns.PasswordNotice(c, input.Password)
	return &v, nil
}

func (a *App) UpdateDBConnection(id string, input service.CreateDBConnInput) (*DBConnView, error) {
	if err := a.requireConns(); err != nil {
		return nil, err
	}
	if err := a.conns.UpdateConnection(id, input); err != nil {
		return nil, err
	}
	c, err := a.conns.GetConnection(id)
	if err != nil {
		return nil, err
	}
	v := toDBConnView(*c)
	v.Notice = a.conns.PasswordNotice(c, input.Password)
	return &v, nil
}

func (a *App) DeleteDBConnection(id string) error {
	if err := a.requireConns(); err != nil {
		return err
	}
	return a.conns.DeleteConnection(id)
}

func (a *App) TestDBConnection(id string) error {
	if err := a.requireConns(); err != nil {
		return err
	}
	return a.conns.TestConnection(a.ctx, id)
}

// TestDBConnectionInput checks settings before they are saved.
func (a *App) TestDBConnectionInput(input service.CreateDBConnInput) error {
	if err := a.requireConns(); err != nil {
		return err
	}
	return a.conns.TestConnectionInput(a.ctx, input)
}

// ListDrivers returns the supported database drivers.
func (a *App) ListDrivers() []string {
	out := make([]string, len(domain.Drivers))
	for i, d := range domain.Drivers {
		out[i] = string(d)
	}
	return out
}

// PickDatabaseFile opens a native file picker for selecting a database file.
func (a *App) PickDatabaseFile() (string, error) {
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: "Select Database File",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "Database Files", Pattern: "*.db;*.sqlite;*.sqlite3;*.s3db"},
			{DisplayName: "All Files", Pattern: "*.*"},
		},
	})
	return path, err
}
