package service

import (
	"fmt"
	"strconv"

	"jsonsql/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Settings: window size and last-used convert inputs
// ─────────────────────────────────────────────────────────────
//
// Stored as key-value rows in app_settings.

// WindowSize holds the saved window dimensions.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// LastUsed is what the convert form is pre-filled with.
type LastUsed struct {
	TableName string `json:"tableName"`
	OutputDir string `json:"outputDir"`
}

// SettingsService persists UI state between sessions.
type SettingsService struct {
	db *storage.DB
}

// NewSettingsService creates a SettingsService. db may be nil.
func NewSettingsService(db *storage.DB) *SettingsService {
	return &SettingsService{db: db}
}

const (
	settingWindowWidth  = "window_width"
	settingWindowHeight = "window_height"
	settingLastTable    = "last_table"
	settingLastOutDir   = "last_output_dir"
	defaultWindowWidth  = 960
	defaultWindowHeight = 720
	minWindowWidth      = 640
	minWindowHeight     = 480
)

// LoadWindowSize returns the saved window dimensions, or defaults.
func (s *SettingsService) LoadWindowSize() WindowSize {
	if s.db == nil {
		return WindowSize{Width: defaultWindowWidth, Height: defaultWindowHeight}
	}
	w := s.db.GetIntSetting(settingWindowWidth, defaultWindowWidth)
	h := s.db.GetIntSetting(settingWindowHeight, defaultWindowHeight)
	if w < minWindowWidth {
		w = defaultWindowWidth
	}
	if h < minWindowHeight {
		h = defaultWindowHeight
	}
	return WindowSize{Width: w, Height: h}
}

// SaveWindowSize persists the current window dimensions.
func (s *SettingsService) SaveWindowSize(width, height int) error {
	if s.db == nil {
		return fmt.Errorf("settings: no db")
	}
	if err := s.db.SetSetting(settingWindowWidth, strconv.Itoa(width)); err != nil {
		return err
	}
	return s.db.SetSetting(settingWindowHeight, strconv.Itoa(height))
}

// LoadLastUsed returns the table name and output directory of the last
// successful conversion.
func (s *SettingsService) LoadLastUsed() LastUsed {
	var lu LastUsed
	if s.db == nil {
		return lu
	}
	lu.TableName, _, _ = s.db.GetSetting(settingLastTable)
	lu.OutputDir, _, _ = s.db.GetSetting(settingLastOutDir)
	return lu
}

// SaveLastUsed remembers the convert form inputs.
func (s *SettingsService) SaveLastUsed(lu LastUsed) error {
	if s.db == nil {
		return fmt.Errorf("settings: no db")
	}
	if err := s.db.SetSetting(settingLastTable, lu.TableName); err != nil {
		return err
	}
	return s.db.SetSetting(settingLastOutDir, lu.OutputDir)
}
