package app

import (
	"path/filepath"

	"jsonsql/internal/convert"
	"jsonsql/internal/domain"
	"jsonsql/internal/pipeline"
)

// LoadedFile is the frontend view of a picked JSON file.
type LoadedFile struct {
	Path    string   `json:"path"`
	Dir     string   `json:"dir"`
	Name    string   `json:"name"`
	Size    int      `json:"size"`
	Columns []string `json:"columns"` // from the first record; empty if unparsable

	content string
}

func newLoadedFile(path string, data []byte) *LoadedFile {
	cols, err := convert.Columns(string(data))
	if err != nil || cols == nil {
		cols = []string{}
	}
	return &LoadedFile{
		Path:    path,
		Dir:     filepath.Dir(path),
		Name:    filepath.Base(path),
		Size:    len(data),
		Columns: cols,
		content: string(data),
	}
}

// ConvertOutcome is what the Convert buttons return to the frontend.
type ConvertOutcome struct {
	Result  *pipeline.RunResult `json:"result,omitempty"`
	Message Message             `json:"message"`
}

func outcomeFor(res *pipeline.RunResult, err error) *ConvertOutcome {
	if err != nil {
		return &ConvertOutcome{Result: res, Message: UserMessage(err)}
	}
	return &ConvertOutcome{Result: res, Message: SuccessMessage(res)}
}

// PreviewView is the frontend view of a preview.
type PreviewView struct {
	Columns    []string `json:"columns"`
	Statements []string `json:"statements"`
	Total      int      `json:"total"`
	Error      *Message `json:"error,omitempty"`
}

// DBConnView is the frontend-safe view of a database connection (no password).
// Notice is set after a save when the password will not persist.
type DBConnView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Driver    string `json:"driver"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Database  string `json:"database"`
	Username  string `json:"username"`
	SSLMode   string `json:"sslMode"`
	ExtraJSON string `json:"extraJson"`
	Notice    string `json:"notice,omitempty"`
}

func toDBConnView(c domain.DatabaseConnection) DBConnView {
	return DBConnView{
		ID:        c.ID,
		Name:      c.Name,
		Driver:    string(c.Driver),
		Host:      c.Host,
		Port:      c.Port,
		Database:  c.Database,
		Username:  c.Username,
		SSLMode:   c.SSLMode,
		ExtraJSON: c.ExtraJSON,
	}
}
