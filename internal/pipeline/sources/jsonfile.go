package sources

import (
	"context"
	"fmt"
	"os"

	"jsonsql/internal/pipeline"
)

// ── JSON File Source ────────────────────────────────────────
// Reads JSON text from a local file.

type jsonFileSource struct{}

func init() { pipeline.RegisterSource(&jsonFileSource{}) }

func (s *jsonFileSource) Spec() pipeline.SourceSpec {
	return pipeline.SourceSpec{
		Type:  "json_file",
		Label: "JSON File",
		Icon:  "IconFileTypeJs",
		ConfigFields: []pipeline.ConfigField{
			{Key: "filePath", Label: "File Path", Type: "file", Required: true, Help: "Absolute path to the JSON file"},
			{Key: "dataPath", Label: "Data Path", Type: "string", Required: false, Help: "Dot-separated path to the array (e.g., 'data.items'). Leave empty if root is an array."},
		},
	}
}

func (s *jsonFileSource) Load(ctx context.Context, cfg pipeline.SourceConfig) ([]byte, error) {
	filePath := cfg.String("filePath")
	if filePath == "" {
		return nil, fmt.Errorf("filePath is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return extractDataPath(data, cfg.String("dataPath"))
}
