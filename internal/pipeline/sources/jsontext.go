package sources

import (
	"context"
	"fmt"
	"strings"

	"jsonsql/internal/pipeline"
)

// ── JSON Text Source ────────────────────────────────────────
// Pasted JSON, stored verbatim in the job config.

type jsonTextSource struct{}

func init() { pipeline.RegisterSource(&jsonTextSource{}) }

func (s *jsonTextSource) Spec() pipeline.SourceSpec {
	return pipeline.SourceSpec{
		Type:  "json_text",
		Label: "Pasted JSON",
		Icon:  "IconClipboardText",
		ConfigFields: []pipeline.ConfigField{
			{Key: "text", Label: "JSON", Type: "textarea", Required: true, Help: "A JSON array of objects"},
		},
	}
}

func (s *jsonTextSource) Load(_ context.Context, cfg pipeline.SourceConfig) ([]byte, error) {
	text := cfg.String("text")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text is required")
	}
	return []byte(text), nil
}
