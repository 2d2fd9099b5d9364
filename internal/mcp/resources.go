package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

const recentRunsURI = "jsonsql://runs/recent"

func (s *Server) registerResources() {
	s.mcp.AddResource(mcp.NewResource(
		recentRunsURI,
		"Recent Conversions",
		mcp.WithMIMEType("application/json"),
	), s.handleRecentRunsResource)
}

func (s *Server) handleRecentRunsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	runs, err := s.convert.ListRecentRuns(20)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      recentRunsURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
