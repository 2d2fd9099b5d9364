package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("load_api_into_table",
		mcp.WithPromptDescription("Turn a JSON API response into INSERT statements for a table"),
		mcp.WithArgument("url",
			mcp.ArgumentDescription("URL returning JSON"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("tableName",
			mcp.ArgumentDescription("Target table"),
			mcp.RequiredArgument(),
		),
	), s.handleLoadAPIPrompt)
}

func (s *Server) handleLoadAPIPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	url := req.Params.Arguments["url"]
	table := req.Params.Arguments["tableName"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Load %s into %s", url, table),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Load the JSON at %s into the table "%s". Follow these steps:

1. Call preview_source with sourceType "http" and sourceConfigJSON {"url": "%s"}.
2. If the array is nested, retry with a "dataPath" pointing at it (for example "data.items").
3. Check the previewed columns: they come from the first object only.
4. Call convert_json with dryRun first if anything looks off, then write the file.`, url, table, url),
				},
			},
		},
	}, nil
}
