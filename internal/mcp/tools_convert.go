package mcpserver

import (
	"context"
	"fmt"

	"jsonsql/internal/convert"
	"jsonsql/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerConvertTools() {
	s.mcp.AddTool(mcp.NewTool("convert_json",
		mcp.WithDescription("Convert a JSON array of objects into SQL INSERT statements. The first object's keys become the column list; missing keys become NULL and extra keys are ignored. Writes <outputDir>/<tableName>.sql unless dryRun is set."),
		mcp.WithString("json", mcp.Description("JSON array of objects"), mcp.Required()),
		mcp.WithString("tableName", mcp.Description("Target table name"), mcp.Required()),
		mcp.WithString("outputDir", mcp.Description("Directory for the .sql file (optional, defaults to the working directory)")),
		mcp.WithBoolean("dryRun", mcp.Description("Return the statements instead of writing a file")),
	), s.handleConvertJSON)

	s.mcp.AddTool(mcp.NewTool("convert_file",
		mcp.WithDescription("Convert a JSON file into <outputDir>/<tableName>.sql. Overwrites an existing file of that name."),
		mcp.WithString("path", mcp.Description("Path to the JSON file"), mcp.Required()),
		mcp.WithString("tableName", mcp.Description("Target table name"), mcp.Required()),
		mcp.WithString("outputDir", mcp.Description("Directory for the .sql file (optional, defaults to the input file's directory)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleConvertFile)

	s.mcp.AddTool(mcp.NewTool("list_sources",
		mcp.WithDescription("List available JSON source types with their configuration schemas"),
	), s.handleListSources)

	s.mcp.AddTool(mcp.NewTool("preview_source",
		mcp.WithDescription("Load a source and preview the first INSERT statements without writing anything"),
		mcp.WithString("sourceType", mcp.Description("Source type (use list_sources)"), mcp.Required()),
		mcp.WithString("sourceConfigJSON", mcp.Description("Source configuration as JSON"), mcp.Required()),
		mcp.WithString("tableName", mcp.Description("Target table name"), mcp.Required()),
	), s.handlePreviewSource)
}

func (s *Server) handleConvertJSON(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonText := req.GetString("json", "")
	table := req.GetString("tableName", "")
	if table == "" {
		return nil, fmt.Errorf("tableName is required")
	}

	if req.GetBool("dryRun", false) {
		statements, err := convert.ConvertContext(ctx, jsonText, table)
		if err != nil {
			return conversionError(err), nil
		}
		lines := make([]string, len(statements))
		for i, st := range statements {
			lines[i] = st.String()
		}
		return jsonResult(map[string]any{"statements": lines, "count": len(lines)})
	}

	result, err := s.convert.ConvertText(ctx, service.ConvertInput{
		JSON:      jsonText,
		TableName: table,
		OutputDir: req.GetString("outputDir", ""),
	})
	if err != nil {
		return conversionError(err), nil
	}
	return jsonResult(result)
}

func (s *Server) handleConvertFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	table := req.GetString("tableName", "")
	if path == "" || table == "" {
		return nil, fmt.Errorf("path and tableName are required")
	}

	result, err := s.convert.ConvertFile(ctx, path, table, req.GetString("outputDir", ""))
	if err != nil {
		return conversionError(err), nil
	}
	return jsonResult(result)
}

func (s *Server) handleListSources(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.convert.ListSources())
}

func (s *Server) handlePreviewSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceType := req.GetString("sourceType", "")
	sourceConfigStr := req.GetString("sourceConfigJSON", "")
	table := req.GetString("tableName", "")
	if sourceType == "" || sourceConfigStr == "" || table == "" {
		return nil, fmt.Errorf("sourceType, sourceConfigJSON and tableName are required")
	}

	preview, err := s.convert.Preview(ctx, sourceType, sourceConfigStr, table)
	if err != nil {
		return conversionError(err), nil
	}
	return jsonResult(preview)
}
