package mcpserver

import (
	"encoding/json"
	"fmt"
	"log"

	"jsonsql/internal/pipeline"
	"jsonsql/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server is the MCP server for jsonsql.
// It exposes the converter, saved jobs and run history to AI agents.
type Server struct {
	mcp     *server.MCPServer
	convert *service.ConvertService
}

// Deps holds the dependencies passed from the App layer to the MCP server.
type Deps struct {
	Convert *service.ConvertService
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	s := &Server{convert: deps.Convert}

	s.mcp = server.NewMCPServer(
		"jsonsql-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerConvertTools()
	s.registerJobTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// MCPServer exposes the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// conversionError reports a failed conversion as a tool-level error so the
// agent can read the kind and fix its input.
func conversionError(err error) *mcp.CallToolResult {
	res := textResult(fmt.Sprintf("%s error: %v", pipeline.ErrorKind(err), err))
	res.IsError = true
	return res
}

func boolPtr(v bool) *bool { return &v }
