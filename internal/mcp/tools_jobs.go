package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerJobTools() {
	s.mcp.AddTool(mcp.NewTool("list_jobs",
		mcp.WithDescription("List saved conversion jobs with their last run status"),
	), s.handleListJobs)

	s.mcp.AddTool(mcp.NewTool("run_job",
		mcp.WithDescription("Run a saved conversion job now. Overwrites the job's .sql file or inserts rows into its database."),
		mcp.WithString("jobId", mcp.Description("Job ID (use list_jobs)"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRunJob)

	s.mcp.AddTool(mcp.NewTool("list_runs",
		mcp.WithDescription("List recent runs of a job, newest first. Omit jobId for one-shot conversions."),
		mcp.WithString("jobId", mcp.Description("Job ID (optional)")),
	), s.handleListRuns)
}

func (s *Server) handleListJobs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobs, err := s.convert.ListJobs()
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jsonResult(jobs)
}

func (s *Server) handleRunJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID := req.GetString("jobId", "")
	if jobID == "" {
		return nil, fmt.Errorf("jobId is required")
	}

	result, err := s.convert.RunJob(ctx, jobID)
	if result == nil {
		return nil, fmt.Errorf("run job: %w", err)
	}
	if err != nil {
		return conversionError(err), nil
	}
	return jsonResult(result)
}

func (s *Server) handleListRuns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logs, err := s.convert.ListRunLogs(req.GetString("jobId", ""))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return jsonResult(logs)
}
