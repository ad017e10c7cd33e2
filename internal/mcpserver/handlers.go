package mcpserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/resumescan/internal/history"
	"github.com/mark3labs/resumescan/internal/scan"
)

const defaultListLimit = 10

// handleMatchResumes uploads the given files and returns the ranking.
func (s *Server) handleMatchResumes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultError("no arguments provided"), nil
	}

	pathsRaw, ok := args["paths"]
	if !ok {
		return mcp.NewToolResultError("missing 'paths' parameter"), nil
	}

	// mcp-go returns arrays as []any
	pathsArray, ok := pathsRaw.([]any)
	if !ok {
		return mcp.NewToolResultError("'paths' is not an array"), nil
	}
	if len(pathsArray) == 0 {
		return mcp.NewToolResultError("at least one path is required"), nil
	}

	paths := make([]string, 0, len(pathsArray))
	for i, p := range pathsArray {
		path, ok := p.(string)
		if !ok || path == "" {
			return mcp.NewToolResultError(fmt.Sprintf("path %d is not a non-empty string", i)), nil
		}
		paths = append(paths, path)
	}

	req := scan.Request{Paths: paths}
	req.JobDescription, _ = args["job_description"].(string)
	req.JobRole, _ = args["job_role"].(string)
	req.Skills, _ = args["skills"].(string)

	out, err := s.opts.Scanner.Run(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(out.Results) == 0 {
		return mcp.NewToolResultText("No matching resumes"), nil
	}

	var b strings.Builder
	b.WriteString("Top Matching Resumes:\n")
	b.WriteString(history.FormatRanking(out.Results))
	if out.Record != nil {
		fmt.Fprintf(&b, "Recorded as scan %s", out.Record.ShortID())
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

// handleGetResume saves a resume locally and returns its path.
func (s *Server) handleGetResume(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultError("no arguments provided"), nil
	}

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("missing or empty 'name' parameter"), nil
	}

	dir, _ := args["dir"].(string)
	if dir == "" {
		dir = s.opts.OutputDir
	}
	if dir == "" {
		return mcp.NewToolResultError("no output directory configured; pass 'dir'"), nil
	}

	path, err := s.opts.Saver.Save(ctx, name, dir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error opening resume: %v", err)), nil
	}
	return mcp.NewToolResultText(path), nil
}

// handleListScans lists recorded scans for the configured backend.
func (s *Server) handleListScans(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.opts.History == nil {
		return mcp.NewToolResultError("scan history is disabled"), nil
	}

	limit := defaultListLimit
	if args := request.GetArguments(); args != nil {
		// JSON numbers come as float64
		if v, ok := args["limit"].(float64); ok && v > 0 {
			limit = int(v)
		}
	}

	records, err := s.opts.History.List(ctx, s.opts.Origin)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(records) == 0 {
		return mcp.NewToolResultText("No scans"), nil
	}
	if len(records) > limit {
		records = records[:limit]
	}

	lines := make([]string, 0, len(records))
	for _, rec := range records {
		lines = append(lines, formatScan(rec))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

// formatScan renders "[id] time role: N results, top name (Score: x)".
func formatScan(rec *history.Record) string {
	role := rec.JobRole
	if role == "" {
		role = "(no role)"
	}
	line := fmt.Sprintf("[%s] %s %s: %d results", rec.ShortID(), rec.Timestamp.Format(time.DateTime), role, len(rec.Results))
	if len(rec.Results) > 0 {
		top := rec.Results[0]
		line += fmt.Sprintf(", top %s (Score: %s)", top.ResumeName, top.ScoreString())
	}
	return line
}
