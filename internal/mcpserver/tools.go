package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// registerTools registers the match-resumes, get-resume and list-scans tools.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("match-resumes",
			mcp.WithDescription("Upload resume files to the matching service and rank them against a job"),
			mcp.WithArray("paths", mcp.Required(),
				mcp.Description("Local paths of the resume files to upload"),
				mcp.Items(map[string]any{"type": "string"}),
			),
			mcp.WithString("job_description",
				mcp.Description("Free-form job description"),
			),
			mcp.WithString("job_role",
				mcp.Description("Job title"),
			),
			mcp.WithString("skills",
				mcp.Description("Comma separated list of required skills"),
			),
		),
		s.handleMatchResumes,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get-resume",
			mcp.WithDescription("Download a previously uploaded resume and return the local file path"),
			mcp.WithString("name", mcp.Required(),
				mcp.Description("Resume name as reported by match-resumes"),
			),
			mcp.WithString("dir",
				mcp.Description("Directory to save into (defaults to the configured output directory)"),
			),
		),
		s.handleGetResume,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list-scans",
			mcp.WithDescription("List recorded scans, newest first"),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of scans to return (default 10)"),
			),
		),
		s.handleListScans,
	)
}
