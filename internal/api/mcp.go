package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jbruckner/talktome/internal/jobs"
	"github.com/jbruckner/talktome/internal/profile"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Jobs    *jobs.Manager
	Profile *profile.Manager
}

// NewMCPServer creates an MCP server exposing the candidate's profile and job
// applications to MCP clients.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"talktome",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("talktome exposes the candidate profile and job application data for this applicant."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("contact_card",
			mcp.WithDescription("Return the candidate's contact details (name, email, phone, LinkedIn)."),
		),
		mcpContactCard(deps),
	)

	s.AddTool(
		mcp.NewTool("project_list",
			mcp.WithDescription("Return the candidate's projects with links and descriptions."),
		),
		mcpProjectList(deps),
	)

	s.AddTool(
		mcp.NewTool("list_jobs",
			mcp.WithDescription("List job applications. By default only enabled ones are returned."),
			mcp.WithBoolean("include_disabled", mcp.Description("Include disabled applications")),
		),
		mcpListJobs(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"candidate://profile",
			"Candidate Profile",
			mcp.WithResourceDescription("Full candidate profile as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProfile(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"jobs://list",
			"Job Applications",
			mcp.WithResourceDescription("All job application entries as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceJobs(deps),
	)

	return s
}

func mcpContactCard(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, err := deps.Profile.Get()
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load profile: %v", err)), nil
		}

		card := map[string]string{
			"name":        p.Name,
			"title":       p.Title,
			"email":       p.Email,
			"phone":       p.Phone,
			"linkedinUrl": p.LinkedIn,
		}
		b, err := json.Marshal(card)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal contact card: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpProjectList(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, err := deps.Profile.Get()
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load profile: %v", err)), nil
		}

		if len(p.Projects) == 0 {
			return mcpText("[]"), nil
		}
		b, err := json.Marshal(p.Projects)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal projects: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpListJobs(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		includeDisabled := req.GetBool("include_disabled", false)

		list, err := deps.Jobs.List()
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list jobs: %v", err)), nil
		}

		type jobSummary struct {
			ID       string `json:"id"`
			Company  string `json:"company"`
			Position string `json:"position"`
			Language string `json:"language"`
			Enabled  bool   `json:"enabled"`
		}

		summaries := make([]jobSummary, 0, len(list))
		for _, j := range list {
			if !includeDisabled && !j.Enabled {
				continue
			}
			summaries = append(summaries, jobSummary{
				ID:       j.ID,
				Company:  j.Company,
				Position: j.Position,
				Language: string(j.Language),
				Enabled:  j.Enabled,
			})
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal jobs: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceProfile(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		p, err := deps.Profile.Get()
		if err != nil {
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}

		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profile: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpResourceJobs(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := deps.Jobs.List()
		if err != nil {
			return nil, fmt.Errorf("failed to list jobs: %w", err)
		}

		b, err := json.Marshal(list)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal jobs: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
