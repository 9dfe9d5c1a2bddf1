package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/azboards-mcp/internal/output"
	"github.com/HendryAvila/azboards-mcp/internal/session"
)

// ListProjectsTool handles list_projects.
type ListProjectsTool struct {
	session *session.Session
}

func NewListProjectsTool(s *session.Session) *ListProjectsTool {
	return &ListProjectsTool{session: s}
}

func (t *ListProjectsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_projects",
		mcp.WithDescription("List all projects of the organization."),
	)
}

func (t *ListProjectsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := t.session.Client().ListProjects(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	if len(projects) == 0 {
		return mcp.NewToolResultText("The organization has no projects."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d project(s):\n", len(projects))
	for _, p := range projects {
		fmt.Fprintf(&sb, "- %s", p.Name)
		if p.Description != "" {
			fmt.Fprintf(&sb, " - %s", p.Description)
		}
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(strings.TrimRight(sb.String(), "\n")), nil
}

// GetProjectTool handles get_project.
type GetProjectTool struct {
	session *session.Session
}

func NewGetProjectTool(s *session.Session) *GetProjectTool {
	return &GetProjectTool{session: s}
}

func (t *GetProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("get_project",
		mcp.WithDescription("Fetch one project by name or ID."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name or ID"),
		),
	)
}

func (t *GetProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("project")
	if err != nil {
		return invalidArgument("'project' is required"), nil
	}
	p, err := t.session.Client().GetProject(ctx, name)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(output.JSON(p)), nil
}
