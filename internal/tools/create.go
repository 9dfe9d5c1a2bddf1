package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/azboards-mcp/internal/azdo"
	"github.com/HendryAvila/azboards-mcp/internal/session"
)

// CreateTool handles create_work_item.
type CreateTool struct {
	session *session.Session
}

func NewCreateTool(s *session.Session) *CreateTool {
	return &CreateTool{session: s}
}

func (t *CreateTool) Definition() mcp.Tool {
	return mcp.NewTool("create_work_item",
		mcp.WithDescription(
			"Create a new work item. Area and iteration paths default to the "+
				"project name; the project defaults to the organization's first project.",
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Work item type, e.g. Bug, Task, User Story"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Work item title"),
		),
		mcp.WithString("description",
			mcp.Description("Description (HTML allowed)"),
		),
		mcp.WithString("assignedTo",
			mcp.Description("Assignee display name or unique name"),
		),
		mcp.WithString("tags",
			mcp.Description("Semicolon-delimited tag list"),
		),
		mcp.WithNumber("priority",
			mcp.Description("Priority (1-4)"),
		),
		mcp.WithString("project",
			mcp.Description("Project override; defaults to the session default project"),
		),
	)
}

type createArgs struct {
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	AssignedTo  string  `json:"assignedTo"`
	Tags        string  `json:"tags"`
	Priority    float64 `json:"priority"`
	Project     string  `json:"project"`
}

func (t *CreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args createArgs
	if err := req.BindArguments(&args); err != nil {
		return invalidArgument("binding arguments: %v", err), nil
	}
	if args.Type == "" {
		return invalidArgument("'type' is required"), nil
	}
	if args.Title == "" {
		return invalidArgument("'title' is required"), nil
	}

	project, err := t.session.ResolveProject(ctx, args.Project)
	if err != nil {
		return errorResult(err), nil
	}

	patch := []azdo.PatchOp{
		{Op: "add", Path: "/fields/System.Title", Value: args.Title},
		{Op: "add", Path: "/fields/System.AreaPath", Value: project},
		{Op: "add", Path: "/fields/System.IterationPath", Value: project},
	}
	if args.Description != "" {
		patch = append(patch, azdo.PatchOp{Op: "add", Path: "/fields/System.Description", Value: args.Description})
	}
	if args.AssignedTo != "" {
		patch = append(patch, azdo.PatchOp{Op: "add", Path: "/fields/System.AssignedTo", Value: args.AssignedTo})
	}
	if args.Tags != "" {
		patch = append(patch, azdo.PatchOp{Op: "add", Path: "/fields/System.Tags", Value: args.Tags})
	}
	if args.Priority > 0 {
		patch = append(patch, azdo.PatchOp{Op: "add", Path: "/fields/Microsoft.VSTS.Common.Priority", Value: int(args.Priority)})
	}

	wi, err := t.session.Client().CreateWorkItem(ctx, project, args.Type, patch)
	if err != nil {
		return errorResult(err), nil
	}

	link := t.session.Client().WorkItemWebURL(project, wi.ID)
	return mcp.NewToolResultText(fmt.Sprintf(
		"Created %s #%d: %s\nProject: %s\nLink: %s",
		args.Type, wi.ID, args.Title, project, link,
	)), nil
}
