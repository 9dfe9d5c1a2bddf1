package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/azboards-mcp/internal/output"
	"github.com/HendryAvila/azboards-mcp/internal/session"
)

// GetTool handles get_work_item.
type GetTool struct {
	session *session.Session
}

func NewGetTool(s *session.Session) *GetTool {
	return &GetTool{session: s}
}

func (t *GetTool) Definition() mcp.Tool {
	return mcp.NewTool("get_work_item",
		mcp.WithDescription(
			"Fetch one work item by ID. Returns the full JSON document, or a "+
				"short human-readable summary when 'summarize' is set.",
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Work item ID"),
		),
		mcp.WithArray("fields",
			mcp.Description("Field reference names to fetch (default: all)"),
			mcp.WithStringItems(),
		),
		mcp.WithBoolean("expandRelations",
			mcp.Description("Include the relations list"),
		),
		mcp.WithBoolean("summarize",
			mcp.Description("Return a short summary instead of full JSON"),
		),
		mcp.WithString("project",
			mcp.Description("Project override"),
		),
	)
}

type getArgs struct {
	ID              float64  `json:"id"`
	Fields          []string `json:"fields"`
	ExpandRelations bool     `json:"expandRelations"`
	Summarize       bool     `json:"summarize"`
	Project         string   `json:"project"`
}

func (t *GetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args getArgs
	if err := req.BindArguments(&args); err != nil {
		return invalidArgument("binding arguments: %v", err), nil
	}
	id := int(args.ID)
	if id <= 0 {
		return invalidArgument("'id' must be a positive integer"), nil
	}

	project, err := t.session.ResolveProject(ctx, args.Project)
	if err != nil {
		return errorResult(err), nil
	}

	wi, err := t.session.Client().GetWorkItem(ctx, project, id, args.Fields, args.ExpandRelations)
	if err != nil {
		return errorResult(err), nil
	}

	if args.Summarize {
		link := t.session.Client().WorkItemWebURL(project, wi.ID)
		return mcp.NewToolResultText(output.Summary(output.Normalize(wi, link))), nil
	}
	return mcp.NewToolResultText(output.JSON(wi)), nil
}
