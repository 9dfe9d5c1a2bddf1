package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/azboards-mcp/internal/session"
)

// DeleteTool handles delete_work_item.
type DeleteTool struct {
	session *session.Session
}

func NewDeleteTool(s *session.Session) *DeleteTool {
	return &DeleteTool{session: s}
}

func (t *DeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_work_item",
		mcp.WithDescription(
			"Delete a work item. By default the item moves to the recycle bin "+
				"and can be restored; with 'destroy' it is permanently removed.",
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Work item ID"),
		),
		mcp.WithBoolean("destroy",
			mcp.Description("Permanently delete instead of moving to the recycle bin"),
		),
		mcp.WithString("project",
			mcp.Description("Project override"),
		),
	)
}

type deleteArgs struct {
	ID      float64 `json:"id"`
	Destroy bool    `json:"destroy"`
	Project string  `json:"project"`
}

func (t *DeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args deleteArgs
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

	if err := t.session.Client().DeleteWorkItem(ctx, project, id, args.Destroy); err != nil {
		return errorResult(err), nil
	}

	if args.Destroy {
		return mcp.NewToolResultText(fmt.Sprintf("Work item #%d permanently deleted.", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Work item #%d moved to the recycle bin (restorable).", id)), nil
}
