package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/azboards-mcp/internal/azdo"
	"github.com/HendryAvila/azboards-mcp/internal/session"
)

// UpdateTool handles update_work_item.
type UpdateTool struct {
	session *session.Session
}

func NewUpdateTool(s *session.Session) *UpdateTool {
	return &UpdateTool{session: s}
}

func (t *UpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("update_work_item",
		mcp.WithDescription(
			"Update fields of a work item via a partial-update document. "+
				"Field names are reference names, e.g. System.Title or "+
				"Microsoft.VSTS.Common.Priority; no local schema validation is applied.",
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Work item ID"),
		),
		mcp.WithObject("fields",
			mcp.Required(),
			mcp.Description("Map of field reference name to new value"),
		),
		mcp.WithString("project",
			mcp.Description("Project override"),
		),
	)
}

type updateArgs struct {
	ID      float64        `json:"id"`
	Fields  map[string]any `json:"fields"`
	Project string         `json:"project"`
}

func (t *UpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args updateArgs
	if err := req.BindArguments(&args); err != nil {
		return invalidArgument("binding arguments: %v", err), nil
	}
	id := int(args.ID)
	if id <= 0 {
		return invalidArgument("'id' must be a positive integer"), nil
	}
	if len(args.Fields) == 0 {
		return invalidArgument("'fields' must contain at least one entry"), nil
	}

	project, err := t.session.ResolveProject(ctx, args.Project)
	if err != nil {
		return errorResult(err), nil
	}

	names := make([]string, 0, len(args.Fields))
	for name := range args.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	patch := make([]azdo.PatchOp, 0, len(names))
	for _, name := range names {
		patch = append(patch, azdo.PatchOp{Op: "replace", Path: "/fields/" + name, Value: args.Fields[name]})
	}

	wi, err := t.session.Client().UpdateWorkItem(ctx, project, id, patch)
	if err != nil {
		return errorResult(err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Updated work item #%d (rev %d): %d field(s) changed", wi.ID, wi.Rev, len(names),
	)), nil
}
