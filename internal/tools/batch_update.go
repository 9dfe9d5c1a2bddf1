package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/azboards-mcp/internal/azdo"
	"github.com/HendryAvila/azboards-mcp/internal/session"
)

// BatchUpdateTool handles batch_update_work_items: a list of
// heterogeneous create/update/delete operations submitted as one
// composite multi-request call.
type BatchUpdateTool struct {
	session *session.Session
}

func NewBatchUpdateTool(s *session.Session) *BatchUpdateTool {
	return &BatchUpdateTool{session: s}
}

func (t *BatchUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("batch_update_work_items",
		mcp.WithDescription(
			"Apply multiple work item operations in one batch request. Each "+
				"operation carries a method (PATCH to update, POST to create, "+
				"DELETE to remove) and its method-specific fields: 'workItemId' "+
				"for PATCH/DELETE, 'type' for POST, 'fields' for PATCH/POST. "+
				"Reports aggregate success/failure counts.",
		),
		mcp.WithArray("operations",
			mcp.Required(),
			mcp.Description("Ordered list of operation descriptors"),
		),
		mcp.WithBoolean("bypassRules",
			mcp.Description("Bypass workflow rule validation"),
		),
		mcp.WithBoolean("suppressNotifications",
			mcp.Description("Suppress change notifications"),
		),
		mcp.WithString("project",
			mcp.Description("Project override for created items"),
		),
	)
}

type batchUpdateArgs struct {
	Operations            []azdo.BatchOperation `json:"operations"`
	BypassRules           bool                  `json:"bypassRules"`
	SuppressNotifications bool                  `json:"suppressNotifications"`
	Project               string                `json:"project"`
}

func (t *BatchUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args batchUpdateArgs
	if err := req.BindArguments(&args); err != nil {
		return invalidArgument("binding arguments: %v", err), nil
	}

	// Fail fast with a positional message before building any request.
	if err := azdo.ValidateBatchOperations(args.Operations); err != nil {
		return errorResult(err), nil
	}

	project, err := t.session.ResolveProject(ctx, args.Project)
	if err != nil {
		return errorResult(err), nil
	}

	client := t.session.Client()
	reqs := client.BuildBatchRequests(args.Operations, project, azdo.BatchOptions{
		BypassRules:           args.BypassRules,
		SuppressNotifications: args.SuppressNotifications,
	})

	resps, err := client.ExecuteBatch(ctx, reqs)
	if err != nil {
		return errorResult(err), nil
	}

	succeeded, failed := azdo.CountBatchOutcomes(resps)
	return mcp.NewToolResultText(fmt.Sprintf(
		"Batch complete: %d succeeded, %d failed (of %d operations).",
		succeeded, failed, len(args.Operations),
	)), nil
}
