package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/azboards-mcp/internal/azdo"
	"github.com/HendryAvila/azboards-mcp/internal/config"
	"github.com/HendryAvila/azboards-mcp/internal/output"
	"github.com/HendryAvila/azboards-mcp/internal/session"
)

// BatchGetTool handles get_work_items_batch.
type BatchGetTool struct {
	session *session.Session
}

func NewBatchGetTool(s *session.Session) *BatchGetTool {
	return &BatchGetTool{session: s}
}

func (t *BatchGetTool) Definition() mcp.Tool {
	return mcp.NewTool("get_work_items_batch",
		mcp.WithDescription(
			fmt.Sprintf("Fetch up to %d work items in one call.", config.MaxBatchGetIDs),
		),
		mcp.WithArray("ids",
			mcp.Required(),
			mcp.Description(fmt.Sprintf("Work item IDs (max %d)", config.MaxBatchGetIDs)),
		),
		mcp.WithArray("fields",
			mcp.Description("Field reference names to fetch"),
			mcp.WithStringItems(),
		),
		mcp.WithString("project",
			mcp.Description("Project override"),
		),
	)
}

type batchGetArgs struct {
	IDs     []int    `json:"ids"`
	Fields  []string `json:"fields"`
	Project string   `json:"project"`
}

func (t *BatchGetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args batchGetArgs
	if err := req.BindArguments(&args); err != nil {
		return invalidArgument("binding arguments: %v", err), nil
	}
	if len(args.IDs) == 0 {
		return invalidArgument("'ids' must not be empty"), nil
	}
	if len(args.IDs) > config.MaxBatchGetIDs {
		return invalidArgument("'ids' has %d entries, maximum is %d", len(args.IDs), config.MaxBatchGetIDs), nil
	}
	for _, id := range args.IDs {
		if id <= 0 {
			return invalidArgument("'ids' entries must be positive integers, got %d", id), nil
		}
	}

	fields := args.Fields
	if len(fields) == 0 {
		fields = azdo.DefaultSearchFields
	}

	project, err := t.session.ResolveProject(ctx, args.Project)
	if err != nil {
		return errorResult(err), nil
	}

	items, err := t.session.Client().GetWorkItemsBatch(ctx, project, args.IDs, fields)
	if err != nil {
		return errorResult(err), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("No work items found for the given IDs."), nil
	}

	normalized := make([]output.WorkItem, 0, len(items))
	for _, wi := range items {
		normalized = append(normalized, output.Normalize(wi, t.session.Client().WorkItemWebURL(project, wi.ID)))
	}
	return mcp.NewToolResultText(output.JSON(normalized)), nil
}
