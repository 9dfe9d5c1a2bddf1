package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/azboards-mcp/internal/session"
)

// CommentTool handles add_work_item_comment.
type CommentTool struct {
	session *session.Session
}

func NewCommentTool(s *session.Session) *CommentTool {
	return &CommentTool{session: s}
}

func (t *CommentTool) Definition() mcp.Tool {
	return mcp.NewTool("add_work_item_comment",
		mcp.WithDescription("Add a comment to a work item's discussion."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Work item ID"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Comment text (HTML allowed)"),
		),
		mcp.WithString("project",
			mcp.Description("Project override"),
		),
	)
}

type commentArgs struct {
	ID      float64 `json:"id"`
	Text    string  `json:"text"`
	Project string  `json:"project"`
}

func (t *CommentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args commentArgs
	if err := req.BindArguments(&args); err != nil {
		return invalidArgument("binding arguments: %v", err), nil
	}
	id := int(args.ID)
	if id <= 0 {
		return invalidArgument("'id' must be a positive integer"), nil
	}
	if args.Text == "" {
		return invalidArgument("'text' is required"), nil
	}

	project, err := t.session.ResolveProject(ctx, args.Project)
	if err != nil {
		return errorResult(err), nil
	}

	comment, err := t.session.Client().AddComment(ctx, project, id, args.Text)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Comment #%d added to work item #%d.", comment.ID, id,
	)), nil
}
