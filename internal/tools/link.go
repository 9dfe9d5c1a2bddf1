package tools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/azboards-mcp/internal/azdo"
	"github.com/HendryAvila/azboards-mcp/internal/session"
)

// LinkCommitTool handles link_commit_to_work_item: appends an
// ArtifactLink relation pointing at a Git commit.
type LinkCommitTool struct {
	session *session.Session
}

func NewLinkCommitTool(s *session.Session) *LinkCommitTool {
	return &LinkCommitTool{session: s}
}

func (t *LinkCommitTool) Definition() mcp.Tool {
	return mcp.NewTool("link_commit_to_work_item",
		mcp.WithDescription("Link a Git commit to a work item."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Work item ID"),
		),
		mcp.WithString("repositoryId",
			mcp.Required(),
			mcp.Description("Git repository ID"),
		),
		mcp.WithString("commitSha",
			mcp.Required(),
			mcp.Description("Full 40-character commit SHA"),
		),
		mcp.WithString("comment",
			mcp.Description("Link comment"),
		),
		mcp.WithString("project",
			mcp.Description("Project override"),
		),
	)
}

type linkCommitArgs struct {
	ID           float64 `json:"id"`
	RepositoryID string  `json:"repositoryId"`
	CommitSha    string  `json:"commitSha"`
	Comment      string  `json:"comment"`
	Project      string  `json:"project"`
}

func (t *LinkCommitTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args linkCommitArgs
	if err := req.BindArguments(&args); err != nil {
		return invalidArgument("binding arguments: %v", err), nil
	}
	id := int(args.ID)
	if id <= 0 {
		return invalidArgument("'id' must be a positive integer"), nil
	}
	if args.RepositoryID == "" {
		return invalidArgument("'repositoryId' is required"), nil
	}
	if !isCommitSha(args.CommitSha) {
		return invalidArgument("'commitSha' must be a 40-character hex SHA"), nil
	}

	project, err := t.session.ResolveProject(ctx, args.Project)
	if err != nil {
		return errorResult(err), nil
	}

	// Artifact URI format for Git commits:
	// vstfs:///Git/Commit/{project}/{repository}/{sha}
	artifact := fmt.Sprintf("vstfs:///Git/Commit/%s%%2F%s%%2F%s",
		url.PathEscape(project), url.PathEscape(args.RepositoryID), args.CommitSha)

	rel := azdo.Relation{
		Rel: azdo.RelArtifactLink,
		URL: artifact,
		Attributes: map[string]any{
			"name": "Fixed in Commit",
		},
	}
	if args.Comment != "" {
		rel.Attributes["comment"] = args.Comment
	}

	if _, err := t.session.Client().AddRelation(ctx, project, id, rel); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Linked commit %s to work item #%d.", args.CommitSha[:8], id,
	)), nil
}

// LinkParentTool handles link_parent_work_item: appends a hierarchy
// relation making another item the parent of the target.
type LinkParentTool struct {
	session *session.Session
}

func NewLinkParentTool(s *session.Session) *LinkParentTool {
	return &LinkParentTool{session: s}
}

func (t *LinkParentTool) Definition() mcp.Tool {
	return mcp.NewTool("link_parent_work_item",
		mcp.WithDescription("Set the parent of a work item via a hierarchy link."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Child work item ID"),
		),
		mcp.WithNumber("parentId",
			mcp.Required(),
			mcp.Description("Parent work item ID"),
		),
		mcp.WithString("project",
			mcp.Description("Project override"),
		),
	)
}

type linkParentArgs struct {
	ID       float64 `json:"id"`
	ParentID float64 `json:"parentId"`
	Project  string  `json:"project"`
}

func (t *LinkParentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args linkParentArgs
	if err := req.BindArguments(&args); err != nil {
		return invalidArgument("binding arguments: %v", err), nil
	}
	id, parentID := int(args.ID), int(args.ParentID)
	if id <= 0 {
		return invalidArgument("'id' must be a positive integer"), nil
	}
	if parentID <= 0 {
		return invalidArgument("'parentId' must be a positive integer"), nil
	}
	if id == parentID {
		return invalidArgument("a work item cannot be its own parent"), nil
	}

	project, err := t.session.ResolveProject(ctx, args.Project)
	if err != nil {
		return errorResult(err), nil
	}

	client := t.session.Client()
	rel := azdo.Relation{
		Rel: azdo.RelParent,
		URL: fmt.Sprintf("%s/_apis/wit/workItems/%d", client.OrgURL(), parentID),
	}
	if _, err := client.AddRelation(ctx, project, id, rel); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Work item #%d is now a child of #%d.", id, parentID,
	)), nil
}

func isCommitSha(s string) bool {
	if len(s) != 40 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
