package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/azboards-mcp/internal/azdo"
	"github.com/HendryAvila/azboards-mcp/internal/config"
	"github.com/HendryAvila/azboards-mcp/internal/output"
	"github.com/HendryAvila/azboards-mcp/internal/session"
)

// SearchTool handles search_work_items: a WIQL query composed from
// optional filters, followed by a batch fetch resolving the matched
// references into field data.
type SearchTool struct {
	session *session.Session
}

func NewSearchTool(s *session.Session) *SearchTool {
	return &SearchTool{session: s}
}

func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("search_work_items",
		mcp.WithDescription(
			"Search work items with optional filters. Free text matches title, "+
				"description and exact numeric ID. Returns up to 'limit' items "+
				"ordered by most recent change unless 'orderBy' says otherwise.",
		),
		mcp.WithString("query",
			mcp.Description("Free-text query"),
		),
		mcp.WithString("project",
			mcp.Description("Project to search (default: session default project)"),
		),
		mcp.WithString("type",
			mcp.Description("Work item type filter"),
		),
		mcp.WithString("state",
			mcp.Description("State filter"),
		),
		mcp.WithString("assignedTo",
			mcp.Description("Assignee filter"),
		),
		mcp.WithString("tags",
			mcp.Description("Semicolon-delimited tags; matches items carrying any of them"),
		),
		mcp.WithString("createdAfter",
			mcp.Description("Only items created after this ISO 8601 timestamp"),
		),
		mcp.WithString("updatedAfter",
			mcp.Description("Only items changed after this ISO 8601 timestamp"),
		),
		mcp.WithArray("fields",
			mcp.Description("Field reference names to return"),
			mcp.WithStringItems(),
		),
		mcp.WithString("orderBy",
			mcp.Description("Order-by field reference name (default System.ChangedDate)"),
		),
		mcp.WithString("orderDirection",
			mcp.Description("asc or desc (default desc)"),
			mcp.Enum("asc", "desc"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Result cap (default %d, max %d)", config.DefaultSearchLimit, config.MaxSearchLimit)),
		),
	)
}

type searchArgs struct {
	Query          string   `json:"query"`
	Project        string   `json:"project"`
	Type           string   `json:"type"`
	State          string   `json:"state"`
	AssignedTo     string   `json:"assignedTo"`
	Tags           string   `json:"tags"`
	CreatedAfter   string   `json:"createdAfter"`
	UpdatedAfter   string   `json:"updatedAfter"`
	Fields         []string `json:"fields"`
	OrderBy        string   `json:"orderBy"`
	OrderDirection string   `json:"orderDirection"`
	Limit          float64  `json:"limit"`
}

type searchResult struct {
	TotalMatches int               `json:"totalMatches"`
	Returned     int               `json:"returned"`
	HasMore      bool              `json:"hasMore"`
	Items        []output.WorkItem `json:"items"`
}

func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args searchArgs
	if err := req.BindArguments(&args); err != nil {
		return invalidArgument("binding arguments: %v", err), nil
	}

	limit := int(args.Limit)
	if limit <= 0 {
		limit = config.DefaultSearchLimit
	}
	if limit > config.MaxSearchLimit {
		return invalidArgument("'limit' is %d, maximum is %d", limit, config.MaxSearchLimit), nil
	}
	if args.OrderDirection != "" && args.OrderDirection != "asc" && args.OrderDirection != "desc" {
		return invalidArgument("'orderDirection' must be asc or desc"), nil
	}

	project, err := t.session.ResolveProject(ctx, args.Project)
	if err != nil {
		return errorResult(err), nil
	}

	query := azdo.BuildWiql(azdo.SearchFilter{
		Project:      project,
		Text:         args.Query,
		Type:         args.Type,
		State:        args.State,
		AssignedTo:   args.AssignedTo,
		Tags:         args.Tags,
		CreatedAfter: args.CreatedAfter,
		UpdatedAfter: args.UpdatedAfter,
		OrderBy:      args.OrderBy,
		// Most recently changed first unless the caller asked for asc.
		Descending: args.OrderDirection != "asc",
	})

	client := t.session.Client()
	resp, err := client.Wiql(ctx, project, query)
	if err != nil {
		return errorResult(err), nil
	}

	total := len(resp.WorkItems)
	if total == 0 {
		// Zero matches is a successful result, not a failure.
		return mcp.NewToolResultText("No work items match the given filters."), nil
	}

	refs := resp.WorkItems
	if len(refs) > limit {
		refs = refs[:limit]
	}
	ids := make([]int, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
	}

	fields := args.Fields
	if len(fields) == 0 {
		fields = azdo.DefaultSearchFields
	}

	items, err := client.GetWorkItemsBatch(ctx, project, ids, fields)
	if err != nil {
		return errorResult(err), nil
	}

	result := searchResult{
		TotalMatches: total,
		Returned:     len(items),
		HasMore:      total > limit,
		Items:        make([]output.WorkItem, 0, len(items)),
	}
	for _, wi := range items {
		result.Items = append(result.Items, output.Normalize(wi, client.WorkItemWebURL(project, wi.ID)))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d work item(s), returning %d", result.TotalMatches, result.Returned)
	if result.HasMore {
		sb.WriteString(" (more results exist; raise 'limit' or narrow the filters)")
	}
	sb.WriteString("\n\n")
	sb.WriteString(output.JSON(result))
	return mcp.NewToolResultText(sb.String()), nil
}
