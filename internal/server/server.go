// Package server wires all MCP components and creates the server
// instance. This is the composition root: it loads configuration,
// builds the client and session, and registers every tool. No
// business logic lives here.
package server

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/azboards-mcp/internal/azdo"
	"github.com/HendryAvila/azboards-mcp/internal/config"
	"github.com/HendryAvila/azboards-mcp/internal/session"
	"github.com/HendryAvila/azboards-mcp/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with all work item tools registered.
// Missing configuration fails here: the server has no degraded mode.
func New() (*server.MCPServer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	client, err := azdo.NewClient(cfg.OrgURL, cfg.PAT, cfg.APIVersion, cfg.Verbose, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	sess := session.New(client, cfg.Project)

	s := server.NewMCPServer(
		"azboards",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Work item CRUD ---

	createTool := tools.NewCreateTool(sess)
	s.AddTool(createTool.Definition(), createTool.Handle)

	getTool := tools.NewGetTool(sess)
	s.AddTool(getTool.Definition(), getTool.Handle)

	updateTool := tools.NewUpdateTool(sess)
	s.AddTool(updateTool.Definition(), updateTool.Handle)

	deleteTool := tools.NewDeleteTool(sess)
	s.AddTool(deleteTool.Definition(), deleteTool.Handle)

	// --- Bulk operations ---

	batchGetTool := tools.NewBatchGetTool(sess)
	s.AddTool(batchGetTool.Definition(), batchGetTool.Handle)

	batchUpdateTool := tools.NewBatchUpdateTool(sess)
	s.AddTool(batchUpdateTool.Definition(), batchUpdateTool.Handle)

	searchTool := tools.NewSearchTool(sess)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	// --- Projects ---

	listProjectsTool := tools.NewListProjectsTool(sess)
	s.AddTool(listProjectsTool.Definition(), listProjectsTool.Handle)

	getProjectTool := tools.NewGetProjectTool(sess)
	s.AddTool(getProjectTool.Definition(), getProjectTool.Handle)

	// --- Links & comments ---

	linkCommitTool := tools.NewLinkCommitTool(sess)
	s.AddTool(linkCommitTool.Definition(), linkCommitTool.Handle)

	linkParentTool := tools.NewLinkParentTool(sess)
	s.AddTool(linkParentTool.Definition(), linkParentTool.Handle)

	commentTool := tools.NewCommentTool(sess)
	s.AddTool(commentTool.Definition(), commentTool.Handle)

	// --- Attachments ---

	listAttachmentsTool := tools.NewListAttachmentsTool(sess)
	s.AddTool(listAttachmentsTool.Definition(), listAttachmentsTool.Handle)

	uploadAttachmentTool := tools.NewUploadAttachmentTool(sess)
	s.AddTool(uploadAttachmentTool.Definition(), uploadAttachmentTool.Handle)

	deleteAttachmentTool := tools.NewDeleteAttachmentTool(sess)
	s.AddTool(deleteAttachmentTool.Definition(), deleteAttachmentTool.Handle)

	return s, nil
}

// serverInstructions tells the AI how to use the work item tools.
func serverInstructions() string {
	return `You have access to Azure Boards work item tools.

## Projects
Most tools take an optional 'project' argument. When omitted, the
organization's first project is used (resolved once per session).
Use list_projects to see what exists.

## Finding work items
- search_work_items: filter by free text, type, state, assignee, tags
  (semicolon-delimited, any-match), creation/change timestamps. Free
  text that is all digits also matches the exact work item ID.
- get_work_item / get_work_items_batch: fetch by known ID(s). Use
  summarize=true on get_work_item for a compact overview.

## Changing work items
- create_work_item / update_work_item / delete_work_item for single
  items. Field names are reference names (System.Title,
  Microsoft.VSTS.Common.Priority, Custom.*).
- batch_update_work_items for bulk changes: each operation is tagged
  PATCH (update), POST (create) or DELETE. The result reports
  aggregate success/failure counts only.
- delete_work_item moves items to the recycle bin unless destroy=true.

## Links, comments, attachments
- link_commit_to_work_item / link_parent_work_item append relations;
  relations are never removed by these tools.
- add_work_item_comment posts to the discussion.
- upload_work_item_attachment takes Base64 content and handles large
  payloads via chunked upload automatically.`
}
