package tools

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/azboards-mcp/internal/azdo"
	"github.com/HendryAvila/azboards-mcp/internal/output"
	"github.com/HendryAvila/azboards-mcp/internal/session"
)

// ListAttachmentsTool handles list_work_item_attachments.
type ListAttachmentsTool struct {
	session *session.Session
}

func NewListAttachmentsTool(s *session.Session) *ListAttachmentsTool {
	return &ListAttachmentsTool{session: s}
}

func (t *ListAttachmentsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_work_item_attachments",
		mcp.WithDescription("List the attached files of a work item."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Work item ID"),
		),
		mcp.WithString("project",
			mcp.Description("Project override"),
		),
	)
}

type listAttachmentsArgs struct {
	ID      float64 `json:"id"`
	Project string  `json:"project"`
}

func (t *ListAttachmentsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args listAttachmentsArgs
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

	wi, err := t.session.Client().GetWorkItem(ctx, project, id, nil, true)
	if err != nil {
		return errorResult(err), nil
	}

	type attachmentEntry struct {
		Name    string `json:"name,omitempty"`
		URL     string `json:"url"`
		Comment string `json:"comment,omitempty"`
	}
	var attachments []attachmentEntry
	for _, rel := range wi.Relations {
		if rel.Rel != azdo.RelAttachedFile {
			continue
		}
		entry := attachmentEntry{URL: rel.URL}
		if name, ok := rel.Attributes["name"].(string); ok {
			entry.Name = name
		}
		if comment, ok := rel.Attributes["comment"].(string); ok {
			entry.Comment = comment
		}
		attachments = append(attachments, entry)
	}

	// No attachments is a successful empty result.
	if len(attachments) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Work item #%d has no attachments.", id)), nil
	}
	return mcp.NewToolResultText(output.JSON(attachments)), nil
}

// UploadAttachmentTool handles upload_work_item_attachment. Payloads
// above the threshold go through the chunked upload sequencer.
type UploadAttachmentTool struct {
	session *session.Session
}

func NewUploadAttachmentTool(s *session.Session) *UploadAttachmentTool {
	return &UploadAttachmentTool{session: s}
}

func (t *UploadAttachmentTool) Definition() mcp.Tool {
	return mcp.NewTool("upload_work_item_attachment",
		mcp.WithDescription(
			"Upload a file (Base64-encoded content) and attach it to a work "+
				"item. Large payloads are uploaded in ordered chunks.",
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Target work item ID"),
		),
		mcp.WithString("fileName",
			mcp.Required(),
			mcp.Description("Attachment file name"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Base64-encoded file content"),
		),
		mcp.WithString("comment",
			mcp.Description("Attachment comment"),
		),
		mcp.WithNumber("chunkSize",
			mcp.Description("Chunk size in bytes for chunked uploads (default 4 MiB)"),
		),
		mcp.WithNumber("chunkThreshold",
			mcp.Description("Payload size above which the chunked protocol is used (default 100 MiB)"),
		),
		mcp.WithString("project",
			mcp.Description("Project override"),
		),
	)
}

type uploadAttachmentArgs struct {
	ID             float64 `json:"id"`
	FileName       string  `json:"fileName"`
	Content        string  `json:"content"`
	Comment        string  `json:"comment"`
	ChunkSize      float64 `json:"chunkSize"`
	ChunkThreshold float64 `json:"chunkThreshold"`
	Project        string  `json:"project"`
}

func (t *UploadAttachmentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args uploadAttachmentArgs
	if err := req.BindArguments(&args); err != nil {
		return invalidArgument("binding arguments: %v", err), nil
	}
	id := int(args.ID)
	if id <= 0 {
		return invalidArgument("'id' must be a positive integer"), nil
	}
	if args.FileName == "" {
		return invalidArgument("'fileName' is required"), nil
	}
	data, err := base64.StdEncoding.DecodeString(args.Content)
	if err != nil {
		return invalidArgument("'content' is not valid Base64: %v", err), nil
	}
	if len(data) == 0 {
		return invalidArgument("'content' decodes to an empty payload"), nil
	}

	project, err := t.session.ResolveProject(ctx, args.Project)
	if err != nil {
		return errorResult(err), nil
	}

	sequencer := azdo.NewUploadSequencer(t.session.Client())
	result, err := sequencer.Run(ctx, azdo.UploadParams{
		Project:    project,
		WorkItemID: id,
		FileName:   args.FileName,
		Data:       data,
		Comment:    args.Comment,
		ChunkSize:  int(args.ChunkSize),
		Threshold:  int(args.ChunkThreshold),
	})
	if err != nil {
		return errorResult(err), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Attached %s (%d bytes) to work item #%d", args.FileName, result.Size, id)
	if result.Chunked {
		fmt.Fprintf(&sb, " in %d chunks", result.Chunks)
	}
	sb.WriteString("\n\n")
	sb.WriteString(output.JSON(result))
	return mcp.NewToolResultText(sb.String()), nil
}

// DeleteAttachmentTool handles delete_work_item_attachment.
type DeleteAttachmentTool struct {
	session *session.Session
}

func NewDeleteAttachmentTool(s *session.Session) *DeleteAttachmentTool {
	return &DeleteAttachmentTool{session: s}
}

func (t *DeleteAttachmentTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_work_item_attachment",
		mcp.WithDescription("Delete an attachment blob by its ID."),
		mcp.WithString("attachmentId",
			mcp.Required(),
			mcp.Description("Attachment ID (GUID)"),
		),
		mcp.WithString("project",
			mcp.Description("Project override"),
		),
	)
}

type deleteAttachmentArgs struct {
	AttachmentID string `json:"attachmentId"`
	Project      string `json:"project"`
}

func (t *DeleteAttachmentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args deleteAttachmentArgs
	if err := req.BindArguments(&args); err != nil {
		return invalidArgument("binding arguments: %v", err), nil
	}
	if args.AttachmentID == "" {
		return invalidArgument("'attachmentId' is required"), nil
	}

	project, err := t.session.ResolveProject(ctx, args.Project)
	if err != nil {
		return errorResult(err), nil
	}

	if err := t.session.Client().DeleteAttachment(ctx, project, args.AttachmentID); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Attachment %s deleted.", args.AttachmentID)), nil
}
