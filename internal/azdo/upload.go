package azdo

import (
	"context"
	"fmt"

	"github.com/HendryAvila/azboards-mcp/internal/errs"
)

const (
	DefaultChunkSize      = 4 * 1024 * 1024
	DefaultChunkThreshold = 100 * 1024 * 1024
)

// uploadState tracks the sequencer through its protocol steps.
type uploadState int

const (
	stateIdle uploadState = iota
	stateInitiated
	stateUploading
	stateLinking
	stateDone
	stateFailed
)

func (s uploadState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateInitiated:
		return "initiated"
	case stateUploading:
		return "uploading"
	case stateLinking:
		return "linking"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

// UploadParams describes one attachment upload. Data is the decoded
// payload; chunk size and threshold fall back to the defaults when
// zero.
type UploadParams struct {
	Project    string
	WorkItemID int
	FileName   string
	Data       []byte
	Comment    string
	ChunkSize  int
	Threshold  int
}

type UploadResult struct {
	AttachmentID string `json:"attachmentId"`
	URL          string `json:"url"`
	Size         int    `json:"size"`
	Chunked      bool   `json:"chunked"`
	Chunks       int    `json:"chunks,omitempty"`
}

// chunkRange bounds one slice of the payload. End is inclusive to
// match the Content-Range wire form.
type chunkRange struct {
	Start int64
	End   int64
}

// chunkRanges partitions [0, total) into consecutive ranges of at most
// chunkSize bytes, no gaps, no overlaps, last range possibly shorter.
func chunkRanges(total int64, chunkSize int) []chunkRange {
	if total <= 0 || chunkSize <= 0 {
		return nil
	}
	var ranges []chunkRange
	for start := int64(0); start < total; start += int64(chunkSize) {
		end := start + int64(chunkSize) - 1
		if end > total-1 {
			end = total - 1
		}
		ranges = append(ranges, chunkRange{Start: start, End: end})
	}
	return ranges
}

// UploadSequencer drives one attachment upload: single-shot for small
// payloads, initiate + ordered chunks above the threshold, then an
// AttachedFile relation on the target work item.
//
// A failure mid-sequence aborts the whole operation without cleanup;
// the service owns garbage collection of orphaned partial uploads.
type UploadSequencer struct {
	client *Client
	state  uploadState
}

func NewUploadSequencer(client *Client) *UploadSequencer {
	return &UploadSequencer{client: client, state: stateIdle}
}

// State returns the sequencer's current protocol state name.
func (s *UploadSequencer) State() string { return s.state.String() }

// Run executes the full upload sequence and links the attachment to
// the work item. The sequencer is single-use.
func (s *UploadSequencer) Run(ctx context.Context, p UploadParams) (UploadResult, error) {
	if s.state != stateIdle {
		return UploadResult{}, fmt.Errorf("upload sequencer already ran (state %s)", s.state)
	}
	if p.FileName == "" {
		s.state = stateFailed
		return UploadResult{}, errs.InvalidArgument("fileName is required")
	}
	if len(p.Data) == 0 {
		s.state = stateFailed
		return UploadResult{}, errs.InvalidArgument("attachment content is empty")
	}
	chunkSize := p.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	threshold := p.Threshold
	if threshold <= 0 {
		threshold = DefaultChunkThreshold
	}

	result, err := s.upload(ctx, p, chunkSize, threshold)
	if err != nil {
		s.state = stateFailed
		return UploadResult{}, err
	}

	s.state = stateLinking
	rel := Relation{
		Rel: RelAttachedFile,
		URL: result.URL,
	}
	if p.Comment != "" {
		rel.Attributes = map[string]any{"comment": p.Comment}
	}
	if _, err := s.client.AddRelation(ctx, p.Project, p.WorkItemID, rel); err != nil {
		s.state = stateFailed
		return UploadResult{}, fmt.Errorf("linking attachment to work item %d: %w", p.WorkItemID, err)
	}

	s.state = stateDone
	return result, nil
}

func (s *UploadSequencer) upload(ctx context.Context, p UploadParams, chunkSize, threshold int) (UploadResult, error) {
	total := int64(len(p.Data))

	if len(p.Data) <= threshold {
		ref, err := s.client.CreateAttachment(ctx, p.Project, p.FileName, p.Data)
		if err != nil {
			return UploadResult{}, fmt.Errorf("uploading attachment: %w", err)
		}
		url := ref.URL
		if url == "" {
			url = s.client.AttachmentURL(p.Project, ref.ID, p.FileName)
		}
		return UploadResult{AttachmentID: ref.ID, URL: url, Size: len(p.Data)}, nil
	}

	ref, err := s.client.StartChunkedAttachment(ctx, p.Project, p.FileName)
	if err != nil {
		return UploadResult{}, fmt.Errorf("initiating chunked upload: %w", err)
	}
	s.state = stateInitiated

	ranges := chunkRanges(total, chunkSize)
	s.state = stateUploading
	for i, r := range ranges {
		chunk := p.Data[r.Start : r.End+1]
		if err := s.client.UploadAttachmentChunk(ctx, p.Project, ref.ID, chunk, r.Start, r.End, total); err != nil {
			return UploadResult{}, fmt.Errorf("uploading chunk %d/%d (bytes %d-%d): %w", i+1, len(ranges), r.Start, r.End, err)
		}
	}

	// The final URL is synthesized from the known ID; there is no
	// read-back after the last chunk.
	return UploadResult{
		AttachmentID: ref.ID,
		URL:          s.client.AttachmentURL(p.Project, ref.ID, p.FileName),
		Size:         len(p.Data),
		Chunked:      true,
		Chunks:       len(ranges),
	}, nil
}
