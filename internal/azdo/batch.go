package azdo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/HendryAvila/azboards-mcp/internal/errs"
)

// BatchOperation is one entry of a batch update call: a create, a
// partial update or a delete, translated 1:1 into an inner request of
// the $batch envelope. It exists only for the duration of one call.
type BatchOperation struct {
	Method     string         `json:"method"`
	WorkItemID int            `json:"workItemId,omitempty"`
	Type       string         `json:"type,omitempty"`
	Project    string         `json:"project,omitempty"`
	Fields     map[string]any `json:"fields,omitempty"`
}

// BatchRequest is one inner request of the multi-request envelope.
type BatchRequest struct {
	Method  string            `json:"method"`
	URI     string            `json:"uri"`
	Headers map[string]string `json:"headers"`
	Body    any               `json:"body,omitempty"`
}

type BatchResponse struct {
	Code    int               `json:"code"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    json.RawMessage   `json:"body,omitempty"`
}

type batchResponseEnvelope struct {
	Count int             `json:"count"`
	Value []BatchResponse `json:"value"`
}

// BatchOptions carries the two process-wide override flags applied to
// every inner request.
type BatchOptions struct {
	BypassRules           bool
	SuppressNotifications bool
}

// ValidateBatchOperations checks the method-specific required fields
// of every operation before any request is built, so a malformed entry
// fails the whole call with a positional message instead of submitting
// a partially invalid batch.
func ValidateBatchOperations(ops []BatchOperation) error {
	if len(ops) == 0 {
		return errs.InvalidArgument("operations must not be empty")
	}
	for i, op := range ops {
		switch strings.ToUpper(op.Method) {
		case http.MethodPatch:
			if op.WorkItemID <= 0 {
				return errs.InvalidArgument("operation %d: workItemId is required for PATCH", i)
			}
			if len(op.Fields) == 0 {
				return errs.InvalidArgument("operation %d: fields are required for PATCH", i)
			}
		case http.MethodPost:
			if op.Type == "" {
				return errs.InvalidArgument("operation %d: type is required for POST", i)
			}
			if len(op.Fields) == 0 {
				return errs.InvalidArgument("operation %d: fields are required for POST", i)
			}
		case http.MethodDelete:
			if op.WorkItemID <= 0 {
				return errs.InvalidArgument("operation %d: workItemId is required for DELETE", i)
			}
		case "":
			return errs.InvalidArgument("operation %d: method is required (PATCH, POST or DELETE)", i)
		default:
			return errs.InvalidArgument("operation %d: unsupported method %q", i, op.Method)
		}
	}
	return nil
}

// BuildBatchRequests maps validated operations into inner requests.
// defaultProject scopes creates whose operation has no project of its
// own; updates and deletes address items by ID alone.
func (c *Client) BuildBatchRequests(ops []BatchOperation, defaultProject string, opts BatchOptions) []BatchRequest {
	params := url.Values{}
	params.Set("api-version", c.apiVersion)
	if opts.BypassRules {
		params.Set("bypassRules", "true")
	}
	if opts.SuppressNotifications {
		params.Set("suppressNotifications", "true")
	}
	query := params.Encode()

	reqs := make([]BatchRequest, 0, len(ops))
	for _, op := range ops {
		method := strings.ToUpper(op.Method)
		switch method {
		case http.MethodPatch:
			reqs = append(reqs, BatchRequest{
				Method:  method,
				URI:     fmt.Sprintf("/_apis/wit/workitems/%d?%s", op.WorkItemID, query),
				Headers: map[string]string{"Content-Type": "application/json-patch+json"},
				Body:    fieldsToPatch(op.Fields),
			})
		case http.MethodPost:
			project := op.Project
			if project == "" {
				project = defaultProject
			}
			reqs = append(reqs, BatchRequest{
				Method: method,
				URI: fmt.Sprintf("/%s/_apis/wit/workitems/$%s?%s",
					url.PathEscape(project), url.PathEscape(op.Type), query),
				Headers: map[string]string{"Content-Type": "application/json-patch+json"},
				Body:    fieldsToPatch(op.Fields),
			})
		case http.MethodDelete:
			reqs = append(reqs, BatchRequest{
				Method:  method,
				URI:     fmt.Sprintf("/_apis/wit/workitems/%d?%s", op.WorkItemID, query),
				Headers: map[string]string{"Content-Type": "application/json"},
			})
		}
	}
	return reqs
}

// ExecuteBatch posts the composite envelope and returns the per-entry
// responses in submission order.
func (c *Client) ExecuteBatch(ctx context.Context, reqs []BatchRequest) ([]BatchResponse, error) {
	body, err := json.Marshal(reqs)
	if err != nil {
		return nil, err
	}
	respBody, err := c.do(ctx, http.MethodPost, "_apis/wit/$batch", nil, body, "application/json")
	if err != nil {
		return nil, err
	}
	var envelope batchResponseEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("decoding batch response: %w", err)
	}
	return envelope.Value, nil
}

// CountBatchOutcomes tallies 2xx entries as successes and everything
// else as failures. Per-operation detail is intentionally dropped.
func CountBatchOutcomes(resps []BatchResponse) (succeeded, failed int) {
	for _, r := range resps {
		if r.Code >= 200 && r.Code < 300 {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// fieldsToPatch converts a field map into add operations. "add" acts
// as upsert in JSON Patch as the service implements it.
func fieldsToPatch(fields map[string]any) []PatchOp {
	ops := make([]PatchOp, 0, len(fields))
	for _, name := range sortedKeys(fields) {
		ops = append(ops, PatchOp{Op: "add", Path: "/fields/" + name, Value: fields[name]})
	}
	return ops
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Deterministic patch order keeps request bodies stable.
	sort.Strings(keys)
	return keys
}
