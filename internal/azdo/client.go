// Package azdo is the Azure DevOps Work Item Tracking REST client.
//
// It owns request construction (auth header, api-version, content
// types), uniform error translation, the WIQL query builder and the
// chunked attachment upload sequencer. It holds no state besides the
// HTTP client itself; callers pass the project scope on every call.
package azdo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HendryAvila/azboards-mcp/internal/errs"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL    string
	apiVersion string
	authHeader string
	sessionID  string
	client     *http.Client
	verbose    bool
	log        io.Writer
}

// NewClient builds an authenticated client for one organization.
// The basic-auth header is derived from the PAT once and reused for
// every request; sessionID correlates all requests of this process on
// the service side.
func NewClient(orgURL, pat, apiVersion string, verbose bool, log io.Writer) (*Client, error) {
	if orgURL == "" {
		return nil, errs.New(errs.CodeConfigMissing, "organization URL is required", nil)
	}
	if pat == "" {
		return nil, errs.New(errs.CodeConfigMissing, "PAT is required", nil)
	}
	return &Client{
		baseURL:    strings.TrimRight(orgURL, "/"),
		apiVersion: apiVersion,
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+pat)),
		sessionID:  uuid.NewString(),
		client:     &http.Client{Timeout: defaultTimeout},
		verbose:    verbose,
		log:        log,
	}, nil
}

// OrgURL returns the organization base URL without a trailing slash.
func (c *Client) OrgURL() string { return c.baseURL }

// ListProjects returns all projects of the organization in service order.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	respBody, err := c.do(ctx, http.MethodGet, "_apis/projects", nil, nil, "")
	if err != nil {
		return nil, err
	}
	var resp projectListResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decoding project list: %w", err)
	}
	return resp.Value, nil
}

// GetProject fetches one project by name or ID.
func (c *Client) GetProject(ctx context.Context, nameOrID string) (Project, error) {
	path := fmt.Sprintf("_apis/projects/%s", url.PathEscape(nameOrID))
	respBody, err := c.do(ctx, http.MethodGet, path, nil, nil, "")
	if err != nil {
		return Project{}, err
	}
	var p Project
	if err := json.Unmarshal(respBody, &p); err != nil {
		return Project{}, fmt.Errorf("decoding project: %w", err)
	}
	return p, nil
}

func (c *Client) GetWorkItem(ctx context.Context, project string, id int, fields []string, expandRelations bool) (WorkItem, error) {
	path := fmt.Sprintf("%s/_apis/wit/workitems/%d", url.PathEscape(project), id)
	params := url.Values{}
	if len(fields) > 0 {
		params.Set("fields", strings.Join(fields, ","))
	}
	if expandRelations {
		params.Set("$expand", "relations")
	}
	respBody, err := c.do(ctx, http.MethodGet, path, params, nil, "")
	if err != nil {
		return WorkItem{}, err
	}
	return decodeWorkItem(respBody)
}

// GetWorkItemsBatch fetches up to 200 work items in one call. The
// service returns full field data, unlike WIQL which returns only
// references.
func (c *Client) GetWorkItemsBatch(ctx context.Context, project string, ids []int, fields []string) ([]WorkItem, error) {
	path := fmt.Sprintf("%s/_apis/wit/workitemsbatch", url.PathEscape(project))
	body, err := json.Marshal(WorkItemsBatchRequest{IDs: ids, Fields: fields})
	if err != nil {
		return nil, err
	}
	respBody, err := c.do(ctx, http.MethodPost, path, nil, body, "application/json")
	if err != nil {
		return nil, err
	}
	var resp workItemListResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decoding work item batch: %w", err)
	}
	return resp.Value, nil
}

func (c *Client) CreateWorkItem(ctx context.Context, project, workItemType string, patch []PatchOp) (WorkItem, error) {
	path := fmt.Sprintf("%s/_apis/wit/workitems/$%s", url.PathEscape(project), url.PathEscape(workItemType))
	return c.patchRequest(ctx, http.MethodPost, path, patch)
}

func (c *Client) UpdateWorkItem(ctx context.Context, project string, id int, patch []PatchOp) (WorkItem, error) {
	path := fmt.Sprintf("%s/_apis/wit/workitems/%d", url.PathEscape(project), id)
	return c.patchRequest(ctx, http.MethodPatch, path, patch)
}

// DeleteWorkItem soft-deletes by default (recycle bin). With destroy
// the item is permanently removed and cannot be restored.
func (c *Client) DeleteWorkItem(ctx context.Context, project string, id int, destroy bool) error {
	path := fmt.Sprintf("%s/_apis/wit/workitems/%d", url.PathEscape(project), id)
	params := url.Values{}
	if destroy {
		params.Set("destroy", "true")
	}
	_, err := c.do(ctx, http.MethodDelete, path, params, nil, "")
	return err
}

// AddRelation appends one relation to a work item. Relations are never
// edited or removed through this client.
func (c *Client) AddRelation(ctx context.Context, project string, id int, rel Relation) (WorkItem, error) {
	patch := []PatchOp{{Op: "add", Path: "/relations/-", Value: rel}}
	return c.UpdateWorkItem(ctx, project, id, patch)
}

// Wiql executes a query and returns matching references in query order.
func (c *Client) Wiql(ctx context.Context, project, query string) (WiqlResponse, error) {
	path := fmt.Sprintf("%s/_apis/wit/wiql", url.PathEscape(project))
	body, err := json.Marshal(WiqlRequest{Query: query})
	if err != nil {
		return WiqlResponse{}, err
	}
	respBody, err := c.do(ctx, http.MethodPost, path, nil, body, "application/json")
	if err != nil {
		return WiqlResponse{}, err
	}
	var resp WiqlResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return WiqlResponse{}, fmt.Errorf("decoding WIQL response: %w", err)
	}
	return resp, nil
}

func (c *Client) AddComment(ctx context.Context, project string, id int, text string) (Comment, error) {
	path := fmt.Sprintf("%s/_apis/wit/workItems/%d/comments", url.PathEscape(project), id)
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return Comment{}, err
	}
	params := url.Values{}
	params.Set("api-version", c.apiVersion+"-preview.3")
	respBody, err := c.doRaw(ctx, http.MethodPost, path, params, body, "application/json")
	if err != nil {
		return Comment{}, err
	}
	var comment Comment
	if err := json.Unmarshal(respBody, &comment); err != nil {
		return Comment{}, fmt.Errorf("decoding comment: %w", err)
	}
	return comment, nil
}

// CreateAttachment uploads a whole payload in one octet-stream request.
func (c *Client) CreateAttachment(ctx context.Context, project, fileName string, data []byte) (AttachmentRef, error) {
	path := fmt.Sprintf("%s/_apis/wit/attachments", url.PathEscape(project))
	params := url.Values{}
	params.Set("fileName", fileName)
	respBody, err := c.do(ctx, http.MethodPost, path, params, data, "application/octet-stream")
	if err != nil {
		return AttachmentRef{}, err
	}
	return decodeAttachmentRef(respBody)
}

// StartChunkedAttachment reserves an attachment ID for a chunked
// upload. The body is empty; chunks follow via UploadAttachmentChunk.
func (c *Client) StartChunkedAttachment(ctx context.Context, project, fileName string) (AttachmentRef, error) {
	path := fmt.Sprintf("%s/_apis/wit/attachments", url.PathEscape(project))
	params := url.Values{}
	params.Set("fileName", fileName)
	params.Set("uploadType", "chunked")
	respBody, err := c.do(ctx, http.MethodPost, path, params, nil, "application/octet-stream")
	if err != nil {
		return AttachmentRef{}, err
	}
	return decodeAttachmentRef(respBody)
}

// UploadAttachmentChunk sends the byte range [start, end] of a chunked
// upload. Chunks must arrive in ascending order: each one extends the
// partial object left by the previous request.
func (c *Client) UploadAttachmentChunk(ctx context.Context, project, attachmentID string, chunk []byte, start, end, total int64) error {
	path := fmt.Sprintf("%s/_apis/wit/attachments/%s", url.PathEscape(project), url.PathEscape(attachmentID))
	params := url.Values{}
	params.Set("uploadType", "chunked")
	params.Set("api-version", c.apiVersion)
	fullURL := c.joinURL(path) + "?" + params.Encode()

	req, err := c.newRequest(ctx, http.MethodPut, fullURL, chunk, "application/octet-stream")
	if err != nil {
		return err
	}
	req.Header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, total))
	req.ContentLength = int64(len(chunk))
	_, err = c.execute(req, chunk)
	return err
}

// AttachmentURL synthesizes the API URL of an uploaded attachment.
// Chunked uploads never read the final object back; this URL is what
// gets linked into the work item.
func (c *Client) AttachmentURL(project, attachmentID, fileName string) string {
	return fmt.Sprintf("%s/%s/_apis/wit/attachments/%s?fileName=%s",
		c.baseURL, url.PathEscape(project), url.PathEscape(attachmentID), url.QueryEscape(fileName))
}

func (c *Client) DeleteAttachment(ctx context.Context, project, attachmentID string) error {
	path := fmt.Sprintf("%s/_apis/wit/attachments/%s", url.PathEscape(project), url.PathEscape(attachmentID))
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil, "")
	return err
}

// WorkItemWebURL returns the browser link for a work item.
func (c *Client) WorkItemWebURL(project string, id int) string {
	return fmt.Sprintf("%s/%s/_workitems/edit/%d", c.baseURL, url.PathEscape(project), id)
}

func (c *Client) patchRequest(ctx context.Context, method, path string, patch []PatchOp) (WorkItem, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return WorkItem{}, err
	}
	respBody, err := c.do(ctx, method, path, nil, body, "application/json-patch+json")
	if err != nil {
		return WorkItem{}, err
	}
	return decodeWorkItem(respBody)
}

// do issues one request with the default api-version applied.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body []byte, contentType string) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	if params.Get("api-version") == "" {
		params.Set("api-version", c.apiVersion)
	}
	return c.doRaw(ctx, method, path, params, body, contentType)
}

func (c *Client) doRaw(ctx context.Context, method, path string, params url.Values, body []byte, contentType string) ([]byte, error) {
	fullURL := c.joinURL(path)
	if len(params) > 0 {
		fullURL = fullURL + "?" + params.Encode()
	}
	req, err := c.newRequest(ctx, method, fullURL, body, contentType)
	if err != nil {
		return nil, err
	}
	return c.execute(req, body)
}

func (c *Client) execute(req *http.Request, body []byte) ([]byte, error) {
	if c.verbose {
		c.logRequest(req, body)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errs.Remote(fmt.Sprintf("request to %s failed: %v", req.URL.Host, err), nil)
	}
	respBody, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, errs.Remote("reading response body", readErr.Error())
	}
	if c.verbose {
		c.logResponse(resp, respBody)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, remoteFault(resp.StatusCode, respBody)
	}
	return respBody, nil
}

func (c *Client) newRequest(ctx context.Context, method, fullURL string, body []byte, contentType string) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("X-TFS-Session", c.sessionID)
	return req, nil
}

func (c *Client) joinURL(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// remoteFault extracts the service's message field when the error body
// is the usual JSON envelope, falling back to a truncated raw body.
func remoteFault(status int, body []byte) error {
	var re remoteError
	if err := json.Unmarshal(body, &re); err == nil && re.Message != "" {
		return errs.Remote(fmt.Sprintf("remote API error (status %d): %s", status, re.Message), re.TypeKey)
	}
	return errs.Remote(fmt.Sprintf("remote API error (status %d)", status), truncate(string(body), 512))
}

func decodeWorkItem(body []byte) (WorkItem, error) {
	var wi WorkItem
	if err := json.Unmarshal(body, &wi); err != nil {
		return WorkItem{}, fmt.Errorf("decoding work item: %w", err)
	}
	return wi, nil
}

func decodeAttachmentRef(body []byte) (AttachmentRef, error) {
	var ref AttachmentRef
	if err := json.Unmarshal(body, &ref); err != nil {
		return AttachmentRef{}, fmt.Errorf("decoding attachment reference: %w", err)
	}
	return ref, nil
}

func (c *Client) logRequest(req *http.Request, body []byte) {
	if c.log == nil {
		return
	}
	fmt.Fprintf(c.log, "> %s %s\n", req.Method, req.URL.String())
	if cr := req.Header.Get("Content-Range"); cr != "" {
		fmt.Fprintf(c.log, "> Content-Range: %s\n", cr)
	}
	if len(body) > 0 && !strings.HasPrefix(req.Header.Get("Content-Type"), "application/octet-stream") {
		fmt.Fprintf(c.log, "> body: %s\n", truncate(string(body), 2048))
	}
}

func (c *Client) logResponse(resp *http.Response, body []byte) {
	if c.log == nil {
		return
	}
	fmt.Fprintf(c.log, "< %s\n", resp.Status)
	if len(body) > 0 {
		fmt.Fprintf(c.log, "< body: %s\n", truncate(string(body), 2048))
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
