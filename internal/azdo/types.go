package azdo

// WorkItem is the raw work item document as returned by the service.
// Fields is an open mapping from field reference name to value; no
// local schema validation is applied.
type WorkItem struct {
	ID        int            `json:"id"`
	Rev       int            `json:"rev"`
	Fields    map[string]any `json:"fields"`
	Relations []Relation     `json:"relations,omitempty"`
	URL       string         `json:"url"`
}

type WorkItemReference struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

type WiqlRequest struct {
	Query string `json:"query"`
}

type WiqlResponse struct {
	QueryType string              `json:"queryType"`
	WorkItems []WorkItemReference `json:"workItems"`
}

type WorkItemsBatchRequest struct {
	IDs    []int    `json:"ids"`
	Fields []string `json:"fields,omitempty"`
}

type workItemListResponse struct {
	Count int        `json:"count"`
	Value []WorkItem `json:"value"`
}

type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	State       string `json:"state,omitempty"`
	URL         string `json:"url,omitempty"`
}

type projectListResponse struct {
	Count int       `json:"count"`
	Value []Project `json:"value"`
}

// PatchOp is a single JSON Patch operation. Mutations are expressed as
// application/json-patch+json documents of these.
type PatchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// Relation is a typed edge on a work item: an artifact link (commit),
// a hierarchy link (parent) or an attached file. Relations are only
// ever appended by this server.
type Relation struct {
	Rel        string         `json:"rel"`
	URL        string         `json:"url"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

const (
	RelAttachedFile = "AttachedFile"
	RelArtifactLink = "ArtifactLink"
	RelParent       = "System.LinkTypes.Hierarchy-Reverse"
)

// AttachmentRef identifies an uploaded attachment blob.
type AttachmentRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Comment struct {
	ID         int    `json:"id"`
	WorkItemID int    `json:"workItemId"`
	Text       string `json:"text"`
	URL        string `json:"url,omitempty"`
}

type remoteError struct {
	Message   string `json:"message"`
	TypeKey   string `json:"typeKey,omitempty"`
	ErrorCode int    `json:"errorCode,omitempty"`
}
