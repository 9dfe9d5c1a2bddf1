// Package output shapes raw work item documents into the text and
// JSON payloads returned by the tools.
package output

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/HendryAvila/azboards-mcp/internal/azdo"
)

// customFieldPrefix is stripped when re-keying caller-visible custom
// fields.
const customFieldPrefix = "Custom."

// WorkItem is the normalized, caller-facing record.
type WorkItem struct {
	ID           int            `json:"id"`
	Type         string         `json:"type,omitempty"`
	State        string         `json:"state,omitempty"`
	Title        string         `json:"title,omitempty"`
	AssignedTo   string         `json:"assignedTo,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	CreatedDate  string         `json:"createdDate,omitempty"`
	CreatedBy    string         `json:"createdBy,omitempty"`
	ChangedDate  string         `json:"changedDate,omitempty"`
	ChangedBy    string         `json:"changedBy,omitempty"`
	Link         string         `json:"link,omitempty"`
	CustomFields map[string]any `json:"customFields,omitempty"`
}

// Normalize extracts the well-known fields of a raw work item and
// re-keys custom fields by stripping the namespace prefix.
func Normalize(raw azdo.WorkItem, webLink string) WorkItem {
	fields := raw.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	wi := WorkItem{
		ID:          raw.ID,
		Type:        fieldString(fields, "System.WorkItemType"),
		State:       fieldString(fields, "System.State"),
		Title:       fieldString(fields, "System.Title"),
		AssignedTo:  IdentityDisplayName(fields["System.AssignedTo"]),
		Tags:        splitTags(fieldString(fields, "System.Tags")),
		CreatedDate: fieldString(fields, "System.CreatedDate"),
		CreatedBy:   IdentityDisplayName(fields["System.CreatedBy"]),
		ChangedDate: fieldString(fields, "System.ChangedDate"),
		ChangedBy:   IdentityDisplayName(fields["System.ChangedBy"]),
		Link:        webLink,
	}
	for name, value := range fields {
		if strings.HasPrefix(name, customFieldPrefix) {
			if wi.CustomFields == nil {
				wi.CustomFields = map[string]any{}
			}
			wi.CustomFields[strings.TrimPrefix(name, customFieldPrefix)] = value
		}
	}
	return wi
}

// Summary renders a short human-readable block for one work item.
func Summary(wi WorkItem) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Work Item #%d", wi.ID)
	if wi.Type != "" {
		fmt.Fprintf(&sb, " (%s)", wi.Type)
	}
	sb.WriteString("\n")
	writeLine(&sb, "Title", wi.Title)
	writeLine(&sb, "State", wi.State)
	writeLine(&sb, "Assigned To", wi.AssignedTo)
	if len(wi.Tags) > 0 {
		writeLine(&sb, "Tags", strings.Join(wi.Tags, "; "))
	}
	if wi.CreatedDate != "" {
		writeLine(&sb, "Created", joinNonEmpty(wi.CreatedDate, wi.CreatedBy, " by "))
	}
	if wi.ChangedDate != "" {
		writeLine(&sb, "Changed", joinNonEmpty(wi.ChangedDate, wi.ChangedBy, " by "))
	}
	writeLine(&sb, "Link", wi.Link)
	if len(wi.CustomFields) > 0 {
		names := make([]string, 0, len(wi.CustomFields))
		for name := range wi.CustomFields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			writeLine(&sb, name, fmt.Sprintf("%v", wi.CustomFields[name]))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// JSON pretty-prints any value for a text payload.
func JSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("marshaling response: %v", err)
	}
	return string(data)
}

// IdentityDisplayName extracts the display name of an identity field,
// which the service returns either as a plain string or as an object.
func IdentityDisplayName(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if dn, ok := val["displayName"].(string); ok && dn != "" {
			return dn
		}
		if un, ok := val["uniqueName"].(string); ok && un != "" {
			return un
		}
	}
	return ""
}

func splitTags(tags string) []string {
	if tags == "" {
		return nil
	}
	var out []string
	for _, tag := range strings.Split(tags, ";") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func fieldString(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func writeLine(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "%s: %s\n", label, value)
}

func joinNonEmpty(a, b, sep string) string {
	if b == "" {
		return a
	}
	return a + sep + b
}
