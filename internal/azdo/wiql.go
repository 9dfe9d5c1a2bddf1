package azdo

import (
	"fmt"
	"strings"
)

// DefaultSearchFields is the field set fetched when the caller does
// not name one explicitly.
var DefaultSearchFields = []string{
	"System.WorkItemType",
	"System.State",
	"System.Title",
	"System.AssignedTo",
	"System.Tags",
	"System.CreatedDate",
	"System.CreatedBy",
	"System.ChangedDate",
	"System.ChangedBy",
}

// SearchFilter holds the optional predicates of one search call. The
// zero value produces a query scoped to the project alone.
type SearchFilter struct {
	Project      string
	Text         string
	Type         string
	State        string
	AssignedTo   string
	Tags         string // semicolon-delimited; matches items carrying any listed tag
	CreatedAfter string // ISO 8601
	UpdatedAfter string // ISO 8601
	OrderBy      string // field reference name
	Descending   bool
}

// predicate is one immutable WHERE clause contribution: a field, an
// operator and an already-escaped value, or a pre-rendered group for
// the disjunction cases.
type predicate struct {
	field string
	op    string
	value string
	group string
}

func (p predicate) render() string {
	if p.group != "" {
		return p.group
	}
	return fmt.Sprintf("[%s] %s '%s'", p.field, p.op, p.value)
}

func fieldPredicate(field, op, value string) predicate {
	return predicate{field: field, op: op, value: escapeWiql(value)}
}

// escapeWiql doubles embedded single quotes. This is the only
// sanitization applied: WIQL has no parameter binding, so values are
// interpolated and injection beyond quotes is an accepted limitation.
func escapeWiql(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

// BuildWiql renders the filter into a WIQL SELECT statement. The
// project-scope predicate is always present; every other filter
// contributes zero or one predicate, all joined with AND.
func BuildWiql(f SearchFilter) string {
	preds := []predicate{
		fieldPredicate("System.TeamProject", "=", f.Project),
	}

	if text := strings.TrimSpace(f.Text); text != "" {
		preds = append(preds, textPredicate(text))
	}
	if f.Type != "" {
		preds = append(preds, fieldPredicate("System.WorkItemType", "=", f.Type))
	}
	if f.State != "" {
		preds = append(preds, fieldPredicate("System.State", "=", f.State))
	}
	if f.AssignedTo != "" {
		preds = append(preds, fieldPredicate("System.AssignedTo", "=", f.AssignedTo))
	}
	if tagPred, ok := tagsPredicate(f.Tags); ok {
		preds = append(preds, tagPred)
	}
	if f.CreatedAfter != "" {
		preds = append(preds, fieldPredicate("System.CreatedDate", ">=", f.CreatedAfter))
	}
	if f.UpdatedAfter != "" {
		preds = append(preds, fieldPredicate("System.ChangedDate", ">=", f.UpdatedAfter))
	}

	clauses := make([]string, len(preds))
	for i, p := range preds {
		clauses[i] = p.render()
	}

	orderField := f.OrderBy
	if orderField == "" {
		orderField = "System.ChangedDate"
	}
	direction := "ASC"
	if f.Descending {
		direction = "DESC"
	}

	return fmt.Sprintf("SELECT [System.Id] FROM WorkItems WHERE %s ORDER BY [%s] %s",
		strings.Join(clauses, " AND "), orderField, direction)
}

// textPredicate matches free text against title and description, and
// additionally by exact ID when the text is all digits.
func textPredicate(text string) predicate {
	escaped := escapeWiql(text)
	parts := []string{
		fmt.Sprintf("[System.Title] CONTAINS '%s'", escaped),
		fmt.Sprintf("[System.Description] CONTAINS '%s'", escaped),
	}
	if isAllDigits(text) {
		parts = append(parts, fmt.Sprintf("[System.Id] = %s", text))
	}
	return predicate{group: "(" + strings.Join(parts, " OR ") + ")"}
}

// tagsPredicate expands a semicolon-delimited tag list into a
// disjunction: the item matches if it carries any listed tag.
func tagsPredicate(tags string) (predicate, bool) {
	var parts []string
	for _, tag := range strings.Split(tags, ";") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("[System.Tags] CONTAINS '%s'", escapeWiql(tag)))
	}
	if len(parts) == 0 {
		return predicate{}, false
	}
	return predicate{group: "(" + strings.Join(parts, " OR ") + ")"}, true
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
