package azdo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildWiql_ProjectScopeAlwaysPresent(t *testing.T) {
	query := BuildWiql(SearchFilter{Project: "Fabrikam", Descending: true})

	assert.Contains(t, query, "[System.TeamProject] = 'Fabrikam'")
	assert.Contains(t, query, "ORDER BY [System.ChangedDate] DESC")
	// No other predicate sneaks in.
	assert.NotContains(t, query, "CONTAINS")
}

func TestBuildWiql_AllFilters(t *testing.T) {
	query := BuildWiql(SearchFilter{
		Project:      "Fabrikam",
		Text:         "login crash",
		Type:         "Bug",
		State:        "Active",
		AssignedTo:   "dev@example.com",
		Tags:         "frontend;urgent",
		CreatedAfter: "2026-01-01T00:00:00Z",
		UpdatedAfter: "2026-02-01T00:00:00Z",
		Descending:   true,
	})

	assert.Contains(t, query, "[System.Title] CONTAINS 'login crash'")
	assert.Contains(t, query, "[System.Description] CONTAINS 'login crash'")
	assert.Contains(t, query, "[System.WorkItemType] = 'Bug'")
	assert.Contains(t, query, "[System.State] = 'Active'")
	assert.Contains(t, query, "[System.AssignedTo] = 'dev@example.com'")
	assert.Contains(t, query, "[System.CreatedDate] >= '2026-01-01T00:00:00Z'")
	assert.Contains(t, query, "[System.ChangedDate] >= '2026-02-01T00:00:00Z'")
}

func TestBuildWiql_TagDisjunction(t *testing.T) {
	tests := []struct {
		name string
		tags string
		want int
	}{
		{"single tag", "frontend", 1},
		{"three tags", "a;b;c", 3},
		{"empty segments skipped", "a;;b; ", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := BuildWiql(SearchFilter{Project: "P", Tags: tt.tags})
			got := strings.Count(query, "[System.Tags] CONTAINS")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildWiql_TagsOnlyWhitespaceAddsNoPredicate(t *testing.T) {
	query := BuildWiql(SearchFilter{Project: "P", Tags: " ; ; "})
	assert.NotContains(t, query, "System.Tags")
}

func TestBuildWiql_QuoteEscaping(t *testing.T) {
	query := BuildWiql(SearchFilter{
		Project: "O'Brien's Project",
		State:   "Won't Fix",
	})

	assert.Contains(t, query, "[System.TeamProject] = 'O''Brien''s Project'")
	assert.Contains(t, query, "[System.State] = 'Won''t Fix'")
}

func TestBuildWiql_NumericTextMatchesID(t *testing.T) {
	query := BuildWiql(SearchFilter{Project: "P", Text: "1234"})
	assert.Contains(t, query, "[System.Id] = 1234")

	query = BuildWiql(SearchFilter{Project: "P", Text: "bug 1234"})
	assert.NotContains(t, query, "[System.Id]")
}

func TestBuildWiql_OrderBy(t *testing.T) {
	query := BuildWiql(SearchFilter{Project: "P", OrderBy: "System.CreatedDate"})
	assert.True(t, strings.HasSuffix(query, "ORDER BY [System.CreatedDate] ASC"))

	query = BuildWiql(SearchFilter{Project: "P", OrderBy: "System.CreatedDate", Descending: true})
	assert.True(t, strings.HasSuffix(query, "ORDER BY [System.CreatedDate] DESC"))
}

func TestDefaultSearchFields_Count(t *testing.T) {
	assert.Len(t, DefaultSearchFields, 9)
}

func TestIsAllDigits(t *testing.T) {
	assert.True(t, isAllDigits("42"))
	assert.False(t, isAllDigits(""))
	assert.False(t, isAllDigits("42a"))
	assert.False(t, isAllDigits("-42"))
}
