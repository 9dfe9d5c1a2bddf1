package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/azboards-mcp/internal/azdo"
)

func newSessionWithServer(t *testing.T, pinned string, handler http.Handler) (*Session, *int) {
	t.Helper()
	fetches := new(int)
	counting := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*fetches++
		handler.ServeHTTP(w, r)
	})
	ts := httptest.NewServer(counting)
	t.Cleanup(ts.Close)
	client, err := azdo.NewClient(ts.URL, "pat", "7.1", false, nil)
	require.NoError(t, err)
	return New(client, pinned), fetches
}

func projectListHandler(names ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		type project struct {
			Name string `json:"name"`
		}
		projects := make([]project, len(names))
		for i, n := range names {
			projects[i] = project{Name: n}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"count": len(projects), "value": projects})
	})
}

func TestDefaultProject_FirstProjectCached(t *testing.T) {
	sess, fetches := newSessionWithServer(t, "", projectListHandler("Alpha", "Beta"))

	name, err := sess.DefaultProject(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Alpha", name)
	assert.Equal(t, 1, *fetches)

	// Second resolution reuses the cached value without a fetch.
	name, err = sess.DefaultProject(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Alpha", name)
	assert.Equal(t, 1, *fetches)
}

func TestDefaultProject_PinnedSkipsFetch(t *testing.T) {
	sess, fetches := newSessionWithServer(t, "Pinned", projectListHandler("Alpha"))

	name, err := sess.DefaultProject(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Pinned", name)
	assert.Equal(t, 0, *fetches)
}

func TestDefaultProject_EmptyOrganization(t *testing.T) {
	sess, _ := newSessionWithServer(t, "", projectListHandler())

	_, err := sess.DefaultProject(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no projects")
}

func TestDefaultProject_FailureNotCached(t *testing.T) {
	fail := true
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		projectListHandler("Alpha").ServeHTTP(w, r)
	})
	sess, fetches := newSessionWithServer(t, "", handler)

	_, err := sess.DefaultProject(context.Background())
	require.Error(t, err)

	fail = false
	name, err := sess.DefaultProject(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Alpha", name)
	assert.Equal(t, 2, *fetches)
}

func TestResolveProject_Override(t *testing.T) {
	sess, fetches := newSessionWithServer(t, "", projectListHandler("Alpha"))

	name, err := sess.ResolveProject(context.Background(), "Custom")
	require.NoError(t, err)
	assert.Equal(t, "Custom", name)
	assert.Equal(t, 0, *fetches, "override must not trigger resolution")

	name, err = sess.ResolveProject(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", name)
}
