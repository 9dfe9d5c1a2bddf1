// Package session holds the per-process context shared by all tool
// handlers: the authenticated client and the lazily resolved default
// project. It is the only cross-call state in the server.
package session

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/HendryAvila/azboards-mcp/internal/azdo"
	"github.com/HendryAvila/azboards-mcp/internal/errs"
)

type Session struct {
	client *azdo.Client
	pinned string

	group singleflight.Group
	mu    sync.RWMutex
	// resolved caches the default project name once fetched.
	resolved string
}

// New wraps the client. pinnedProject, when non-empty, short-circuits
// default-project resolution entirely.
func New(client *azdo.Client, pinnedProject string) *Session {
	return &Session{client: client, pinned: pinnedProject}
}

func (s *Session) Client() *azdo.Client { return s.client }

// DefaultProject returns the configured project, or the first project
// of the organization fetched once for the process lifetime.
// Concurrent first callers share one fetch.
func (s *Session) DefaultProject(ctx context.Context) (string, error) {
	if s.pinned != "" {
		return s.pinned, nil
	}

	s.mu.RLock()
	cached := s.resolved
	s.mu.RUnlock()
	if cached != "" {
		return cached, nil
	}

	name, err, _ := s.group.Do("default-project", func() (any, error) {
		projects, err := s.client.ListProjects(ctx)
		if err != nil {
			return "", err
		}
		if len(projects) == 0 {
			return "", errs.New(errs.CodeConfigMissing, "organization has no projects; set AZBOARDS_PROJECT", nil)
		}
		s.mu.Lock()
		s.resolved = projects[0].Name
		s.mu.Unlock()
		return projects[0].Name, nil
	})
	if err != nil {
		return "", err
	}
	return name.(string), nil
}

// ResolveProject returns the override when given, otherwise the
// session default.
func (s *Session) ResolveProject(ctx context.Context, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	return s.DefaultProject(ctx)
}
