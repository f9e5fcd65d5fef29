package nativebridge

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var binaryBytes = []byte("\x7fELF native addon fixture")

// newProject lays out a desktop project with a preload entry importing one
// native binary and returns its symlink-free root.
func newProject(t *testing.T, preload string) string {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "preload", "index.js"), preload)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "preload", "bindings"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "preload", "bindings", "foo.node"), binaryBytes, 0o644))

	return root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) observe(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) count(t Transition) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Transition == t {
			n++
		}
	}
	return n
}

func (r *eventRecorder) resolvesFor(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Transition != TransitionRedirect && e.Transition != TransitionTerminal {
			continue
		}
		if e.To.Path == path {
			n++
		}
	}
	return n
}
