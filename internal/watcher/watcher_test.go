package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(42), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestEventTypeFromOp(t *testing.T) {
	assert.Equal(t, EventTypeCreated, eventType(fsnotify.Create|fsnotify.Write))
	assert.Equal(t, EventTypeModified, eventType(fsnotify.Write))
	assert.Equal(t, EventTypeDeleted, eventType(fsnotify.Remove))
	assert.Equal(t, EventTypeRenamed, eventType(fsnotify.Rename))
	assert.Equal(t, EventTypeModified, eventType(fsnotify.Chmod))
}

func TestNew(t *testing.T) {
	watcher, err := New(Options{})
	require.NoError(t, err)
	defer watcher.Stop()

	assert.Equal(t, DefaultDebounce, watcher.debouncer.delay)
	assert.Empty(t, watcher.filters)
	assert.Empty(t, watcher.handlers)
}

func TestStopIsIdempotent(t *testing.T) {
	watcher, err := New(Options{})
	require.NoError(t, err)

	assert.NoError(t, watcher.Stop())
	assert.NoError(t, watcher.Stop())
}

func TestAddRecursiveSkipsIgnoredDirs(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"src/components", "src-electron", "node_modules/pkg", "dist/electron", ".git/objects"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}

	watcher, err := New(Options{})
	require.NoError(t, err)
	defer watcher.Stop()

	require.NoError(t, watcher.AddRecursive(root))

	assert.ElementsMatch(t, []string{
		root,
		filepath.Join(root, "src"),
		filepath.Join(root, "src", "components"),
		filepath.Join(root, "src-electron"),
	}, watcher.WatchedPaths())
}

func TestAddRecursiveRejectsInvalidRoot(t *testing.T) {
	watcher, err := New(Options{})
	require.NoError(t, err)
	defer watcher.Stop()

	assert.Error(t, watcher.AddRecursive(filepath.Join(t.TempDir(), "missing")))

	file := filepath.Join(t.TempDir(), "file.ts")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	assert.Error(t, watcher.AddRecursive(file))
}

func TestFilters(t *testing.T) {
	tests := []struct {
		name     string
		filter   FileFilter
		path     string
		expected bool
	}{
		{"source ts", SourceFilter, "src/main.ts", true},
		{"source vue", SourceFilter, "src/App.vue", true},
		{"source native binary", SourceFilter, "src-electron/bindings/foo.node", true},
		{"source upper case", SourceFilter, "src/STYLE.SCSS", true},
		{"not source", SourceFilter, "README.md", false},
		{"extension", ExtensionFilter(".md"), "README.md", true},
		{"node_modules", NoDirFilter("node_modules"), "/p/node_modules/x/index.js", false},
		{"not node_modules", NoDirFilter("node_modules"), "/p/src/node_modules.ts", true},
		{"inside output", NoOutputFilter("/p/dist"), "/p/dist/electron/preload/index.js", false},
		{"output sibling", NoOutputFilter("/p/dist"), "/p/distribution/index.js", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.filter(tt.path))
		})
	}
}

func TestCoalesce(t *testing.T) {
	events := coalesce([]ChangeEvent{
		{Type: EventTypeCreated, Path: "b.ts"},
		{Type: EventTypeModified, Path: "a.ts"},
		{Type: EventTypeModified, Path: "b.ts"},
		{Type: EventTypeDeleted, Path: "a.ts"},
	})

	assert.Equal(t, []ChangeEvent{
		{Type: EventTypeDeleted, Path: "a.ts"},
		{Type: EventTypeModified, Path: "b.ts"},
	}, events)
}

func TestDebouncerBatchesRapidEvents(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.start(ctx)

	for i := 0; i < 5; i++ {
		d.events <- ChangeEvent{Type: EventTypeModified, Path: "src/main.ts"}
	}

	select {
	case batch := <-d.output:
		require.Len(t, batch, 1)
		assert.Equal(t, "src/main.ts", batch[0].Path)
	case <-time.After(2 * time.Second):
		t.Fatal("no batch delivered")
	}
}

func TestFileWatcherDeliversFilteredBatches(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))

	watcher, err := New(Options{Debounce: 50 * time.Millisecond})
	require.NoError(t, err)
	defer watcher.Stop()

	watcher.AddFilter(SourceFilter)
	require.NoError(t, watcher.AddRecursive(root))

	var mu sync.Mutex
	var seen []string
	batches := make(chan struct{}, 10)
	watcher.AddHandler(func(_ context.Context, events []ChangeEvent) error {
		mu.Lock()
		for _, e := range events {
			seen = append(seen, filepath.Base(e.Path))
		}
		mu.Unlock()
		batches <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "notes.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.ts"), []byte("x"), 0o644))

	select {
	case <-batches:
	case <-time.After(5 * time.Second):
		t.Fatal("no batch delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, seen, "main.ts")
	assert.NotContains(t, seen, "notes.md")
}

func TestFileWatcherWatchesNewDirectories(t *testing.T) {
	root := t.TempDir()

	watcher, err := New(Options{Debounce: 20 * time.Millisecond})
	require.NoError(t, err)
	defer watcher.Stop()
	require.NoError(t, watcher.AddRecursive(root))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	newDir := filepath.Join(root, "src-bex")
	require.NoError(t, os.MkdirAll(newDir, 0o755))

	assert.Eventually(t, func() bool {
		for _, p := range watcher.WatchedPaths() {
			if p == newDir {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)
}
