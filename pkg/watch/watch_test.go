package watch

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

func TestNewValidation(t *testing.T) {
	_, err := New(Config{}, func(context.Context, Event) {})
	assert.Error(t, err)

	_, err = New(Config{Root: "skills"}, nil)
	assert.Error(t, err)

	w, err := New(Config{Root: "skills", Ext: ".md"}, func(context.Context, Event) {})
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.config.Debounce)
}

func TestDebounceCollapsesBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	input := make(chan Event)
	output := make(chan Event, 4)
	go Debounce(ctx, input, output, 50*time.Millisecond)

	for _, name := range []string{"a.md", "b.md", "c.md"} {
		input <- Event{Path: name, Op: fsnotify.Write}
	}

	select {
	case event := <-output:
		assert.Equal(t, "c.md", event.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("debounced event was not emitted")
	}

	select {
	case event := <-output:
		t.Fatalf("unexpected second event %s", event.Path)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestDebounceStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	input := make(chan Event)
	done := make(chan struct{})
	go func() {
		Debounce(ctx, input, make(chan Event), time.Second)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounce did not return after cancellation")
	}
}

func TestRunMissingRoot(t *testing.T) {
	w, err := New(Config{Root: filepath.Join(t.TempDir(), "absent"), Ext: ".md"}, func(context.Context, Event) {})
	require.NoError(t, err)
	assert.Error(t, w.Run(context.Background()))
}

func TestRunTriggersOnRuleChange(t *testing.T) {
	root := t.TempDir()
	rulesDir := filepath.Join(root, "api", "rules")
	require.NoError(t, os.MkdirAll(rulesDir, 0o755))

	var (
		mu     sync.Mutex
		events []Event
	)
	w, err := New(Config{Root: root, Ext: ".md", Debounce: 20 * time.Millisecond}, func(_ context.Context, event Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, event)
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	path := filepath.Join(rulesDir, "pagination.md")
	require.Eventually(t, func() bool {
		// Rewrite until the watcher has been registered and picks it up
		_ = os.WriteFile(path, []byte("---\n"), 0o644)
		mu.Lock()
		defer mu.Unlock()
		return len(events) > 0
	}, 5*time.Second, 100*time.Millisecond)

	mu.Lock()
	assert.Equal(t, path, events[0].Path)
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRelevantIgnoresOtherFiles(t *testing.T) {
	root := t.TempDir()
	w, err := New(Config{Root: root, Ext: ".md", Ignore: []string{"drafts/**"}}, func(context.Context, Event) {})
	require.NoError(t, err)

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	ctx := context.Background()
	assert.True(t, w.relevant(ctx, watcher, fsnotify.Event{Name: filepath.Join(root, "a", "rules", "x.md"), Op: fsnotify.Write}))
	assert.True(t, w.relevant(ctx, watcher, fsnotify.Event{Name: filepath.Join(root, "a", "rules", "x.md"), Op: fsnotify.Remove}))
	assert.False(t, w.relevant(ctx, watcher, fsnotify.Event{Name: filepath.Join(root, "a", "notes.txt"), Op: fsnotify.Write}))
	assert.False(t, w.relevant(ctx, watcher, fsnotify.Event{Name: filepath.Join(root, "a", "rules", "x.md"), Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(ctx, watcher, fsnotify.Event{Name: filepath.Join(root, "drafts", "rules", "x.md"), Op: fsnotify.Write}))
}
