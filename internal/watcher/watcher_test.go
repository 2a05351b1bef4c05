package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func startWatcher(t *testing.T, files []string, rec *recorder) *Watcher {
	t.Helper()
	w := NewWatcher(files, rec.record, WithDebounce(100*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Stop)
	return w
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	words := filepath.Join(dir, "words.list")
	if err := writeFile(words, "a\n"); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	startWatcher(t, []string{words}, rec)

	for i := 0; i < 3; i++ {
		if err := writeFile(words, "a\nb\n"); err != nil {
			t.Fatal(err)
		}
	}
	time.Sleep(500 * time.Millisecond)

	events := rec.snapshot()
	if len(events) != 1 {
		t.Fatalf("expected one debounced event, got %v", events)
	}
	if events[0].Path != filepath.Clean(words) || events[0].Removed {
		t.Errorf("unexpected event %+v", events[0])
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	words := filepath.Join(dir, "words.list")
	if err := writeFile(words, "a\n"); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	startWatcher(t, []string{words}, rec)

	if err := writeFile(filepath.Join(dir, "notes.txt"), "x"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(400 * time.Millisecond)
	if events := rec.snapshot(); len(events) != 0 {
		t.Errorf("expected no events, got %v", events)
	}
}

func TestWatcher_ReportsRemoval(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "words.faiss")
	if err := writeFile(index, "x"); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	startWatcher(t, []string{index}, rec)

	if err := os.Remove(index); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	removed := false
	for _, ev := range rec.snapshot() {
		if ev.Removed && ev.Path == filepath.Clean(index) {
			removed = true
		}
	}
	if !removed {
		t.Errorf("expected a removal event, got %v", rec.snapshot())
	}
}

func TestWatcher_ReplaceByRename(t *testing.T) {
	dir := t.TempDir()
	words := filepath.Join(dir, "words.list")
	if err := writeFile(words, "a\n"); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	startWatcher(t, []string{words}, rec)

	tmp := filepath.Join(dir, "words.list.tmp")
	if err := writeFile(tmp, "a\nb\n"); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, words); err != nil {
		t.Fatal(err)
	}
	time.Sleep(400 * time.Millisecond)

	changed := false
	for _, ev := range rec.snapshot() {
		if ev.Path == filepath.Clean(words) {
			changed = true
		}
	}
	if !changed {
		t.Errorf("expected an event for the replaced file, got %v", rec.snapshot())
	}
}

func TestWatcher_StartMissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone", "words.list")
	w := NewWatcher([]string{missing}, nil)
	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Fatal("expected error for a missing artifact directory")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher([]string{filepath.Join(dir, "words.list")}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()
	w.Stop()
	w.Stop()
}

func TestNewWatcher_SkipsEmptyPaths(t *testing.T) {
	w := NewWatcher([]string{"", "words.list"}, nil)
	files := w.Files()
	if len(files) != 1 || !filepath.IsAbs(files[0]) {
		t.Errorf("Files() = %v", files)
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}
