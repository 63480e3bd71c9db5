package icons

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchedFileFilters(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"editor.icons.yaml", true},
		{"dir/Other.ICONS.yml", true},
		{"scene.yaml", false},
		{"icons/point.png", true},
		{"icons/point.WEBP", true},
		{"icons/readme.txt", false},
	}
	for _, tc := range tests {
		if got := isManifestFile(tc.path) || isIconFile(tc.path); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.path, tc.want, got)
		}
	}
}

func TestWatcherReportsManifestWrite(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, DefaultManifestPath)
	if err := os.WriteFile(target, []byte("unknown:\n  image: {path: a.png}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case name := <-w.Events:
		if name != target {
			t.Fatalf("expected event for %s, got %s", target, name)
		}
	case err := <-w.Errors:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for manifest event")
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, ok := <-w.Events; ok {
		t.Fatalf("expected events channel closed")
	}
}
