package discover

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"octlabel/internal/testsupport"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("touch %s: %v", path, err)
	}
}

func TestDiscoverSubjectsAndSites(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "A", "001.tif"))
	touch(t, filepath.Join(root, "A", "002.tif"))
	touch(t, filepath.Join(root, "B", "S1", "001.tif"))

	cfg := testsupport.NewConfig(t)
	folders, err := New(cfg, nil).Discover(root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if len(folders) != 2 {
		t.Fatalf("expected 2 folders, got %d", len(folders))
	}
	rootName := filepath.Base(root)
	if folders[0].Key != filepath.Join(rootName, "A") {
		t.Errorf("first key = %q", folders[0].Key)
	}
	if folders[1].Key != filepath.Join(rootName, "B", "S1") {
		t.Errorf("second key = %q", folders[1].Key)
	}
	if folders[1].Root != rootName || folders[1].Rel != filepath.Join("B", "S1") {
		t.Errorf("root/rel = %q/%q", folders[1].Root, folders[1].Rel)
	}
}

func TestDiscoverStopsAtFirstQualifyingLevel(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "A", "001.tif"))
	// Nested sub-site under an already-qualifying folder is never emitted.
	touch(t, filepath.Join(root, "A", "deeper", "001.tif"))

	cfg := testsupport.NewConfig(t)
	folders, err := New(cfg, nil).Discover(root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(folders) != 1 {
		t.Fatalf("expected 1 folder, got %d", len(folders))
	}
	if filepath.Base(folders[0].Path) != "A" {
		t.Errorf("emitted %q, want subject A", folders[0].Path)
	}
}

func TestDiscoverMultipleSitesPerSubject(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "P1", "S2", "001.tif"))
	touch(t, filepath.Join(root, "P1", "S1", "001.tif"))

	cfg := testsupport.NewConfig(t)
	folders, err := New(cfg, nil).Discover(root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(folders) != 2 {
		t.Fatalf("expected 2 sibling sites, got %d", len(folders))
	}
}

func TestDiscoverOutputSortedUniqueNonNested(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "C", "S1", "010.tif"))
	touch(t, filepath.Join(root, "A", "001.tif"))
	touch(t, filepath.Join(root, "B", "S2", "001.tif"))
	touch(t, filepath.Join(root, "B", "S1", "001.tif"))

	cfg := testsupport.NewConfig(t)
	folders, err := New(cfg, nil).Discover(root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	seen := make(map[string]struct{})
	for i, folder := range folders {
		if i > 0 && folders[i-1].Path >= folder.Path {
			t.Errorf("output not sorted at %d: %q >= %q", i, folders[i-1].Path, folder.Path)
		}
		if _, dup := seen[folder.Path]; dup {
			t.Errorf("duplicate folder %q", folder.Path)
		}
		seen[folder.Path] = struct{}{}
		for _, other := range folders {
			if other.Path != folder.Path && strings.HasPrefix(folder.Path, other.Path+string(os.PathSeparator)) {
				t.Errorf("%q is a descendant of emitted %q", folder.Path, other.Path)
			}
		}
	}
}

func TestDiscoverCaseInsensitiveExtension(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "A", "001.TIF"))

	cfg := testsupport.NewConfig(t)
	folders, err := New(cfg, nil).Discover(root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(folders) != 1 {
		t.Fatalf("expected 1 folder, got %d", len(folders))
	}
}

func TestDiscoverEmptyRoot(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "A", "notes.txt"))

	cfg := testsupport.NewConfig(t)
	_, err := New(cfg, nil).Discover(root)
	if !errors.Is(err, ErrNoFolders) {
		t.Fatalf("expected ErrNoFolders, got %v", err)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, err := New(cfg, nil).Discover(filepath.Join(t.TempDir(), "gone"))
	if err == nil {
		t.Fatal("expected error for missing root")
	}
	if errors.Is(err, ErrNoFolders) {
		t.Fatal("missing root must not read as empty root")
	}
}
