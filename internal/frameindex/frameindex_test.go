package frameindex

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"octlabel/internal/testsupport"
)

func writeNames(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		testsupport.WriteTIFF(t, filepath.Join(dir, name), 1, "")
	}
}

func baseNames(frames []Frame) []string {
	names := make([]string, len(frames))
	for i, frame := range frames {
		names[i] = filepath.Base(frame.Path)
	}
	return names
}

func TestIndexOrdersByFrameSuffix(t *testing.T) {
	dir := t.TempDir()
	writeNames(t, dir, "003.tif", "001.tif", "002_oct.tif")

	ix := New(testsupport.NewConfig(t), nil)
	frames, err := ix.Index(dir)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}

	want := []string{"001.tif", "002_oct.tif", "003.tif"}
	if got := baseNames(frames); !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestIndexExcludesUnmatchedWhenSuffixPresent(t *testing.T) {
	dir := t.TempDir()
	writeNames(t, dir, "001.tif", "overview.tif")

	ix := New(testsupport.NewConfig(t), nil)
	frames, err := ix.Index(dir)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if got := baseNames(frames); !reflect.DeepEqual(got, []string{"001.tif"}) {
		t.Fatalf("order = %v, want only the numbered file", got)
	}
}

func TestIndexLexicalFallback(t *testing.T) {
	dir := t.TempDir()
	writeNames(t, dir, "zebra.tif", "apple.tif", "mid.tif")

	ix := New(testsupport.NewConfig(t), nil)
	frames, err := ix.Index(dir)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	want := []string{"apple.tif", "mid.tif", "zebra.tif"}
	if got := baseNames(frames); !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestIndexCaseInsensitiveSuffix(t *testing.T) {
	dir := t.TempDir()
	writeNames(t, dir, "002_OCT.TIF", "001.Tif")

	ix := New(testsupport.NewConfig(t), nil)
	frames, err := ix.Index(dir)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	want := []string{"001.Tif", "002_OCT.TIF"}
	if got := baseNames(frames); !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestIndexExpandsMultiPageFiles(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteTIFF(t, filepath.Join(dir, "001.tif"), 3, "")
	testsupport.WriteTIFF(t, filepath.Join(dir, "002.tif"), 1, "")

	ix := New(testsupport.NewConfig(t), nil)
	frames, err := ix.Index(dir)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}

	want := []Frame{
		{Path: filepath.Join(dir, "001.tif"), Page: 0},
		{Path: filepath.Join(dir, "001.tif"), Page: 1},
		{Path: filepath.Join(dir, "001.tif"), Page: 2},
		{Path: filepath.Join(dir, "002.tif"), Page: 0},
	}
	if !reflect.DeepEqual(frames, want) {
		t.Fatalf("frames = %v, want %v", frames, want)
	}
}

func TestIndexOpaqueFileCountsAsSinglePage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001.tif"), []byte("not a tiff"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ix := New(testsupport.NewConfig(t), nil)
	frames, err := ix.Index(dir)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if len(frames) != 1 || frames[0].Page != 0 {
		t.Fatalf("frames = %v, want one page-0 frame", frames)
	}
}

func TestIndexDeterministic(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteTIFF(t, filepath.Join(dir, "001.tif"), 2, "")
	writeNames(t, dir, "003.tif", "002_oct.tif")

	ix := New(testsupport.NewConfig(t), nil)
	first, err := ix.Index(dir)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	second, err := ix.Index(dir)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("indexing not deterministic: %v vs %v", first, second)
	}
}

func TestIndexUnreadableFolder(t *testing.T) {
	ix := New(testsupport.NewConfig(t), nil)
	_, err := ix.Index(filepath.Join(t.TempDir(), "vanished"))
	if !errors.Is(err, ErrFolderUnreadable) {
		t.Fatalf("expected ErrFolderUnreadable, got %v", err)
	}
}

func TestIndexIgnoresSubdirectoriesAndOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	writeNames(t, dir, "001.tif")
	testsupport.WriteTIFF(t, filepath.Join(dir, "nested", "002.tif"), 1, "")
	if err := os.WriteFile(filepath.Join(dir, "002.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ix := New(testsupport.NewConfig(t), nil)
	frames, err := ix.Index(dir)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if got := baseNames(frames); !reflect.DeepEqual(got, []string{"001.tif"}) {
		t.Fatalf("frames = %v, want direct .tif children only", got)
	}
}
