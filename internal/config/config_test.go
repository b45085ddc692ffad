package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestDefaultVocabularies(t *testing.T) {
	cfg := Default()
	if len(cfg.Labels.TissueTypes) == 0 || cfg.Labels.TissueTypes[0] != "tumor" {
		t.Fatalf("tissue types = %v", cfg.Labels.TissueTypes)
	}
	for _, label := range cfg.Labels.ClinicalClasses {
		if !strings.HasPrefix(label, "CLINICAL_") {
			t.Errorf("clinical class %q lacks the CLINICAL_ prefix", label)
		}
	}
	if cfg.Labels.CommentColumn != "comments" {
		t.Errorf("comment column = %q", cfg.Labels.CommentColumn)
	}
	if cfg.Frames.Extension != ".tif" || cfg.Frames.SuffixModifier != "_oct" {
		t.Errorf("frames = %+v", cfg.Frames)
	}
}

func TestValidateRejectsDuplicateLabels(t *testing.T) {
	cfg := Default()
	cfg.Labels.OtherAttributes = append(cfg.Labels.OtherAttributes, "tumor")
	if err := cfg.Validate(); err == nil {
		t.Fatal("duplicate label across groups accepted")
	}
}

func TestValidateRejectsReservedColumn(t *testing.T) {
	for _, reserved := range []string{"key", "root", "folder"} {
		cfg := Default()
		cfg.Labels.TissueTypes = append(cfg.Labels.TissueTypes, reserved)
		if err := cfg.Validate(); err == nil {
			t.Errorf("label %q collides with a table column but validated", reserved)
		}
	}
}

func TestValidateRejectsCommentCollision(t *testing.T) {
	cfg := Default()
	cfg.Labels.OtherAttributes = append(cfg.Labels.OtherAttributes, cfg.Labels.CommentColumn)
	if err := cfg.Validate(); err == nil {
		t.Fatal("label equal to the comment column accepted")
	}
}

func TestValidateRejectsEmptyLabel(t *testing.T) {
	cfg := Default()
	cfg.Labels.TissueTypes = append(cfg.Labels.TissueTypes, "  ")
	if err := cfg.Validate(); err == nil {
		t.Fatal("blank label accepted")
	}
}

func TestValidateRejectsBadExtension(t *testing.T) {
	cfg := Default()
	cfg.Frames.Extension = "tif"
	if err := cfg.Validate(); err == nil {
		t.Fatal("extension without a leading dot accepted")
	}
}

func TestValidateRejectsBadLogFormat(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unsupported log format accepted")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("missing file reported as existing")
	}
	if resolved != path {
		t.Fatalf("resolved = %q, want %q", resolved, path)
	}
	if cfg.Frames.Extension != ".tif" {
		t.Fatalf("extension = %q, want default", cfg.Frames.Extension)
	}
}

func TestLoadAppliesOverridesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[labels]
tissue_types = ["stroma", "epithelium"]
comment_column = "notes"

[frames]
extension = "TIFF"
suffix_modifier = " _scan "

[paths]
store_path = "` + filepath.ToSlash(filepath.Join(dir, "out", "table.csv")) + `"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("existing file reported missing")
	}
	if got := cfg.Labels.TissueTypes; len(got) != 2 || got[0] != "stroma" {
		t.Fatalf("tissue types = %v", got)
	}
	if cfg.Labels.CommentColumn != "notes" {
		t.Fatalf("comment column = %q", cfg.Labels.CommentColumn)
	}
	if cfg.Frames.Extension != ".tiff" {
		t.Fatalf("extension = %q, want normalized .tiff", cfg.Frames.Extension)
	}
	if cfg.Frames.SuffixModifier != "_scan" {
		t.Fatalf("modifier = %q, want trimmed", cfg.Frames.SuffixModifier)
	}
	if !filepath.IsAbs(cfg.Paths.StorePath) {
		t.Fatalf("store path %q not absolute", cfg.Paths.StorePath)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[labels]
tissue_types = ["tumor", "tumor"]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("duplicate labels in file accepted")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample file not found by Load")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config invalid: %v", err)
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	got, err := ExpandPath("~/annotations.csv")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if want := filepath.Join(home, "annotations.csv"); got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
}
