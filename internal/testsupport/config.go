package testsupport

import (
	"path/filepath"
	"testing"

	"octlabel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config whose store path lives in a per-test temp
// directory, with the repository default label vocabularies.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StorePath = filepath.Join(base, "annotations.csv")

	builder := &configBuilder{t: t, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithStorePath overrides the annotation table location.
func WithStorePath(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.StorePath = path
	}
}

// WithLabels replaces the label vocabularies.
func WithLabels(labels config.Labels) ConfigOption {
	return func(b *configBuilder) {
		if labels.CommentColumn == "" {
			labels.CommentColumn = b.cfg.Labels.CommentColumn
		}
		b.cfg.Labels = labels
	}
}

// WithSuffixModifier overrides the frame-suffix literal.
func WithSuffixModifier(mod string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Frames.SuffixModifier = mod
	}
}
