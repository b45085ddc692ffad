package frameindex

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"octlabel/internal/config"
	"octlabel/internal/logging"
	"octlabel/internal/tiffmeta"
)

// ErrFolderUnreadable reports a folder that vanished or became unreadable
// between discovery and indexing. Recoverable: the session shows zero frames
// and navigation continues.
var ErrFolderUnreadable = errors.New("folder unreadable")

// Frame identifies one displayable 2D plane: a file plus a page within it.
// Page is 0 for single-page files.
type Frame struct {
	Path string
	Page int
}

// Indexer produces the ordered frame sequence for a folder.
type Indexer struct {
	ext    string
	suffix *regexp.Regexp
	logger *slog.Logger
}

// New builds an Indexer from the configured extension and suffix modifier.
func New(cfg *config.Config, logger *slog.Logger) *Indexer {
	pattern := `(?i)(\d{3})`
	if cfg.Frames.SuffixModifier != "" {
		pattern += `(?:` + regexp.QuoteMeta(cfg.Frames.SuffixModifier) + `)?`
	}
	pattern += regexp.QuoteMeta(cfg.Frames.Extension) + `$`
	return &Indexer{
		ext:    cfg.Frames.Extension,
		suffix: regexp.MustCompile(pattern),
		logger: logging.NewComponentLogger(logger, "frameindex"),
	}
}

// Index returns the frames of folder in display order, expanding multi-page
// files into one frame per page. Only direct children are considered.
func (ix *Indexer) Index(folder string) ([]Frame, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFolderUnreadable, folder, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ix.ext) {
			files = append(files, filepath.Join(folder, entry.Name()))
		}
	}

	ordered := ix.order(files)

	frames := make([]Frame, 0, len(ordered))
	for _, path := range ordered {
		pages, err := tiffmeta.PageCount(path)
		if err != nil || pages < 1 {
			// Best-effort introspection; an opaque file is one frame.
			pages = 1
		}
		for page := 0; page < pages; page++ {
			frames = append(frames, Frame{Path: path, Page: page})
		}
	}

	ix.logger.Debug("indexed folder",
		logging.String("folder", folder),
		logging.Int("files", len(ordered)),
		logging.Int("frames", len(frames)))
	return frames, nil
}

// order sorts by the embedded 3-digit frame number when at least one file
// carries it, dropping files that do not; otherwise it falls back to path
// order for all qualifying files.
func (ix *Indexer) order(files []string) []string {
	type numbered struct {
		n    int
		path string
	}
	var matched []numbered
	for _, path := range files {
		m := ix.suffix.FindStringSubmatch(filepath.Base(path))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		matched = append(matched, numbered{n: n, path: path})
	}

	if len(matched) == 0 {
		ordered := append([]string(nil), files...)
		sort.Strings(ordered)
		return ordered
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].n != matched[j].n {
			return matched[i].n < matched[j].n
		}
		return matched[i].path < matched[j].path
	})
	ordered := make([]string, len(matched))
	for i, entry := range matched {
		ordered[i] = entry.path
	}
	return ordered
}
