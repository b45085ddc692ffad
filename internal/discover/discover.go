package discover

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"octlabel/internal/config"
	"octlabel/internal/logging"
)

// ErrNoFolders reports a root with no labellable folders. The session must
// refuse to start when it sees this.
var ErrNoFolders = errors.New("no labellable folders")

// Folder is one labelling unit.
type Folder struct {
	// Path is the absolute directory path.
	Path string
	// Root is the root directory's own name.
	Root string
	// Rel is the folder path relative to the root.
	Rel string
	// Key joins Root and Rel with the platform separator. It is the durable
	// annotation store key.
	Key string
}

// Discoverer finds labellable folders under a root directory.
type Discoverer struct {
	ext    string
	logger *slog.Logger
}

// New builds a Discoverer using the configured image extension.
func New(cfg *config.Config, logger *slog.Logger) *Discoverer {
	return &Discoverer{
		ext:    cfg.Frames.Extension,
		logger: logging.NewComponentLogger(logger, "discover"),
	}
}

// Discover returns the ordered, duplicate-free list of labellable folders
// under root. The result is sorted by full path and no emitted folder is a
// descendant of another. An empty result yields ErrNoFolders.
func (d *Discoverer) Discover(root string) ([]Folder, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}
	entries, err := os.ReadDir(absRoot)
	if err != nil {
		return nil, fmt.Errorf("read root %q: %w", absRoot, err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		d.descend(filepath.Join(absRoot, entry.Name()), &paths)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoFolders, absRoot)
	}

	sort.Strings(paths)

	rootName := filepath.Base(absRoot)
	folders := make([]Folder, 0, len(paths))
	for _, path := range paths {
		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil, fmt.Errorf("relativize %q: %w", path, err)
		}
		folders = append(folders, Folder{
			Path: path,
			Root: rootName,
			Rel:  rel,
			Key:  filepath.Join(rootName, rel),
		})
	}

	d.logger.Debug("discovery complete",
		logging.String("root", absRoot),
		logging.Int("folders", len(folders)))
	return folders, nil
}

// descend performs a lexical depth-first walk, emitting dir and stopping when
// it directly contains a qualifying file.
func (d *Discoverer) descend(dir string, out *[]string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		// Unreadable subtrees are skipped, not fatal.
		d.logger.Warn("skipping unreadable directory",
			logging.String("dir", dir),
			logging.Error(err))
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() && d.qualifies(entry.Name()) {
			*out = append(*out, dir)
			return
		}
	}
	for _, entry := range entries {
		if entry.IsDir() {
			d.descend(filepath.Join(dir, entry.Name()), out)
		}
	}
}

func (d *Discoverer) qualifies(name string) bool {
	return strings.EqualFold(filepath.Ext(name), d.ext)
}
