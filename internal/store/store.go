package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/gofrs/flock"

	"octlabel/internal/config"
	"octlabel/internal/logging"
)

// ErrWrite reports a failed table rewrite. The in-memory store is rolled back
// to its last persisted state before this is returned, so a record that never
// reached disk is never visible as saved.
var ErrWrite = errors.New("annotation write failed")

// Store is the durable folder-key → record mapping.
type Store struct {
	path    string
	labels  config.Labels
	logger  *slog.Logger
	lock    *flock.Flock
	records map[string]Record
}

// Open loads the annotation table at cfg.Paths.StorePath. A missing file
// yields an empty store with the canonical column set; the file itself is
// created on first commit.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	s := &Store{
		path:    cfg.Paths.StorePath,
		labels:  cfg.Labels,
		logger:  logging.NewComponentLogger(logger, "store"),
		lock:    flock.New(cfg.Paths.StorePath + ".lock"),
		records: make(map[string]Record),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the persisted table.
func (s *Store) Path() string { return s.path }

// Len returns the number of stored records.
func (s *Store) Len() int { return len(s.records) }

// Keys returns every stored folder key in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.records))
	for key := range s.records {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Get looks up a record by folder key. A missing key means "never annotated",
// which is distinct from an annotated record with all-false values.
func (s *Store) Get(key string) (Record, bool) {
	rec, ok := s.records[key]
	if !ok {
		return Record{}, false
	}
	return rec.Clone(), true
}

// Update upserts the record for key and synchronously rewrites the table.
// On write failure the in-memory state is restored and ErrWrite returned.
func (s *Store) Update(key string, rec Record) error {
	prev, existed := s.records[key]
	s.records[key] = rec.Clone()

	if err := s.persist(); err != nil {
		if existed {
			s.records[key] = prev
		} else {
			delete(s.records, key)
		}
		return fmt.Errorf("%w: %s: %w", ErrWrite, s.path, err)
	}

	s.logger.Info("annotation committed",
		logging.String("key", key),
		logging.Int("records", len(s.records)))
	return nil
}

// columns is the persisted header: root, folder, every configured label, and
// the comment column. The key is derived from root+folder, not stored.
func (s *Store) columns() []string {
	cols := []string{"root", "folder"}
	cols = append(cols, s.labels.Columns()...)
	return append(cols, s.labels.CommentColumn)
}

func (s *Store) load() error {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open annotation table %s: %w", s.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("parse annotation table %s: %w", s.path, err)
	}
	if len(rows) == 0 {
		return nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[name] = i
	}

	for _, row := range rows[1:] {
		cell := func(column string) string {
			i, ok := index[column]
			if !ok || i >= len(row) {
				// Missing columns load as empty cells so older files with a
				// smaller schema remain readable.
				return ""
			}
			return row[i]
		}

		rec := Record{
			Root:     cell("root"),
			Folder:   cell("folder"),
			Tissue:   make(map[string]Tri, len(s.labels.TissueTypes)),
			Clinical: make(map[string]Tri, len(s.labels.ClinicalClasses)),
			Other:    make(map[string]Tri, len(s.labels.OtherAttributes)),
			Comment:  cell(s.labels.CommentColumn),
		}
		for _, label := range s.labels.TissueTypes {
			rec.Tissue[label] = ParseTri(cell(label))
		}
		for _, label := range s.labels.ClinicalClasses {
			rec.Clinical[label] = ParseTri(cell(label))
		}
		for _, label := range s.labels.OtherAttributes {
			rec.Other[label] = ParseTri(cell(label))
		}

		// Older files carried no key column; the key is always reproducible
		// from root+folder.
		key := cell("key")
		if key == "" {
			key = rec.Root + string(os.PathSeparator) + rec.Folder
		}
		s.records[key] = rec
	}

	s.logger.Debug("annotation table loaded",
		logging.String("path", s.path),
		logging.Int("records", len(s.records)))
	return nil
}

// persist rewrites the whole table: temp file in the same directory, then an
// atomic rename. A lock file serializes rewrites across processes.
func (s *Store) persist() error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer func() {
		_ = s.lock.Unlock()
	}()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure store directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".annotations-*.csv")
	if err != nil {
		return fmt.Errorf("create temp table: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	writer := csv.NewWriter(tmp)
	if err := writer.Write(s.columns()); err != nil {
		cleanup()
		return fmt.Errorf("write header: %w", err)
	}
	for _, key := range s.Keys() {
		if err := writer.Write(s.row(s.records[key])); err != nil {
			cleanup()
			return fmt.Errorf("write row %s: %w", key, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		cleanup()
		return fmt.Errorf("flush table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp table: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace table: %w", err)
	}
	return nil
}

func (s *Store) row(rec Record) []string {
	cells := []string{rec.Root, rec.Folder}
	for _, label := range s.labels.TissueTypes {
		cells = append(cells, rec.Tissue[label].Cell())
	}
	for _, label := range s.labels.ClinicalClasses {
		cells = append(cells, rec.Clinical[label].Cell())
	}
	for _, label := range s.labels.OtherAttributes {
		cells = append(cells, rec.Other[label].Cell())
	}
	return append(cells, rec.Comment)
}
