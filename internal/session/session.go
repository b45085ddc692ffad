package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"octlabel/internal/config"
	"octlabel/internal/discover"
	"octlabel/internal/frameindex"
	"octlabel/internal/logging"
	"octlabel/internal/store"
	"octlabel/internal/tiffmeta"
)

// ErrFinished reports an operation on a session that has advanced past its
// last folder. The caller is expected to end the session.
var ErrFinished = errors.New("session finished")

// Session is the navigation state machine over the discovered folders.
type Session struct {
	cfg     *config.Config
	folders []discover.Folder
	store   *store.Store
	indexer *frameindex.Indexer
	logger  *slog.Logger
	id      string

	finished   bool
	folderIdx  int
	frameIdx   int
	frames     []frameindex.Frame
	staged     store.Record
	clinicalOn bool
	meta       *metaCache
}

// View is a read-only snapshot of the session for the display surface.
type View struct {
	SessionID   string
	Finished    bool
	FolderIndex int
	FolderCount int
	FolderPath  string
	Key         string
	Root        string
	Rel         string
	Frames      []frameindex.Frame
	FrameIndex  int
	Record      store.Record
	// ClinicalEnabled mirrors the master toggle: when false, clinical labels
	// persist as unset on the next commit regardless of their staged values.
	ClinicalEnabled bool
}

// New starts a session on the first folder. The folder list must come from
// discovery and be non-empty.
func New(cfg *config.Config, folders []discover.Folder, st *store.Store, logger *slog.Logger) (*Session, error) {
	if len(folders) == 0 {
		return nil, errors.New("session requires at least one folder")
	}
	s := &Session{
		cfg:     cfg,
		folders: folders,
		store:   st,
		indexer: frameindex.New(cfg, logger),
		id:      uuid.NewString(),
		meta:    newMetaCache(tiffmeta.Extract, metaCacheLimit),
	}
	s.logger = logging.NewComponentLogger(logger, "session").With(logging.String("session_id", s.id))
	s.enterFolder(0)
	return s, nil
}

// ID returns the session correlation id.
func (s *Session) ID() string { return s.id }

// Finished reports whether the session has advanced past its last folder.
func (s *Session) Finished() bool { return s.finished }

// Current snapshots the session state.
func (s *Session) Current() View {
	if s.finished {
		return View{SessionID: s.id, Finished: true, FolderCount: len(s.folders)}
	}
	folder := s.folders[s.folderIdx]
	return View{
		SessionID:       s.id,
		FolderIndex:     s.folderIdx,
		FolderCount:     len(s.folders),
		FolderPath:      folder.Path,
		Key:             folder.Key,
		Root:            folder.Root,
		Rel:             folder.Rel,
		Frames:          append([]frameindex.Frame(nil), s.frames...),
		FrameIndex:      s.frameIdx,
		Record:          s.staged.Clone(),
		ClinicalEnabled: s.clinicalOn,
	}
}

// Advance moves to the next folder, or to Finished from the last one. With
// commit true the staged record is persisted first; a persistence failure is
// returned as-is and the session does not move.
func (s *Session) Advance(commit bool) error {
	if s.finished {
		return ErrFinished
	}
	folder := s.folders[s.folderIdx]
	if commit {
		if err := s.store.Update(folder.Key, s.commitRecord(folder)); err != nil {
			return err
		}
	}
	if s.folderIdx >= len(s.folders)-1 {
		s.finished = true
		s.frames = nil
		s.logger.Info("session finished", logging.Int("folders", len(s.folders)))
		return nil
	}
	s.enterFolder(s.folderIdx + 1)
	return nil
}

// JumpToFolder enters folder i without persisting the folder being left.
// Out-of-range indices are a no-op, as is jumping after Finished.
func (s *Session) JumpToFolder(i int) {
	if s.finished || i < 0 || i >= len(s.folders) {
		return
	}
	s.enterFolder(i)
}

// ChangeFrame steps the frame index by delta, ignoring steps that would leave
// [0, frameCount-1].
func (s *Session) ChangeFrame(delta int) {
	s.JumpToFrame(s.frameIdx + delta)
}

// JumpToFrame selects frame i. Out-of-range indices are a no-op.
func (s *Session) JumpToFrame(i int) {
	if s.finished || i < 0 || i >= len(s.frames) {
		return
	}
	s.frameIdx = i
}

// Metadata extracts (or recalls) metadata for the current frame's file.
// The second return is false when there is no current frame.
func (s *Session) Metadata() (tiffmeta.Result, bool) {
	if s.finished || len(s.frames) == 0 {
		return tiffmeta.Result{}, false
	}
	return s.meta.get(s.frames[s.frameIdx].Path), true
}

// SetTissue stages a tissue label value.
func (s *Session) SetTissue(label string, value bool) error {
	return s.setLabel(s.staged.Tissue, "tissue", label, value)
}

// SetOther stages an other-attribute label value.
func (s *Session) SetOther(label string, value bool) error {
	return s.setLabel(s.staged.Other, "other attribute", label, value)
}

// SetClinical stages a clinical label value. The master toggle must be on.
func (s *Session) SetClinical(label string, value bool) error {
	if s.finished {
		return ErrFinished
	}
	if !s.clinicalOn {
		return errors.New("clinical classification is disabled for this folder")
	}
	return s.setLabel(s.staged.Clinical, "clinical", label, value)
}

// SetClinicalEnabled flips the master clinical toggle. Enabling promotes
// unset clinical labels to explicit false so a subsequent commit writes them
// as reviewed. Disabling keeps the staged ticks but forces the next commit to
// persist every clinical cell as unset.
func (s *Session) SetClinicalEnabled(enabled bool) {
	if s.finished {
		return
	}
	s.clinicalOn = enabled
	if !enabled {
		return
	}
	for label, v := range s.staged.Clinical {
		if v == store.TriUnset {
			s.staged.Clinical[label] = store.TriFalse
		}
	}
}

// SetComment stages the free-text comment.
func (s *Session) SetComment(comment string) {
	if s.finished {
		return
	}
	s.staged.Comment = comment
}

func (s *Session) setLabel(group map[string]store.Tri, kind, label string, value bool) error {
	if s.finished {
		return ErrFinished
	}
	if _, ok := group[label]; !ok {
		return fmt.Errorf("unknown %s label %q", kind, label)
	}
	group[label] = store.TriOf(value)
	return nil
}

// commitRecord finalizes the staged record for persistence, stamping the
// root/folder identity and applying the clinical master gate.
func (s *Session) commitRecord(folder discover.Folder) store.Record {
	rec := s.staged.Clone()
	rec.Root = folder.Root
	rec.Folder = folder.Rel
	if !s.clinicalOn {
		for label := range rec.Clinical {
			rec.Clinical[label] = store.TriUnset
		}
	}
	return rec
}

// enterFolder re-indexes frames and restores any stored annotation for the
// folder's key into the staged selection.
func (s *Session) enterFolder(i int) {
	s.folderIdx = i
	s.frameIdx = 0
	folder := s.folders[i]

	frames, err := s.indexer.Index(folder.Path)
	if err != nil {
		// Folder vanished between discovery and indexing: show zero frames
		// and keep the session navigable.
		s.logger.Warn("folder not indexable",
			logging.String("folder", folder.Path),
			logging.Error(err))
		frames = nil
	}
	s.frames = frames

	if rec, ok := s.store.Get(folder.Key); ok {
		s.staged = rec
		s.clinicalOn = rec.AnyClinical()
	} else {
		s.staged = store.NewRecord(s.cfg.Labels)
		s.clinicalOn = false
	}

	s.logger.Debug("entered folder",
		logging.String("key", folder.Key),
		logging.Int("index", i),
		logging.Int("frames", len(s.frames)))
}
