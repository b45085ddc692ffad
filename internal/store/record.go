package store

import (
	"strconv"
	"strings"

	"octlabel/internal/config"
)

// Tri is a tri-state label cell: unset, false, or true.
type Tri int8

const (
	TriUnset Tri = iota
	TriFalse
	TriTrue
)

// Cell serializes the state for the annotation table: empty, "0", or "1".
func (t Tri) Cell() string {
	switch t {
	case TriTrue:
		return "1"
	case TriFalse:
		return "0"
	default:
		return ""
	}
}

// Bool reports whether the state is an explicit true.
func (t Tri) Bool() bool { return t == TriTrue }

// TriOf converts a plain boolean to its tri-state value.
func TriOf(v bool) Tri {
	if v {
		return TriTrue
	}
	return TriFalse
}

// ParseTri reads a table cell, tolerating the spellings found in historical
// annotation files (integers, float-formatted integers, booleans, NA).
func ParseTri(cell string) Tri {
	trimmed := strings.ToLower(strings.TrimSpace(cell))
	switch trimmed {
	case "", "na", "nan", "none", "<na>":
		return TriUnset
	case "1", "true":
		return TriTrue
	case "0", "false":
		return TriFalse
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		if v != 0 {
			return TriTrue
		}
		return TriFalse
	}
	return TriUnset
}

// Record is one annotation row.
type Record struct {
	// Root is the root directory's own name; Folder is the labelled folder's
	// path relative to that root. Together they reproduce the row key.
	Root   string
	Folder string

	Tissue   map[string]Tri
	Clinical map[string]Tri
	Other    map[string]Tri
	Comment  string
}

// NewRecord returns an empty record covering every configured label. All
// labels start unset; an explicit 0 or 1 only appears once the reviewer
// touches a label, so untouched columns persist as empty cells.
func NewRecord(labels config.Labels) Record {
	rec := Record{
		Tissue:   make(map[string]Tri, len(labels.TissueTypes)),
		Clinical: make(map[string]Tri, len(labels.ClinicalClasses)),
		Other:    make(map[string]Tri, len(labels.OtherAttributes)),
	}
	for _, label := range labels.TissueTypes {
		rec.Tissue[label] = TriUnset
	}
	for _, label := range labels.ClinicalClasses {
		rec.Clinical[label] = TriUnset
	}
	for _, label := range labels.OtherAttributes {
		rec.Other[label] = TriUnset
	}
	return rec
}

// Clone deep-copies the record.
func (r Record) Clone() Record {
	cp := r
	cp.Tissue = cloneTris(r.Tissue)
	cp.Clinical = cloneTris(r.Clinical)
	cp.Other = cloneTris(r.Other)
	return cp
}

// AnyClinical reports whether any clinical label is explicitly true. The
// session derives the "clinical classification enabled" toggle from it.
func (r Record) AnyClinical() bool {
	for _, v := range r.Clinical {
		if v == TriTrue {
			return true
		}
	}
	return false
}

func cloneTris(m map[string]Tri) map[string]Tri {
	if m == nil {
		return nil
	}
	cp := make(map[string]Tri, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
