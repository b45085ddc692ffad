// Package frameindex enumerates the displayable frames of one folder.
//
// Files carrying the 3-digit frame suffix are ordered by that number; when no
// file in the folder matches, all qualifying files are ordered by path.
// Multi-page files expand into one frame per page. Indexing an unchanged
// folder twice yields identical sequences, which slider positions and
// annotation keys depend on.
package frameindex
