// Package tiffmeta reads TIFF containers just far enough for the
// workstation: page counts, pixel datatype, and best-effort OME-XML metadata
// from the first page's ImageDescription.
//
// Extract never fails past its boundary. Problems are collected as issues on
// the returned Result alongside whatever fields were already gathered, so a
// broken file still shows its page count when that much was readable.
package tiffmeta
