package tiffmeta

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	tagBitsPerSample    = 258
	tagImageDescription = 270
	tagSampleFormat     = 339

	// Classic TIFF tops out at 64k IFDs in practice; anything past this is a
	// corrupt directory chain.
	maxPages = 1 << 16

	// Cap on out-of-line tag payloads, so a corrupt count cannot force a
	// huge allocation.
	maxValueBytes = 1 << 24
)

type tiffFile struct {
	r  io.ReaderAt
	bo binary.ByteOrder
}

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	raw   [4]byte
}

type ifd struct {
	entries []ifdEntry
	next    uint32
}

// openTIFF validates the header and returns the file plus the offset of the
// first IFD.
func openTIFF(r io.ReaderAt) (*tiffFile, uint32, error) {
	var hdr [8]byte
	if _, err := r.ReadAt(hdr[:], 0); err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	var bo binary.ByteOrder
	switch string(hdr[0:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return nil, 0, errors.New("not a TIFF file")
	}

	switch magic := bo.Uint16(hdr[2:4]); magic {
	case 42:
	case 43:
		return nil, 0, errors.New("BigTIFF is not supported")
	default:
		return nil, 0, fmt.Errorf("bad TIFF magic %d", magic)
	}

	return &tiffFile{r: r, bo: bo}, bo.Uint32(hdr[4:8]), nil
}

func (t *tiffFile) readIFD(off uint32) (ifd, error) {
	var countBuf [2]byte
	if _, err := t.r.ReadAt(countBuf[:], int64(off)); err != nil {
		return ifd{}, fmt.Errorf("read IFD at %d: %w", off, err)
	}
	n := int(t.bo.Uint16(countBuf[:]))

	buf := make([]byte, 12*n+4)
	if _, err := t.r.ReadAt(buf, int64(off)+2); err != nil {
		return ifd{}, fmt.Errorf("read IFD entries at %d: %w", off, err)
	}

	dir := ifd{entries: make([]ifdEntry, 0, n)}
	for i := 0; i < n; i++ {
		e := buf[12*i : 12*i+12]
		entry := ifdEntry{
			tag:   t.bo.Uint16(e[0:2]),
			typ:   t.bo.Uint16(e[2:4]),
			count: t.bo.Uint32(e[4:8]),
		}
		copy(entry.raw[:], e[8:12])
		dir.entries = append(dir.entries, entry)
	}
	dir.next = t.bo.Uint32(buf[12*n:])
	return dir, nil
}

// walk follows the IFD chain, returning the page count and the first IFD.
func (t *tiffFile) walk(first uint32) (int, ifd, error) {
	var firstDir ifd
	seen := make(map[uint32]struct{})
	count := 0
	off := first
	for off != 0 {
		if _, cycle := seen[off]; cycle {
			return count, firstDir, fmt.Errorf("IFD cycle at offset %d", off)
		}
		seen[off] = struct{}{}
		if count >= maxPages {
			return count, firstDir, errors.New("IFD chain exceeds page limit")
		}
		dir, err := t.readIFD(off)
		if err != nil {
			return count, firstDir, err
		}
		if count == 0 {
			firstDir = dir
		}
		count++
		off = dir.next
	}
	return count, firstDir, nil
}

func typeSize(typ uint16) uint32 {
	switch typ {
	case 1, 2, 6, 7: // BYTE, ASCII, SBYTE, UNDEFINED
		return 1
	case 3, 8: // SHORT, SSHORT
		return 2
	case 4, 9, 11: // LONG, SLONG, FLOAT
		return 4
	case 5, 10, 12: // RATIONAL, SRATIONAL, DOUBLE
		return 8
	default:
		return 0
	}
}

// value returns an entry's payload, inline or out-of-line.
func (t *tiffFile) value(e ifdEntry) ([]byte, error) {
	size := typeSize(e.typ) * e.count
	if size == 0 {
		return nil, nil
	}
	if size <= 4 {
		return e.raw[:size], nil
	}
	if size > maxValueBytes {
		return nil, fmt.Errorf("tag %d payload too large (%d bytes)", e.tag, size)
	}
	off := t.bo.Uint32(e.raw[:])
	buf := make([]byte, size)
	if _, err := t.r.ReadAt(buf, int64(off)); err != nil {
		return nil, fmt.Errorf("read tag %d payload: %w", e.tag, err)
	}
	return buf, nil
}

func (d ifd) find(tag uint16) (ifdEntry, bool) {
	for _, e := range d.entries {
		if e.tag == tag {
			return e, true
		}
	}
	return ifdEntry{}, false
}

// firstShort returns the first SHORT value of the tag, if present.
func (t *tiffFile) firstShort(d ifd, tag uint16) (uint16, bool) {
	e, ok := d.find(tag)
	if !ok || e.typ != 3 || e.count == 0 {
		return 0, false
	}
	buf, err := t.value(e)
	if err != nil || len(buf) < 2 {
		return 0, false
	}
	return t.bo.Uint16(buf[:2]), true
}

// ascii returns the tag's ASCII payload with trailing NULs stripped.
func (t *tiffFile) ascii(d ifd, tag uint16) string {
	e, ok := d.find(tag)
	if !ok || e.typ != 2 {
		return ""
	}
	buf, err := t.value(e)
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(buf), "\x00")
}

// dtype names the pixel datatype of the IFD, numpy-style (uint16, float32).
func (t *tiffFile) dtype(d ifd) string {
	bits, ok := t.firstShort(d, tagBitsPerSample)
	if !ok || bits == 0 {
		bits = 8
	}
	format, ok := t.firstShort(d, tagSampleFormat)
	if !ok {
		format = 1
	}
	switch format {
	case 2:
		return fmt.Sprintf("int%d", bits)
	case 3:
		return fmt.Sprintf("float%d", bits)
	default:
		return fmt.Sprintf("uint%d", bits)
	}
}

// PageCount reports the number of IFDs (pages) in the file.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, first, err := openTIFF(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	count, _, err := t.walk(first)
	if err != nil {
		return count, fmt.Errorf("%s: %w", path, err)
	}
	return count, nil
}
