package testsupport

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// WriteTIFF writes a minimal little-endian TIFF with the given number of
// pages (IFDs). A non-empty description becomes the first page's
// ImageDescription tag. The fixtures carry directory structure and tags only,
// no pixel strips; they exist for container introspection, not decoding.
// Pixel datatype is uint16.
func WriteTIFF(t testing.TB, path string, pages int, description string) {
	t.Helper()
	if pages < 1 {
		pages = 1
	}

	bo := binary.LittleEndian
	var buf bytes.Buffer
	u16 := func(v uint16) {
		var b [2]byte
		bo.PutUint16(b[:], v)
		buf.Write(b[:])
	}
	u32 := func(v uint32) {
		var b [4]byte
		bo.PutUint32(b[:], v)
		buf.Write(b[:])
	}
	entry := func(tag, typ uint16, count uint32, raw [4]byte) {
		u16(tag)
		u16(typ)
		u32(count)
		buf.Write(raw[:])
	}
	entryLong := func(tag uint16, value uint32) {
		var raw [4]byte
		bo.PutUint32(raw[:], value)
		entry(tag, 4, 1, raw)
	}
	entryShort := func(tag uint16, value uint16) {
		var raw [4]byte
		bo.PutUint16(raw[:2], value)
		entry(tag, 3, 1, raw)
	}

	buf.WriteString("II")
	u16(42)
	u32(8)

	pos := uint32(8)
	for page := 0; page < pages; page++ {
		var descBytes []byte
		if page == 0 && description != "" {
			descBytes = append([]byte(description), 0)
		}

		entryCount := 4
		if len(descBytes) > 0 {
			entryCount = 5
		}
		ifdSize := uint32(2 + 12*entryCount + 4)
		extOff := pos + ifdSize
		var ext []byte
		if len(descBytes) > 4 {
			ext = descBytes
		}
		end := extOff + uint32(len(ext))
		pad := end % 2
		next := end + pad
		last := page == pages-1

		u16(uint16(entryCount))
		entryLong(256, 64) // ImageWidth
		entryLong(257, 64) // ImageLength
		entryShort(258, 16)
		if len(descBytes) > 0 {
			var raw [4]byte
			if len(descBytes) <= 4 {
				copy(raw[:], descBytes)
			} else {
				bo.PutUint32(raw[:], extOff)
			}
			entry(270, 2, uint32(len(descBytes)), raw)
		}
		entryShort(339, 1)
		if last {
			u32(0)
		} else {
			u32(next)
		}
		buf.Write(ext)
		if pad == 1 && !last {
			buf.WriteByte(0)
		}
		pos = next
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
