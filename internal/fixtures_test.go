package internal

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// exifTIFF encodes the fields of b as a little-endian TIFF stream with an
// Exif sub-IFD holding DateTimeOriginal.
func exifTIFF(b MetadataBundle) []byte {
	type entry struct {
		tag   uint16
		typ   uint16
		count uint32
		value []byte
	}
	ascii := func(tag uint16, s string) entry {
		v := append([]byte(s), 0)
		return entry{tag: tag, typ: 2, count: uint32(len(v)), value: v}
	}

	var ifd0, sub []entry
	if b.Make != "" {
		ifd0 = append(ifd0, ascii(0x010f, b.Make))
	}
	if b.Model != "" {
		ifd0 = append(ifd0, ascii(0x0110, b.Model))
	}
	if b.DateTime != "" {
		ifd0 = append(ifd0, ascii(0x0132, b.DateTime))
	}
	if b.DateTimeOriginal != "" {
		sub = append(sub, ascii(0x9003, b.DateTimeOriginal))
	}
	if b.DateTimeDigitized != "" {
		sub = append(sub, ascii(0x9004, b.DateTimeDigitized))
	}

	ifdLen := func(n int) int { return 2 + 12*n + 4 }
	const ifd0Off = 8
	subOff := ifd0Off + ifdLen(len(ifd0)+1)
	dataOff := subOff + ifdLen(len(sub))

	le := binary.LittleEndian
	ptr := le.AppendUint32(nil, uint32(subOff))
	ifd0 = append(ifd0, entry{tag: 0x8769, typ: 4, count: 1, value: ptr})

	buf := []byte{'I', 'I', 0x2a, 0x00}
	buf = le.AppendUint32(buf, ifd0Off)
	var data []byte
	writeIFD := func(entries []entry) {
		buf = le.AppendUint16(buf, uint16(len(entries)))
		for _, e := range entries {
			buf = le.AppendUint16(buf, e.tag)
			buf = le.AppendUint16(buf, e.typ)
			buf = le.AppendUint32(buf, e.count)
			if len(e.value) <= 4 {
				inline := make([]byte, 4)
				copy(inline, e.value)
				buf = append(buf, inline...)
				continue
			}
			buf = le.AppendUint32(buf, uint32(dataOff+len(data)))
			data = append(data, e.value...)
			if len(data)%2 == 1 {
				data = append(data, 0)
			}
		}
		buf = le.AppendUint32(buf, 0)
	}
	writeIFD(ifd0)
	writeIFD(sub)
	return append(buf, data...)
}

// exifJPEG wraps an EXIF block in a minimal JPEG: SOI, APP1, EOI.
func exifJPEG(b MetadataBundle) []byte {
	payload := append([]byte("Exif\x00\x00"), exifTIFF(b)...)
	out := []byte{0xff, 0xd8, 0xff, 0xe1}
	out = binary.BigEndian.AppendUint16(out, uint16(len(payload)+2))
	out = append(out, payload...)
	return append(out, 0xff, 0xd9)
}

// mp4File builds an ftyp box followed by moov/mvhd (version 0) carrying the
// given creation time. A zero time leaves the field unset.
func mp4File(created time.Time) []byte {
	be := binary.BigEndian
	var secs uint32
	if !created.IsZero() {
		secs = uint32(created.Unix() + mp4EpochOffset)
	}

	ftyp := be.AppendUint32(nil, 24)
	ftyp = append(ftyp, "ftypisom"...)
	ftyp = be.AppendUint32(ftyp, 0x200)
	ftyp = append(ftyp, "isommp41"...)

	mvhd := be.AppendUint32(nil, 108)
	mvhd = append(mvhd, "mvhd"...)
	// version/flags, creation, modification, timescale, duration, rate
	for _, v := range []uint32{0, secs, secs, 1000, 0, 0x10000} {
		mvhd = be.AppendUint32(mvhd, v)
	}
	// volume, then reserved
	mvhd = be.AppendUint16(mvhd, 0x100)
	mvhd = append(mvhd, make([]byte, 10)...)
	for _, m := range []uint32{0x10000, 0, 0, 0, 0x10000, 0, 0, 0, 0x40000000} {
		mvhd = be.AppendUint32(mvhd, m)
	}
	// pre_defined, next track id
	mvhd = append(mvhd, make([]byte, 24)...)
	mvhd = be.AppendUint32(mvhd, 2)

	moov := be.AppendUint32(nil, uint32(8+len(mvhd)))
	moov = append(moov, "moov"...)
	moov = append(moov, mvhd...)

	return append(ftyp, moov...)
}

// writeFixture writes data to dir/rel, creating parents, and sets its mtime.
func writeFixture(t *testing.T, dir, rel string, data []byte, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
	if !mtime.IsZero() {
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}
	return path
}
