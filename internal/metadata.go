package internal

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rwcarlsen/goexif/exif"
)

// MetadataBundle holds the raw metadata fields of one file. Every field is
// optional; an empty string means the field was absent.
type MetadataBundle struct {
	DateTimeOriginal  string
	DateTime          string
	DateTimeDigitized string
	Make              string
	Model             string

	// Zone the date strings are written in. Nil means local wall clock,
	// which is what EXIF stores.
	Zone *time.Location
}

func (b MetadataBundle) HasDateTimeOriginal() bool { return b.DateTimeOriginal != "" }

func (b MetadataBundle) HasCamera() bool { return b.Make != "" || b.Model != "" }

// Camera returns "Make Model" with whichever parts are present.
func (b MetadataBundle) Camera() string {
	return strings.TrimSpace(b.Make + " " + b.Model)
}

// MetadataReader extracts a MetadataBundle from a file. Errors wrap
// ErrMetadataUnreadable; they are expected for non-media files.
type MetadataReader interface {
	Read(path string) (MetadataBundle, error)
}

func unreadable(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMetadataUnreadable, path, err)
}

// ExifReader decodes EXIF containers (JPEG, TIFF and friends).
type ExifReader struct{}

func (ExifReader) Read(path string) (MetadataBundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return MetadataBundle{}, unreadable(path, err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return MetadataBundle{}, unreadable(path, err)
	}

	return MetadataBundle{
		DateTimeOriginal:  exifString(x, exif.DateTimeOriginal),
		DateTime:          exifString(x, exif.DateTime),
		DateTimeDigitized: exifString(x, exif.DateTimeDigitized),
		Make:              exifString(x, exif.Make),
		Model:             exifString(x, exif.Model),
	}, nil
}

func exifString(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return cleanTagValue(s)
}

func cleanTagValue(s string) string {
	return strings.TrimSpace(strings.Trim(s, "\x00"))
}

// ISO base media containers carry their dates in moov/mvhd instead of EXIF.
var isoBMFFTypes = []string{
	"video/mp4",
	"video/quicktime",
	"video/3gpp",
	"video/3gpp2",
	"video/x-m4v",
}

// DetectingReader sniffs the content type and hands the file to the matching
// decoder.
type DetectingReader struct {
	Exif  MetadataReader
	Video MetadataReader
}

func NewDetectingReader() *DetectingReader {
	return &DetectingReader{
		Exif:  ExifReader{},
		Video: MP4Reader{},
	}
}

func (r *DetectingReader) Read(path string) (MetadataBundle, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return MetadataBundle{}, unreadable(path, err)
	}
	if isISOBMFF(mtype) {
		return r.Video.Read(path)
	}
	return r.Exif.Read(path)
}

func isISOBMFF(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if mimetype.EqualsAny(m.String(), isoBMFFTypes...) {
			return true
		}
	}
	return false
}

// OpenMetadataReader returns the reader selected by cfg and a function that
// releases it.
func OpenMetadataReader(cfg *Config) (MetadataReader, func() error, error) {
	if cfg != nil && cfg.UseExifTool {
		r, err := NewExifToolReader()
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	}
	return NewDetectingReader(), func() error { return nil }, nil
}
