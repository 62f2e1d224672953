package internal

import (
	"errors"
	"fmt"
	"sync"

	"github.com/barasher/go-exiftool"
)

// ExifToolReader delegates decoding to a long-running exiftool process. It
// understands far more containers than ExifReader (RAW, HEIC, most video).
type ExifToolReader struct {
	mu sync.Mutex
	et *exiftool.Exiftool
}

func NewExifToolReader() (*ExifToolReader, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("failed to start exiftool: %w", err)
	}
	return &ExifToolReader{et: et}, nil
}

func (r *ExifToolReader) Read(path string) (MetadataBundle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := r.et.ExtractMetadata(path)
	if len(infos) == 0 {
		return MetadataBundle{}, unreadable(path, errors.New("exiftool returned nothing"))
	}
	info := infos[0]
	if info.Err != nil {
		return MetadataBundle{}, unreadable(path, info.Err)
	}

	field := func(key string) string {
		s, err := info.GetString(key)
		if err != nil {
			return ""
		}
		return cleanTagValue(s)
	}

	return MetadataBundle{
		DateTimeOriginal:  field("DateTimeOriginal"),
		DateTime:          field("ModifyDate"),
		DateTimeDigitized: field("CreateDate"),
		Make:              field("Make"),
		Model:             field("Model"),
	}, nil
}

func (r *ExifToolReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.et.Close()
}
