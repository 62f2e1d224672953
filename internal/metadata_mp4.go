package internal

import (
	"errors"
	"os"
	"time"

	mp4 "github.com/abema/go-mp4"
)

// Seconds between the mp4 epoch (1904-01-01 UTC) and the Unix epoch.
const mp4EpochOffset = 2082844800

// MP4Reader reads creation and modification times from the moov/mvhd box of
// ISO base media files (mp4, mov, 3gp). Those are exact instants, so they are
// reported in UTC.
type MP4Reader struct{}

func (r MP4Reader) Read(path string) (MetadataBundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return MetadataBundle{}, unreadable(path, err)
	}
	defer f.Close()

	boxes, err := mp4.ExtractBoxWithPayload(f, nil, mp4.BoxPath{mp4.BoxTypeMoov(), mp4.BoxTypeMvhd()})
	if err != nil {
		return MetadataBundle{}, unreadable(path, err)
	}
	if len(boxes) == 0 {
		return MetadataBundle{}, unreadable(path, errors.New("no mvhd box"))
	}
	mvhd, ok := boxes[0].Payload.(*mp4.Mvhd)
	if !ok {
		return MetadataBundle{}, unreadable(path, errors.New("unexpected mvhd payload"))
	}

	var created, modified uint64
	if mvhd.Version > 0 {
		created = mvhd.CreationTimeV1
		modified = mvhd.ModificationTimeV1
	} else {
		created = uint64(mvhd.CreationTimeV0)
		modified = uint64(mvhd.ModificationTimeV0)
	}

	return MetadataBundle{
		DateTimeOriginal: r.format(created),
		DateTime:         r.format(modified),
		Zone:             time.UTC,
	}, nil
}

// format renders an mp4 timestamp the way EXIF stores dates. Zero and
// pre-1970 values are treated as unset.
func (r MP4Reader) format(secs uint64) string {
	if secs <= mp4EpochOffset {
		return ""
	}
	return time.Unix(int64(secs-mp4EpochOffset), 0).UTC().Format(exifLayout)
}
