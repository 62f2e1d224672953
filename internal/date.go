package internal

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const exifLayout = "2006:01:02 15:04:05"

// Tried in order; the first layout that matches wins.
var dateLayouts = []string{
	exifLayout,
	"2006-01-02 15:04:05",
	"2006:01:02 15:04:05.999999999",
}

// Provenance tells where a resolved timestamp came from.
type Provenance int

const (
	FromMetadata Provenance = iota
	FromFilesystem
)

func (p Provenance) String() string {
	if p == FromMetadata {
		return "from_metadata"
	}
	return "from_filesystem"
}

// ResolvedTimestamp is the canonical creation time of a file.
type ResolvedTimestamp struct {
	Time       time.Time
	Provenance Provenance
}

// ParseDate parses a metadata date string as a wall clock in loc. Strings
// that match no layout, or name a wall clock that does not exist or occurs
// twice in loc, yield false.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		wall, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return inLocation(wall, loc)
	}
	return time.Time{}, false
}

// inLocation maps the UTC-encoded wall clock onto loc. time.Date silently
// normalizes DST gaps and picks one side of a repeated hour, so candidates
// are built from the offsets in effect around the date and checked.
func inLocation(wall time.Time, loc *time.Location) (time.Time, bool) {
	var found []time.Time
	for _, probe := range []time.Duration{-24 * time.Hour, 0, 24 * time.Hour} {
		_, offset := wall.Add(probe).In(loc).Zone()
		t := wall.Add(-time.Duration(offset) * time.Second).In(loc)
		if !sameWallClock(t, wall) {
			continue
		}
		dup := false
		for _, f := range found {
			if f.Equal(t) {
				dup = true
				break
			}
		}
		if !dup {
			found = append(found, t)
		}
	}
	if len(found) != 1 {
		return time.Time{}, false
	}
	return found[0], true
}

func sameWallClock(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd &&
		a.Hour() == b.Hour() && a.Minute() == b.Minute() &&
		a.Second() == b.Second() && a.Nanosecond() == b.Nanosecond()
}

// getFileModTime fallback to file modification time
func getFileModTime(path string) (time.Time, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}, &StatError{Path: path, Err: err}
	}
	return fi.ModTime(), nil
}

// Resolver picks a file's timestamp: the metadata capture time when present
// and parseable, otherwise the filesystem modification time.
type Resolver struct {
	Location *time.Location
	Logger   hclog.Logger
	Stats    *ErrorStats
}

func NewResolver(logger hclog.Logger, stats *ErrorStats) *Resolver {
	return &Resolver{Location: time.Local, Logger: logger, Stats: stats}
}

// Resolve combines the outcome of a metadata read with the filesystem
// fallback. A read error is recovered here; only a failed stat is returned.
func (r *Resolver) Resolve(path string, bundle MetadataBundle, readErr error) (ResolvedTimestamp, error) {
	log := r.logger()
	loc := r.location()

	switch {
	case readErr != nil:
		log.Warn("metadata unreadable, using filesystem time", "path", path, "error", readErr)
		r.Stats.Add(CategorizeError(path, readErr))
	case bundle.HasDateTimeOriginal():
		zone := bundle.Zone
		if zone == nil {
			zone = loc
		}
		if t, ok := ParseDate(bundle.DateTimeOriginal, zone); ok {
			log.Debug("capture time from metadata", "path", path, "time", t)
			return ResolvedTimestamp{Time: t.In(loc), Provenance: FromMetadata}, nil
		}
		log.Debug("unparseable capture date", "path", path, "value", bundle.DateTimeOriginal)
		r.Stats.Add(CategorizeError(path, &dateParseError{value: bundle.DateTimeOriginal}))
	}

	mod, err := getFileModTime(path)
	if err != nil {
		return ResolvedTimestamp{}, err
	}
	log.Debug("capture time from filesystem", "path", path, "time", mod)
	return ResolvedTimestamp{Time: mod.In(loc), Provenance: FromFilesystem}, nil
}

func (r *Resolver) logger() hclog.Logger {
	if r.Logger == nil {
		return hclog.NewNullLogger()
	}
	return r.Logger
}

func (r *Resolver) location() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

type dateParseError struct{ value string }

func (e *dateParseError) Error() string { return fmt.Sprintf("unparseable date %q", e.value) }
