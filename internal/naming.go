package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Top-level folders under the output root, one per media type.
var mediaDirs = map[MediaType]string{
	MediaImage:   "photos",
	MediaVideo:   "videos",
	MediaUnknown: "other",
}

// Files dated from the filesystem go here instead of the day tree.
const noMetadataDir = "noexif"

// Mapping is the computed destination of one source file.
type Mapping struct {
	Source      string
	Destination string
	MediaType   MediaType
	Timestamp   ResolvedTimestamp
	Context     PathContext
	Camera      string
	Size        int64
}

// Name returns the destination filename.
func (m Mapping) Name() string { return filepath.Base(m.Destination) }

// NameBuilder derives destination paths under OutputRoot. Destinations are
// unique for the lifetime of the builder and never point at an existing file.
type NameBuilder struct {
	OutputRoot    string
	Reader        MetadataReader
	Resolver      *Resolver
	Classifier    *Classifier
	ContextLevels int
	Logger        hclog.Logger

	mu      sync.Mutex
	claimed map[string]string // destination -> source
}

func NewNameBuilder(outputRoot string, reader MetadataReader, resolver *Resolver, classifier *Classifier, contextLevels int, logger hclog.Logger) *NameBuilder {
	if classifier == nil {
		classifier = defaultClassifier
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &NameBuilder{
		OutputRoot:    outputRoot,
		Reader:        reader,
		Resolver:      resolver,
		Classifier:    classifier,
		ContextLevels: contextLevels,
		Logger:        logger,
		claimed:       make(map[string]string),
	}
}

// Build computes the destination for path. Every file goes through the
// metadata reader, so RAW and other unlisted formats keep their capture
// time. Only a failed stat is returned as an error.
func (b *NameBuilder) Build(path string) (Mapping, error) {
	ext := NormalizeExtension(fileExtension(filepath.Base(path)))
	mediaType := b.Classifier.Classify(ext)

	var (
		bundle  MetadataBundle
		readErr error
	)
	if b.Reader != nil {
		bundle, readErr = b.Reader.Read(path)
	}
	if readErr != nil && mediaType == MediaUnknown {
		// Expected for documents and other non-media files.
		b.Logger.Debug("no metadata", "path", path, "error", readErr)
		readErr = nil
	}

	ts, err := b.Resolver.Resolve(path, bundle, readErr)
	if err != nil {
		return Mapping{}, err
	}
	if bundle.HasCamera() {
		b.Logger.Debug("camera", "path", path, "make", bundle.Make, "model", bundle.Model)
	}

	pc := ExtractPathComponents(path, b.ContextLevels)
	dest := filepath.Join(destinationDir(b.OutputRoot, mediaType, ts), DestinationName(ts, pc, ext))

	return Mapping{
		Source:      path,
		Destination: b.claim(path, dest),
		MediaType:   mediaType,
		Timestamp:   ts,
		Context:     pc,
		Camera:      bundle.Camera(),
	}, nil
}

// DestinationName builds "YYYYMMDD_HHMMSS[_context].ext".
func DestinationName(ts ResolvedTimestamp, pc PathContext, ext string) string {
	name := ts.Time.Format("20060102_150405")
	if ctx := contextLabel(pc.Segments); ctx != "" {
		name += "_" + ctx
	}
	if ext != "" {
		name += "." + ext
	}
	return name
}

func contextLabel(segments []string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if cleaned := strings.Join(strings.Fields(s), "-"); cleaned != "" {
			parts = append(parts, cleaned)
		}
	}
	return strings.Join(parts, "-")
}

// destinationDir places metadata-dated files in a day tree and the rest in
// a per-month noexif folder.
func destinationDir(root string, mediaType MediaType, ts ResolvedTimestamp) string {
	base := filepath.Join(root, mediaDirs[mediaType])
	t := ts.Time
	if ts.Provenance == FromFilesystem {
		return filepath.Join(base, noMetadataDir, fmt.Sprintf("%04d-%02d", t.Year(), t.Month()))
	}
	return filepath.Join(base,
		fmt.Sprintf("%04d", t.Year()),
		fmt.Sprintf("%02d", t.Month()),
		fmt.Sprintf("%02d", t.Day()))
}

// claim reserves dest for src, appending _2, _3... when it is taken by
// another source or already exists on disk.
func (b *NameBuilder) claim(src, dest string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.available(src, dest) {
		b.claimed[dest] = src
		return dest
	}

	ext := filepath.Ext(dest)
	base := strings.TrimSuffix(dest, ext)
	for i := 2; ; i++ {
		try := fmt.Sprintf("%s_%d%s", base, i, ext)
		if b.available(src, try) {
			b.claimed[try] = src
			return try
		}
	}
}

func (b *NameBuilder) available(src, dest string) bool {
	if owner, ok := b.claimed[dest]; ok {
		return owner == src
	}
	_, err := os.Lstat(dest)
	return errors.Is(err, fs.ErrNotExist)
}
