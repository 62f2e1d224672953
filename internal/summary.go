package internal

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Summary collects the outcome of one import run.
type Summary struct {
	Input  string
	Output string

	ByType         map[MediaType]int
	TotalSize      int64
	FromMetadata   int
	FromFilesystem int

	DirectoriesScanned int
	SkippedNoExtension int
	SkippedOther       int // unknown types in media-only mode
	SkippedHidden      int
	SkippedDirs        int // subdirectories not entered because traversal is off
	SkippedSpecial     int // symlinks, sockets, devices

	Warnings *ErrorStats
	Duration time.Duration
}

func NewSummary(input, output string) *Summary {
	return &Summary{
		Input:    input,
		Output:   output,
		ByType:   make(map[MediaType]int),
		Warnings: NewErrorStats(),
	}
}

func (s *Summary) add(m Mapping) {
	s.ByType[m.MediaType]++
	s.TotalSize += m.Size
	if m.Timestamp.Provenance == FromMetadata {
		s.FromMetadata++
	} else {
		s.FromFilesystem++
	}
}

// Mapped returns the number of files that received a destination.
func (s *Summary) Mapped() int {
	n := 0
	for _, c := range s.ByType {
		n += c
	}
	return n
}

// DisplaySummary writes a short human-readable table.
func DisplaySummary(w io.Writer, s *Summary) {
	fmt.Fprintf(w, "=== Import: %s -> %s ===\n", s.Input, s.Output)
	fmt.Fprintf(w, "  - %d files mapped (%s) in %d directories\n", s.Mapped(), formatBytes(s.TotalSize), s.DirectoriesScanned)
	for _, mt := range []MediaType{MediaImage, MediaVideo, MediaUnknown} {
		if n := s.ByType[mt]; n > 0 {
			fmt.Fprintf(w, "    %s: %d\n", mt, n)
		}
	}
	if s.Mapped() > 0 {
		fmt.Fprintf(w, "  - Dated from metadata: %d%%, from filesystem: %d%%\n",
			percentage(s.FromMetadata, s.Mapped()), percentage(s.FromFilesystem, s.Mapped()))
	}

	var skipped []string
	for _, sk := range []struct {
		n    int
		what string
	}{
		{s.SkippedNoExtension, "without extension"},
		{s.SkippedOther, "non-media"},
		{s.SkippedHidden, "hidden"},
		{s.SkippedDirs, "subdirectories"},
		{s.SkippedSpecial, "links/special"},
	} {
		if sk.n > 0 {
			skipped = append(skipped, fmt.Sprintf("%d %s", sk.n, sk.what))
		}
	}
	if len(skipped) > 0 {
		fmt.Fprintf(w, "  - Skipped: %s\n", strings.Join(skipped, ", "))
	}
	fmt.Fprintf(w, "  - Completed in %v\n", s.Duration.Round(time.Millisecond))

	if report := s.Warnings.GenerateReport(); report != "" {
		fmt.Fprintf(w, "\n%s", report)
	}
}

func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return (part * 100) / total
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
