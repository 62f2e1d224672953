package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
)

var (
	// ErrMetadataUnreadable marks a file whose metadata container is absent or corrupt.
	ErrMetadataUnreadable = errors.New("metadata unreadable")
	// ErrCancelled is returned when a walk stops because of an interrupt.
	ErrCancelled = errors.New("import cancelled")
	// ErrPathNotFound is returned when the input root does not exist.
	ErrPathNotFound = errors.New("path not found")
)

// StatError reports that filesystem metadata for Path could not be read.
type StatError struct {
	Path string
	Err  error
}

func (e *StatError) Error() string {
	return fmt.Sprintf("failed to stat %s: %v", e.Path, e.Err)
}

func (e *StatError) Unwrap() error { return e.Err }

// IsCancelled reports whether err ends a walk because of an interrupt.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsStatFailure reports whether err comes from a failed stat.
func IsStatFailure(err error) bool {
	var e *StatError
	return errors.As(err, &e)
}

// ErrorCategory represents the type of error encountered
type ErrorCategory string

const (
	ErrorCategoryIO          ErrorCategory = "io_error"           // File system, permissions
	ErrorCategoryMetadata    ErrorCategory = "metadata_error"     // EXIF/MP4 container unreadable
	ErrorCategoryDate        ErrorCategory = "date_error"         // Date present but unparseable
	ErrorCategoryUnsupported ErrorCategory = "unsupported_format" // Unrecognized file format
	ErrorCategoryUnknown     ErrorCategory = "unknown_error"      // Unexpected errors
)

// ErrorSeverity indicates how critical the error is
type ErrorSeverity string

const (
	ErrorSeverityCritical ErrorSeverity = "critical" // Import cannot continue
	ErrorSeverityError    ErrorSeverity = "error"    // File-level issues
	ErrorSeverityWarning  ErrorSeverity = "warning"  // Recovered by falling back to filesystem time
)

// ProcessError represents a categorized error during file processing
type ProcessError struct {
	FilePath    string
	Category    ErrorCategory
	Severity    ErrorSeverity
	OriginalErr error
	Suggestion  string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("[%s/%s] %s: %v", e.Severity, e.Category, e.FilePath, e.OriginalErr)
}

func (e *ProcessError) Unwrap() error { return e.OriginalErr }

// errorRule maps errors matching match onto a category. Rules are checked in
// order and the first match wins.
type errorRule struct {
	match      func(err error, msg string) bool
	category   ErrorCategory
	severity   ErrorSeverity
	suggestion string
}

func is(target error) func(error, string) bool {
	return func(err error, _ string) bool { return errors.Is(err, target) }
}

func mentions(words ...string) func(error, string) bool {
	return func(_ error, msg string) bool {
		for _, w := range words {
			if strings.Contains(msg, w) {
				return true
			}
		}
		return false
	}
}

var errorRules = []errorRule{
	{is(ErrMetadataUnreadable), ErrorCategoryMetadata, ErrorSeverityWarning,
		"Filesystem modification time is used instead - try --exiftool for broader format support"},
	{is(ErrPathNotFound), ErrorCategoryIO, ErrorSeverityError,
		"Path disappeared or never existed - check if the external drive is still connected"},
	{is(fs.ErrNotExist), ErrorCategoryIO, ErrorSeverityError,
		"Path disappeared or never existed - check if the external drive is still connected"},
	{is(fs.ErrPermission), ErrorCategoryIO, ErrorSeverityCritical,
		"Check read permissions on the input tree and write permissions on the output root"},
	{mentions("too many open files"), ErrorCategoryIO, ErrorSeverityCritical,
		"System file descriptor limit reached - increase ulimit or restart"},
	{mentions("input/output error"), ErrorCategoryIO, ErrorSeverityError,
		"I/O error - check disk health with SMART tools"},
	{func(err error, _ string) bool { return IsStatFailure(err) }, ErrorCategoryIO, ErrorSeverityError,
		"File metadata could not be read - check the source media"},
	{mentions("date"), ErrorCategoryDate, ErrorSeverityWarning,
		"Embedded date could not be parsed - filesystem modification time is used instead"},
	{mentions("unsupported", "unknown format"), ErrorCategoryUnsupported, ErrorSeverityWarning,
		"File format not recognized"},
}

// CategorizeError wraps err in a ProcessError carrying its category, severity
// and a hint for the user. Nil stays nil.
func CategorizeError(filePath string, err error) *ProcessError {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range errorRules {
		if rule.match(err, msg) {
			return &ProcessError{
				FilePath:    filePath,
				Category:    rule.category,
				Severity:    rule.severity,
				OriginalErr: err,
				Suggestion:  rule.suggestion,
			}
		}
	}
	return &ProcessError{
		FilePath:    filePath,
		Category:    ErrorCategoryUnknown,
		Severity:    ErrorSeverityError,
		OriginalErr: err,
		Suggestion:  "Unexpected error - rerun with MFM_LOG_LEVEL=debug for details",
	}
}

// ErrorStats tracks recoverable problems seen during an import.
type ErrorStats struct {
	mu         sync.Mutex
	Total      int
	Critical   int
	Errors     int
	Warnings   int
	ByCategory map[ErrorCategory]int
	LastErrors []*ProcessError // Last 5 errors for quick diagnosis
}

func NewErrorStats() *ErrorStats {
	return &ErrorStats{
		ByCategory: make(map[ErrorCategory]int),
		LastErrors: make([]*ProcessError, 0, 5),
	}
}

func (s *ErrorStats) Add(err *ProcessError) {
	if s == nil || err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Total++
	s.ByCategory[err.Category]++

	switch err.Severity {
	case ErrorSeverityCritical:
		s.Critical++
	case ErrorSeverityError:
		s.Errors++
	case ErrorSeverityWarning:
		s.Warnings++
	}

	if len(s.LastErrors) >= 5 {
		s.LastErrors = s.LastErrors[1:]
	}
	s.LastErrors = append(s.LastErrors, err)
}

// GenerateReport creates a human-readable report, empty when nothing was recorded.
func (s *ErrorStats) GenerateReport() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Total == 0 {
		return ""
	}

	var report strings.Builder
	fmt.Fprintf(&report, "Import recovered from %d problems:\n", s.Total)
	if s.Critical > 0 {
		fmt.Fprintf(&report, "  Critical: %d\n", s.Critical)
	}
	if s.Errors > 0 {
		fmt.Fprintf(&report, "  Errors:   %d\n", s.Errors)
	}
	if s.Warnings > 0 {
		fmt.Fprintf(&report, "  Warnings: %d\n", s.Warnings)
	}

	report.WriteString("Categories:\n")
	for _, cat := range []ErrorCategory{ErrorCategoryIO, ErrorCategoryMetadata, ErrorCategoryDate, ErrorCategoryUnsupported, ErrorCategoryUnknown} {
		if n := s.ByCategory[cat]; n > 0 {
			fmt.Fprintf(&report, "  - %s: %d\n", cat, n)
		}
	}

	report.WriteString("Recent:\n")
	for i, err := range s.LastErrors {
		fmt.Fprintf(&report, "  %d. %s (%s)\n", i+1, err.FilePath, err.Category)
		if err.Suggestion != "" {
			fmt.Fprintf(&report, "     %s\n", err.Suggestion)
		}
	}

	if s.ByCategory[ErrorCategoryMetadata] > s.Total/2 {
		report.WriteString("Many metadata errors - consider using the --exiftool flag\n")
	}
	return report.String()
}
