package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// logFile is the optional file sink; Close is safe to call more than once.
type logFile struct {
	mu sync.Mutex
	f  *os.File
}

func (l *logFile) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

// NewLogger builds the process logger from cfg. It writes to stderr and, when
// cfg.LogFile is set, appends to that file as well. Callers must Close the
// returned closer.
func NewLogger(cfg *Config) (hclog.Logger, io.Closer, error) {
	level := hclog.LevelFromString(cfg.LogLevel)
	if level == hclog.NoLevel {
		return nil, nil, fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}

	sink := &logFile{}
	opts := &hclog.LoggerOptions{
		Name:   "mfm",
		Level:  level,
		Output: os.Stderr,
		Color:  hclog.AutoColor,
	}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, err
		}
		sink.f = f
		opts.Output = io.MultiWriter(os.Stderr, f)
		opts.Color = hclog.ColorOff
	}

	return hclog.New(opts), sink, nil
}
