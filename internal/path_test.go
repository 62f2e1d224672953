package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPathComponents(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		levels   int
		segments []string
		filename string
	}{
		{"two levels", "/a/b/c/file.jpg", 2, []string{"b", "c"}, "file.jpg"},
		{"more levels than available", "/a/b/c/file.jpg", 5, []string{"a", "b", "c"}, "file.jpg"},
		{"zero levels", "/a/b/c/file.jpg", 0, []string{}, "file.jpg"},
		{"relative", "holiday/beach/img.png", 1, []string{"beach"}, "img.png"},
		{"trailing separator", "/a/b/", 1, []string{"b"}, ""},
		{"dot components", "/a/./b/../c/file.jpg", 5, []string{"a", "b", "c"}, "file.jpg"},
		{"trailing dotdot", "/a/b/..", 5, []string{"a", "b"}, ""},
		{"root", "/", 3, []string{}, ""},
		{"bare filename", "file.jpg", 3, []string{}, "file.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := ExtractPathComponents(tt.path, tt.levels)
			assert.Equal(t, tt.segments, pc.Segments)
			assert.Equal(t, tt.filename, pc.Filename)
		})
	}
}

func TestExtractPathComponents_ExistingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "2019", "summer.trip")
	require.NoError(t, os.MkdirAll(dir, 0755))

	pc := ExtractPathComponents(dir, 2)

	assert.Equal(t, []string{"2019", "summer.trip"}, pc.Segments)
	assert.Empty(t, pc.Filename)
}

func TestExtractPathComponents_NegativeLevels(t *testing.T) {
	pc := ExtractPathComponents("/a/b/file.jpg", -1)

	assert.Empty(t, pc.Segments)
	assert.Equal(t, "file.jpg", pc.Filename)
}
