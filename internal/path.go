package internal

import (
	"os"
	"path/filepath"
	"strings"
)

// PathContext is the tail of a path: up to N parent directory names in
// parent-to-child order, plus the bare filename.
type PathContext struct {
	Segments []string
	Filename string
}

// ExtractPathComponents returns the last levels directory segments of path
// and its filename. Root, "." and ".." components are never counted. The last
// component is the filename unless path names an existing directory or ends
// in a separator, "." or "..".
func ExtractPathComponents(path string, levels int) PathContext {
	rest := path[len(filepath.VolumeName(path)):]
	raw := strings.FieldsFunc(rest, func(r rune) bool {
		return r < 0x80 && os.IsPathSeparator(uint8(r))
	})

	hasFilename := len(raw) > 0 && !endsWithSeparator(rest)
	if hasFilename {
		last := raw[len(raw)-1]
		if last == "." || last == ".." || isDir(path) {
			hasFilename = false
		}
	}

	var filename string
	if hasFilename {
		filename = raw[len(raw)-1]
		raw = raw[:len(raw)-1]
	}

	dirs := make([]string, 0, len(raw))
	for _, c := range raw {
		if c == "." || c == ".." {
			continue
		}
		dirs = append(dirs, c)
	}

	if levels < 0 {
		levels = 0
	}
	if len(dirs) > levels {
		dirs = dirs[len(dirs)-levels:]
	}
	return PathContext{Segments: dirs, Filename: filename}
}

func endsWithSeparator(p string) bool {
	return p != "" && os.IsPathSeparator(p[len(p)-1])
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
