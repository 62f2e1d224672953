package internal

import (
	"strings"
)

// MediaType is the category a file extension maps to.
type MediaType int

const (
	MediaUnknown MediaType = iota
	MediaImage
	MediaVideo
)

func (m MediaType) String() string {
	switch m {
	case MediaImage:
		return "Image"
	case MediaVideo:
		return "Video"
	default:
		return "Unknown"
	}
}

// Default extension lists, in normalized form.
var (
	DefaultImageExtensions = []string{"jpg", "png", "gif", "bmp", "tif", "webp", "heic"}
	DefaultVideoExtensions = []string{"mp4", "mov", "mkv", "avi"}
)

var extensionSynonyms = map[string]string{
	"jpeg": "jpg",
	"jpe":  "jpg",
	"tiff": "tif",
}

// NormalizeExtension lower-cases ext, drops leading dots and rewrites known
// synonyms. It is idempotent.
func NormalizeExtension(ext string) string {
	e := strings.ToLower(strings.TrimLeft(ext, "."))
	if canonical, ok := extensionSynonyms[e]; ok {
		return canonical
	}
	return e
}

// Classifier maps normalized extensions to media types. The lists are fixed
// at construction and never change afterwards.
type Classifier struct {
	images map[string]struct{}
	videos map[string]struct{}
}

// NewClassifier builds a Classifier; entries may be given with or without a
// leading dot and in any case.
func NewClassifier(images, videos []string) *Classifier {
	c := &Classifier{
		images: make(map[string]struct{}, len(images)),
		videos: make(map[string]struct{}, len(videos)),
	}
	for _, e := range images {
		c.images[NormalizeExtension(e)] = struct{}{}
	}
	for _, e := range videos {
		c.videos[NormalizeExtension(e)] = struct{}{}
	}
	return c
}

// Classify checks the image list first, then the video list.
func (c *Classifier) Classify(ext string) MediaType {
	e := NormalizeExtension(ext)
	if _, ok := c.images[e]; ok {
		return MediaImage
	}
	if _, ok := c.videos[e]; ok {
		return MediaVideo
	}
	return MediaUnknown
}

var defaultClassifier = NewClassifier(DefaultImageExtensions, DefaultVideoExtensions)

// ClassifyExtension classifies ext against the default lists.
func ClassifyExtension(ext string) MediaType {
	return defaultClassifier.Classify(ext)
}

// fileExtension returns the extension of name without the dot, or "" when
// there is none. Dotfiles like ".bashrc" have no extension.
func fileExtension(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || idx == len(name)-1 {
		return ""
	}
	return name[idx+1:]
}
