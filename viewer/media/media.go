// Package media classifies panorama sources and decodes them into RGBA
// frames: still images via the image registry, video via an ffmpeg rawvideo
// pipe, plus an ffmpeg-backed writer for exported clips.
package media

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownSourceType indicates a source file extension that is neither a
// supported image nor a supported video format.
var ErrUnknownSourceType = errors.New("media: unsupported source file extension")

// SourceKind distinguishes still image sources from video sources. The kind
// is fixed at load time from the file extension and never changes while a
// source is open.
type SourceKind int

const (
	// SourceUnknown is the zero value for unclassifiable paths.
	SourceUnknown SourceKind = iota

	// SourceImage is a still equirectangular image.
	SourceImage

	// SourceVideo is an equirectangular video whose frames stream onto the
	// sphere texture.
	SourceVideo
)

// String returns a human-readable kind name for logging.
//
// Returns:
//   - string: the kind name
func (k SourceKind) String() string {
	switch k {
	case SourceImage:
		return "Image"
	case SourceVideo:
		return "Video"
	default:
		return "Unknown"
	}
}

// Frame is one decoded RGBA frame, bottom row first to match the sphere's
// texture coordinates. Pixels holds 4 bytes per pixel, row-major.
type Frame struct {
	Pixels []byte
	Width  int
	Height int
}

var (
	imageExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".bmp":  true,
		".tga":  true,
	}
	videoExtensions = map[string]bool{
		".mp4": true,
		".avi": true,
		".mov": true,
		".mkv": true,
	}
)

// Classify determines the source kind from a path's extension. The match is
// case-insensitive.
//
// Parameters:
//   - path: the source file path
//
// Returns:
//   - SourceKind: SourceImage or SourceVideo on success
//   - error: ErrUnknownSourceType for unrecognized extensions
func Classify(path string) (SourceKind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case imageExtensions[ext]:
		return SourceImage, nil
	case videoExtensions[ext]:
		return SourceVideo, nil
	default:
		return SourceUnknown, fmt.Errorf("%w: %q", ErrUnknownSourceType, ext)
	}
}
