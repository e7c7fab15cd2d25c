package export

import "github.com/cuixing158/panoview/viewer/media"

// ExporterOption is a functional option for configuring an Exporter.
type ExporterOption func(*exporterImpl)

// WithNativeSize sets the offscreen render resolution. Frames render at this
// size and are scaled to the requested output size afterwards.
//
// Parameters:
//   - width: render width in pixels
//   - height: render height in pixels
//
// Returns:
//   - ExporterOption: functional option to set the native size
func WithNativeSize(width, height int) ExporterOption {
	return func(e *exporterImpl) {
		if width > 0 && height > 0 {
			e.nativeWidth = width
			e.nativeHeight = height
		}
	}
}

// WithSourceKind records the kind of the loaded panorama source. Exports are
// only valid for still image sources.
//
// Parameters:
//   - kind: the source kind
//
// Returns:
//   - ExporterOption: functional option to set the source kind
func WithSourceKind(kind media.SourceKind) ExporterOption {
	return func(e *exporterImpl) {
		e.sourceKind = kind
	}
}

// WithDefaultOutput sets the fallback output geometry and frame rate used
// when an Options field is zero.
//
// Parameters:
//   - width: default output width in pixels
//   - height: default output height in pixels
//   - fps: default frame rate
//
// Returns:
//   - ExporterOption: functional option to set the output defaults
func WithDefaultOutput(width, height, fps int) ExporterOption {
	return func(e *exporterImpl) {
		if width > 0 {
			e.defaultWidth = width
		}
		if height > 0 {
			e.defaultHeight = height
		}
		if fps > 0 {
			e.defaultFPS = fps
		}
	}
}
