package export

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// scaleFrame resamples a rendered frame to the requested output size using
// bilinear filtering.
//
// Parameters:
//   - src: the frame at native render resolution
//   - width: output width in pixels
//   - height: output height in pixels
//
// Returns:
//   - *image.RGBA: the scaled frame
func scaleFrame(src *image.RGBA, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
