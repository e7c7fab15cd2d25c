package media

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
)

// LoadImage decodes a still panorama into an RGBA frame. The decoded image
// is flipped vertically so row 0 is the bottom of the panorama, matching the
// sphere mesh's texture coordinates.
//
// Parameters:
//   - path: the image file path
//
// Returns:
//   - *Frame: the decoded RGBA frame
//   - error: error if the file cannot be opened or decoded
func LoadImage(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	flipVertical(rgba)

	return &Frame{
		Pixels: rgba.Pix,
		Width:  width,
		Height: height,
	}, nil
}

// flipVertical reverses the row order of an RGBA image in place.
func flipVertical(img *image.RGBA) {
	height := img.Rect.Dy()
	row := make([]byte, img.Stride)
	for y := 0; y < height/2; y++ {
		top := img.Pix[y*img.Stride : (y+1)*img.Stride]
		bottom := img.Pix[(height-1-y)*img.Stride : (height-y)*img.Stride]
		copy(row, top)
		copy(top, bottom)
		copy(bottom, row)
	}
}
