package media

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const jpegQuality = 85

// Normalize downscales raster images wider than maxWidth and re-encodes them
// as JPEG, renaming the file accordingly. Data that does not decode as an
// image, or is already narrow enough, is returned untouched. maxWidth <= 0
// disables processing.
func Normalize(data []byte, name string, maxWidth int) ([]byte, string) {
	if maxWidth <= 0 || len(data) == 0 {
		return data, name
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, name
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxWidth {
		return data, name
	}

	newH := h * maxWidth / w
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return data, name
	}
	return buf.Bytes(), strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
}
