package imageproxy

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

// encodeFormats maps decoded format names to imaging encoders. Formats not
// listed here (webp, svg, ...) cannot be re-encoded in process and pass
// through unresized.
var encodeFormats = map[string]imaging.Format{
	"jpeg": imaging.JPEG,
	"png":  imaging.PNG,
	"gif":  imaging.GIF,
	"bmp":  imaging.BMP,
	"tiff": imaging.TIFF,
}

// resizeToWidth scales data down to the target width, preserving aspect
// ratio. Images that are undecodable, already narrow enough, or in a
// format we cannot re-encode are returned unchanged: resizing is an
// optimization, never a reason to fail an image request. The boolean
// reports whether a resize actually happened.
func resizeToWidth(data []byte, width int) ([]byte, bool) {
	if width <= 0 {
		return data, false
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, false
	}
	outFormat, ok := encodeFormats[format]
	if !ok {
		return data, false
	}
	if img.Bounds().Dx() <= width {
		return data, false
	}

	resized := imaging.Resize(img, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, outFormat); err != nil {
		return data, false
	}
	return buf.Bytes(), true
}
