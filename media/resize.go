package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	maxWidth    = 1200
	maxHeight   = 800
	jpegQuality = 85
)

// fitJPEG decodes an image, scales it down to fit within maxWidth by
// maxHeight preserving aspect ratio, and re-encodes as JPEG. Images already
// within bounds are never upscaled, only re-encoded.
func fitJPEG(src []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("media: decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxWidth || h > maxHeight {
		scale := float64(maxWidth) / float64(w)
		if hs := float64(maxHeight) / float64(h); hs < scale {
			scale = hs
		}
		tw := int(float64(w)*scale + 0.5)
		th := int(float64(h)*scale + 0.5)
		if tw < 1 {
			tw = 1
		}
		if th < 1 {
			th = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, tw, th))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("media: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
