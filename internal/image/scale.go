package image

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// DefaultMaxSide is the largest width or height kept before clustering.
const DefaultMaxSide = 200

// TargetSize returns the dimensions Downscale produces for a w x h image:
// both sides are halved (truncating, never below 1) until neither exceeds maxSide.
func TargetSize(w, h, maxSide int) (int, int) {
	for w > maxSide || h > maxSide {
		w = max(w/2, 1)
		h = max(h/2, 1)
	}
	return w, h
}

// Downscale bounds an image to maxSide pixels per side, preserving aspect ratio
// up to integer truncation. The resample is a single bilinear pass to the final
// size. Images already within bounds are returned as-is.
//
// A nil image or one with a zero dimension yields ErrInvalidImage.
func Downscale(img image.Image, maxSide int) (image.Image, error) {
	if img == nil {
		return nil, ErrInvalidImage
	}
	if maxSide < 1 {
		return nil, fmt.Errorf("max side must be at least 1, got %d", maxSide)
	}

	src := img.Bounds()
	w, h := src.Dx(), src.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidImage, w, h)
	}

	tw, th := TargetSize(w, h, maxSide)
	if tw == w && th == h {
		return img, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	return dst, nil
}
