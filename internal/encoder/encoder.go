// Package encoder writes single decoded frames as still images.
package encoder

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"

	"golang.org/x/image/draw"

	"slice/internal/model"
	"slice/internal/util"
)

// ErrEncode reports a frame that could not be written.
var ErrEncode = errors.New("encode failed")

// Encode writes img to path in format f, overwriting any existing file.
// quality (0,1] only affects lossy formats. On failure the partial file is
// removed and the returned error wraps ErrEncode.
func Encode(img image.Image, path string, f model.Format, quality float64) error {
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("%w: %s: empty image", ErrEncode, path)
	}
	enc, err := encodeFunc(f, quality)
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	werr := enc(out, img)
	cerr := out.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		// Delete incomplete file
		_ = util.RemoveIfExists(path)
		return fmt.Errorf("%w: %s: %v", ErrEncode, path, werr)
	}
	return nil
}

func encodeFunc(f model.Format, quality float64) (func(io.Writer, image.Image) error, error) {
	switch f {
	case model.FormatPNG:
		return png.Encode, nil
	case model.FormatJPEG:
		opts := &jpeg.Options{Quality: JPEGQuality(quality)}
		return func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, opts)
		}, nil
	case model.FormatGIF:
		return func(w io.Writer, img image.Image) error {
			return gif.Encode(w, Paletted(img), nil)
		}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrEncode, f)
	}
}

// JPEGQuality maps a quality factor linearly onto image/jpeg's 1..100 scale.
// 1.0 maps to 100.
func JPEGQuality(q float64) int {
	if math.IsNaN(q) {
		return jpeg.DefaultQuality
	}
	return clamp(int(math.Round(q*100)), 1, 100)
}

// Paletted converts img to the Plan 9 palette with Floyd–Steinberg
// dithering. Already paletted images are returned unchanged.
func Paletted(img image.Image) *image.Paletted {
	if p, ok := img.(*image.Paletted); ok {
		return p
	}
	b := img.Bounds()
	dst := image.NewPaletted(b, palette.Plan9)
	draw.FloydSteinberg.Draw(dst, b, img, b.Min)
	return dst
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
