// Package animation assembles still frames into an animated GIF.
package animation

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	_ "image/jpeg" // stills decoded by decodeStill
	_ "image/png"
	"math"
	"os"

	"slice/internal/encoder"
	"slice/internal/util"
)

// Assemble decodes the stills in order and writes them to dst as a looping
// GIF where each frame is shown for delaySec seconds. The stills are left
// untouched; see AssembleAndRemove.
func Assemble(ctx context.Context, stills []string, dst string, delaySec float64) error {
	if len(stills) == 0 {
		return fmt.Errorf("%w: no frames to assemble", encoder.ErrEncode)
	}
	delay := DelayCentiseconds(delaySec)
	anim := &gif.GIF{
		Image: make([]*image.Paletted, 0, len(stills)),
		Delay: make([]int, 0, len(stills)),
	}
	for _, p := range stills {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		img, err := decodeStill(p)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", encoder.ErrEncode, p, err)
		}
		anim.Image = append(anim.Image, encoder.Paletted(img))
		anim.Delay = append(anim.Delay, delay)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: %v", encoder.ErrEncode, err)
	}
	werr := gif.EncodeAll(out, anim)
	if cerr := out.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = util.RemoveIfExists(dst)
		return fmt.Errorf("%w: %s: %v", encoder.ErrEncode, dst, werr)
	}
	return nil
}

// AssembleAndRemove assembles the stills into dst and, only once that has
// succeeded, deletes them. On assembly failure the stills remain. A
// deletion failure is returned after dst has been written.
func AssembleAndRemove(ctx context.Context, stills []string, dst string, delaySec float64) error {
	if err := Assemble(ctx, stills, dst, delaySec); err != nil {
		return err
	}
	if err := util.RemoveAll(stills); err != nil {
		return fmt.Errorf("remove stills: %w", err)
	}
	return nil
}

// DelayCentiseconds converts a per-frame delay in seconds to GIF units,
// rounding to the nearest centisecond with a minimum of one.
func DelayCentiseconds(sec float64) int {
	if sec <= 0 || math.IsNaN(sec) || math.IsInf(sec, 0) {
		return 1
	}
	cs := int(math.Round(sec * 100))
	if cs < 1 {
		return 1
	}
	return cs
}

func decodeStill(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, errors.New("empty image")
	}
	return img, nil
}
