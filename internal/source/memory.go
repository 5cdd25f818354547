package source

import (
	"context"
	"image"
	"image/color"
	"io"

	"slice/internal/model"
)

// Memory is an Opener that serves pre-decoded images. Every Open returns a
// fresh single-pass Source over the same images.
type Memory struct {
	VideoInfo model.VideoInfo
	Images    []image.Image

	// FailAt, when positive, makes Next return Err instead of frame FailAt.
	FailAt int
	Err    error
}

// NewMemory returns a Memory source of n generated frames of size w×h at
// rate fps, with duration n/fps.
func NewMemory(n, w, h int, fps float64) *Memory {
	imgs := make([]image.Image, n)
	for i := range imgs {
		imgs[i] = Pattern(w, h, i+1)
	}
	dur := 0.0
	if fps > 0 {
		dur = float64(n) / fps
	}
	return &Memory{
		VideoInfo: model.VideoInfo{FrameRate: fps, DurationSec: dur, Width: w, Height: h},
		Images:    imgs,
	}
}

func (m *Memory) Open(_ context.Context, _ string) (Source, error) {
	return &memorySource{m: m}, nil
}

type memorySource struct {
	m    *Memory
	next int
}

func (s *memorySource) Info() model.VideoInfo { return s.m.VideoInfo }

func (s *memorySource) Next() (model.Frame, error) {
	if s.next >= len(s.m.Images) {
		return model.Frame{}, io.EOF
	}
	s.next++
	if s.m.FailAt > 0 && s.next == s.m.FailAt {
		return model.Frame{}, s.m.Err
	}
	return model.Frame{Index: s.next, Image: s.m.Images[s.next-1]}, nil
}

func (s *memorySource) Close() error { return nil }

// Pattern returns a deterministic opaque test image that differs per seed.
func Pattern(w, h, seed int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8((x*255)/max(w-1, 1) + seed*17),
				G: uint8((y*255)/max(h-1, 1) + seed*31),
				B: uint8(seed * 47),
				A: 0xff,
			})
		}
	}
	return img
}
