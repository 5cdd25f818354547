package source

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/gen2brain/mpeg"
	"golang.org/x/image/draw"

	"slice/internal/model"
)

// MPEG opens MPEG-1 program streams with a pure Go decoder. It needs no
// external binaries.
type MPEG struct{}

func (MPEG) Open(ctx context.Context, path string) (Source, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	mpg, err := mpeg.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	if mpg.NumVideoStreams() == 0 {
		f.Close()
		return nil, fmt.Errorf("%w: %s: no MPEG-1 video stream", ErrUnreadable, path)
	}
	mpg.SetAudioEnabled(false)
	info := model.VideoInfo{
		FrameRate:   mpg.Framerate(),
		DurationSec: mpg.Duration().Seconds(),
		Width:       mpg.Width(),
		Height:      mpg.Height(),
	}
	if info.FrameRate <= 0 || info.Width <= 0 || info.Height <= 0 {
		f.Close()
		return nil, fmt.Errorf("%w: %s: no MPEG-1 video stream", ErrUnreadable, path)
	}
	return &mpegSource{ctx: ctx, f: f, mpg: mpg, info: info}, nil
}

type mpegSource struct {
	ctx   context.Context
	f     *os.File
	mpg   *mpeg.MPEG
	info  model.VideoInfo
	index int
	ended bool
}

func (s *mpegSource) Info() model.VideoInfo { return s.info }

func (s *mpegSource) Next() (model.Frame, error) {
	// The decoder signals its end only once; later calls would block.
	if s.ended {
		return model.Frame{}, io.EOF
	}
	for {
		if err := s.ctx.Err(); err != nil {
			return model.Frame{}, err
		}
		if frame := s.mpg.DecodeVideo(); frame != nil {
			s.index++
			// The decoder reuses its planes; copy out before the next call.
			src := frame.YCbCr()
			dst := image.NewRGBA(image.Rect(0, 0, src.Rect.Dx(), src.Rect.Dy()))
			draw.Draw(dst, dst.Bounds(), src, src.Rect.Min, draw.Src)
			return model.Frame{Index: s.index, Image: dst}, nil
		}
		if s.mpg.HasEnded() {
			s.ended = true
			if s.index == 0 {
				return model.Frame{}, fmt.Errorf("%w: no decodable frames", ErrUnreadable)
			}
			return model.Frame{}, io.EOF
		}
	}
}

func (s *mpegSource) Close() error {
	return s.f.Close()
}
