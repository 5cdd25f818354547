// Package source decodes video files into a sequential stream of frames.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"slice/internal/model"
	"slice/internal/util"
	"slice/internal/util/deps"
)

var (
	// ErrUnreadable reports a video that does not exist or cannot be decoded.
	ErrUnreadable = errors.New("unreadable video")
	// ErrDecode reports a failure after at least one frame was decoded.
	ErrDecode = errors.New("decode failed")
)

// Source is an opened video. Next returns frames with indices 1, 2, 3, ...
// and io.EOF once the stream is exhausted. A Source is single pass.
type Source interface {
	Info() model.VideoInfo
	Next() (model.Frame, error)
	Close() error
}

// Opener opens a Source over a video file.
type Opener interface {
	Open(ctx context.Context, path string) (Source, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, path string) (Source, error)

func (f OpenerFunc) Open(ctx context.Context, path string) (Source, error) {
	return f(ctx, path)
}

// Options configures NewOpener.
type Options struct {
	Backend     Backend
	FFmpegPath  string // explicit ffmpeg binary; empty searches PATH
	FFprobePath string // explicit ffprobe binary; empty searches PATH
	Runner      util.CmdRunner
	Logger      *zap.Logger
}

// NewOpener resolves the decoder binaries required by opts.Backend and
// returns an Opener. With BackendAuto a missing ffmpeg is tolerated and only
// MPEG-1 files can then be opened.
func NewOpener(opts Options) (Opener, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	backend := opts.Backend
	if backend == "" {
		backend = BackendAuto
	}
	switch backend {
	case BackendMPEG:
		return MPEG{}, nil
	case BackendFFmpeg, BackendAuto:
		ff, err := resolveFFmpeg(opts)
		if err != nil {
			if backend == BackendFFmpeg {
				return nil, err
			}
			opts.Logger.Debug("ffmpeg unavailable, only MPEG-1 input supported", zap.Error(err))
			return auto{}, nil
		}
		if backend == BackendFFmpeg {
			return ff, nil
		}
		return auto{ffmpeg: ff}, nil
	default:
		return nil, fmt.Errorf("unknown decoder %q (valid: auto|ffmpeg|mpeg)", backend)
	}
}

func resolveFFmpeg(opts Options) (*FFmpeg, error) {
	ffmpegPath, err := deps.FindFFmpeg(opts.FFmpegPath)
	if err != nil {
		return nil, err
	}
	ffprobePath, err := deps.FindFFprobe(opts.FFprobePath)
	if err != nil {
		return nil, err
	}
	return &FFmpeg{
		FFmpegPath:  ffmpegPath,
		FFprobePath: ffprobePath,
		Runner:      opts.Runner,
		Logger:      opts.Logger,
	}, nil
}

// auto dispatches on the file extension.
type auto struct {
	ffmpeg *FFmpeg // nil when ffmpeg is not installed
}

func (a auto) Open(ctx context.Context, path string) (Source, error) {
	switch SelectBackend(path, a.ffmpeg != nil) {
	case BackendFFmpeg:
		return a.ffmpeg.Open(ctx, path)
	case BackendMPEG:
		return MPEG{}.Open(ctx, path)
	default:
		return nil, fmt.Errorf("%w: %s: ffmpeg is required for this container", ErrUnreadable, path)
	}
}

// checkFile rejects missing paths and directories before any decoder starts.
func checkFile(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrUnreadable, path)
	}
	return nil
}
