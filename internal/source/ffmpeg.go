package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"slice/internal/model"
	"slice/internal/util"
)

// FFmpeg opens videos by probing them with ffprobe and streaming raw frames
// from an ffmpeg subprocess.
type FFmpeg struct {
	FFmpegPath  string
	FFprobePath string
	Runner      util.CmdRunner // used for ffprobe; nil uses util.NewDefaultRunner
	Logger      *zap.Logger
}

func (o *FFmpeg) Open(ctx context.Context, path string) (Source, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}
	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runner := o.Runner
	if runner == nil {
		runner = util.NewDefaultRunner()
	}

	info, err := Probe(ctx, runner, o.FFprobePath, path, logger)
	if err != nil {
		return nil, err
	}

	args := BuildDecodeArgs(path)
	logger.Debug("exec", zap.String("cmd", util.ShellQuote(o.FFmpegPath, args)))
	cmd := exec.CommandContext(ctx, o.FFmpegPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	s := &ffmpegSource{
		cmd:       cmd,
		info:      info,
		frameSize: info.Width * info.Height * 4,
	}
	cmd.Stderr = &s.stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start ffmpeg: %v", ErrUnreadable, err)
	}
	s.r = bufio.NewReaderSize(stdout, s.frameSize)
	return s, nil
}

type ffmpegSource struct {
	cmd       *exec.Cmd
	r         *bufio.Reader
	stderr    bytes.Buffer
	info      model.VideoInfo
	frameSize int
	index     int
	waited    bool
	waitErr   error
}

func (s *ffmpegSource) Info() model.VideoInfo { return s.info }

func (s *ffmpegSource) Next() (model.Frame, error) {
	if s.waited {
		return model.Frame{}, io.EOF
	}
	buf := make([]byte, s.frameSize)
	_, err := io.ReadFull(s.r, buf)
	switch {
	case err == nil:
		s.index++
		img := &image.RGBA{
			Pix:    buf,
			Stride: s.info.Width * 4,
			Rect:   image.Rect(0, 0, s.info.Width, s.info.Height),
		}
		return model.Frame{Index: s.index, Image: img}, nil
	case errors.Is(err, io.EOF):
		if werr := s.wait(); werr != nil {
			return model.Frame{}, s.decodeErr(werr)
		}
		return model.Frame{}, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		werr := s.wait()
		if werr == nil {
			werr = fmt.Errorf("truncated frame %d", s.index+1)
		}
		return model.Frame{}, s.decodeErr(werr)
	default:
		_ = s.Close()
		return model.Frame{}, s.decodeErr(err)
	}
}

// decodeErr classifies a failure: before the first frame the video is
// unreadable, afterwards decoding failed mid-stream.
func (s *ffmpegSource) decodeErr(err error) error {
	kind := ErrDecode
	if s.index == 0 {
		kind = ErrUnreadable
	}
	if msg := strings.TrimSpace(s.stderr.String()); msg != "" {
		return fmt.Errorf("%w: ffmpeg: %v: %s", kind, err, msg)
	}
	return fmt.Errorf("%w: ffmpeg: %v", kind, err)
}

func (s *ffmpegSource) wait() error {
	if !s.waited {
		s.waited = true
		s.waitErr = s.cmd.Wait()
	}
	return s.waitErr
}

// Close stops ffmpeg if frames remain unread.
func (s *ffmpegSource) Close() error {
	if s.waited {
		return nil
	}
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.wait()
	return nil
}
