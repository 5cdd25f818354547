package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"slice/internal/model"
	"slice/internal/util"
)

// ProbeInfo mirrors the ffprobe -of json fields we care about.
type ProbeInfo struct {
	Streams []struct {
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Duration     string `json:"duration"`
		Tags         struct {
			Rotate string `json:"rotate"`
		} `json:"tags"`
		SideData []sideData `json:"side_data_list"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

type sideData struct {
	Rotation float64 `json:"rotation"`
}

// Probe runs ffprobe on path and returns the video description.
func Probe(ctx context.Context, runner util.CmdRunner, ffprobePath, path string, logger *zap.Logger) (model.VideoInfo, error) {
	res, err := runner.Run(ctx, util.CmdSpec{
		Path:   ffprobePath,
		Args:   BuildProbeArgs(path),
		Logger: logger,
	})
	if err != nil {
		msg := strings.TrimSpace(string(res.Stderr))
		if msg == "" {
			msg = err.Error()
		}
		return model.VideoInfo{}, fmt.Errorf("%w: ffprobe: %s", ErrUnreadable, msg)
	}
	info, err := ParseProbe(res.Stdout)
	if err != nil {
		return model.VideoInfo{}, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	return info, nil
}

// ParseProbe decodes ffprobe JSON output into a VideoInfo.
func ParseProbe(data []byte) (model.VideoInfo, error) {
	var p ProbeInfo
	if err := json.Unmarshal(data, &p); err != nil {
		return model.VideoInfo{}, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	if len(p.Streams) == 0 {
		return model.VideoInfo{}, errors.New("no video stream")
	}
	st := p.Streams[0]
	if st.Width <= 0 || st.Height <= 0 {
		return model.VideoInfo{}, fmt.Errorf("invalid frame size %dx%d", st.Width, st.Height)
	}

	rate := ParseRate(st.AvgFrameRate)
	if rate <= 0 {
		rate = ParseRate(st.RFrameRate)
	}
	if rate <= 0 {
		return model.VideoInfo{}, errors.New("unknown frame rate")
	}

	dur := parseFloat(p.Format.Duration)
	if dur <= 0 {
		dur = parseFloat(st.Duration)
	}

	// ffmpeg applies the display rotation while decoding, so quarter turns
	// swap the frame geometry it emits.
	w, h := st.Width, st.Height
	if quarterTurn(streamRotation(st.Tags.Rotate, st.SideData)) {
		w, h = h, w
	}

	return model.VideoInfo{
		FrameRate:   rate,
		DurationSec: dur,
		Width:       w,
		Height:      h,
	}, nil
}

// streamRotation returns the display rotation in degrees. Side data wins over
// the legacy rotate tag.
func streamRotation(tag string, side []sideData) float64 {
	for _, sd := range side {
		if sd.Rotation != 0 {
			return sd.Rotation
		}
	}
	return parseFloat(tag)
}

func quarterTurn(deg float64) bool {
	r := math.Mod(math.Abs(math.Round(deg)), 180)
	return r == 90
}

// ParseRate parses ffprobe rates such as "30000/1001" or "25". It returns 0
// for malformed input and for "0/0".
func ParseRate(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
