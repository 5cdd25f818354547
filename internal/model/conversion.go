package model

import (
	"fmt"
	"image"
	"math"
	"strings"
)

// Format is an output encoding for retained frames.
type Format string

const (
	FormatPNG  Format = "png"  // still, lossless
	FormatJPEG Format = "jpeg" // still, lossy; honours Quality
	FormatGIF  Format = "gif"  // stills assembled into output.gif
)

// Formats lists the selectable formats in display order.
var Formats = []Format{FormatPNG, FormatJPEG, FormatGIF}

// ParseFormat parses s case-insensitively. "jpg" is accepted for jpeg.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "gif":
		return FormatGIF, nil
	default:
		return "", fmt.Errorf("invalid format %q (valid: png|jpeg|gif)", s)
	}
}

// Ext returns the file extension (without dot) used for still files.
func (f Format) Ext() string {
	return string(f)
}

// Animated reports whether stills are aggregated into an animation.
func (f Format) Animated() bool {
	return f == FormatGIF
}

// Lossy reports whether the quality factor affects encoding.
func (f Format) Lossy() bool {
	return f == FormatJPEG
}

const (
	MinQuality     = 0.1
	MaxQuality     = 1.0
	DefaultQuality = 1.0
)

// ConversionRequest holds the parameters of one run. It is not modified
// once a run has started.
type ConversionRequest struct {
	VideoPath string
	ExportDir string
	Format    Format
	Quality   float64 // 0.1..1.0
	FrameSkip int     // keep every FrameSkip-th frame, >= 1
}

// VideoInfo describes an opened video.
type VideoInfo struct {
	FrameRate   float64 // frames per second
	DurationSec float64
	Width       int // 0 if unknown
	Height      int // 0 if unknown
}

// TotalFrames is floor(duration × frame rate), or 0 when either is unknown.
func (v VideoInfo) TotalFrames() int {
	if v.FrameRate <= 0 || v.DurationSec <= 0 {
		return 0
	}
	return int(math.Floor(v.DurationSec * v.FrameRate))
}

// Frame is a decoded image and its 1-based position in the video.
type Frame struct {
	Index int
	Image image.Image
}

// OutputSummary captures what a run left on disk.
type OutputSummary struct {
	Stills        []string // retained still paths still on disk, in index order
	AnimationPath string   // empty unless an animation was written
	AnimationSize int64
	Decoded       int // frames read from the source
	Retained      int // frames that passed the skip filter and were written
}
