package pipeline

import (
	"slice/internal/animation"
	"slice/internal/model"
	"slice/internal/util/media"
)

// Plan describes what a run over a probed video would write.
type Plan struct {
	VideoPath string
	ExportDir string
	Format    model.Format
	Quality   float64
	FrameSkip int

	Info        model.VideoInfo
	TotalFrames int
	Retained    []int    // 1-based indices that pass the skip filter
	Files       []string // still file names, parallel to Retained

	// Set only for animated formats.
	AnimationPath string
	FrameDelaySec float64
	DelayCS       int
}

// BuildPlan computes the plan for req over a video described by info.
func BuildPlan(info model.VideoInfo, req model.ConversionRequest) Plan {
	total := info.TotalFrames()
	p := Plan{
		VideoPath:   req.VideoPath,
		ExportDir:   req.ExportDir,
		Format:      req.Format,
		Quality:     req.Quality,
		FrameSkip:   req.FrameSkip,
		Info:        info,
		TotalFrames: total,
		Retained:    RetainedIndices(total, req.FrameSkip),
	}
	p.Files = make([]string, len(p.Retained))
	for i, idx := range p.Retained {
		p.Files[i] = media.StillName(idx, req.Format)
	}
	if req.Format.Animated() && len(p.Retained) > 0 {
		p.AnimationPath = media.AnimationPath(req.ExportDir)
		p.FrameDelaySec = FrameDelay(info)
		p.DelayCS = animation.DelayCentiseconds(p.FrameDelaySec)
	}
	return p
}

// RetainedIndices returns every i in 1..total with i mod skip == 0.
func RetainedIndices(total, skip int) []int {
	if skip < 1 {
		skip = 1
	}
	out := []int{}
	for i := skip; i <= total; i += skip {
		out = append(out, i)
	}
	return out
}

// Retained reports whether the frame at 1-based index passes the skip filter.
func Retained(index, skip int) bool {
	return skip >= 1 && index%skip == 0
}

// Percent is floor(frame / total × 100) clamped to 0..100, or 0 when total
// is unknown.
func Percent(frame, total int) int {
	if total <= 0 || frame <= 0 {
		return 0
	}
	return min(frame*100/total, 100)
}

// FrameDelay is the per-frame animation delay: 1 / native frame rate. The
// skip interval does not stretch it.
func FrameDelay(info model.VideoInfo) float64 {
	if info.FrameRate <= 0 {
		return 0
	}
	return 1 / info.FrameRate
}
