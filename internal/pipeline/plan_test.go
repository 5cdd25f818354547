package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"slice/internal/model"
)

func TestRetainedIndices(t *testing.T) {
	const total = 30
	for _, k := range []int{1, 2, 3, 7} {
		var want []int
		for i := 1; i <= total; i++ {
			if i%k == 0 {
				want = append(want, i)
			}
		}
		got := RetainedIndices(total, k)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("RetainedIndices(%d, %d) mismatch (-want +got):\n%s", total, k, diff)
		}
		for _, i := range got {
			if !Retained(i, k) {
				t.Errorf("Retained(%d, %d) = false", i, k)
			}
		}
	}
	if got := RetainedIndices(0, 3); len(got) != 0 {
		t.Errorf("RetainedIndices(0, 3) = %v, want empty", got)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		frame, total, want int
	}{
		{0, 10, 0},
		{1, 3, 33},
		{2, 3, 66},
		{3, 3, 100},
		{5, 4, 100},
		{7, 0, 0},
	}
	for _, tt := range tests {
		if got := Percent(tt.frame, tt.total); got != tt.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", tt.frame, tt.total, got, tt.want)
		}
	}
}

func TestBuildPlan(t *testing.T) {
	info := model.VideoInfo{FrameRate: 25, DurationSec: 0.4, Width: 320, Height: 240}
	req := model.ConversionRequest{
		VideoPath: "/in/clip.mp4",
		ExportDir: "/out/",
		Format:    model.FormatGIF,
		Quality:   1,
		FrameSkip: 3,
	}
	got := BuildPlan(info, req)
	if got.TotalFrames != 10 {
		t.Fatalf("TotalFrames = %d, want 10", got.TotalFrames)
	}
	if diff := cmp.Diff([]int{3, 6, 9}, got.Retained); diff != "" {
		t.Errorf("Retained mismatch (-want +got):\n%s", diff)
	}
	wantFiles := []string{"frame_0003.gif", "frame_0006.gif", "frame_0009.gif"}
	if diff := cmp.Diff(wantFiles, got.Files); diff != "" {
		t.Errorf("Files mismatch (-want +got):\n%s", diff)
	}
	if got.AnimationPath != "/out/output.gif" {
		t.Errorf("AnimationPath = %q", got.AnimationPath)
	}
	// Delay follows the native rate even when frames are skipped.
	if got.FrameDelaySec != 0.04 || got.DelayCS != 4 {
		t.Errorf("delay = %v s / %d cs, want 0.04 s / 4 cs", got.FrameDelaySec, got.DelayCS)
	}
}

func TestBuildPlan_StillFormat(t *testing.T) {
	info := model.VideoInfo{FrameRate: 10, DurationSec: 0.5}
	got := BuildPlan(info, model.ConversionRequest{ExportDir: "out", Format: model.FormatPNG, FrameSkip: 1})
	if got.AnimationPath != "" || got.DelayCS != 0 {
		t.Errorf("still format should not plan an animation: %+v", got)
	}
	if len(got.Files) != 5 || got.Files[4] != "frame_0005.png" {
		t.Errorf("Files = %v", got.Files)
	}
}
