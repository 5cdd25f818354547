package media

import (
	"path/filepath"
	"testing"

	"slice/internal/model"
)

func TestStillName(t *testing.T) {
	tests := []struct {
		index int
		f     model.Format
		want  string
	}{
		{index: 1, f: model.FormatPNG, want: "frame_0001.png"},
		{index: 42, f: model.FormatJPEG, want: "frame_0042.jpeg"},
		{index: 999, f: model.FormatGIF, want: "frame_0999.gif"},
		{index: 9999, f: model.FormatPNG, want: "frame_9999.png"},
		{index: 12345, f: model.FormatPNG, want: "frame_12345.png"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := StillName(tt.index, tt.f); got != tt.want {
				t.Errorf("StillName(%d) = %q, want %q", tt.index, got, tt.want)
			}
		})
	}
}

func TestStillIndex(t *testing.T) {
	tests := []struct {
		name   string
		want   int
		wantOK bool
	}{
		{name: "frame_0042.png", want: 42, wantOK: true},
		{name: filepath.Join("out", "frame_0001.jpeg"), want: 1, wantOK: true},
		{name: "frame_12345.gif", want: 12345, wantOK: true},
		{name: "frame_42.png"},
		{name: "output.gif"},
		{name: "frame_abcd.png"},
		{name: "frame_0000.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := StillIndex(tt.name)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("StillIndex(%q) = %d, %v; want %d, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestAnimationPath(t *testing.T) {
	if got, want := AnimationPath("out"), filepath.Join("out", "output.gif"); got != want {
		t.Errorf("AnimationPath = %q, want %q", got, want)
	}
}
