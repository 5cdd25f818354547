package source

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSelectBackend(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		haveFFmpeg bool
		want       Backend
	}{
		{name: "mp4 with ffmpeg", path: "clip.mp4", haveFFmpeg: true, want: BackendFFmpeg},
		{name: "mpg with ffmpeg", path: "clip.mpg", haveFFmpeg: true, want: BackendFFmpeg},
		{name: "mpg without ffmpeg", path: "/videos/Clip.MPG", want: BackendMPEG},
		{name: "m1v without ffmpeg", path: "a.m1v", want: BackendMPEG},
		{name: "mp4 without ffmpeg", path: "clip.mp4", want: backendNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectBackend(tt.path, tt.haveFFmpeg); got != tt.want {
				t.Errorf("SelectBackend(%q, %v) = %q, want %q", tt.path, tt.haveFFmpeg, got, tt.want)
			}
		})
	}
}

func TestParseBackend(t *testing.T) {
	for in, want := range map[string]Backend{"": BackendAuto, "AUTO": BackendAuto, "ffmpeg": BackendFFmpeg, "mpeg": BackendMPEG} {
		got, ok := ParseBackend(in)
		if !ok || got != want {
			t.Errorf("ParseBackend(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseBackend("gstreamer"); ok {
		t.Error("ParseBackend(gstreamer) should fail")
	}
}

func TestVideoExtensions(t *testing.T) {
	got := VideoExtensions()
	want := []string{"mp4", "mkv", "mov", "webm", "avi", "flv", "wmv", "m1v", "mpeg", "mpg"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("VideoExtensions() mismatch (-want +got):\n%s", diff)
	}
	if !IsVideoFile("x.MOV") || IsVideoFile("x.txt") {
		t.Error("IsVideoFile misclassified")
	}
}
