package source

import (
	"context"
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts unavailable")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
}

func TestFFmpegSource_StreamsFrames(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	video := filepath.Join(dir, "in.mp4")
	if err := os.WriteFile(video, []byte("fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	probe := writeScript(t, dir, "ffprobe",
		`echo '{"streams":[{"width":2,"height":2,"avg_frame_rate":"3/1"}],"format":{"duration":"1.0"}}'`)
	// Three 2x2 RGBA frames are 48 bytes.
	ff := writeScript(t, dir, "ffmpeg", `head -c 48 /dev/zero`)

	o := &FFmpeg{FFmpegPath: ff, FFprobePath: probe}
	src, err := o.Open(context.Background(), video)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()

	info := src.Info()
	if info.TotalFrames() != 3 || info.Width != 2 || info.Height != 2 {
		t.Fatalf("unexpected info %+v", info)
	}
	var got []int
	for {
		f, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if f.Image.Bounds() != image.Rect(0, 0, 2, 2) {
			t.Errorf("frame %d bounds = %v", f.Index, f.Image.Bounds())
		}
		got = append(got, f.Index)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("indices = %v, want [1 2 3]", got)
	}
	// Exhausted sources keep returning EOF.
	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("after exhaustion: %v", err)
	}
}

func TestFFmpegSource_RotatedStream(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	video := filepath.Join(dir, "in.mp4")
	if err := os.WriteFile(video, []byte("fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Coded 3x2, displayed 2x3 after a quarter turn.
	probe := writeScript(t, dir, "ffprobe",
		`echo '{"streams":[{"width":3,"height":2,"avg_frame_rate":"1/1","tags":{"rotate":"90"}}],"format":{"duration":"1.0"}}'`)
	// One 2x3 RGBA frame whose last pixel is red.
	ff := writeScript(t, dir, "ffmpeg", `head -c 20 /dev/zero; printf '\377\000\000\377'`)

	o := &FFmpeg{FFmpegPath: ff, FFprobePath: probe}
	src, err := o.Open(context.Background(), video)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()

	f, err := src.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got := f.Image.Bounds(); got != image.Rect(0, 0, 2, 3) {
		t.Fatalf("bounds = %v, want 2x3", got)
	}
	if r, g, b, _ := f.Image.At(1, 2).RGBA(); r != 0xffff || g != 0 || b != 0 {
		t.Errorf("pixel (1,2) = %d,%d,%d; want red", r, g, b)
	}
	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next after last frame = %v, want io.EOF", err)
	}
}

func TestFFmpegSource_TruncatedFrame(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	video := filepath.Join(dir, "in.mp4")
	if err := os.WriteFile(video, []byte("fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	probe := writeScript(t, dir, "ffprobe",
		`echo '{"streams":[{"width":2,"height":2,"avg_frame_rate":"3/1"}],"format":{"duration":"1.0"}}'`)
	// One full frame then half of the next.
	ff := writeScript(t, dir, "ffmpeg", `head -c 24 /dev/zero`)

	src, err := (&FFmpeg{FFmpegPath: ff, FFprobePath: probe}).Open(context.Background(), video)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()
	if _, err := src.Next(); err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if _, err := src.Next(); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestFFmpegSource_FailureBeforeFirstFrame(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	video := filepath.Join(dir, "in.mkv")
	if err := os.WriteFile(video, []byte("fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	probe := writeScript(t, dir, "ffprobe",
		`echo '{"streams":[{"width":2,"height":2,"avg_frame_rate":"3/1"}],"format":{"duration":"1.0"}}'`)
	ff := writeScript(t, dir, "ffmpeg", `echo "Invalid data found when processing input" >&2; exit 1`)

	src, err := (&FFmpeg{FFmpegPath: ff, FFprobePath: probe}).Open(context.Background(), video)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()
	if _, err := src.Next(); !errors.Is(err, ErrUnreadable) {
		t.Errorf("expected ErrUnreadable, got %v", err)
	}
}
