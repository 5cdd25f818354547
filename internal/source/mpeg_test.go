package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

const testMPEG = "testdata/test.mpg"

func TestMPEG_DecodesEveryFrame(t *testing.T) {
	src, err := MPEG{}.Open(context.Background(), testMPEG)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()

	info := src.Info()
	if info.Width <= 0 || info.Height <= 0 || info.FrameRate <= 0 || info.DurationSec <= 0 {
		t.Fatalf("Info = %+v", info)
	}

	n := 0
	for {
		f, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next after %d frames: %v", n, err)
		}
		n++
		if f.Index != n {
			t.Fatalf("frame %d has index %d", n, f.Index)
		}
		if b := f.Image.Bounds(); b.Dx() != info.Width || b.Dy() != info.Height {
			t.Fatalf("frame %d bounds = %v, want %dx%d", n, b, info.Width, info.Height)
		}
	}
	if n == 0 {
		t.Fatal("no frames decoded")
	}
	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next after end = %v, want io.EOF", err)
	}
}

func TestMPEG_FramesAreCopied(t *testing.T) {
	src, err := MPEG{}.Open(context.Background(), testMPEG)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()

	first, err := src.Next()
	if err != nil {
		t.Fatal(err)
	}
	second, err := src.Next()
	if err != nil {
		t.Fatal(err)
	}
	if first.Image == second.Image {
		t.Error("frames share one image")
	}
}

func TestMPEG_NotMPEG(t *testing.T) {
	p := filepath.Join(t.TempDir(), "clip.mpg")
	if err := os.WriteFile(p, []byte("definitely not an MPEG-1 program stream, just text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := (MPEG{}).Open(context.Background(), p); !errors.Is(err, ErrUnreadable) {
		t.Errorf("Open = %v, want ErrUnreadable", err)
	}
	if _, err := (MPEG{}).Open(context.Background(), filepath.Join(t.TempDir(), "nope.mpg")); !errors.Is(err, ErrUnreadable) {
		t.Errorf("missing file: Open = %v, want ErrUnreadable", err)
	}
}

func TestMPEG_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src, err := MPEG{}.Open(ctx, testMPEG)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()
	cancel()
	if _, err := src.Next(); !errors.Is(err, context.Canceled) {
		t.Errorf("Next = %v, want context.Canceled", err)
	}
}
