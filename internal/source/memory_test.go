package source

import (
	"context"
	"errors"
	"io"
	"testing"
)

func TestMemory_IndicesStartAtOneWithoutGaps(t *testing.T) {
	m := NewMemory(12, 4, 3, 24)
	for pass := 0; pass < 2; pass++ {
		src, err := m.Open(context.Background(), "")
		if err != nil {
			t.Fatal(err)
		}
		want := 1
		for {
			f, err := src.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				t.Fatal(err)
			}
			if f.Index != want {
				t.Fatalf("pass %d: index = %d, want %d", pass, f.Index, want)
			}
			want++
		}
		if want-1 != 12 {
			t.Errorf("pass %d: got %d frames, want 12", pass, want-1)
		}
		src.Close()
	}
	if got := m.VideoInfo.TotalFrames(); got != 12 {
		t.Errorf("TotalFrames = %d, want 12", got)
	}
}

func TestMemory_FailAt(t *testing.T) {
	boom := errors.New("boom")
	m := NewMemory(5, 2, 2, 10)
	m.FailAt, m.Err = 3, boom
	src, _ := m.Open(context.Background(), "")
	for i := 1; i <= 2; i++ {
		if _, err := src.Next(); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
	if _, err := src.Next(); !errors.Is(err, boom) {
		t.Errorf("frame 3 err = %v, want boom", err)
	}
}

func TestNewOpener_UnknownBackend(t *testing.T) {
	if _, err := NewOpener(Options{Backend: "vlc"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNewOpener_MPEGNeedsNoBinaries(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	o, err := NewOpener(Options{Backend: BackendMPEG})
	if err != nil {
		t.Fatalf("NewOpener(mpeg): %v", err)
	}
	if _, ok := o.(MPEG); !ok {
		t.Errorf("opener = %T, want MPEG", o)
	}
	if _, err := NewOpener(Options{Backend: BackendFFmpeg}); err == nil {
		t.Error("ffmpeg backend should fail without binaries")
	}
	a, err := NewOpener(Options{Backend: BackendAuto})
	if err != nil {
		t.Fatalf("auto without ffmpeg: %v", err)
	}
	if _, err := a.Open(context.Background(), "clip.mp4"); !errors.Is(err, ErrUnreadable) {
		t.Errorf("auto mp4 without ffmpeg: %v", err)
	}
}
