package animation

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"slice/internal/encoder"
	"slice/internal/model"
)

func writeStills(t *testing.T, dir string, n int, f model.Format) []string {
	t.Helper()
	var paths []string
	for i := 1; i <= n; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 6, 4))
		for y := 0; y < 4; y++ {
			for x := 0; x < 6; x++ {
				img.SetRGBA(x, y, color.RGBA{R: uint8(40 * i), G: uint8(x * 30), B: uint8(y * 50), A: 0xff})
			}
		}
		p := filepath.Join(dir, "frame_000"+string(rune('0'+i))+"."+f.Ext())
		if err := encoder.Encode(img, p, f, 1); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	return paths
}

func TestDelayCentiseconds(t *testing.T) {
	tests := []struct {
		sec  float64
		want int
	}{
		{sec: 1.0 / 25, want: 4},
		{sec: 1.0 / 30, want: 3},
		{sec: 1.0 / 10, want: 10},
		{sec: 1.0 / 240, want: 1},
		{sec: 0, want: 1},
		{sec: -1, want: 1},
	}
	for _, tt := range tests {
		if got := DelayCentiseconds(tt.sec); got != tt.want {
			t.Errorf("DelayCentiseconds(%v) = %d, want %d", tt.sec, got, tt.want)
		}
	}
}

func TestAssembleAndRemove(t *testing.T) {
	for _, f := range []model.Format{model.FormatGIF, model.FormatPNG, model.FormatJPEG} {
		t.Run(string(f), func(t *testing.T) {
			dir := t.TempDir()
			stills := writeStills(t, dir, 5, f)
			dst := filepath.Join(dir, "output.gif")
			if err := AssembleAndRemove(context.Background(), stills, dst, 1.0/25); err != nil {
				t.Fatalf("AssembleAndRemove: %v", err)
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 1 || entries[0].Name() != "output.gif" {
				var names []string
				for _, e := range entries {
					names = append(names, e.Name())
				}
				t.Fatalf("dir contents = %v, want [output.gif]", names)
			}
			fh, _ := os.Open(dst)
			defer fh.Close()
			g, err := gif.DecodeAll(fh)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(g.Image) != 5 {
				t.Errorf("frames = %d, want 5", len(g.Image))
			}
			for i, d := range g.Delay {
				if d != 4 {
					t.Errorf("delay[%d] = %d, want 4", i, d)
				}
			}
		})
	}
}

func TestAssemble_FailureKeepsStills(t *testing.T) {
	dir := t.TempDir()
	stills := writeStills(t, dir, 3, model.FormatGIF)
	if err := os.WriteFile(stills[1], []byte("corrupt"), 0o644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "output.gif")
	err := AssembleAndRemove(context.Background(), stills, dst, 0.04)
	if !errors.Is(err, encoder.ErrEncode) {
		t.Fatalf("expected ErrEncode, got %v", err)
	}
	for _, p := range stills {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("still %s should remain: %v", p, err)
		}
	}
	if _, err := os.Stat(dst); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output.gif should not exist")
	}
}

func TestAssemble_Empty(t *testing.T) {
	err := Assemble(context.Background(), nil, filepath.Join(t.TempDir(), "output.gif"), 0.04)
	if !errors.Is(err, encoder.ErrEncode) {
		t.Errorf("expected ErrEncode, got %v", err)
	}
}
