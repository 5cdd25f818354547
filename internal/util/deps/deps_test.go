package deps

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindFFmpeg_CustomPath(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg-custom")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := FindFFmpeg(bin)
	if err != nil {
		t.Fatalf("FindFFmpeg: %v", err)
	}
	if got != bin {
		t.Errorf("FindFFmpeg = %q, want %q", got, bin)
	}
}

func TestFindFFprobe_MissingCustomPath(t *testing.T) {
	_, err := FindFFprobe(filepath.Join(t.TempDir(), "nope"))
	if err == nil || !strings.Contains(err.Error(), "could not find ffprobe") {
		t.Errorf("expected missing ffprobe error, got %v", err)
	}
}

func TestFind_EmptyPATH(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	if _, err := FindFFmpeg(""); err == nil {
		t.Error("expected error with empty PATH")
	}
}
