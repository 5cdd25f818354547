package source

import (
	"path/filepath"
	"sort"
	"strings"
)

// Backend names a decoder implementation.
type Backend string

const (
	BackendAuto   Backend = "auto"
	BackendFFmpeg Backend = "ffmpeg"
	BackendMPEG   Backend = "mpeg"
	backendNone   Backend = ""
)

// ParseBackend validates a decoder name.
func ParseBackend(s string) (Backend, bool) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendAuto, BackendFFmpeg, BackendMPEG:
		return b, true
	case "":
		return BackendAuto, true
	default:
		return "", false
	}
}

var mpegExts = map[string]bool{"mpg": true, "mpeg": true, "m1v": true}

// VideoExtensions lists the containers offered for input, most common first.
func VideoExtensions() []string {
	exts := []string{"mkv", "mov", "mp4", "avi", "wmv", "flv", "webm", "mpg", "mpeg", "m1v"}
	sort.SliceStable(exts, func(i, j int) bool {
		pi, pj := extPriority(exts[i]), extPriority(exts[j])
		if pi == pj {
			return exts[i] < exts[j]
		}
		return pi < pj
	})
	return exts
}

// SelectBackend chooses a decoder for path. MPEG-1 streams fall back to the
// pure Go decoder when ffmpeg is missing; other containers need ffmpeg.
func SelectBackend(path string, haveFFmpeg bool) Backend {
	if haveFFmpeg {
		return BackendFFmpeg
	}
	if mpegExts[ext(path)] {
		return BackendMPEG
	}
	return backendNone
}

// IsVideoFile reports whether path has one of VideoExtensions.
func IsVideoFile(path string) bool {
	return extPriority(ext(path)) < 9
}

func ext(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

func extPriority(e string) int {
	switch e {
	case "mp4":
		return 0
	case "mkv":
		return 1
	case "mov":
		return 2
	case "webm":
		return 3
	case "avi", "wmv", "flv":
		return 4
	case "mpg", "mpeg", "m1v":
		return 5
	default:
		return 9
	}
}
