package media

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"slice/internal/model"
)

// AnimationName is the file written when stills are assembled.
const AnimationName = "output.gif"

const stillPrefix = "frame_"

// StillName returns the file name for the frame at 1-based index, zero-padded
// to four digits (frame_0042.png).
func StillName(index int, f model.Format) string {
	return fmt.Sprintf("%s%04d.%s", stillPrefix, index, f.Ext())
}

// StillPath joins dir and StillName.
func StillPath(dir string, index int, f model.Format) string {
	return filepath.Join(dir, StillName(index, f))
}

// AnimationPath returns dir/output.gif.
func AnimationPath(dir string) string {
	return filepath.Join(dir, AnimationName)
}

// StillIndex extracts the frame index from a still file name. ok is false
// for names not produced by StillName.
func StillIndex(name string) (index int, ok bool) {
	base := filepath.Base(name)
	if !strings.HasPrefix(base, stillPrefix) {
		return 0, false
	}
	num := strings.TrimPrefix(base, stillPrefix)
	if dot := strings.IndexByte(num, '.'); dot >= 0 {
		num = num[:dot]
	}
	if len(num) < 4 {
		return 0, false
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
