// Package preview scales frames down and renders them as terminal text.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"
)

// Default thumbnail bounds in pixels. Two pixel rows share one terminal row.
const (
	DefaultWidth  = 48
	DefaultHeight = 24
)

// Thumbnail scales img to fit within maxW×maxH, preserving the aspect
// ratio. Images already small enough are copied at their own size.
func Thumbnail(img image.Image, maxW, maxH int) *image.RGBA {
	if img == nil || img.Bounds().Empty() || maxW <= 0 || maxH <= 0 {
		return nil
	}
	b := img.Bounds()
	w, h := fit(b.Dx(), b.Dy(), maxW, maxH)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func fit(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	// Compare w/maxW against h/maxH without floats.
	if w*maxH >= h*maxW {
		return maxW, max(1, h*maxW/w)
	}
	return max(1, w*maxH/h), maxH
}

const halfBlock = "▀"

// Render draws img using upper half blocks: the foreground colours the top
// pixel of each cell and the background the bottom one. Lines are joined
// with "\n" and carry no trailing newline.
func Render(img image.Image) string {
	if img == nil || img.Bounds().Empty() {
		return ""
	}
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(hex(img.At(x, y)))
			if y+1 < b.Max.Y {
				style = style.Background(hex(img.At(x, y+1)))
			}
			sb.WriteString(style.Render(halfBlock))
		}
	}
	return sb.String()
}

func hex(c color.Color) lipgloss.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B))
}
