package ui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"slice/internal/model"
	"slice/internal/pipeline"
	"slice/internal/source"
)

type field int

const (
	fieldVideo field = iota
	fieldExport
	fieldFormat
	fieldQuality
	fieldSkip
	fieldCount
)

var fieldLabels = [fieldCount]string{"Video", "Export dir", "Format", "Quality", "Skip"}

// form holds the editable request parameters.
type form struct {
	video   textinput.Model
	export  textinput.Model
	quality textinput.Model
	skip    textinput.Model
	format  int // index into model.Formats

	focus field
}

func newForm(req model.ConversionRequest) form {
	f := form{
		video:   newInput("path to video ("+strings.Join(source.VideoExtensions(), ", ")+")", req.VideoPath),
		export:  newInput("directory for extracted frames", req.ExportDir),
		quality: newInput("0.1 - 1.0", strconv.FormatFloat(req.Quality, 'f', -1, 64)),
		skip:    newInput("keep every Nth frame", strconv.Itoa(req.FrameSkip)),
	}
	for i, fm := range model.Formats {
		if fm == req.Format {
			f.format = i
		}
	}
	f.quality.CharLimit = 4
	f.skip.CharLimit = 6
	f.setFocus(fieldVideo)
	return f
}

func newInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.Width = 48
	ti.SetValue(value)
	return ti
}

func (f *form) input(fd field) *textinput.Model {
	switch fd {
	case fieldVideo:
		return &f.video
	case fieldExport:
		return &f.export
	case fieldQuality:
		return &f.quality
	case fieldSkip:
		return &f.skip
	}
	return nil
}

func (f *form) setFocus(fd field) {
	for i := field(0); i < fieldCount; i++ {
		if in := f.input(i); in != nil {
			in.Blur()
		}
	}
	f.focus = (fd%fieldCount + fieldCount) % fieldCount
	if in := f.input(f.focus); in != nil {
		in.Focus()
	}
}

func (f *form) next() { f.setFocus(f.focus + 1) }
func (f *form) prev() { f.setFocus(f.focus - 1) }

func (f *form) cycleFormat(delta int) {
	n := len(model.Formats)
	f.format = ((f.format+delta)%n + n) % n
}

func (f *form) selectedFormat() model.Format {
	return model.Formats[f.format]
}

// request parses the inputs. Unparseable numbers are validation errors.
func (f *form) request() (model.ConversionRequest, error) {
	req := model.ConversionRequest{
		VideoPath: expand(f.video.Value()),
		ExportDir: expand(f.export.Value()),
		Format:    f.selectedFormat(),
	}
	q, err := strconv.ParseFloat(strings.TrimSpace(f.quality.Value()), 64)
	if err != nil {
		return req, fmt.Errorf("%w: quality %q is not a number", pipeline.ErrValidation, f.quality.Value())
	}
	req.Quality = q
	k, err := strconv.Atoi(strings.TrimSpace(f.skip.Value()))
	if err != nil {
		return req, fmt.Errorf("%w: skip %q is not a whole number", pipeline.ErrValidation, f.skip.Value())
	}
	req.FrameSkip = k
	return req, nil
}

func expand(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}
