package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"slice/internal/model"
	"slice/internal/progress"
)

func (m Model) viewHeader() string {
	title := m.styles.Title.Render("Slice · video frame extractor")
	sub := m.styles.Subtitle.Render("enter: start • esc: cancel • ←/→: format • tab: next field • ctrl+c: quit")
	return title + "\n" + sub
}

func (m Model) viewForm() string {
	var b strings.Builder
	for fd := field(0); fd < fieldCount; fd++ {
		label := m.styles.Label.Render(fieldLabels[fd])
		if fd == m.form.focus {
			label = m.styles.Focused.Render(fieldLabels[fd])
		}
		var value string
		switch fd {
		case fieldFormat:
			value = m.viewFormats()
		default:
			value = m.form.input(fd).View()
		}
		if fd == fieldQuality && !m.form.selectedFormat().Lossy() {
			value += m.styles.Faint.Render("  (no effect for " + string(m.form.selectedFormat()) + ")")
		}
		b.WriteString(m.styles.Box.Render(label + " " + value))
		b.WriteString("\n")
	}
	if m.formErr != nil {
		b.WriteString(m.styles.Box.Render(m.styles.Error.Render("✗ " + m.formErr.Error())))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewFormats() string {
	parts := make([]string, 0, len(model.Formats))
	for i, f := range model.Formats {
		if i == m.form.format {
			parts = append(parts, m.styles.Selected.Render(string(f)))
		} else {
			parts = append(parts, m.styles.Option.Render(string(f)))
		}
	}
	return strings.Join(parts, "")
}

func (m Model) viewJob() string {
	js := m.job
	if js == nil {
		return m.styles.Box.Render(m.styles.Faint.Render("Idle"))
	}

	stageStyle := m.styles.Faint
	switch js.stage {
	case progress.StageProbing:
		stageStyle = m.styles.StageProbe
	case progress.StageSlicing:
		stageStyle = m.styles.StageSlice
	case progress.StageAssembling:
		stageStyle = m.styles.StageGIF
	case progress.StageCompleted:
		stageStyle = m.styles.Success
	case progress.StageCancelled:
		stageStyle = m.styles.Warning
	case progress.StageError:
		stageStyle = m.styles.Error
	}

	var bar string
	switch {
	case js.percent >= 0 && js.percent <= 100:
		bar = fmt.Sprintf("%s %3d%%", js.bar.ViewAs(float64(js.percent)/100.0), js.percent)
	case js.done && js.err == nil:
		bar = m.styles.Success.Render("✓ done")
	case js.err != nil:
		bar = m.styles.Error.Render("✗ error")
	default:
		bar = m.styles.Spinner.Render(js.spinner.View()) + " " + m.styles.Faint.Render("working")
	}

	counts := fmt.Sprintf("frame %d", js.frame)
	if js.total > 0 {
		counts = fmt.Sprintf("frame %d/%d", js.frame, js.total)
	}
	counts += fmt.Sprintf(" • %d written", js.written)

	lines := []string{
		stageStyle.Render(string(js.stage)) + "  " + m.styles.Faint.Render(counts),
		bar,
		statusStyle(m.styles, js).Render(js.status),
	}
	if js.preview != "" {
		lines = append(lines, "", js.preview)
	}
	return m.styles.Box.Render(strings.Join(lines, "\n"))
}

func statusStyle(s Styles, js *jobState) lipgloss.Style {
	switch {
	case js.err != nil:
		return s.Error
	case js.done && js.stage == progress.StageCancelled:
		return s.Warning
	case js.done:
		return s.Success
	default:
		return s.Faint
	}
}
