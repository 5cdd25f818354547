package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"slice/internal/state"
)

// Run launches the interactive session and blocks until the user quits.
// It returns the directories to persist, updated with the last run's
// input and export locations.
func Run(ctx context.Context, opts Options) (state.Record, error) {
	m := NewModel(ctx, opts)
	prog := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := prog.Run()
	if fm, ok := final.(Model); ok {
		fm.cancel()
		fm.Wait()
		return fm.Record(), err
	}
	m.cancel()
	return opts.Record, err
}
