package ui

import "slice/internal/progress"

type jobUpdateMsg struct {
	U progress.Update
}

type jobResultMsg struct {
	R progress.Result
}

type allDoneMsg struct{}
