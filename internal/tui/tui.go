// Package tui is the interactive admin panel: a bubbletea program around the
// app state engine.
package tui

import (
	"scrumbringer-admin/internal/app"
	"scrumbringer-admin/internal/runner"

	tea "github.com/charmbracelet/bubbletea"
)

func Run(r *runner.Runner, opts app.Options, start app.Page) error {
	applyColorProfilePreference()
	applyThemePreference(opts.Theme)
	_, err := tea.NewProgram(NewModel(r, opts, start), tea.WithAltScreen()).Run()
	return err
}
