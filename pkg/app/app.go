package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/comics/pkg/app/screens"
)

// App is the interactive dashboard over a running downloader.
type App struct {
	controller screens.Controller
	exportDir  string
}

func NewApp(controller screens.Controller, exportDir string) *App {
	return &App{controller: controller, exportDir: exportDir}
}

// Run blocks until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	model := screens.NewRootScreen(a.controller, a.exportDir)
	p := tea.NewProgram(model, tea.WithAltScreen())

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			p.Quit()
		case <-done:
		}
	}()

	_, err := p.Run()
	return err
}
