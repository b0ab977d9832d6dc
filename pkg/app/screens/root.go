package screens

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type screenType int

const (
	libraryView screenType = iota
	detailsView
)

// SwitchScreenMsg asks the root screen to change the active view.
type SwitchScreenMsg struct {
	Screen string
	Data   any
}

type RootScreen struct {
	controller Controller

	currentView screenType
	library     *LibraryScreen
	details     *DetailsScreen

	width  int
	height int
}

func NewRootScreen(controller Controller, exportDir string) *RootScreen {
	return &RootScreen{
		controller:  controller,
		currentView: libraryView,
		library:     NewLibraryScreen(controller, exportDir),
	}
}

func (r *RootScreen) Init() tea.Cmd {
	return r.library.Init()
}

func (r *RootScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height
		var cmds []tea.Cmd
		_, cmd := r.library.Update(msg)
		cmds = append(cmds, cmd)
		if r.details != nil {
			_, cmd = r.details.Update(msg)
			cmds = append(cmds, cmd)
		}
		return r, tea.Batch(cmds...)

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return r, tea.Quit
		}
		if r.currentView == detailsView && r.details != nil {
			_, cmd := r.details.Update(msg)
			return r, cmd
		}
		_, cmd := r.library.Update(msg)
		return r, cmd

	case SwitchScreenMsg:
		switch msg.Screen {
		case "library":
			r.currentView = libraryView
			r.details = nil
		case "details":
			if pathWord, ok := msg.Data.(string); ok {
				r.details = NewDetailsScreen(r.controller, pathWord)
				r.details.width, r.details.height = r.width, r.height
				r.currentView = detailsView
				return r, r.details.Init()
			}
		}
		return r, nil

	case refreshMsg:
		// The library owns the refresh tick; the details view piggybacks on it.
		_, cmd := r.library.Update(msg)
		if r.details != nil {
			_, detailsCmd := r.details.Update(msg)
			cmd = tea.Batch(cmd, detailsCmd)
		}
		return r, cmd

	case detailsLoadedMsg:
		if r.details != nil {
			_, cmd := r.details.Update(msg)
			return r, cmd
		}
		return r, nil
	}

	// Everything else feeds the library, which keeps polling in the background.
	_, cmd := r.library.Update(msg)
	return r, cmd
}

func (r *RootScreen) View() string {
	if r.currentView == detailsView && r.details != nil {
		return r.details.View()
	}
	return r.library.View()
}
