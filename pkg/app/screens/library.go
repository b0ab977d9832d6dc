package screens

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/comics/pkg/app/components"
	"github.com/kerbaras/comics/pkg/app/styles"
	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/services"
)

const refreshInterval = time.Second

// LibraryScreen shows the backlog with its progress and drives the
// downloader's pause, restart and worker count.
type LibraryScreen struct {
	controller Controller
	exportDir  string

	comicList       *components.ComicList
	progressTracker *components.ProgressTracker
	spinner         spinner.Model
	help            help.Model

	width  int
	height int
	notice string
	err    error
}

func NewLibraryScreen(controller Controller, exportDir string) *LibraryScreen {
	return &LibraryScreen{
		controller:      controller,
		exportDir:       exportDir,
		comicList:       components.NewComicList(),
		progressTracker: components.NewProgressTracker(80),
		spinner:         spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.StatusDownloading)),
		help:            help.New(),
	}
}

func (s *LibraryScreen) Init() tea.Cmd {
	return tea.Batch(
		s.loadLibrary,
		s.listenForProgress,
		refreshTick(),
		s.spinner.Tick,
	)
}

func (s *LibraryScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.comicList.Width = msg.Width - 4
		s.comicList.Height = msg.Height - 12
		s.progressTracker.SetWidth(msg.Width - 4)
		s.help.Width = msg.Width

	case tea.KeyMsg:
		return s, s.handleKey(msg)

	case refreshMsg:
		return s, tea.Batch(s.loadLibrary, refreshTick())

	case libraryLoadedMsg:
		s.err = msg.err
		if msg.err == nil {
			s.comicList.SetItems(msg.items)
		}

	case services.DownloadProgress:
		s.progressTracker.Update(msg)
		return s, s.listenForProgress

	case epubExportedMsg:
		if msg.err != nil {
			s.err = msg.err
		} else {
			s.notice = fmt.Sprintf("Exported %s", msg.path)
		}

	case failedResetMsg:
		if msg.err != nil {
			s.err = msg.err
		} else {
			s.notice = fmt.Sprintf("Failed pages of %s queued again", msg.pathWord)
		}
		return s, s.loadLibrary

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}

	return s, nil
}

func (s *LibraryScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Up):
		s.comicList.Prev()
	case key.Matches(msg, keys.Down):
		s.comicList.Next()
	case key.Matches(msg, keys.Pause):
		paused := !s.controller.Paused()
		s.controller.SetPaused(paused)
		if paused {
			s.notice = "Paused"
		} else {
			s.notice = "Resumed"
		}
	case key.Matches(msg, keys.Restart):
		s.controller.RequestRestart()
		s.notice = "Restart requested"
	case key.Matches(msg, keys.More):
		s.controller.SetWorkerCount(s.controller.WorkerCount() + 1)
		s.notice = fmt.Sprintf("Workers: %d (from next batch)", s.controller.WorkerCount())
	case key.Matches(msg, keys.Less):
		s.controller.SetWorkerCount(s.controller.WorkerCount() - 1)
		s.notice = fmt.Sprintf("Workers: %d (from next batch)", s.controller.WorkerCount())
	case key.Matches(msg, keys.Help):
		s.help.ShowAll = !s.help.ShowAll
	case key.Matches(msg, keys.Reset):
		if selected := s.comicList.Selected(); selected != nil {
			return s.resetFailed(selected.PathWord)
		}
	case key.Matches(msg, keys.Export):
		if selected := s.comicList.Selected(); selected != nil {
			s.notice = fmt.Sprintf("Exporting %s...", selected.PathWord)
			return s.exportEPub(selected.PathWord)
		}
	case key.Matches(msg, keys.Details):
		if selected := s.comicList.Selected(); selected != nil {
			pathWord := selected.PathWord
			return func() tea.Msg {
				return SwitchScreenMsg{Screen: "details", Data: pathWord}
			}
		}
	case key.Matches(msg, keys.Back):
		s.notice = ""
		s.err = nil
	}
	return nil
}

func (s *LibraryScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("Comic Downloads")

	state := styles.StatusDownloading.Render(s.spinner.View() + " running")
	if s.controller.Paused() {
		state = styles.StatusPaused.Render("⏸ paused")
	}
	status := fmt.Sprintf("%s  %s", state,
		styles.MutedStyle.Render(fmt.Sprintf("workers: %d", s.controller.WorkerCount())))

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err)) + "\n"
	}
	var notice string
	if s.notice != "" {
		notice = styles.SubtitleStyle.Render(s.notice) + "\n"
	}

	content := fmt.Sprintf("%s\n%s\n\n%s\n%s%s%s\n%s",
		header,
		status,
		s.comicList.View(),
		errorMsg,
		notice,
		s.progressTracker.View(),
		s.help.View(keys),
	)
	return content
}

// Messages
type refreshMsg time.Time

type libraryLoadedMsg struct {
	items []*data.ComicProgress
	err   error
}

type epubExportedMsg struct {
	path string
	err  error
}

type failedResetMsg struct {
	pathWord string
	err      error
}

// Commands
func refreshTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func (s *LibraryScreen) loadLibrary() tea.Msg {
	items, err := s.controller.Library(context.Background())
	return libraryLoadedMsg{items: items, err: err}
}

func (s *LibraryScreen) listenForProgress() tea.Msg {
	progress, ok := <-s.controller.Progress()
	if !ok {
		return nil
	}
	return progress
}

func (s *LibraryScreen) exportEPub(pathWord string) tea.Cmd {
	return func() tea.Msg {
		path, err := s.controller.Export(context.Background(), pathWord, s.exportDir)
		return epubExportedMsg{path: path, err: err}
	}
}

func (s *LibraryScreen) resetFailed(pathWord string) tea.Cmd {
	return func() tea.Msg {
		err := s.controller.ResetFailed(context.Background(), pathWord)
		return failedResetMsg{pathWord: pathWord, err: err}
	}
}
