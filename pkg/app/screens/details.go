package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/comics/pkg/app/styles"
	"github.com/kerbaras/comics/pkg/data"
)

// DetailsScreen lists the chapters of one comic with their fetch status.
type DetailsScreen struct {
	controller      Controller
	pathWord        string
	chapters        []*data.Chapter
	selectedChapter int
	width           int
	height          int
	err             error
}

func NewDetailsScreen(controller Controller, pathWord string) *DetailsScreen {
	return &DetailsScreen{
		controller: controller,
		pathWord:   pathWord,
	}
}

func (s *DetailsScreen) Init() tea.Cmd {
	return s.loadDetails
}

func (s *DetailsScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if s.selectedChapter > 0 {
				s.selectedChapter--
			}
		case key.Matches(msg, keys.Down):
			if s.selectedChapter < len(s.chapters)-1 {
				s.selectedChapter++
			}
		case key.Matches(msg, keys.Back):
			return s, func() tea.Msg {
				return SwitchScreenMsg{Screen: "library"}
			}
		}

	case refreshMsg:
		return s, s.loadDetails

	case detailsLoadedMsg:
		if msg.pathWord != s.pathWord {
			return s, nil
		}
		s.chapters = msg.chapters
		s.err = msg.err
		if s.selectedChapter >= len(s.chapters) {
			s.selectedChapter = max(len(s.chapters)-1, 0)
		}
	}

	return s, nil
}

func (s *DetailsScreen) View() string {
	header := styles.TitleStyle.Render(s.pathWord)

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err)) + "\n\n"
	}

	help := styles.HelpStyle.Render("↑/k ↓/j: navigate • esc: back • q: quit")

	return fmt.Sprintf("%s\n%s%s\n%s", header, errorMsg, s.renderChaptersList(), help)
}

func (s *DetailsScreen) renderChaptersList() string {
	if len(s.chapters) == 0 {
		return styles.MutedStyle.Render("No chapters")
	}

	var counts [3]int
	for _, ch := range s.chapters {
		if ch.Status >= 0 && int(ch.Status) < len(counts) {
			counts[ch.Status]++
		}
	}
	summary := styles.MutedStyle.Render(fmt.Sprintf("%d chapters: %d fetched, %d pending, %d failed",
		len(s.chapters), counts[data.StatusSuccess], counts[data.StatusInit], counts[data.StatusFailed]))

	// Keep the selection in view
	visible := s.height - 8
	if visible < 5 {
		visible = 5
	}
	start := 0
	if s.selectedChapter >= visible {
		start = s.selectedChapter - visible + 1
	}
	end := min(start+visible, len(s.chapters))

	var b strings.Builder
	b.WriteString(summary)
	b.WriteString("\n\n")
	for i := start; i < end; i++ {
		ch := s.chapters[i]
		line := fmt.Sprintf("%4d. %-40s %s", ch.Index+1, ch.Name,
			styles.EntityStyle(ch.Status).Render(ch.Status.String()))
		if i == s.selectedChapter {
			line = styles.SelectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

type detailsLoadedMsg struct {
	pathWord string
	chapters []*data.Chapter
	err      error
}

func (s *DetailsScreen) loadDetails() tea.Msg {
	chapters, err := s.controller.Chapters(context.Background(), s.pathWord)
	return detailsLoadedMsg{pathWord: s.pathWord, chapters: chapters, err: err}
}
