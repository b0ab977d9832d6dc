package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/comics/pkg/app/styles"
	"github.com/kerbaras/comics/pkg/data"
)

// ComicList is the selectable list of comics in the backlog.
type ComicList struct {
	Items         []*data.ComicProgress
	SelectedIndex int
	Width         int
	Height        int
}

func NewComicList() *ComicList {
	return &ComicList{
		Items:  []*data.ComicProgress{},
		Width:  80,
		Height: 20,
	}
}

// SetItems replaces the list, keeping the selection on the same comic when
// it is still present.
func (m *ComicList) SetItems(items []*data.ComicProgress) {
	var selected string
	if cur := m.Selected(); cur != nil {
		selected = cur.PathWord
	}

	m.Items = items
	for i, item := range items {
		if item.PathWord == selected {
			m.SelectedIndex = i
			return
		}
	}
	if m.SelectedIndex >= len(items) {
		m.SelectedIndex = len(items) - 1
	}
	if m.SelectedIndex < 0 {
		m.SelectedIndex = 0
	}
}

func (m *ComicList) Next() {
	if len(m.Items) == 0 {
		return
	}
	m.SelectedIndex = (m.SelectedIndex + 1) % len(m.Items)
}

func (m *ComicList) Prev() {
	if len(m.Items) == 0 {
		return
	}
	m.SelectedIndex--
	if m.SelectedIndex < 0 {
		m.SelectedIndex = len(m.Items) - 1
	}
}

func (m *ComicList) Selected() *data.ComicProgress {
	if len(m.Items) == 0 || m.SelectedIndex >= len(m.Items) {
		return nil
	}
	return m.Items[m.SelectedIndex]
}

func (m *ComicList) View() string {
	if len(m.Items) == 0 {
		emptyMsg := styles.MutedStyle.Render("No comics in the backlog. Add one with `comics add <path-word>`.")
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, emptyMsg)
	}

	nameWidth := m.Width / 3
	barWidth := m.Width - nameWidth - 32
	if barWidth < 10 {
		barWidth = 10
	}

	var b strings.Builder
	for i, item := range m.Items {
		name := item.Name
		if name == "" {
			name = item.PathWord
		}
		if len([]rune(name)) > nameWidth {
			name = string([]rune(name)[:nameWidth-1]) + "…"
		}

		row := fmt.Sprintf("%-*s %s %s %s",
			nameWidth,
			name,
			styles.EntityStyle(item.Status).Render(fmt.Sprintf("%-7s", item.Status)),
			SimpleProgress(item.SuccessPages, item.FailedPages, item.TotalPages, barWidth),
			styles.MutedStyle.Render(fmt.Sprintf("%d/%d (%d failed)", item.SuccessPages, item.TotalPages, item.FailedPages)),
		)
		if i == m.SelectedIndex {
			row = styles.SelectedStyle.Render("> ") + row
		} else {
			row = "  " + row
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	return b.String()
}
