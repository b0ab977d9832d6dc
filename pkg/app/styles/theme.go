package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/comics/pkg/data"
)

var (
	// Color palette
	Primary   = lipgloss.Color("#FF6B9D")
	Secondary = lipgloss.Color("#C792EA")
	Success   = lipgloss.Color("#C3E88D")
	Warning   = lipgloss.Color("#FFCB6B")
	Error     = lipgloss.Color("#F07178")
	Info      = lipgloss.Color("#82AAFF")
	Muted     = lipgloss.Color("#546E7A")
	Highlight = lipgloss.Color("#37474F")

	RoundedBorder = lipgloss.RoundedBorder()
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Italic(true)

	TextStyle = lipgloss.NewStyle()

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	// Row of the selected comic
	SelectedStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Background(Highlight).
			Bold(true)

	PanelStyle = lipgloss.NewStyle().
			Border(RoundedBorder).
			BorderForeground(Secondary).
			Padding(0, 1)

	StatusDownloading = lipgloss.NewStyle().
				Foreground(Info).
				Bold(true)

	StatusCompleted = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	StatusPaused = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	StatusError = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	ProgressBarStyle = lipgloss.NewStyle().
				Foreground(Primary)

	ProgressFailedStyle = lipgloss.NewStyle().
				Foreground(Error)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(Muted)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			MarginTop(1)
)

// StatusStyle picks the style for a progress update status.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "downloading":
		return StatusDownloading
	case "complete":
		return StatusCompleted
	case "abandoned", "paused":
		return StatusPaused
	case "error":
		return StatusError
	default:
		return MutedStyle
	}
}

// EntityStyle picks the style for a stored comic or chapter status.
func EntityStyle(status data.Status) lipgloss.Style {
	switch status {
	case data.StatusSuccess:
		return StatusCompleted
	case data.StatusFailed:
		return StatusError
	default:
		return StatusDownloading
	}
}
