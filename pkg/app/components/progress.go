package components

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kerbaras/comics/pkg/app/styles"
	"github.com/kerbaras/comics/pkg/services"
)

// ProgressTracker keeps the latest update of every comic being downloaded.
type ProgressTracker struct {
	downloads map[string]*services.DownloadProgress
	width     int
}

func NewProgressTracker(width int) *ProgressTracker {
	return &ProgressTracker{
		downloads: make(map[string]*services.DownloadProgress),
		width:     width,
	}
}

func (p *ProgressTracker) SetWidth(width int) {
	p.width = width
}

func (p *ProgressTracker) Update(progress services.DownloadProgress) {
	if progress.Stage == "cycle" && progress.Status == "complete" {
		delete(p.downloads, progress.ComicPathWord)
		return
	}
	prog := progress
	p.downloads[progress.ComicPathWord] = &prog
}

func (p *ProgressTracker) Clear() {
	p.downloads = make(map[string]*services.DownloadProgress)
}

func (p *ProgressTracker) HasActive() bool {
	return len(p.downloads) > 0
}

func (p *ProgressTracker) View() string {
	if len(p.downloads) == 0 {
		return ""
	}

	keys := make([]string, 0, len(p.downloads))
	for k := range p.downloads {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render("Activity"))
	b.WriteString("\n")

	for _, k := range keys {
		progress := p.downloads[k]

		var text string
		switch progress.Stage {
		case "chapters":
			text = fmt.Sprintf("%s: chapter %d/%d", progress.ComicPathWord, progress.Done, progress.Total)
		case "pages":
			text = fmt.Sprintf("%s: batch %d/%d pages", progress.ComicPathWord, progress.Done, progress.Total)
		default:
			text = fmt.Sprintf("%s: %s", progress.ComicPathWord, progress.Status)
		}
		b.WriteString(styles.StatusStyle(progress.Status).Render(text))
		b.WriteString("\n")

		if progress.Total > 0 {
			b.WriteString(renderProgressBar(progress.Done, 0, progress.Total, p.width-4))
			b.WriteString("\n")
		}
		if progress.Error != nil {
			b.WriteString(styles.StatusError.Render(fmt.Sprintf("Error: %s", progress.Error)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func renderProgressBar(done, failed, total, width int) string {
	if total == 0 || width <= 0 {
		return ""
	}

	ok := done * width / total
	bad := failed * width / total
	if ok+bad > width {
		bad = width - ok
	}
	if ok > width {
		ok, bad = width, 0
	}

	return styles.ProgressBarStyle.Render(strings.Repeat("█", ok)) +
		styles.ProgressFailedStyle.Render(strings.Repeat("█", bad)) +
		styles.ProgressEmptyStyle.Render(strings.Repeat("░", width-ok-bad))
}

// SimpleProgress renders a bar of done and failed out of total.
func SimpleProgress(done, failed, total, width int) string {
	return renderProgressBar(done, failed, total, width)
}
