package integrations

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-epub"
	"github.com/kerbaras/comics/pkg/data"
)

// ExportPage is a downloaded image on disk and the name it gets inside the book.
type ExportPage struct {
	Path string
	Name string
}

type ExportChapter struct {
	Title string
	Pages []ExportPage
}

type EPubBuilder struct {
	outputDir string
}

func NewEPubBuilder(outputDir string) *EPubBuilder {
	return &EPubBuilder{outputDir: outputDir}
}

// CreateEPub compiles the chapters, in the given order, into a single EPub file
// named after the comic.
func (p *EPubBuilder) CreateEPub(comic *data.Comic, chapters []ExportChapter) (string, error) {
	if len(chapters) == 0 {
		return "", fmt.Errorf("no chapters to compile")
	}

	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	title := comic.Name
	if title == "" {
		title = comic.PathWord
	}

	e, err := epub.NewEpub(title)
	if err != nil {
		return "", fmt.Errorf("failed to create EPub: %w", err)
	}
	e.SetAuthor("CopyManga")
	e.SetLang("zh")

	for _, chapter := range chapters {
		if len(chapter.Pages) == 0 {
			continue
		}
		if err := p.addChapterToEPub(e, chapter); err != nil {
			return "", fmt.Errorf("failed to add chapter %s: %w", chapter.Title, err)
		}
	}

	outputPath := filepath.Join(p.outputDir, sanitizeFilename(title)+".epub")
	if err := e.Write(outputPath); err != nil {
		return "", fmt.Errorf("failed to write EPub: %w", err)
	}

	return outputPath, nil
}

func (p *EPubBuilder) addChapterToEPub(e *epub.Epub, chapter ExportChapter) error {
	var htmlContent strings.Builder
	htmlContent.WriteString(fmt.Sprintf("<h1>%s</h1>\n", chapter.Title))

	for i, page := range chapter.Pages {
		internalPath, err := e.AddImage(page.Path, page.Name)
		if err != nil {
			return fmt.Errorf("failed to add image %s: %w", page.Name, err)
		}

		htmlContent.WriteString(fmt.Sprintf(
			`<div class="page"><img src="%s" alt="Page %d" style="width:100%%;height:auto;"/></div>%s`,
			internalPath, i+1, "\n",
		))
	}

	if _, err := e.AddSection(htmlContent.String(), chapter.Title, "", ""); err != nil {
		return fmt.Errorf("failed to add section: %w", err)
	}
	return nil
}

// sanitizeFilename removes characters that are invalid in filenames
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	result = strings.Trim(result, ".")
	return result
}
