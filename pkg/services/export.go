package services

import (
	"context"
	"fmt"

	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/integrations"
)

// Export compiles the downloaded pages of a comic into an EPub under
// outputDir, one section per fetched chapter. Chapters without a single
// downloaded page are skipped.
func (c *ComicController) Export(ctx context.Context, pathWord, outputDir string) (string, error) {
	comic, err := c.repo.GetComic(ctx, pathWord)
	if err != nil {
		return "", err
	}
	if comic == nil {
		return "", fmt.Errorf("comic %s is not in the library", pathWord)
	}

	chapters, err := c.exportChapters(ctx, comic.PathWord)
	if err != nil {
		return "", err
	}
	if len(chapters) == 0 {
		return "", fmt.Errorf("comic %s has no downloaded pages", pathWord)
	}

	path, err := integrations.NewEPubBuilder(outputDir).CreateEPub(comic, chapters)
	if err != nil {
		return "", err
	}
	c.log.Info("comic exported", "comic", pathWord, "chapters", len(chapters), "path", path)
	return path, nil
}

func (c *ComicController) exportChapters(ctx context.Context, pathWord string) ([]integrations.ExportChapter, error) {
	chapters, err := c.repo.Chapters(ctx, pathWord)
	if err != nil {
		return nil, err
	}

	var out []integrations.ExportChapter
	for _, chapter := range chapters {
		if chapter.Status != data.StatusSuccess {
			continue
		}
		pages, err := c.repo.Pages(ctx, chapter.UUID, data.StatusSuccess)
		if err != nil {
			return nil, err
		}
		if len(pages) == 0 {
			continue
		}

		export := integrations.ExportChapter{Title: chapter.Name}
		if export.Title == "" {
			export.Title = fmt.Sprintf("Chapter %d", chapter.Index+1)
		}
		for _, page := range pages {
			export.Pages = append(export.Pages, integrations.ExportPage{
				Path: ImagePath(c.downloadDir, pathWord, page.ChapterUUID, page.ImageIndex),
				Name: exportName(page),
			})
		}
		out = append(out, export)
	}
	return out, nil
}

func exportName(page *data.Page) string {
	format := page.Format
	if format == "" {
		format = "img"
	}
	return fmt.Sprintf("%s-%04d.%s", page.ChapterUUID, page.ImageIndex, format)
}
