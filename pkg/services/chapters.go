package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/sources"
)

// fetchChapters resolves the comic's Init chapters into Init pages, one
// chapter at a time in store order. A pending restart abandons the
// remaining chapters, which stay Init.
func (d *Downloader) fetchChapters(ctx context.Context, log *slog.Logger, cycle, comicPathWord string) error {
	chapters, err := d.store.ListChapters(ctx, comicPathWord, data.StatusInit)
	if err != nil {
		return storeError("list chapters", err)
	}
	if len(chapters) == 0 {
		return nil
	}
	log.Debug("fetching chapters", "pending", len(chapters))

	for i, chapter := range chapters {
		if err := d.control.WaitIfPaused(ctx); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.control.RestartPending() {
			log.Info("restart pending, abandoning chapters", "remaining", len(chapters)-i)
			return nil
		}

		progress := DownloadProgress{
			Cycle:         cycle,
			ComicPathWord: comicPathWord,
			ChapterUUID:   chapter.UUID,
			Stage:         "chapters",
			Done:          i + 1,
			Total:         len(chapters),
			Status:        "downloading",
		}
		// A chapter that has started is always recorded.
		if err := d.fetchChapter(context.WithoutCancel(ctx), log, comicPathWord, chapter); err != nil {
			if IsFatal(err) {
				return err
			}
			progress.Status = "error"
			progress.Error = err
		}
		d.sendProgress(progress)
	}
	return nil
}

// fetchChapter returns a non-fatal error when the chapter was marked Failed.
func (d *Downloader) fetchChapter(ctx context.Context, log *slog.Logger, comicPathWord string, chapter *data.Chapter) error {
	pages, err := d.chapterPages(ctx, comicPathWord, chapter.UUID)
	if err != nil {
		log.Warn("chapter fetch failed", "kind", "network", "chapter", chapter.UUID, "error", err)
		if err := d.store.ChapterFetchFailed(ctx, chapter.UUID); err != nil {
			return storeError("mark chapter failed", err)
		}
		return err
	}

	if err := d.store.SaveChapterPages(ctx, comicPathWord, chapter.UUID, pages); err != nil {
		return storeError("save chapter pages", err)
	}
	log.Debug("chapter fetched", "chapter", chapter.UUID, "name", chapter.Name, "pages", len(pages))
	return nil
}

func (d *Downloader) chapterPages(ctx context.Context, comicPathWord, chapterUUID string) ([]*data.Page, error) {
	contents, err := d.source.ChapterContents(ctx, comicPathWord, chapterUUID)
	if err != nil {
		return nil, err
	}
	return buildPages(comicPathWord, chapterUUID, contents)
}

func buildPages(comicPathWord, chapterUUID string, contents []sources.Content) ([]*data.Page, error) {
	pages := make([]*data.Page, len(contents))
	for i, content := range contents {
		key, err := CacheKey(content.URL)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages[i] = &data.Page{
			ComicPathWord: comicPathWord,
			ChapterUUID:   chapterUUID,
			ImageIndex:    i,
			URL:           content.URL,
			CacheKey:      key,
			Status:        data.StatusInit,
		}
	}
	return pages, nil
}
