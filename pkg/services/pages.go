package services

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/integrations"
	"golang.org/x/sync/errgroup"
)

// drainPages downloads the comic's Init pages in batches of at most
// data.MaxPageBatch. Each batch is fully drained before the next is fetched.
func (d *Downloader) drainPages(ctx context.Context, log *slog.Logger, cycle, comicPathWord string) error {
	if err := os.MkdirAll(ComicDir(d.downloadDir, comicPathWord), 0755); err != nil {
		return filesystemError("create comic directory", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.control.RestartPending() {
			return nil
		}
		if err := d.control.WaitIfPaused(ctx); err != nil {
			return err
		}

		batch, err := d.store.FetchPages(ctx, comicPathWord, data.StatusInit, data.MaxPageBatch)
		if err != nil {
			return storeError("fetch pages", err)
		}
		if len(batch) == 0 {
			return nil
		}

		if err := d.ensureChapterDirs(comicPathWord, batch); err != nil {
			return err
		}

		workers := d.control.WorkerCount()
		log.Debug("draining batch", "pages", len(batch), "workers", workers)

		b := &batchState{
			cycle: cycle,
			comic: comicPathWord,
			queue: newPageQueue(batch),
			total: len(batch),
		}
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < workers; i++ {
			g.Go(func() error {
				return d.work(gctx, log, b)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
}

func (d *Downloader) ensureChapterDirs(comicPathWord string, batch []*data.Page) error {
	seen := make(map[string]bool)
	for _, page := range batch {
		if seen[page.ChapterUUID] {
			continue
		}
		seen[page.ChapterUUID] = true
		if err := os.MkdirAll(ChapterDir(d.downloadDir, comicPathWord, page.ChapterUUID), 0755); err != nil {
			return filesystemError("create chapter directory", err)
		}
	}
	return nil
}

type batchState struct {
	cycle string
	comic string
	queue *pageQueue
	total int
	done  atomic.Int64
}

// work pops pages until the queue is empty or a restart is pending. Pages
// left in the queue on restart stay Init in the store.
func (d *Downloader) work(ctx context.Context, log *slog.Logger, b *batchState) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.control.WaitIfPaused(ctx); err != nil {
			return err
		}
		if d.control.RestartPending() {
			return nil
		}

		page, ok := b.queue.Pop()
		if !ok {
			return nil
		}

		status, err := d.downloadPage(context.WithoutCancel(ctx), log, b.comic, page)
		if err != nil {
			return err
		}

		progress := DownloadProgress{
			Cycle:         b.cycle,
			ComicPathWord: b.comic,
			ChapterUUID:   page.ChapterUUID,
			Stage:         "pages",
			Done:          int(b.done.Add(1)),
			Total:         b.total,
			Status:        "downloading",
		}
		if status == data.StatusFailed {
			progress.Status = "error"
		}
		d.sendProgress(progress)
	}
}

// downloadPage fetches, checks and stores a single page, returning its final
// status. Network and decode problems mark the page Failed; disk and store
// problems are returned as a FatalError.
func (d *Downloader) downloadPage(ctx context.Context, log *slog.Logger, comicPathWord string, page *data.Page) (data.Status, error) {
	log = log.With("chapter", page.ChapterUUID, "index", page.ImageIndex)

	content, err := d.source.FetchImage(ctx, page.URL)
	if err != nil {
		log.Warn("page fetch failed", "kind", "network", "error", err)
		return d.pageFailed(ctx, page)
	}

	format, err := integrations.GuessFormat(content)
	if err != nil {
		log.Warn("page is not an image", "kind", "decode", "error", err)
		return d.pageFailed(ctx, page)
	}
	width, height, err := integrations.DecodeSize(content)
	if err != nil {
		log.Warn("page could not be decoded", "kind", "decode", "format", format, "error", err)
		return d.pageFailed(ctx, page)
	}

	path := ImagePath(d.downloadDir, comicPathWord, page.ChapterUUID, page.ImageIndex)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return data.StatusInit, filesystemError("write page", err)
	}

	if err := d.store.PageSuccess(ctx, comicPathWord, page.ChapterUUID, page.ImageIndex, width, height, format); err != nil {
		return data.StatusInit, storeError("mark page success", err)
	}
	return data.StatusSuccess, nil
}

func (d *Downloader) pageFailed(ctx context.Context, page *data.Page) (data.Status, error) {
	if err := d.store.PageFailed(ctx, page.ChapterUUID, page.ImageIndex); err != nil {
		return data.StatusInit, storeError("mark page failed", err)
	}
	return data.StatusFailed, nil
}
