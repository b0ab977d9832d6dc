package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/logging"
	"github.com/kerbaras/comics/pkg/sources"
)

const DefaultCadence = 3 * time.Second

// DownloadProgress is an update emitted while a comic is being downloaded.
type DownloadProgress struct {
	Cycle         string
	ComicPathWord string
	ChapterUUID   string
	Stage         string // "chapters", "pages", "cycle"
	Done          int
	Total         int
	Status        string // "downloading", "complete", "abandoned", "error"
	Error         error
}

// Store is the persistent backlog the Downloader works from.
type Store interface {
	NextComic(ctx context.Context, status data.Status) (*data.Comic, error)
	ListChapters(ctx context.Context, comicPathWord string, status data.Status) ([]*data.Chapter, error)
	SaveChapterPages(ctx context.Context, comicPathWord, chapterUUID string, pages []*data.Page) error
	ChapterFetchFailed(ctx context.Context, chapterUUID string) error
	FetchPages(ctx context.Context, comicPathWord string, status data.Status, limit int) ([]*data.Page, error)
	PageSuccess(ctx context.Context, comicPathWord, chapterUUID string, index, width, height int, format string) error
	PageFailed(ctx context.Context, chapterUUID string, index int) error
	FinishComic(ctx context.Context, comicPathWord string) (data.Status, error)
}

type DownloaderConfig struct {
	DownloadDir string
	// Cadence is the sleep at the start of every scheduling cycle.
	Cadence time.Duration
	// MaxConsecutiveFailures makes Run give up after that many cycles in a
	// row end in an error. Zero keeps it running forever.
	MaxConsecutiveFailures int
	Logger                 *slog.Logger
}

// Downloader works through the backlog one comic at a time: it resolves the
// comic's pending chapters into pages, then drains the pages with a pool of
// workers sized by Control.
type Downloader struct {
	source       sources.Source
	store        Store
	control      *Control
	downloadDir  string
	cadence      time.Duration
	maxFailures  int
	log          *slog.Logger
	progressChan chan DownloadProgress
}

func NewDownloader(source sources.Source, store Store, control *Control, cfg DownloaderConfig) *Downloader {
	if control == nil {
		control = NewControl(DefaultPausePoll)
	}
	if cfg.Cadence <= 0 {
		cfg.Cadence = DefaultCadence
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	return &Downloader{
		source:       source,
		store:        store,
		control:      control,
		downloadDir:  cfg.DownloadDir,
		cadence:      cfg.Cadence,
		maxFailures:  cfg.MaxConsecutiveFailures,
		log:          cfg.Logger,
		progressChan: make(chan DownloadProgress, 100),
	}
}

// GetProgressChannel returns the channel for receiving download progress updates
func (d *Downloader) GetProgressChannel() <-chan DownloadProgress {
	return d.progressChan
}

// Run schedules cycles until ctx is cancelled, which is not an error. Cycle
// errors are logged and the next cycle is attempted, unless
// MaxConsecutiveFailures is reached.
func (d *Downloader) Run(ctx context.Context) error {
	d.log.Info("downloader started", "cadence", d.cadence, "workers", d.control.WorkerCount())
	defer d.log.Info("downloader stopped")

	failures := 0
	for {
		if err := sleep(ctx, d.cadence); err != nil {
			return nil
		}

		err := d.DownloadNextComic(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			failures = 0
			continue
		}

		failures++
		d.log.Error("download cycle failed", "kind", ErrorKind(err), "consecutive", failures, "error", err)
		if d.maxFailures > 0 && failures >= d.maxFailures {
			return fmt.Errorf("giving up after %d consecutive failed cycles: %w", failures, err)
		}
	}
}

// DownloadNextComic runs one scheduling cycle: it waits out a pause, clears a
// stale restart request, and downloads the next Init comic if there is one.
func (d *Downloader) DownloadNextComic(ctx context.Context) error {
	if err := d.control.WaitIfPaused(ctx); err != nil {
		return err
	}
	d.control.ConsumeRestart()

	comic, err := d.store.NextComic(ctx, data.StatusInit)
	if err != nil {
		return storeError("next comic", err)
	}
	if comic == nil {
		return nil
	}

	cycle := uuid.NewString()
	log := d.log.With("comic", comic.PathWord, "cycle", cycle)
	log.Info("download cycle started", "name", comic.Name)

	start := time.Now()
	status, err := d.downloadComic(ctx, log, cycle, comic.PathWord)
	if err != nil {
		d.sendProgress(DownloadProgress{Cycle: cycle, ComicPathWord: comic.PathWord, Stage: "cycle", Status: "error", Error: err})
		return fmt.Errorf("comic %s: %w", comic.PathWord, err)
	}

	progress := DownloadProgress{Cycle: cycle, ComicPathWord: comic.PathWord, Stage: "cycle", Status: "complete"}
	if status == data.StatusInit {
		progress.Status = "abandoned"
	}
	d.sendProgress(progress)
	log.Info("download cycle finished", "status", status, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func (d *Downloader) downloadComic(ctx context.Context, log *slog.Logger, cycle, comicPathWord string) (data.Status, error) {
	if err := d.fetchChapters(ctx, log, cycle, comicPathWord); err != nil {
		return data.StatusInit, err
	}
	if err := d.drainPages(ctx, log, cycle, comicPathWord); err != nil {
		return data.StatusInit, err
	}
	if err := ctx.Err(); err != nil {
		return data.StatusInit, err
	}
	if d.control.RestartPending() {
		log.Info("restart requested, leaving remaining work for a later cycle")
		return data.StatusInit, nil
	}

	status, err := d.store.FinishComic(ctx, comicPathWord)
	if err != nil {
		return data.StatusInit, storeError("finish comic", err)
	}
	return status, nil
}

// sendProgress sends a progress update (non-blocking)
func (d *Downloader) sendProgress(progress DownloadProgress) {
	select {
	case d.progressChan <- progress:
	default:
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
