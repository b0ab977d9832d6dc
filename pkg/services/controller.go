package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/kerbaras/comics/pkg/config"
	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/logging"
	"github.com/kerbaras/comics/pkg/sources"
)

// ComicController is what the CLI and the dashboard talk to: the backlog,
// the remote source and the control surface of a Downloader.
type ComicController struct {
	source      sources.Source
	repo        *data.Repository
	control     *Control
	downloader  *Downloader
	downloadDir string
	log         *slog.Logger
}

// NewComicController opens the store and wires a CopyManga source and a
// Downloader according to cfg.
func NewComicController(cfg *config.Config, log *slog.Logger) (*ComicController, error) {
	repo, err := data.OpenRepository(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Database, err)
	}
	source := sources.NewCopyManga(cfg.API.BaseURL, cfg.API.UserAgent, cfg.API.Timeout)

	controller, err := NewComicControllerWith(cfg, source, repo, log)
	if err != nil {
		repo.Close()
		return nil, err
	}
	return controller, nil
}

// NewComicControllerWith builds a controller around an existing source and
// repository.
func NewComicControllerWith(cfg *config.Config, source sources.Source, repo *data.Repository, log *slog.Logger) (*ComicController, error) {
	if log == nil {
		log = logging.Discard()
	}
	if err := os.MkdirAll(cfg.DownloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	control := NewControl(cfg.Downloader.PausePoll)
	control.SetWorkerCount(cfg.Downloader.Workers)

	downloader := NewDownloader(source, repo, control, DownloaderConfig{
		DownloadDir:            cfg.DownloadDir,
		Cadence:                cfg.Downloader.Cadence,
		MaxConsecutiveFailures: cfg.Downloader.MaxConsecutiveFailures,
		Logger:                 log,
	})

	return &ComicController{
		source:      source,
		repo:        repo,
		control:     control,
		downloader:  downloader,
		downloadDir: cfg.DownloadDir,
		log:         log,
	}, nil
}

func (c *ComicController) SetWorkerCount(n int) {
	c.control.SetWorkerCount(n)
	c.log.Info("worker count changed", "workers", c.control.WorkerCount())
}

func (c *ComicController) WorkerCount() int {
	return c.control.WorkerCount()
}

func (c *ComicController) RequestRestart() {
	c.control.RequestRestart()
	c.log.Info("restart requested")
}

func (c *ComicController) SetPaused(paused bool) {
	c.control.SetPaused(paused)
	c.log.Info("pause changed", "paused", paused)
}

func (c *ComicController) Paused() bool {
	return c.control.Paused()
}

func (c *ComicController) Progress() <-chan DownloadProgress {
	return c.downloader.GetProgressChannel()
}

// Run downloads the backlog until ctx is cancelled.
func (c *ComicController) Run(ctx context.Context) error {
	return c.downloader.Run(ctx)
}

// Library lists every comic in the backlog with its page counters.
func (c *ComicController) Library(ctx context.Context) ([]*data.ComicProgress, error) {
	return c.repo.ListComics(ctx)
}

// Chapters lists every chapter of the comic in store order.
func (c *ComicController) Chapters(ctx context.Context, pathWord string) ([]*data.Chapter, error) {
	return c.repo.Chapters(ctx, pathWord)
}

// AddComic looks the comic up remotely and queues it together with the
// chapters of the given group. Chapters already known are left untouched.
func (c *ComicController) AddComic(ctx context.Context, pathWord, groupPathWord string) (*data.Comic, int, error) {
	comic, err := c.source.Comic(ctx, pathWord)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch comic %s: %w", pathWord, err)
	}
	chapters, err := c.source.Chapters(ctx, pathWord, groupPathWord)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch chapters of %s: %w", pathWord, err)
	}

	if err := c.repo.AddComic(ctx, comic); err != nil {
		return nil, 0, fmt.Errorf("failed to save comic: %w", err)
	}
	added, err := c.repo.AddChapters(ctx, chapters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to save chapters: %w", err)
	}

	c.log.Info("comic queued", "comic", comic.PathWord, "group", groupPathWord, "chapters", len(chapters), "new", added)
	return comic, added, nil
}

// ResetFailed puts the comic's failed chapters and pages back in the backlog.
func (c *ComicController) ResetFailed(ctx context.Context, pathWord string) error {
	if err := c.requireComic(ctx, pathWord); err != nil {
		return err
	}
	return c.repo.ResetFailed(ctx, pathWord)
}

// RemoveComic drops the comic from the backlog. Downloaded files are kept.
func (c *ComicController) RemoveComic(ctx context.Context, pathWord string) error {
	if err := c.requireComic(ctx, pathWord); err != nil {
		return err
	}
	return c.repo.DeleteComic(ctx, pathWord)
}

func (c *ComicController) requireComic(ctx context.Context, pathWord string) error {
	comic, err := c.repo.GetComic(ctx, pathWord)
	if err != nil {
		return err
	}
	if comic == nil {
		return fmt.Errorf("comic %s is not in the library", pathWord)
	}
	return nil
}

func (c *ComicController) Close() error {
	return c.repo.Close()
}
