package screens

import (
	"context"

	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/services"
)

// Controller is the part of services.ComicController the dashboard drives.
type Controller interface {
	Library(ctx context.Context) ([]*data.ComicProgress, error)
	Chapters(ctx context.Context, pathWord string) ([]*data.Chapter, error)
	Progress() <-chan services.DownloadProgress
	ResetFailed(ctx context.Context, pathWord string) error
	Export(ctx context.Context, pathWord, outputDir string) (string, error)

	SetPaused(paused bool)
	Paused() bool
	RequestRestart()
	SetWorkerCount(n int)
	WorkerCount() int
}
