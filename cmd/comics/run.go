package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/kerbaras/comics/pkg/app"
	"github.com/kerbaras/comics/pkg/logging"
	"github.com/kerbaras/comics/pkg/services"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Download the backlog",
	Long:  "Download queued comics until interrupted, with a live dashboard or headless",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		headless, _ := cmd.Flags().GetBool("headless")
		return runDownloader(cmd, headless)
	},
}

func init() {
	runCmd.Flags().Bool("headless", false, "run without the dashboard, logging to stderr")
	runCmd.Flags().IntP("workers", "w", 0, "concurrent page downloads (default from config)")
}

func runDownloader(cmd *cobra.Command, headless bool) error {
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.Downloader.Workers = workers
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	lock := flock.New(cfg.LockFile())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", cfg.LockFile(), err)
	}
	if !locked {
		return fmt.Errorf("another downloader is already running on %s", cfg.DataDir)
	}
	defer lock.Unlock()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if headless {
		return runHeadless(ctx)
	}
	return runDashboard(ctx)
}

func runHeadless(ctx context.Context) error {
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	controller, err := services.NewComicController(cfg, logger)
	if err != nil {
		return err
	}
	defer controller.Close()

	logger.Info("running headless", "database", cfg.Database, "downloads", cfg.DownloadDir)
	return controller.Run(ctx)
}

// runDashboard runs the downloader in the background while the dashboard owns
// the terminal. Logs go to the data directory.
func runDashboard(ctx context.Context) error {
	logFile, err := logging.OpenFile(cfg.LogFile())
	if err != nil {
		return err
	}
	defer logFile.Close()

	logger, err := newLogger(logFile)
	if err != nil {
		return err
	}
	controller, err := services.NewComicController(cfg, logger)
	if err != nil {
		return err
	}
	defer controller.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- controller.Run(ctx) }()

	uiErr := app.NewApp(controller, filepath.Join(cfg.DataDir, "exports")).Run(ctx)
	cancel()

	return errors.Join(uiErr, <-runErr)
}
