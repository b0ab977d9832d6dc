package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/kerbaras/comics/pkg/config"
	"github.com/kerbaras/comics/pkg/logging"
	"github.com/kerbaras/comics/pkg/services"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "comics",
	Short: "A background comic downloader",
	Long:  "Queue comics from CopyManga and download their pages in the background, with a live dashboard",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			loaded.Log.Level = logLevel
		}
		cfg = loaded
		return nil
	},
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Launch the dashboard by default
		return runDownloader(cmd, false)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultConfigPath(), "config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(exportCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(out io.Writer) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: out,
	})
}

// openController opens the library for a one-shot command, logging to stderr.
func openController() (*services.ComicController, error) {
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return nil, err
	}
	controller, err := services.NewComicController(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("%w (is a downloader already running?)", err)
	}
	return controller, nil
}
