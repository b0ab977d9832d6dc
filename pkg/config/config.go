package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all settings for the comics downloader.
type Config struct {
	Env         string     `yaml:"env" env:"COMICS_ENV" env-default:"local"`
	DataDir     string     `yaml:"data_dir" env:"COMICS_DATA_DIR"`
	Database    string     `yaml:"database" env:"COMICS_DATABASE"`
	DownloadDir string     `yaml:"download_dir" env:"COMICS_DOWNLOAD_DIR"`
	Log         Log        `yaml:"log"`
	API         API        `yaml:"api"`
	Downloader  Downloader `yaml:"downloader"`
}

type Log struct {
	Level  string `yaml:"level" env:"COMICS_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"COMICS_LOG_FORMAT" env-default:"text"`
}

type API struct {
	BaseURL   string        `yaml:"base_url" env:"COMICS_API_BASE_URL" env-default:"https://api.copymanga.tv"`
	Timeout   time.Duration `yaml:"timeout" env:"COMICS_API_TIMEOUT" env-default:"30s"`
	UserAgent string        `yaml:"user_agent" env:"COMICS_API_USER_AGENT" env-default:"COPY/2.0.7"`
}

type Downloader struct {
	Workers                int           `yaml:"workers" env:"COMICS_WORKERS" env-default:"3"`
	Cadence                time.Duration `yaml:"cadence" env:"COMICS_CADENCE" env-default:"3s"`
	PausePoll              time.Duration `yaml:"pause_poll" env:"COMICS_PAUSE_POLL" env-default:"3s"`
	MaxConsecutiveFailures int           `yaml:"max_consecutive_failures" env:"COMICS_MAX_CONSECUTIVE_FAILURES" env-default:"0"`
}

// Load reads the YAML file at path, then applies environment overrides and
// defaults. A missing or empty path falls back to environment and defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
		} else if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfigPath returns ~/.comics/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(defaultDataDir(), "config.yaml")
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".comics"
	}
	return filepath.Join(homeDir, ".comics")
}

func (c *Config) normalize() error {
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	dataDir, err := expandHome(c.DataDir)
	if err != nil {
		return err
	}
	c.DataDir = dataDir

	if c.Database == "" {
		c.Database = filepath.Join(c.DataDir, "comics.db")
	}
	if c.DownloadDir == "" {
		c.DownloadDir = filepath.Join(c.DataDir, "downloads")
	}
	if c.Database, err = expandHome(c.Database); err != nil {
		return err
	}
	if c.DownloadDir, err = expandHome(c.DownloadDir); err != nil {
		return err
	}

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Downloader.Workers < 1 {
		return fmt.Errorf("downloader.workers must be at least 1, got %d", c.Downloader.Workers)
	}
	if c.Downloader.Cadence <= 0 {
		return errors.New("downloader.cadence must be positive")
	}
	if c.Downloader.PausePoll <= 0 {
		return errors.New("downloader.pause_poll must be positive")
	}
	if c.Downloader.MaxConsecutiveFailures < 0 {
		return errors.New("downloader.max_consecutive_failures must not be negative")
	}
	if c.API.BaseURL == "" {
		return errors.New("api.base_url must be set")
	}
	return nil
}

// LogFile is where logs go while the dashboard owns the terminal.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "comics.log")
}

// LockFile guards the data directory against a second running daemon.
func (c *Config) LockFile() string {
	return filepath.Join(c.DataDir, "comics.lock")
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}
