package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/raysh454/rgaalint/internal/fetcher"
	"github.com/raysh454/rgaalint/internal/model"
	"github.com/raysh454/rgaalint/internal/utils"
	"github.com/raysh454/rgaalint/internal/webclient"
)

// AssessorConfig selects how pages are read and which extra frame-title
// words are rejected.
type AssessorConfig struct {
	Mode        model.Mode
	BannedWords []string
}

type EnumeratorConfig struct {
	MaxDepth int
}

// ReportConfig selects the formats written after an audit.
type ReportConfig struct {
	OutputDir string
	HTML      bool
	JSON      bool
	CLI       bool
}

type ServerConfig struct {
	ListenAddr     string
	AllowedOrigins []string
}

// Config is the resolved runtime configuration shared by the CLI and the
// API server.
type Config struct {
	// StorageRoot holds the audit history database. Empty disables history.
	StorageRoot string

	WebClientCfg  webclient.Config
	FetcherCfg    fetcher.Config
	AssessorCfg   AssessorConfig
	EnumeratorCfg EnumeratorConfig
	ReportCfg     ReportConfig
	ServerCfg     ServerConfig

	// URLCfg canonicalizes audit targets before they are stored.
	URLCfg utils.CanonicalizeOptions
}

// HistoryPath is the SQLite file under StorageRoot, or "" when history is off.
func (c *Config) HistoryPath() string {
	if c.StorageRoot == "" {
		return ""
	}
	return filepath.Join(c.StorageRoot, "history.db")
}

// DefaultConfig returns a Config populated with development defaults.
func DefaultConfig() *Config {
	return &Config{
		StorageRoot: "",
		WebClientCfg: webclient.Config{
			Client:    webclient.ClientNetHTTP,
			Timeout:   30 * time.Second,
			IdleAfter: 2 * time.Second,
		},
		FetcherCfg: fetcher.Config{
			MaxConcurrency: fetcher.DefaultMaxConcurrency,
			CommitSize:     fetcher.DefaultCommitSize,
		},
		AssessorCfg: AssessorConfig{
			Mode: model.ModeDOM,
		},
		EnumeratorCfg: EnumeratorConfig{
			MaxDepth: 2,
		},
		ReportCfg: ReportConfig{
			OutputDir: ".",
			CLI:       true,
		},
		ServerCfg: ServerConfig{
			ListenAddr:     "localhost:8080",
			AllowedOrigins: []string{"*"},
		},
		URLCfg: utils.CanonicalizeOptions{
			StripTrailingSlash: true,
			DefaultScheme:      "https",
		},
	}
}

// RawConfig is the flat, string-typed form loaded by viper from flags,
// environment and config file.
type RawConfig struct {
	Mode           string        `mapstructure:"mode"`
	BannedWords    []string      `mapstructure:"banned_words"`
	Backend        string        `mapstructure:"backend"`
	Timeout        time.Duration `mapstructure:"timeout"`
	IdleAfter      time.Duration `mapstructure:"idle_after"`
	Headful        bool          `mapstructure:"headful"`
	UserAgent      string        `mapstructure:"user_agent"`
	Concurrency    int           `mapstructure:"concurrency"`
	CommitSize     int           `mapstructure:"commit_size"`
	Depth          int           `mapstructure:"depth"`
	OutputDir      string        `mapstructure:"output_dir"`
	HTML           bool          `mapstructure:"html"`
	JSON           bool          `mapstructure:"json"`
	CLI            bool          `mapstructure:"cli"`
	Store          string        `mapstructure:"store"`
	Listen         string        `mapstructure:"listen"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// Resolve validates r and converts it into a Config.
func (r RawConfig) Resolve() (*Config, error) {
	cfg := DefaultConfig()

	if r.Mode != "" {
		mode, err := model.ParseMode(r.Mode)
		if err != nil {
			return nil, err
		}
		cfg.AssessorCfg.Mode = mode
	}
	for _, w := range r.BannedWords {
		if w = strings.TrimSpace(w); w != "" {
			cfg.AssessorCfg.BannedWords = append(cfg.AssessorCfg.BannedWords, w)
		}
	}

	if r.Backend != "" {
		backend := webclient.Client(strings.ToLower(r.Backend))
		if backend != webclient.ClientNetHTTP && backend != webclient.ClientChromedp {
			return nil, fmt.Errorf("unknown backend %q (want %q or %q)", r.Backend, webclient.ClientNetHTTP, webclient.ClientChromedp)
		}
		cfg.WebClientCfg.Client = backend
	}
	if r.Timeout < 0 || r.IdleAfter < 0 {
		return nil, fmt.Errorf("timeouts must not be negative")
	}
	if r.Timeout > 0 {
		cfg.WebClientCfg.Timeout = r.Timeout
	}
	if r.IdleAfter > 0 {
		cfg.WebClientCfg.IdleAfter = r.IdleAfter
	}
	cfg.WebClientCfg.Headful = r.Headful
	cfg.WebClientCfg.UserAgent = r.UserAgent

	if r.Concurrency < 0 || r.CommitSize < 0 || r.Depth < 0 {
		return nil, fmt.Errorf("concurrency, commit size and depth must not be negative")
	}
	if r.Concurrency > 0 {
		cfg.FetcherCfg.MaxConcurrency = r.Concurrency
	}
	if r.CommitSize > 0 {
		cfg.FetcherCfg.CommitSize = r.CommitSize
	}
	cfg.EnumeratorCfg.MaxDepth = r.Depth

	if r.OutputDir != "" {
		cfg.ReportCfg.OutputDir = r.OutputDir
	}
	cfg.ReportCfg.HTML = r.HTML
	cfg.ReportCfg.JSON = r.JSON
	cfg.ReportCfg.CLI = r.CLI

	if r.Store != "" {
		root, err := expandPath(r.Store)
		if err != nil {
			return nil, err
		}
		cfg.StorageRoot = root
	}
	if r.Listen != "" {
		cfg.ServerCfg.ListenAddr = r.Listen
	}
	if len(r.AllowedOrigins) > 0 {
		cfg.ServerCfg.AllowedOrigins = r.AllowedOrigins
	}
	return cfg, nil
}

func expandPath(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding %s: %w", p, err)
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
	}
	return p, nil
}
