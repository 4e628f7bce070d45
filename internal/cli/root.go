// Package cli defines the command-line interface for rgaalint.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/raysh454/rgaalint/internal/app"
	"github.com/raysh454/rgaalint/internal/logging"
)

// All linker flags will be set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// runner carries the state shared by every command of one invocation.
type runner struct {
	v   *viper.Viper
	raw app.RawConfig
	cfg *app.Config
	app *app.Application

	// newApp is replaceable in tests.
	newApp func(cfg *app.Config, logger logging.Logger) (*app.Application, error)
}

// NewRootCmd builds the command tree. Output goes to the command's
// configured writers, so tests can capture it with SetOut.
func NewRootCmd() *cobra.Command {
	r := &runner{v: viper.New(), newApp: app.NewApplication}
	return r.rootCmd()
}

// Execute runs the root command with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (r *runner) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rgaalint",
		Short: "Check web pages against a curated subset of the RGAA accessibility criteria.",
		Long: `rgaalint audits pages against RGAA criteria (images, frames, colours,
links, forms, headings and document structure) and reports violations
grouped by rule, with a compliance score per RGAA topic.

Pages can be audited from live URLs, local HTML files, whole sites, or
"virtual" JSON captures produced by a browser extension or headless run.`,
		Version:            version,
		SilenceErrors:      true,
		SilenceUsage:       true,
		DisableSuggestions: true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	defaults := app.DefaultConfig()
	flags := root.PersistentFlags()
	flags.String("config", "", "Config file (default .rgaalint.yaml in the current or home directory)")
	flags.String("mode", string(defaults.AssessorCfg.Mode), "Rule mode: dom or virtual")
	flags.StringArray("banned-word", nil, "Extra generic link text to flag (repeatable)")
	flags.String("backend", string(defaults.WebClientCfg.Client), "Page fetcher: nethttp or chromedp")
	flags.Duration("timeout", defaults.WebClientCfg.Timeout, "Per-request timeout")
	flags.Bool("headful", false, "Show the browser window (chromedp backend)")
	flags.String("user-agent", "", "User-Agent sent with every request")
	flags.Int("concurrency", defaults.FetcherCfg.MaxConcurrency, "Pages audited in parallel")
	flags.Int("depth", defaults.EnumeratorCfg.MaxDepth, "Maximum crawl depth for site audits")
	flags.String("output-dir", defaults.ReportCfg.OutputDir, "Directory for HTML and JSON reports")
	flags.Bool("html", false, "Write an HTML report")
	flags.Bool("json", false, "Write a JSON report")
	flags.Bool("cli", defaults.ReportCfg.CLI, "Print the report to the terminal")
	flags.String("store", "", "Directory holding the audit history (empty disables history)")
	flags.String("log-level", "warn", "Log level: debug, info, warn or error")

	bindings := map[string]string{
		"config":       "config",
		"mode":         "mode",
		"banned_words": "banned-word",
		"backend":      "backend",
		"timeout":      "timeout",
		"headful":      "headful",
		"user_agent":   "user-agent",
		"concurrency":  "concurrency",
		"depth":        "depth",
		"output_dir":   "output-dir",
		"html":         "html",
		"json":         "json",
		"cli":          "cli",
		"store":        "store",
		"log_level":    "log-level",
	}
	for key, flag := range bindings {
		_ = r.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		r.auditCmd(),
		r.checkCmd(),
		r.siteCmd(),
		r.serveCmd(),
		r.historyCmd(),
		r.versionCmd(),
	)
	return root
}

// initConfig sets up config file lookup and environment variables.
func (r *runner) initConfig() {
	if configFile := r.v.GetString("config"); configFile != "" {
		r.v.SetConfigFile(configFile)
	} else {
		r.v.SetConfigName(".rgaalint")
		r.v.SetConfigType("yaml")
		r.v.AddConfigPath(".")
		r.v.AddConfigPath("$HOME")
	}

	r.v.SetEnvPrefix("RGAALINT")
	r.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	r.v.AutomaticEnv()

	// Keys without a flag still need a default so env and file values
	// reach Unmarshal.
	defaults := app.DefaultConfig()
	r.v.SetDefault("idle_after", defaults.WebClientCfg.IdleAfter)
	r.v.SetDefault("commit_size", defaults.FetcherCfg.CommitSize)
	r.v.SetDefault("listen", defaults.ServerCfg.ListenAddr)
	r.v.SetDefault("allowed_origins", defaults.ServerCfg.AllowedOrigins)
}

// withApp wraps a command body with setup and teardown of the application.
func (r *runner) withApp(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		if err := r.setup(cmd); err != nil {
			return err
		}
		defer func() {
			if terr := r.teardown(); err == nil {
				err = terr
			}
		}()
		return run(cmd, args)
	}
}

// setup merges defaults, config file, env and flags, then opens the
// application.
func (r *runner) setup(cmd *cobra.Command) error {
	r.initConfig()

	if err := r.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := r.v.Unmarshal(&r.raw); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	cfg, err := r.raw.Resolve()
	if err != nil {
		return err
	}
	r.cfg = cfg

	logger := logging.NewLogger("rgaalint", cmd.ErrOrStderr(), logging.ParseLevel(r.v.GetString("log_level")))
	application, err := r.newApp(cfg, logger)
	if err != nil {
		return err
	}
	r.app = application
	return nil
}

func (r *runner) teardown() error {
	if r.app == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := r.app.Shutdown(ctx)
	r.app = nil
	return err
}
