// Package cmd provides the CLI commands for jlawgrep.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/srndpty/j-law-grep/internal/api"
	"github.com/srndpty/j-law-grep/internal/cache"
	"github.com/srndpty/j-law-grep/internal/config"
	"github.com/srndpty/j-law-grep/internal/history"
	"github.com/srndpty/j-law-grep/internal/logging"
	"github.com/srndpty/j-law-grep/internal/ui"
	"github.com/srndpty/j-law-grep/pkg/version"
)

// Flags shared by every subcommand.
var (
	flagConfig   string
	flagEndpoint string
	debugMode    bool

	loggingCleanup func()
)

// NewRootCmd creates the root command for the jlawgrep CLI. Running it
// with no subcommand starts the interactive search screen.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jlawgrep",
		Short: "Interactive full-text search for Japanese law",
		Long: `jlawgrep searches a Japanese law corpus through its full-text
search backend and renders matched provisions with highlighted snippets.

Run with no arguments to open the interactive search screen. Use the
'search' subcommand for one-shot queries in scripts and pipes.`,
		Version: version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return cmd.Help()
			}
			return runTUI(cmd.Context())
		},
	}

	cmd.SetVersionTemplate("jlawgrep version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file path (default: ~/.config/jlawgrep/client.yaml)")
	cmd.PersistentFlags().StringVarP(&flagEndpoint, "endpoint", "e", "", "Search backend base URL (overrides config)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.config/jlawgrep/logs/")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging sets up file-based structured logging. Stderr stays
// untouched so the TUI and piped output are never interleaved with logs.
func startLogging(_ *cobra.Command, _ []string) error {
	level := os.Getenv("JLAWGREP_LOG_LEVEL")
	if debugMode {
		level = "debug"
	}

	cleanup, err := logging.SetupDefault(level)
	if err != nil {
		// Logging failure must never block the tool.
		return nil
	}
	loggingCleanup = cleanup
	if debugMode {
		slog.Info("debug_logging_enabled", slog.String("log_file", logging.DefaultLogPath()))
	}
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig builds the effective configuration from the standard
// precedence chain plus the persistent flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagEndpoint != "" {
		cfg.Endpoint = flagEndpoint
	}
	return cfg, nil
}

// newSearcher wires the HTTP client, wrapped in the response cache when
// enabled.
func newSearcher(cfg *config.Config) api.Searcher {
	var s api.Searcher = api.NewClient(cfg.Endpoint, api.WithTimeout(cfg.Timeout))
	if cfg.Cache.Enabled {
		s = cache.New(s, cfg.Cache.Size)
	}
	return s
}

// newHistoryStore returns the history store, or nil when disabled.
func newHistoryStore(cfg *config.Config) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	return history.NewStore(cfg.History.Path, cfg.History.Max)
}

// runTUI starts the interactive search screen, with config hot reload
// feeding the running program.
func runTUI(ctx context.Context) error {
	if !ui.IsTTY(os.Stdout) {
		return fmt.Errorf("interactive mode needs a terminal; use 'jlawgrep search' in pipes")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	model := ui.NewModel(cfg, newSearcher, newHistoryStore(cfg))

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	return ui.Run(model, func(p *tea.Program) {
		go func() {
			err := config.Watch(watchCtx, flagConfig, func(next *config.Config) {
				if flagEndpoint != "" {
					next.Endpoint = flagEndpoint
				}
				p.Send(ui.ConfigReloadedMsg{Cfg: next})
			}, func(err error) {
				slog.Warn("config_reload_failed", slog.String("error", err.Error()))
			})
			if err != nil {
				slog.Debug("config_watch_unavailable", slog.String("error", err.Error()))
			}
		}()
	})
}
