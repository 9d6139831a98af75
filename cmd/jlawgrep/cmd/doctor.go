package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/srndpty/j-law-grep/internal/api"
	"github.com/srndpty/j-law-grep/internal/config"
	"github.com/srndpty/j-law-grep/internal/errors"
	"github.com/srndpty/j-law-grep/internal/output"
	"github.com/srndpty/j-law-grep/internal/ui"
)

// doctorReport is the machine-readable result of the diagnostics.
type doctorReport struct {
	ConfigPath   string `json:"config_path"`
	ConfigOK     bool   `json:"config_ok"`
	ConfigError  string `json:"config_error,omitempty"`
	Endpoint     string `json:"endpoint"`
	EndpointOK   bool   `json:"endpoint_ok"`
	PingError    string `json:"ping_error,omitempty"`
	PingCode     string `json:"ping_code,omitempty"`
	PingDuration string `json:"ping_duration,omitempty"`
	HistoryPath  string `json:"history_path,omitempty"`
	HistoryOK    bool   `json:"history_ok"`
	TTY          bool   `json:"tty"`
}

func newDoctorCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and backend reachability",
		Long: `Run diagnostics against the current setup.

Checks:
  - Configuration loads and validates
  - Search backend answers a minimal query
  - History file location is writable
  - Whether stdout is a terminal (interactive mode available)`,
		Example: `  jlawgrep doctor
  jlawgrep doctor --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runDoctor(cmd *cobra.Command, jsonOutput bool) error {
	report := doctorReport{
		ConfigPath: flagConfig,
		TTY:        ui.IsTTY(os.Stdout),
	}
	if report.ConfigPath == "" {
		report.ConfigPath = config.Path()
	}

	cfg, err := loadConfig()
	if err != nil {
		report.ConfigError = err.Error()
		cfg = config.New()
		if flagEndpoint != "" {
			cfg.Endpoint = flagEndpoint
		}
	} else {
		report.ConfigOK = true
	}
	report.Endpoint = cfg.Endpoint

	client := api.NewClient(cfg.Endpoint, api.WithTimeout(cfg.Timeout))
	start := time.Now()
	if err := client.Ping(cmd.Context()); err != nil {
		report.PingError = errors.UserMessage(err)
		report.PingCode = errors.GetCode(err)
	} else {
		report.EndpointOK = true
		report.PingDuration = time.Since(start).Round(time.Millisecond).String()
	}

	if cfg.History.Enabled {
		report.HistoryPath = cfg.History.Path
		report.HistoryOK = historyWritable(cfg.History.Path)
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printDoctorReport(cmd, report, cfg.History.Enabled)
	}

	if !report.EndpointOK {
		return fmt.Errorf("backend not reachable at %s", cfg.Endpoint)
	}
	return nil
}

func printDoctorReport(cmd *cobra.Command, report doctorReport, historyEnabled bool) {
	out := output.New(cmd.OutOrStdout())

	if report.ConfigOK {
		out.Successf("config: %s", report.ConfigPath)
	} else {
		out.Errorf("config: %s", report.ConfigError)
	}

	if report.EndpointOK {
		out.Successf("backend: %s (answered in %s)", report.Endpoint, report.PingDuration)
	} else {
		out.Errorf("backend: %s (%s)", report.Endpoint, report.PingError)
	}

	switch {
	case !historyEnabled:
		out.Status("", "history: disabled")
	case report.HistoryOK:
		out.Successf("history: %s", report.HistoryPath)
	default:
		out.Errorf("history: %s not writable", report.HistoryPath)
	}

	if report.TTY {
		out.Success("terminal: interactive mode available")
	} else {
		out.Status("", "terminal: not a TTY; only one-shot search available")
	}
}

// historyWritable probes whether the history file's directory accepts
// writes without touching the history itself.
func historyWritable(path string) bool {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}
