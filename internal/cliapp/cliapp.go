// Package cliapp wires the planner's logger, styles, and config loading
// into the cobra command tree under cmd/vplan, the way the teacher's
// own internal/cli/root.go wires logger/styles/config for its commands.
package cliapp

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/versionplan/versionplan/internal/config"
	vperrors "github.com/versionplan/versionplan/internal/errors"
	"github.com/versionplan/versionplan/internal/pause"
)

// Styles is the shared style table every command renders through.
var Styles = struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Subtle  lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
	Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
	Subtle:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
}

// Logger is the process-wide structured logger, written to stderr so
// stdout stays reserved for command output (spec.md §6: "errors go to
// stderr").
var Logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	ReportCaller:    false,
})

// Options carries the global flags every vplan subcommand shares.
type Options struct {
	ConfigPath string
	LogLevel   string
	NoColor    bool
	JSON       bool
}

// Configure applies o to the shared Logger and Styles, the way the
// teacher's configureLoggerFormat/configureLogLevel/applyGlobalFlags
// read global flags into process-wide state before a command runs.
func Configure(o Options) {
	switch o.LogLevel {
	case "debug":
		Logger.SetLevel(log.DebugLevel)
	case "warn":
		Logger.SetLevel(log.WarnLevel)
	case "error":
		Logger.SetLevel(log.ErrorLevel)
	default:
		Logger.SetLevel(log.InfoLevel)
	}
	if o.JSON {
		Logger.SetFormatter(log.JSONFormatter)
	}
	if o.NoColor || !termenv.EnvColorProfile().Color() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// LoadConfig loads the run's Config from o.ConfigPath (or the default
// search path when empty).
func LoadConfig(o Options) (*config.Config, error) {
	loader := config.NewLoader()
	if o.ConfigPath != "" {
		loader = loader.WithConfigPath(o.ConfigPath)
	}
	return loader.Load()
}

// RequireNotPaused is the startup check every command but
// `release --resume`/`release --abort` must pass (spec.md §4.9/§7).
func RequireNotPaused(repoRoot string, cfg *config.Config) error {
	store := pause.NewStore(repoRoot, cfg)
	return store.RequirePresent()
}

// Fail logs err's message at error level through Logger and returns
// the process exit code to use.
func Fail(err error) int {
	Logger.Error(err.Error())
	if vperrors.IsKind(err, vperrors.KindPausedState) || vperrors.IsKind(err, vperrors.KindMissingPauseFile) {
		return 2
	}
	return 1
}
