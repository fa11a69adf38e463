// Package cli implements the heightcompare command-line interface.
//
// Commands cover stateless charting (scale, render), persisted boards, the
// character catalog, and the HTTP API (serve). Configuration is read once
// per invocation from --config (or the default path) after loading .env.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/heightcompare/pkg/buildinfo"
	"github.com/matzehuels/heightcompare/pkg/config"
	"github.com/matzehuels/heightcompare/pkg/observability"
	"github.com/matzehuels/heightcompare/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "heightcompare"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
	verbose    bool
	logFile    io.Closer
	stderr     io.Writer
}

// New creates a new CLI instance with a default logger writing to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		stderr: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Close releases the log file, if one was opened.
func (c *CLI) Close() error {
	if c.logFile != nil {
		return c.logFile.Close()
	}
	return nil
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Compare heights on a scaled chart",
		Long: `heightcompare draws people and characters side by side on a ruler that
picks its own unit (cm, m, km or ft) and window from the heights shown.

Boards persist between runs; characters come from the configured catalog.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/heightcompare/config.toml)")

	root.AddCommand(c.scaleCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.boardCommand())
	root.AddCommand(c.charactersCommand())
	root.AddCommand(c.categoriesCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.sampleCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	c.completeBoardArgs(root.Commands()...)
	return root
}

// setup loads .env and the config file, then configures logging.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	level := LogInfo
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
		level = lvl
	}
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)

	if cfg.Log.File != "" && c.logFile == nil {
		lf := newLogFile(config.ExpandHome(cfg.Log.File))
		c.logFile = lf
		c.Logger.SetOutput(io.MultiWriter(c.stderr, lf))
	}
	if c.verbose {
		observability.NewLogHooks(c.Logger).Register()
	}

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory: the configured one, or the XDG
// standard (~/.cache/heightcompare/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config != nil && c.Config.Cache.Dir != "" {
		return config.ExpandHome(c.Config.Cache.Dir), nil
	}
	return cacheDir()
}

func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// chartDefaults applies the configured chart defaults to opts.
func (c *CLI) chartDefaults(opts *pipeline.Options) {
	if opts.Height == 0 {
		opts.Height = c.Config.Chart.Height
	}
	if opts.Watermark == "" {
		opts.Watermark = c.Config.Chart.Watermark
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
