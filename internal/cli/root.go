package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/foodmap/internal/backup"
	"github.com/roach88/foodmap/internal/catalog"
	"github.com/roach88/foodmap/internal/config"
	"github.com/roach88/foodmap/internal/metrics"
	"github.com/roach88/foodmap/internal/settings"
	"github.com/roach88/foodmap/internal/store"
)

// RootOptions holds global flags for all commands, plus the state resolved
// from them before a command runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	Database   string

	// Now and RunIDs override the clock and import run ids (for testing).
	Now    func() time.Time
	RunIDs backup.RunIDGenerator

	cfg      config.Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	resolved bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the foodmap CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "foodmap",
		Short: "foodmap - a local catalog of places to eat",
		Long: `A local catalog of restaurants and take-away places.

Records live in a SQLite database on this machine. Use export and import to
move the catalog between machines or keep backups; imports are checked and
written in a single transaction.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.flushMetrics()
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides store.path)")

	// Add subcommands
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewStorageCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewFavoriteCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewSettingsCommand(opts))

	return cmd
}

// resolve validates flags, loads configuration and installs the logger.
// Subcommands call it too so they can run without the root command (tests).
func (o *RootOptions) resolve(logOut io.Writer) error {
	if o.resolved {
		return nil
	}
	if o.Format == "" {
		o.Format = "text"
	}
	if !isValidFormat(o.Format) {
		err := NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
		fmt.Fprintln(logOut, "Error:", err)
		return err
	}

	overrides := map[string]any{}
	if o.Database != "" {
		overrides["store.path"] = o.Database
	}
	if o.Verbose {
		overrides["log.level"] = "debug"
	}

	cfg, err := config.NewLoader(
		config.WithConfigFile(o.ConfigFile),
		config.WithOverrides(overrides),
	).Load()
	if err != nil {
		exitErr := WrapExitError(ExitCommandError, "failed to load configuration", err)
		fmt.Fprintln(logOut, "Error:", exitErr)
		return exitErr
	}
	level, _ := cfg.LogLevel()

	// Configure logging based on config and verbose flag
	handler := slog.NewTextHandler(logOut, &slog.HandlerOptions{
		Level: level,
	})
	o.logger = slog.New(handler)
	slog.SetDefault(o.logger)

	o.cfg = cfg
	o.metrics = metrics.New()
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.RunIDs == nil {
		o.RunIDs = backup.UUIDv7Generator{}
	}
	o.resolved = true

	o.logger.Debug("configuration loaded",
		"store", cfg.Store.Path,
		"settings", cfg.SettingsPath(),
		"config_file", o.ConfigFile,
	)
	return nil
}

// flushMetrics writes the metrics textfile when metrics.file is configured.
func (o *RootOptions) flushMetrics() error {
	if !o.resolved || o.cfg.Metrics.File == "" {
		return nil
	}
	if err := o.metrics.WriteTextfile(o.cfg.Metrics.File); err != nil {
		o.logger.Warn("metrics not written", "path", o.cfg.Metrics.File, "error", err)
	}
	return nil
}

// prepare resolves options for cmd and returns its output formatter.
func (o *RootOptions) prepare(cmd *cobra.Command) (*OutputFormatter, error) {
	if err := o.resolve(cmd.ErrOrStderr()); err != nil {
		return nil, err
	}
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}, nil
}

// openStore opens the configured database. Callers must Close it.
func (o *RootOptions) openStore(f *OutputFormatter) (*store.Store, error) {
	f.VerboseLog("Opening database %s", o.cfg.Store.Path)
	st, err := store.Open(o.cfg.Store.Path)
	if err != nil {
		_ = f.Error(ErrCodeStoreFailed, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func (o *RootOptions) settingsFile() *settings.File {
	return settings.NewFile(o.cfg.SettingsPath())
}

func (o *RootOptions) catalogService(st *store.Store) *catalog.Service {
	return catalog.NewService(st,
		catalog.WithLogger(o.logger),
		catalog.WithClock(o.Now),
		catalog.WithDefaultHours(o.cfg.Catalog.DefaultHours),
	)
}

func (o *RootOptions) backupOptions() []backup.Option {
	return []backup.Option{
		backup.WithLogger(o.logger),
		backup.WithMetrics(o.metrics),
		backup.WithClock(o.Now),
		backup.WithRunIDGenerator(o.RunIDs),
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
