package cli

import (
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bondcheck/internal/config"
	"bondcheck/internal/iss"
	"bondcheck/internal/logging"
	"bondcheck/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Client *iss.Client
	Store  *store.ResultStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	app.Client = iss.NewClient(
		iss.WithBaseURL(cfg.Provider.BaseURL),
		iss.WithTimeout(time.Duration(cfg.Provider.TimeoutSeconds)*time.Second),
		iss.WithRateLimit(cfg.Provider.RateLimit),
		iss.WithLogger(logger),
	)

	dbPath := filepath.Join(config.DefaultConfigDir(), "bondcheck.db")
	resultStore, err := store.NewResultStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to open result store, show/export will be unavailable")
	} else {
		app.Store = resultStore
	}

	rootCmd := &cobra.Command{
		Use:   "bondcheck",
		Short: "Bond key-date pre-trade checker",
		Long: `bondcheck resolves bond identifiers against the MOEX ISS market-data
service, consolidates maturity, option and coupon dates into one record per
identifier, and flags instruments whose next key date falls inside a
configurable near-term window.

Use 'bondcheck run' to fetch a batch, 'bondcheck show' to re-display the last
result under the current threshold, and 'bondcheck export' to write it out.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/bondcheck)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newShowCmd(app))
	rootCmd.AddCommand(newExportCmd(app))
	rootCmd.AddCommand(newCalendarCmd(app))
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("bondcheck v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			output.Bold("Provider")
			output.Printf("  Base URL:   %s\n", app.Config.Provider.BaseURL)
			output.Printf("  Timeout:    %ds\n", app.Config.Provider.TimeoutSeconds)
			output.Printf("  Rate limit: %d req/s\n", app.Config.Provider.RateLimit)
			output.Println()
			output.Bold("Highlight")
			output.Printf("  Overnight:  %v\n", app.Config.Highlight.Overnight)
			output.Printf("  Extra days: %d\n", app.Config.Highlight.ExtraDays)
			output.Println()
			output.Bold("Reference data")
			output.Printf("  Enabled:    %v\n", app.Config.RefData.Enabled)
			output.Printf("  URL:        %s\n", app.Config.RefData.EmitterURL)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			output.Success("Configuration is valid")
			return nil
		},
	})

	return cmd
}

// highlightConfig resolves the effective threshold settings for a command:
// config-file defaults overridden by flags where set.
func (app *App) highlightConfig(cmd *cobra.Command) (overnight bool, extraDays int) {
	overnight = app.Config.Highlight.Overnight
	extraDays = app.Config.Highlight.ExtraDays
	if cmd.Flags().Changed("overnight") {
		overnight, _ = cmd.Flags().GetBool("overnight")
	}
	if cmd.Flags().Changed("days") {
		extraDays, _ = cmd.Flags().GetInt("days")
	}
	return overnight, extraDays
}
