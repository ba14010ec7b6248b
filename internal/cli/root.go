// Package cli holds the triply command tree.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FACorreiaa/triply/internal/app/domain/geocoding"
	"github.com/FACorreiaa/triply/internal/app/domain/itinerary"
	"github.com/FACorreiaa/triply/internal/app/domain/search"
	"github.com/FACorreiaa/triply/internal/pkg/config"
	"github.com/FACorreiaa/triply/internal/pkg/logger"
)

// app carries what every subcommand needs. The constructors are fields so
// tests can swap the outbound providers.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	logLevel string

	newGeocoder  func(cfg config.GeocodingConfig, logger *zap.Logger) search.Geocoder
	newGenerator func(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (itinerary.TextGenerator, error)
}

func newApp() *app {
	return &app{
		newGeocoder: func(cfg config.GeocodingConfig, logger *zap.Logger) search.Geocoder {
			return geocoding.NewClient(cfg, logger)
		},
		newGenerator: func(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (itinerary.TextGenerator, error) {
			provider, err := itinerary.NewGeminiProvider(ctx, cfg, logger)
			if err != nil {
				return nil, err
			}
			return provider, nil
		},
	}
}

// Execute runs the command tree against os.Args.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCommand builds the triply command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	return newRootCommand(newApp())
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "triply",
		Short: "Travel itinerary planner",
		Long: `Triply finds destinations through OpenStreetMap geocoding and asks
Google Gemini for a day-by-day itinerary, falling back to a local template
when the model cannot deliver one.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(a.serveCommand())
	rootCmd.AddCommand(a.searchCommand())
	rootCmd.AddCommand(a.planCommand())
	rootCmd.AddCommand(a.statusCommand())
	return rootCmd
}

// setup loads configuration and the logger once per invocation.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		a.cfg = cfg
	}
	if a.logger == nil {
		level := a.cfg.LogLevel
		if a.logLevel != "" {
			level = a.logLevel
		}
		if err := logger.Init(logger.ParseLevel(level), zap.String("service", a.cfg.Server.ServiceName)); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		a.logger = logger.Log
	}
	return nil
}
