// Package cli implements the swimstats command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	service "github.com/okian/swimstats/internal/app"
	"github.com/okian/swimstats/internal/config"
	"github.com/okian/swimstats/pkg/logger"
	"github.com/okian/swimstats/pkg/metrics"
	"github.com/spf13/cobra"
)

// App holds what CLI commands need to build a service.
type App struct {
	Config *config.Config
	Logger logger.Logger
}

// NewRootCmd creates the top-level "swimstats" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var (
		configPath   string
		printMetrics bool
	)

	root := &cobra.Command{
		Use:           "swimstats",
		Short:         "Swim time codec and performance analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if configPath == "" {
				return nil
			}
			cfg, err := config.LoadFile(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			app.Config = cfg
			return logger.SetLevelString(cfg.LogLevel)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if !printMetrics {
				return nil
			}
			return metrics.WriteText(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (overrides "+config.EnvFile+")")
	root.PersistentFlags().BoolVar(&printMetrics, "metrics", false, "Print Prometheus metrics to stderr after the run")

	root.AddCommand(
		newParseCmd(app),
		newFormatCmd(),
		newAnalyzeCmd(app),
		newResultsCmd(app),
	)

	return root
}

func (a *App) settings() *config.Config {
	if a.Config == nil {
		a.Config = config.New(context.Background())
	}
	return a.Config
}

func (a *App) newService(opts ...service.Option) *service.Service {
	cfg := a.settings()
	base := []service.Option{
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithOnTargetTolerance(cfg.OnTargetTolerance),
		service.WithStrictSeconds(cfg.StrictSeconds),
		service.WithMaxTopN(cfg.MaxTopN),
	}
	if a.Logger != nil {
		base = append(base, service.WithLogger(a.Logger.Named("service")))
	}
	return service.New(append(base, opts...)...)
}

// openInput opens path for reading; "-" reads from the command's stdin.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
