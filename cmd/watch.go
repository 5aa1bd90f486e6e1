package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/bfdconf/internal/config"
	"github.com/conneroisu/bfdconf/internal/ingest"
	"github.com/conneroisu/bfdconf/internal/logging"
	"github.com/conneroisu/bfdconf/internal/metrics"
	"github.com/conneroisu/bfdconf/internal/watcher"
)

var watchPrint bool

var watchCmd = &cobra.Command{
	Use:     "watch [file]",
	Aliases: []string{"w"},
	Short:   "Re-read the configuration whenever it changes",
	Long: `Parse the configuration as one process role, then parse it again each time
the file changes on disk. Changes are debounced so an editor writing the file
in several steps produces a single reload.

With --metrics, parse counters are served for Prometheus on --metrics-addr.

Examples:
  bfdconf watch --role vrrp
  bfdconf watch --metrics --metrics-addr 127.0.0.1:9283
  bfdconf watch --debounce 1s --print`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchPrint, "print", false, "print the full report after every reload")
	watchCmd.Flags().Duration("debounce", config.DefaultDebounce, "delay after the last change before reloading")
	watchCmd.Flags().Bool("metrics", false, "serve Prometheus metrics")
	watchCmd.Flags().String("metrics-addr", config.DefaultMetricsAddress, "metrics listen address")

	_ = viper.BindPFlag("watch.debounce", watchCmd.Flags().Lookup("debounce"))
	_ = viper.BindPFlag("metrics.enabled", watchCmd.Flags().Lookup("metrics"))
	_ = viper.BindPFlag("metrics.address", watchCmd.Flags().Lookup("metrics-addr"))
}

// reloader parses the watched file and reports what changed.
type reloader struct {
	cmd      *cobra.Command
	settings *config.Settings
	opts     ingest.Options
	logger   logging.Logger
	last     uint64
	loaded   bool
}

func (r *reloader) reload(ctx context.Context) {
	result, err := ingest.ParseFile(ctx, r.settings.File, r.opts)
	if err != nil {
		r.logger.Error(ctx, err, "Reload failed", "file", r.settings.File)
		return
	}

	if r.loaded && result.Digest == r.last {
		r.logger.Debug(ctx, "Configuration unchanged", "file", r.settings.File)
		return
	}
	r.last, r.loaded = result.Digest, true

	r.logger.Info(ctx, "Configuration loaded",
		"file", r.settings.File,
		"records", len(result.Names()),
		"errors", len(result.Errors()),
		"advisories", len(result.Advisories()),
		"digest", digestString(result.Digest),
	)

	if watchPrint {
		if err := writeReport(r.cmd.OutOrStdout(), r.settings.Output, result); err != nil {
			r.logger.Error(ctx, err, "Failed to write report")
		}
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(args)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, settings)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var collector metrics.Collector = metrics.NewNop()
	if settings.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		collector = metrics.NewPrometheus(registry, settings.Metrics.Namespace)
		server := metrics.NewServer(settings.Metrics.Address, registry, logger)
		go func() {
			if err := server.Serve(ctx); err != nil {
				logger.Error(ctx, err, "Metrics server failed", "addr", settings.Metrics.Address)
			}
		}()
	}

	r := &reloader{
		cmd:      cmd,
		settings: settings,
		logger:   logger,
		opts: ingest.Options{
			Role:    settings.ParsedRole(),
			Full:    settings.Full,
			Logger:  logger,
			Metrics: collector,
		},
	}

	fileWatcher, err := watcher.NewFileWatcher(settings.Watch.Debounce, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	fileWatcher.AddFilter(watcher.NoBackupFilter)
	fileWatcher.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		for _, event := range events {
			logger.Debug(ctx, "File changed", "type", event.Type.String(), "path", event.Path)
		}
		r.reload(ctx)
		return nil
	})

	if err := fileWatcher.WatchFile(settings.File); err != nil {
		return fmt.Errorf("failed to watch %s: %w", settings.File, err)
	}

	r.reload(ctx)

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	logger.Info(ctx, "Watching for changes", "file", settings.File, "role", settings.ParsedRole().String())
	<-ctx.Done()
	logger.Info(context.Background(), "Stopping file watcher")

	return nil
}
