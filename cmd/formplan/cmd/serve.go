package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	mdwlog "github.com/msto63/formplan/foundation/core/log"
	"github.com/msto63/formplan/foundation/core/validation"
	"github.com/msto63/formplan/internal/metrics"
	"github.com/msto63/formplan/internal/planfile"
	"github.com/msto63/formplan/internal/service"
	coreGrpc "github.com/msto63/formplan/pkg/core/grpc"
	"github.com/msto63/formplan/pkg/core/health"
	"github.com/msto63/formplan/pkg/core/version"
)

type serveOptions struct {
	healthInterval time.Duration
	watch          bool
}

func newServeCommand(global *globalOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the formplan.v1.Validation gRPC service",
		Long: `Run the formplan.v1.Validation gRPC service.

The server exposes Validate and ListForms, the grpc.health.v1 service and,
when enabled in the configuration, a Prometheus endpoint. The uniqueness
store is the configured SQLite database. With plans.watch (or --watch) the
catalog is reloaded when the file changes; a broken file keeps the previous
catalog and reports the service as degraded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, global, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.healthInterval, "health-interval", 15*time.Second, "interval between health checks")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload the plan catalog on change")
	return cmd
}

func runServe(cmd *cobra.Command, global *globalOptions, opts *serveOptions) error {
	a, err := newApp(global)
	if err != nil {
		return err
	}
	cfg := a.cfg
	logger := a.logger

	store, lookup, cached, err := a.openLookup()
	if err != nil {
		return err
	}
	defer store.Close()

	registry, err := a.registry(lookup)
	if err != nil {
		return err
	}

	set, source, err := a.forms()
	if err != nil {
		return err
	}

	collector := metrics.FromConfig(cfg.Metrics)
	var observer validation.Observer
	if collector != nil {
		observer = collector
	}

	svc, err := service.NewService(service.Config{
		Forms:    set,
		Registry: registry,
		Observer: observer,
		Messages: a.messages,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	healthRegistry := health.NewRegistry(cfg.General.Name, version.Version)
	healthRegistry.Register(health.PingCheck("store", store.Ping))
	if source != nil {
		healthRegistry.Register(health.DegradedCheck("catalog", source.Err))
		if collector != nil {
			source.OnReload(func(_ *planfile.Catalog, err error) {
				collector.CatalogReloaded(err)
			})
		}
	}

	server := service.NewServer(svc, coreGrpc.ServerConfigFrom(cfg.Server, logger), healthRegistry)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
		defer cancel()
		server.Stop(shutdownCtx)
		return nil
	})

	g.Go(func() error {
		server.MonitorHealth(ctx, opts.healthInterval)
		return nil
	})

	if collector != nil {
		g.Go(func() error {
			return collector.Serve(ctx, cfg.Metrics.Address, cfg.Metrics.Path, logger)
		})
	}

	if source != nil && (cfg.Plans.Watch || opts.watch) {
		g.Go(func() error {
			return source.Watch(ctx, cfg.Plans.Debounce.Duration)
		})
	}

	logger.Info("formplan serving", mdwlog.Fields{
		"address": cfg.ServerAddress(),
		"forms":   len(set.Names()),
		"version": version.Version,
		"metrics": collector != nil,
	})

	err = g.Wait()
	if cached != nil {
		stats := cached.Stats()
		logger.Info("uniqueness cache", mdwlog.Fields{
			"hits":      stats.Hits,
			"misses":    stats.Misses,
			"evictions": stats.Evictions,
			"size":      stats.Size,
			"hit_rate":  stats.HitRate(),
		})
	}
	return err
}
