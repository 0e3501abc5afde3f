package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	natsclient "github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/0xsj/overwatch-pkg/log"

	directorygrpc "github.com/0xsj/overwatch-directory/internal/adapter/inbound/grpc"
	natssub "github.com/0xsj/overwatch-directory/internal/adapter/inbound/nats"
	"github.com/0xsj/overwatch-directory/internal/adapter/outbound/container"
	"github.com/0xsj/overwatch-directory/internal/app/projection"
	"github.com/0xsj/overwatch-directory/internal/config"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/repository"
	"github.com/0xsj/overwatch-directory/internal/telemetry"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the directory gRPC server and event projector",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	logger := log.NewPretty(log.DefaultConfig())

	logger.Info("starting directory service",
		log.String("version", Version),
		log.String("address", cfg.Server.Address()),
		log.String("database", cfg.Database.Driver),
	)

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		ServiceName:  cfg.Telemetry.ServiceName,
		Environment:  cfg.Telemetry.Environment,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		Insecure:     cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("failed to flush traces", log.String("error", err.Error()))
		}
	}()

	c := container.New()
	defer func() {
		if err := c.Close(); err != nil {
			logger.Warn("failed to close components", log.String("error", err.Error()))
		}
	}()

	if err := provideInfrastructure(ctx, c, cfg, logger); err != nil {
		return fmt.Errorf("failed to provide infrastructure: %w", err)
	}

	// Build the registry before anything accepts traffic.
	registry, err := buildRegistry(c, cfg.Bus.DuplicatePolicy)
	if err != nil {
		return fmt.Errorf("failed to build query registry: %w", err)
	}

	for _, e := range registry.Entries() {
		logger.Info("query handler registered",
			log.String("query", e.QueryName),
			log.String("handler", e.HandlerName),
		)
	}

	// Connect the read store eagerly so a bad database fails startup.
	repo, err := container.Resolve[repository.ServiceRepository](c)
	if err != nil {
		return fmt.Errorf("failed to open service repository: %w", err)
	}

	svcCache, err := resolveCache(c)
	if err != nil {
		return fmt.Errorf("failed to connect service cache: %w", err)
	}

	var subscriber *natssub.Subscriber
	if cfg.NATS.Enabled {
		conn, err := container.Resolve[*natsclient.Conn](c)
		if err != nil {
			return fmt.Errorf("failed to connect to nats: %w", err)
		}

		subscriber = natssub.NewSubscriber(conn, projection.NewProjector(repo, svcCache), newKVLogger(logger), natssub.Config{
			SubjectPrefix: cfg.NATS.SubjectPrefix,
			QueueGroup:    cfg.NATS.QueueGroup,
			ApplyTimeout:  cfg.NATS.ApplyTimeout,
		})
		if err := subscriber.Start(); err != nil {
			return err
		}
	}

	handler := directorygrpc.NewHandler(newQueryBus(registry, cfg, logger), registry.Entries())

	server, err := directorygrpc.NewServer(directorygrpc.ServerConfig{
		Host:              cfg.Server.Host,
		Port:              cfg.Server.Port,
		EnableReflection:  cfg.Server.EnableReflection,
		EnableHealthCheck: cfg.Server.EnableHealthCheck,
	}, handler, logger)
	if err != nil {
		return fmt.Errorf("failed to create grpc server: %w", err)
	}

	// Handle graceful shutdown
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run()
	}()
	server.MarkReady()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("directory service started",
		log.String("address", cfg.Server.Address()),
		log.Any("queries", handler.Queries()),
	)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	case sig := <-sigChan:
		logger.Info("received shutdown signal", log.String("signal", sig.String()))
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if subscriber != nil {
		if err := subscriber.Stop(); err != nil {
			logger.Warn("failed to drain subscription", log.String("error", err.Error()))
		}
	}

	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	logger.Info("directory service stopped gracefully")
	return nil
}
