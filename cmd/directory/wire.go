package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	natsclient "github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/0xsj/overwatch-pkg/log"

	"github.com/0xsj/overwatch-directory/internal/adapter/outbound/breaker"
	"github.com/0xsj/overwatch-directory/internal/adapter/outbound/container"
	"github.com/0xsj/overwatch-directory/internal/adapter/outbound/postgres"
	rediscache "github.com/0xsj/overwatch-directory/internal/adapter/outbound/redis"
	"github.com/0xsj/overwatch-directory/internal/adapter/outbound/sqlite"
	"github.com/0xsj/overwatch-directory/internal/app/bus"
	appquery "github.com/0xsj/overwatch-directory/internal/app/query"
	"github.com/0xsj/overwatch-directory/internal/config"
	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
	"github.com/0xsj/overwatch-directory/internal/port/inbound/query"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/cache"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/repository"
	"github.com/0xsj/overwatch-directory/internal/telemetry"
)

// Component names.
const (
	postgresPoolName      = "postgresPool"
	sqliteDBName          = "sqliteDB"
	serviceRepositoryName = "serviceRepository"
	redisClientName       = "redisClient"
	serviceCacheName      = "serviceCache"
	natsConnName          = "natsConn"
)

// provideInfrastructure registers the stores and connections with c.
// Nothing connects until a component is first resolved.
func provideInfrastructure(ctx context.Context, c *container.Container, cfg *config.Config, logger log.Logger) error {
	var errs []error

	if cfg.Database.IsSQLite() {
		errs = append(errs,
			container.Provide(c, sqliteDBName, func(container.Resolver) (*sql.DB, error) {
				return openSQLite(ctx, cfg.Database, logger)
			}),
			container.Provide(c, serviceRepositoryName, func(r container.Resolver) (repository.ServiceRepository, error) {
				db, err := container.Resolve[*sql.DB](r)
				if err != nil {
					return nil, err
				}
				return guard(sqlite.NewServiceRepository(db), cfg.Breaker, logger), nil
			}),
		)
	} else {
		errs = append(errs,
			container.Provide(c, postgresPoolName, func(container.Resolver) (*pgxpool.Pool, error) {
				return connectPostgres(ctx, cfg.Database, logger)
			}),
			container.Provide(c, serviceRepositoryName, func(r container.Resolver) (repository.ServiceRepository, error) {
				pool, err := container.Resolve[*pgxpool.Pool](r)
				if err != nil {
					return nil, err
				}
				return guard(postgres.NewServiceRepository(pool), cfg.Breaker, logger), nil
			}),
		)
	}

	if cfg.Redis.Enabled {
		errs = append(errs,
			container.Provide(c, redisClientName, func(container.Resolver) (*redis.Client, error) {
				return connectRedis(ctx, cfg.Redis, logger)
			}),
			container.Provide(c, serviceCacheName, func(r container.Resolver) (cache.ServiceCache, error) {
				client, err := container.Resolve[*redis.Client](r)
				if err != nil {
					return nil, err
				}
				return rediscache.NewServiceCache(client, cfg.Redis.TTL), nil
			}),
		)
	}

	if cfg.NATS.Enabled {
		errs = append(errs, container.Provide(c, natsConnName, func(container.Resolver) (*natsclient.Conn, error) {
			return connectNATS(cfg.NATS, logger)
		}))
	}

	return errors.Join(errs...)
}

// guard wraps repo with a circuit breaker when enabled.
func guard(repo repository.ServiceRepository, cfg config.BreakerConfig, logger log.Logger) repository.ServiceRepository {
	if !cfg.Enabled {
		return repo
	}
	return breaker.NewServiceRepository(repo, breaker.Config{
		MaxRequests:      uint32(cfg.MaxRequests),
		Interval:         cfg.Interval,
		Timeout:          cfg.Timeout,
		FailureThreshold: uint32(cfg.FailureThreshold),
	}, newKVLogger(logger))
}

// buildRegistry provides the query handlers and scans c for them.
func buildRegistry(c *container.Container, policy string) (*bus.Registry, error) {
	if err := appquery.Provide(c); err != nil {
		return nil, fmt.Errorf("failed to provide query handlers: %w", err)
	}

	dp, err := bus.ParseDuplicatePolicy(policy)
	if err != nil {
		return nil, err
	}

	return bus.NewRegistry(c, bus.WithDuplicatePolicy(dp))
}

// newQueryBus assembles the dispatcher and its middleware.
func newQueryBus(registry *bus.Registry, cfg *config.Config, logger log.Logger) query.Bus {
	mws := []bus.Middleware{bus.Tracing(telemetry.Tracer())}
	if cfg.Bus.LogQueries {
		mws = append(mws, bus.Logging(newKVLogger(logger)))
	}
	return bus.Chain(bus.NewDispatcher(registry), mws...)
}

// resolveCache returns the configured cache, or nil when none is provided.
func resolveCache(c *container.Container) (cache.ServiceCache, error) {
	svcCache, err := container.Resolve[cache.ServiceCache](c)
	if errors.Is(err, domainerror.ErrComponentNotFound) {
		return nil, nil
	}
	return svcCache, err
}

func openSQLite(ctx context.Context, cfg config.DatabaseConfig, logger log.Logger) (*sql.DB, error) {
	db, err := sqlite.Open(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, err
	}

	if err := sqlite.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("opened sqlite database",
		log.String("path", cfg.SQLitePath),
	)

	return db, nil
}

func connectPostgres(ctx context.Context, cfg config.DatabaseConfig, logger log.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to postgres",
		log.String("host", cfg.Host),
		log.String("database", cfg.Database),
	)

	return pool, nil
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, logger log.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("connected to redis",
		log.String("address", cfg.Address()),
	)

	return client, nil
}

func connectNATS(cfg config.NATSConfig, logger log.Logger) (*natsclient.Conn, error) {
	opts := []natsclient.Option{
		natsclient.Name("overwatch-directory"),
		natsclient.MaxReconnects(cfg.MaxReconnects),
		natsclient.ReconnectWait(cfg.ReconnectWait),
		natsclient.DisconnectErrHandler(func(nc *natsclient.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", log.String("error", err.Error()))
			}
		}),
		natsclient.ReconnectHandler(func(nc *natsclient.Conn) {
			logger.Info("nats reconnected", log.String("url", nc.ConnectedUrl()))
		}),
	}

	conn, err := natsclient.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	logger.Info("connected to nats",
		log.String("url", conn.ConnectedUrl()),
	)

	return conn, nil
}
