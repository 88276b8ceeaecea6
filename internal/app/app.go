// Package app wires the auto-emailer together and owns the ordered startup
// and shutdown of its long-lived resources: the Postgres pool, the Redis
// client, the subscriber loop, the stats reporter and the ops HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-co-op/gocron/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/jobseek-id/auto-emailer/internal/config"
	"github.com/jobseek-id/auto-emailer/internal/dispatch"
	"github.com/jobseek-id/auto-emailer/internal/eligibility"
	"github.com/jobseek-id/auto-emailer/internal/mailer"
	"github.com/jobseek-id/auto-emailer/internal/model"
	"github.com/jobseek-id/auto-emailer/internal/server"
	"github.com/jobseek-id/auto-emailer/internal/stats"
	"github.com/jobseek-id/auto-emailer/internal/store"
	"github.com/jobseek-id/auto-emailer/internal/subscriber"
	"github.com/jobseek-id/auto-emailer/internal/template"
)

// App is the assembled auto-emailer process.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	pool       *pgxpool.Pool
	redis      *redis.Client
	sub        *subscriber.Subscriber
	reporter   gocron.Scheduler
	srv        *server.Server
	srvCancel  context.CancelFunc
	srvDone    chan struct{}
	statistics *stats.Stats

	stopOnce sync.Once
}

// New connects the durable resources and wires the pipeline. On any failure
// everything opened so far is released.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	pool, err := store.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting postgres: %w", err)
	}
	a.pool = pool

	if err := store.ApplySchema(ctx, pool); err != nil {
		a.closeConnections()
		return nil, err
	}

	rdb, err := store.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		a.closeConnections()
		return nil, fmt.Errorf("connecting redis: %w", err)
	}
	a.redis = rdb

	identities := store.NewIdentityStore(pool)
	sentLog := store.NewSentLog(pool)

	a.statistics = stats.New()
	registry := prometheus.NewRegistry()
	registry.MustRegister(a.statistics)

	dispatcher := dispatch.NewDispatcher(dispatch.DispatcherConfig{
		Store:     identities,
		Evaluator: eligibility.New(sentLog, logger),
		Renderer:  template.NewRenderer(),
		Transport: mailer.NewSMTPTransport(mailer.SMTPConfig{
			Host:       cfg.SMTPHost,
			Port:       cfg.SMTPPort,
			Encryption: cfg.SMTPEncryption,
			Timeout:    cfg.SMTPTimeout,
		}),
		Sent:        sentLog,
		Stats:       a.statistics,
		Logger:      logger,
		CVDir:       cfg.CVDir(),
		TemplateDir: cfg.TemplateDir(),
	})
	coordinator := dispatch.NewBatchCoordinator(identities, dispatcher, a.statistics, logger)
	handler := dispatch.NewEventHandler(coordinator, logger)

	a.sub = subscriber.New(rdb, cfg.Channel,
		func(ctx context.Context, env *model.EventEnvelope) { handler.Handle(ctx, env) },
		logger)

	a.srv = server.New(registry, cfg.HTTPPort, logger)
	return a, nil
}

// Start launches the subscriber loop, the periodic stats reporter and the
// ops HTTP server. A subscribe failure aborts startup.
func (a *App) Start(ctx context.Context) error {
	a.logger.Info("auto-emailer starting up")

	if err := a.sub.Start(ctx); err != nil {
		return err
	}

	reporter, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("creating stats reporter: %w", err)
	}
	_, err = reporter.NewJob(
		gocron.DurationJob(a.cfg.StatsInterval),
		gocron.NewTask(func() { a.logger.Info(a.statistics.Summary()) }),
	)
	if err != nil {
		return fmt.Errorf("scheduling stats reporter: %w", err)
	}
	reporter.Start()
	a.reporter = reporter

	srvCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.srvCancel = cancel
	a.srvDone = make(chan struct{})
	go func() {
		defer close(a.srvDone)
		if err := a.srv.Run(srvCtx); err != nil {
			a.logger.Error("ops server failed", slog.String("error", err.Error()))
		}
	}()

	a.logger.Info("auto-emailer startup complete",
		slog.String("channel", a.cfg.Channel),
		slog.Int("http_port", a.cfg.HTTPPort))
	return nil
}

// Stop tears the process down in order: subscriber loop (no new events
// after this point), stats reporter with a final summary, subscription,
// ops server, Redis, Postgres. Safe to call more than once; each step
// tolerates the previous one already being gone.
func (a *App) Stop(ctx context.Context) {
	a.stopOnce.Do(func() {
		a.logger.Info("auto-emailer shutting down")

		if a.sub != nil {
			a.sub.Quiesce(ctx)
		}

		if a.reporter != nil {
			if err := a.reporter.Shutdown(); err != nil {
				a.logger.Warn("stats reporter shutdown failed",
					slog.String("error", err.Error()))
			}
			// Final summary covers every event the loop handled.
			a.logger.Info(a.statistics.Summary())
		}

		if a.sub != nil {
			a.sub.Stop(ctx)
		}

		if a.srvCancel != nil {
			a.srvCancel()
			select {
			case <-a.srvDone:
			case <-ctx.Done():
			}
		}

		a.closeConnections()
		a.logger.Info("auto-emailer shutdown complete")
	})
}

func (a *App) closeConnections() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("closing redis failed", slog.String("error", err.Error()))
		}
		a.redis = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}
