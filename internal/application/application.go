package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"automarket/internal/config"
	"automarket/internal/domain/entity"
	"automarket/internal/domain/service/catalog"
	"automarket/internal/domain/service/sell"
	"automarket/internal/infrastructure/catalogfile"
	"automarket/internal/infrastructure/notifier"
	"automarket/internal/infrastructure/persistence"
	"automarket/internal/infrastructure/queue"
	"automarket/internal/infrastructure/runlock"
	"automarket/internal/infrastructure/target/remote"
	"automarket/internal/infrastructure/target/sim"
	"automarket/internal/infrastructure/telemetry"
	"automarket/internal/server"
	"automarket/internal/transport/bot"
	"automarket/internal/transport/bot/handler"
	"automarket/internal/worker"
	"automarket/pkg/application/connectors"
	"automarket/pkg/application/modules"
	"automarket/pkg/httpx"
	"automarket/pkg/logx"
)

const bridgeLogFieldMaxLen = 1024

type runRepository interface {
	worker.RunRepository
	Get(ctx context.Context, id string) (*entity.RunSummary, error)
	Last(ctx context.Context) (*entity.RunSummary, error)
	Outcomes(ctx context.Context, runID string) ([]entity.ItemOutcome, error)
}

func Run(ctx context.Context, log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	log = log.With(slog.String(logx.FieldAppName, cfg.App.Name), slog.String(logx.FieldAppVersion, cfg.App.Version))

	mode, err := catalog.ModeFromFlags(cfg.Sell.ListOnly, cfg.Sell.VendorOnly)
	if err != nil {
		return fmt.Errorf("catalog.ModeFromFlags: %w", err)
	}

	overrides, err := config.LoadLabels(cfg.App.LabelsFile)
	if err != nil {
		return fmt.Errorf("config.LoadLabels: %w", err)
	}

	target, err := newTarget(cfg)
	if err != nil {
		return err
	}

	deps := sell.Deps{
		Target:   target,
		Resolver: sell.NewResolver(sell.DefaultLabels().With(labelsFromConfig(overrides))),
		Policies: sell.DefaultPolicies(),
		Options: sell.Options{
			UndercutAmount:      cfg.Sell.UndercutAmount,
			ActionDelay:         cfg.Sell.ActionDelay,
			InterAgentDelay:     cfg.Sell.InterAgentDelay,
			MaxListingsPerAgent: cfg.Sell.MaxListingsPerAgent,
			MaxBatchSize:        cfg.Sell.MaxBatchSize,
			PrecomputedPrice:    cfg.Sell.PrecomputedPrice,
		},
	}

	var repo runRepository = persistence.NewMemoryRunRepository()

	if cfg.Postgres.Enabled() {
		pg := &connectors.Postgres{
			DSN:             cfg.Postgres.DSN,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		}
		defer pg.Close(ctx)

		repo = persistence.NewRunRepository(pg.Client(ctx))
	}

	metrics := telemetry.New()

	runner := worker.NewRunner(deps, catalogLoader(cfg.App.CatalogPath), repo).
		WithMetrics(metrics).
		WithPriceTTL(cfg.Sell.PriceMemoTTL).
		WithFilter(catalog.FilterOptions{
			IgnoredItemIDs: cfg.Sell.IgnoredItemIDs,
			SkipHQ:         cfg.Sell.SkipHQ,
		})

	if cfg.Sell.EvaluateProfit {
		runner.WithEvaluate(catalog.EvaluateOptions{
			AutoUndercut:       cfg.Sell.AutoUndercut,
			UndercutAmount:     cfg.Sell.UndercutAmount,
			MinProfitThreshold: cfg.Sell.MinProfitThreshold,
		})
	}

	g, ctx := errgroup.WithContext(ctx)

	var controller worker.Controller = runner

	if cfg.Redis.Enabled() {
		rdb := &connectors.Redis{
			Username:       cfg.Redis.Username,
			Password:       cfg.Redis.Password,
			Address:        cfg.Redis.Address,
			DatabaseNumber: cfg.Redis.DB,
		}
		defer rdb.Close(ctx)

		runner.WithLock(runlock.New(rdb.Client(ctx), cfg.Redis.LockKey, cfg.Redis.LockTTL))

		asynqServer := modules.AsynqServer{
			RedisUsername: cfg.Redis.Username,
			RedisPassword: cfg.Redis.Password,
			RedisAddress:  cfg.Redis.Address,
			RedisDB:       cfg.Redis.DB,
			Concurrency:   1,
		}

		asynqServer.Run(ctx, g, modules.AsynqQueues{queue.QueueSell: 1}, modules.AsynqHandler{
			Pattern: queue.TypeSellRun,
			Handle:  queue.NewHandler(runner).ProcessTask,
		})

		enqueuer := queue.NewEnqueuer(asynqServer.Client())
		defer func() {
			if err := enqueuer.Close(); err != nil {
				log.Error("enqueuer.Close", logx.Error(err))
			}
		}()

		controller = worker.NewQueuedRunner(runner, enqueuer)
	}

	if cfg.Bot.Enabled() {
		events := make(chan entity.RunEvent, 32)
		runner.WithEvents(events)

		alertBot, err := notifier.NewTelegramBot(cfg.Bot.Token, cfg.Bot.ChatID)
		if err != nil {
			return fmt.Errorf("notifier.NewTelegramBot: %w", err)
		}

		g.Go(func() error {
			if err := alertBot.Run(ctx, events); err != nil && ctx.Err() == nil {
				return fmt.Errorf("alertBot.Run: %w", err)
			}
			return nil
		})

		controlBot := bot.New(alertBot.Bot(), cfg.Bot.Admin(), handler.New(controller))

		g.Go(func() error {
			return controlBot.Run(ctx)
		})
	}

	srv := server.NewServer(server.NewRunServer(controller, repo))

	modules.HTTPServer{ShutdownTimeout: cfg.Servers.ShutdownTimeout}.Run(ctx, g, &http.Server{
		Addr:              cfg.Servers.HTTPAddress,
		Handler:           srv.Handler(log, logx.NewSensitiveDataMasker()),
		ReadHeaderTimeout: 5 * time.Second,
	})

	modules.MetricServer{
		ListenAddress: cfg.Servers.MetricsAddress,
		Gatherer:      metrics.Gatherer(),
	}.Run(ctx, g)

	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.Servers.ProbeAddress,
		Status: func() string {
			status := runner.Status()
			switch {
			case status.Paused:
				return "paused"
			case status.Running:
				return "running"
			default:
				return "idle"
			}
		},
	}.Run(ctx, g)

	g.Go(func() error {
		<-ctx.Done()

		log.Info("application stopping, cancelling active run")
		runner.Shutdown()

		return nil
	})

	if cfg.App.RunOnStart {
		runID, err := controller.Start(ctx, mode)
		if err != nil {
			log.Error("failed to start sell run", logx.Error(err))
		} else {
			log.Info("sell run started on boot", slog.String(logx.FieldRunID, runID), slog.String("mode", mode.String()))
		}
	}

	log.Info("application started", slog.Bool("dry-run", cfg.App.DryRun), slog.String("mode", mode.String()))

	if err := g.Wait(); err != nil {
		return fmt.Errorf("g.Wait: %w", err)
	}

	return nil
}

func newTarget(cfg config.Config) (sell.TargetSystem, error) {
	if !cfg.App.DryRun {
		transport := httpx.NewAuthBearerRoundTripper(
			httpx.NewLoggingRoundTripper(
				http.DefaultTransport,
				httpx.WithLevel(slog.LevelDebug),
				httpx.WithLogFieldMaxLen(bridgeLogFieldMaxLen),
			),
			cfg.Target.Token,
		)

		return remote.New(cfg.Target.URL, cfg.Target.Timeout, &http.Client{
			Timeout:   cfg.Target.Timeout,
			Transport: transport,
		}), nil
	}

	items, err := catalogfile.Load(cfg.App.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("catalogfile.Load: %w", err)
	}

	return sim.FromCatalog(items, cfg.Target.Agents), nil
}

func catalogLoader(path string) worker.CatalogLoader {
	return func(context.Context) ([]*entity.StockItem, error) {
		items, err := catalogfile.Load(path)
		if err != nil {
			return nil, fmt.Errorf("catalogfile.Load: %w", err)
		}
		return items, nil
	}
}

func labelsFromConfig(l config.Labels) sell.Labels {
	return sell.Labels{
		sell.ActionSellFromInventory: l.SellFromInventory,
		sell.ActionPutUpForSale:      l.PutUpForSale,
		sell.ActionComparePrices:     l.ComparePrices,
		sell.ActionVendor:            l.Vendor,
	}
}
