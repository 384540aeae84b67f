package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/data"
	"github.com/KotFed0t/portfolio_tracker/data/cache"
	"github.com/KotFed0t/portfolio_tracker/data/repository/memory"
	"github.com/KotFed0t/portfolio_tracker/data/repository/postgres"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi/bseApi"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/portfolio_tracker/internal/notifier"
	"github.com/KotFed0t/portfolio_tracker/internal/reportGenerator/xlsxGenerator"
	"github.com/KotFed0t/portfolio_tracker/internal/scheduler"
	"github.com/KotFed0t/portfolio_tracker/internal/service/portfolioService"
	"github.com/KotFed0t/portfolio_tracker/internal/tgbot"
	"github.com/KotFed0t/portfolio_tracker/internal/transport/cli"
	"github.com/KotFed0t/portfolio_tracker/internal/transport/rest"
	"github.com/KotFed0t/portfolio_tracker/internal/transport/telegram"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCmd(cfg, cli.Deps{
		Open: func(ctx context.Context) (cli.Service, func(), error) {
			return newPortfolioService(ctx, cfg, notifier.Log{})
		},
		OpenDryRun: func() cli.Service {
			return portfolioService.New(cfg, memory.New(), cache.Noop{}, bseApi.New(cfg), notifier.Log{}, xlsxGenerator.New(), nil)
		},
		Serve: func(ctx context.Context) error {
			return serve(ctx, cfg)
		},
	})

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// newPortfolioService connects the stores and returns the service with a func closing them.
func newPortfolioService(ctx context.Context, cfg *config.Config, alerts portfolioService.Notifier) (*portfolioService.PortfolioService, func(), error) {
	pgClient, err := data.NewPostgresClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closers := []func() error{pgClient.Close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				slog.Error("close failed", slog.String("err", err.Error()))
			}
		}
	}

	pgRepo := postgres.NewPostgres(cfg, pgClient)

	var quoteCache portfolioService.Cache = cache.Noop{}
	redisClient, err := data.NewRedisClient(ctx, cfg)
	switch {
	case err != nil:
		slog.Warn("redis is not available, continue without cache", slog.String("err", err.Error()))
	case redisClient != nil:
		closers = append(closers, redisClient.Close)
		quoteCache = cache.NewRedisCache(redisClient, cfg)
	}

	var cloudStorage portfolioService.CloudStorage
	if cfg.GoogleDrive.Enabled {
		drive, err := googleDriveApi.New(ctx, cfg)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		cloudStorage = drive
	}

	svc := portfolioService.New(cfg, pgRepo, quoteCache, bseApi.New(cfg), alerts, xlsxGenerator.New(), cloudStorage)

	return svc, closeAll, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	alerts := notifier.Multi{notifier.Log{}}

	var bot *tgbot.TGBot
	if cfg.Telegram.Enabled {
		var err error
		bot, err = tgbot.New(cfg)
		if err != nil {
			return err
		}
		if cfg.Telegram.ChatID != 0 {
			alerts = append(alerts, notifier.NewTelegram(bot.Bot(), cfg.Telegram.ChatID))
		}
	}

	svc, closeFn, err := newPortfolioService(ctx, cfg, alerts)
	if err != nil {
		return err
	}
	defer closeFn()

	loc, err := time.LoadLocation(cfg.Jobs.MarketTimezone)
	if err != nil {
		return fmt.Errorf("load market timezone: %w", err)
	}

	sched, err := scheduler.New(loc)
	if err != nil {
		return err
	}
	if err = sched.NewIntervalJob("update prices", svc.UpdatePrices, cfg.Jobs.PriceUpdateInterval, true); err != nil {
		return err
	}
	if err = sched.NewCrontabJob("export report", svc.ExportJob, cfg.Jobs.ExportCrontab, false); err != nil {
		return err
	}
	if cfg.GoogleDrive.Enabled {
		if err = sched.NewCrontabJob("cleanup uploads", svc.CleanupUploads, cfg.Jobs.CleanupCrontab, false); err != nil {
			return err
		}
	}
	sched.Start()
	defer sched.Stop()

	if bot != nil {
		bot.Start(telegram.NewController(cfg, svc))
		defer bot.Stop()
	}

	if cfg.Http.Enabled {
		app := rest.NewApp(cfg, rest.NewHandler(cfg, svc))
		go func() {
			slog.Info("http server started", slog.String("addr", cfg.Http.Addr))
			if err := app.Listen(cfg.Http.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("http server failed", slog.String("err", err.Error()))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				slog.Error("http server shutdown failed", slog.String("err", err.Error()))
			}
		}()
	}

	slog.Info("portfolio tracker is running", slog.Any("jobs", sched.JobNames()))

	// Waiting interruption signal
	<-ctx.Done()

	slog.Info("shutting down")
	return nil
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
