package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"mindvault/internal/archive"
	"mindvault/internal/bot"
	"mindvault/internal/config"
	"mindvault/internal/fetcher"
	"mindvault/internal/httpapi"
	"mindvault/internal/intake"
	"mindvault/internal/scheduler"
	"mindvault/internal/storage"
	"mindvault/internal/tagging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("bot stopped", "error", err)
		os.Exit(1)
	}
	log.Info("bot stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	blobs, err := storage.Open(ctx, cfg.Options())
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	store := storage.NewStore(blobs, time.Now)
	defer func() { _ = store.Close() }()

	saveTagger, err := tagging.ByName(cfg.SaveTagger, time.Now)
	if err != nil {
		return err
	}
	messageTagger, err := tagging.ByName(cfg.MessageTagger, time.Now)
	if err != nil {
		return err
	}

	f := fetcher.New(fetcher.NewHTTPClient(),
		fetcher.WithTimeout(cfg.MetadataTimeout),
		fetcher.WithUserAgent(cfg.UserAgent),
	)
	svc := intake.NewService(store, f, archive.NewBuilder(store, time.Now), intake.Options{
		SaveTagger:    saveTagger,
		MessageTagger: messageTagger,
	}, log)

	b, err := bot.New(cfg.TelegramBotToken, svc, cfg, log)
	if err != nil {
		return err
	}
	sched := scheduler.New(svc, b, cfg.BackupSchedule, log)

	log.Info("starting bot", "storage", cfg.StorageBackend, "backups", cfg.BackupEnabled)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.Run(gCtx)
		if gCtx.Err() == nil {
			return errors.New("telegram listener stopped unexpectedly")
		}
		return nil
	})

	if cfg.BackupEnabled {
		g.Go(func() error {
			return sched.Run(gCtx)
		})
	}

	if cfg.HTTPAddr != "" {
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.NewHandler(sched, cfg.CronSecret, log).Router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			log.Info("http listening", "addr", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
