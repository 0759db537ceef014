package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/clipferry/clipferry/internal/bot"
	"github.com/clipferry/clipferry/internal/config"
	"github.com/clipferry/clipferry/internal/delivery"
	"github.com/clipferry/clipferry/internal/metrics"
	"github.com/clipferry/clipferry/internal/telegram"
	"github.com/clipferry/clipferry/internal/youtube"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.RedirectStdLog(logger)

	cfg, err := config.Load(os.Getenv("CLIPFERRY_CONFIG"))
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.Delivery.ScratchDir, 0700); err != nil {
		logger.Fatal("create scratch dir", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Addr != "" {
		go func() {
			logger.Info("serving metrics", zap.String("addr", cfg.Metrics.Addr))
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				logger.Error("metrics listener", zap.Error(err))
			}
		}()
	}

	tg, err := telegram.New(cfg.Telegram.Token, logger)
	if err != nil {
		logger.Fatal("telegram init", zap.Error(err))
	}

	resolver := youtube.NewResolver(cfg.Delivery.UserAgent, cfg.Delivery.MaxUploadBytes, logger)

	pipeline := &delivery.Pipeline{
		Stream:           &delivery.StreamDeliverer{Sender: tg, Log: logger},
		Download:         &delivery.DownloadDeliverer{Sender: tg, ScratchDir: cfg.Delivery.ScratchDir, MaxUploadBytes: cfg.Delivery.MaxUploadBytes, Log: logger},
		StreamMaxSeconds: int(cfg.Delivery.StreamMaxDuration.Seconds()),
		Log:              logger,
	}

	resolve := func(ctx context.Context, videoID string) (delivery.Media, error) {
		return resolver.Resolve(ctx, videoID)
	}
	b := bot.New(tg, resolve, pipeline, logger)

	logger.Info("starting update loop")
	err = b.Run(ctx, tg.Updates(cfg.Telegram.PollTimeoutSecs))
	tg.Stop()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("update loop", zap.Error(err))
	}

	logger.Info("shutting down, removing scratch dir", zap.String("dir", cfg.Delivery.ScratchDir))
	if err := os.RemoveAll(cfg.Delivery.ScratchDir); err != nil {
		logger.Error("remove scratch dir", zap.Error(err))
	}
}
