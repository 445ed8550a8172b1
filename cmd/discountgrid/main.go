// Package main запускает HTTP-сервер сервиса скидочных акций.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/discount-grid-system/internal/bulk"
	"github.com/mmeshcher/discount-grid-system/internal/config"
	"github.com/mmeshcher/discount-grid-system/internal/generator"
	"github.com/mmeshcher/discount-grid-system/internal/handler"
	"github.com/mmeshcher/discount-grid-system/internal/service"
	"github.com/mmeshcher/discount-grid-system/internal/store"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	gen := generator.New(logger)
	st := store.New(gen)

	if cfg.InitialRecords > 0 {
		if err := st.Load(context.Background(), cfg.InitialRecords); err != nil {
			sugar.Fatalw("initial load error", "error", err.Error())
		}
		sugar.Infow("initial records loaded", "count", cfg.InitialRecords)
	}

	engine := bulk.New(cfg.ExportPrefix)
	svc := service.NewService(st, engine)

	h := handler.NewHandler(svc, logger)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting discount grid server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
