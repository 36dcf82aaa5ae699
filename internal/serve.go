package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/server"
	"github.com/starford/ansuz/internal/site"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/watch"
)

// Serve builds the site once and then serves it locally, rebuilding whenever
// the source outline changes and notifying connected browsers over SSE.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := app.logger
	logger.Info("configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("source", cfg.Source.Path),
		slog.String("content_dir", cfg.Export.ContentDir),
		slog.String("public_dir", cfg.Site.PublicDir))

	broker := sse.NewBroker()
	defer broker.Close()

	runner := site.NewRunner(cfg.Site.Generator, cfg.Site.Args, cfg.Site.Dir, logger)

	rebuild := func(rctx context.Context) {
		res, expErr := app.export(rctx)
		if expErr != nil {
			logger.Error("rebuild failed", slog.String("error", expErr.Error()))
			broker.PublishBuildFailed(expErr.Error())
			return
		}
		if !app.skipGenerator {
			if genErr := runner.Build(rctx); genErr != nil {
				logger.Error("generator failed", slog.String("error", genErr.Error()))
				broker.PublishBuildFailed(genErr.Error())
				return
			}
		}
		_ = app.summarize(res)
		broker.PublishRebuilt(res.Written, len(res.Errors))
	}

	// Initial build. A content error is reported but does not prevent the
	// server from coming up; the watcher picks up the fix.
	rebuild(ctx)

	router := server.NewRouter(cfg.Site.PublicDir, broker)
	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: router,
	}

	logger.Info("preview server starting", slog.String("http_address", cfg.App.HTTP.Address()))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return watch.Watch(gCtx, cfg.Source.Path, 200*time.Millisecond, logger, rebuild)
	})

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down preview server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("preview server stopped")
	return nil
}
