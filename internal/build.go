package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/ansuz/internal/export"
	"github.com/starford/ansuz/internal/outline"
	"github.com/starford/ansuz/internal/site"
	"github.com/starford/ansuz/internal/storage"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		app.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
		slog.SetDefault(app.logger)
	}
	return app, nil
}

// Build parses the source outline, exports every marked subtree into the
// content directory, and invokes the site generator. Collected per-record
// failures surface as a non-nil error after the whole batch ran.
func Build(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	res, err := app.export(ctx)
	if err != nil {
		return err
	}

	if !app.skipGenerator {
		runner := site.NewRunner(app.config.Site.Generator, app.config.Site.Args, app.config.Site.Dir, app.logger)
		if err := runner.Build(ctx); err != nil {
			return err
		}
	}

	return app.summarize(res)
}

// export runs the pipeline once: read the whole source up front, parse,
// export. Structural errors return before anything is written.
func (a *application) export(ctx context.Context) (*export.Result, error) {
	cfg := a.config

	f, err := os.Open(cfg.Source.Path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	doc, err := outline.Parse(f)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Export.Location()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewFS(cfg.Export.ContentDir)
	if err != nil {
		return nil, err
	}

	pipeline := export.New(store, a.logger, export.Options{
		DefaultSection: cfg.Export.DefaultSection,
		DefaultDraft:   cfg.Export.DefaultDraft,
		Location:       loc,
		Workers:        cfg.Export.Workers,
	})
	return pipeline.Run(ctx, doc)
}

// summarize reports collected per-record errors and folds them into the
// process exit status.
func (a *application) summarize(res *export.Result) error {
	if !res.Failed() {
		return nil
	}
	for _, re := range res.Errors {
		a.logger.Error("record failed",
			slog.String("path", re.Path),
			slog.String("error", re.Err.Error()))
	}
	return fmt.Errorf("%d of %d document(s) failed to export", len(res.Errors), len(res.Errors)+len(res.Posts))
}

// Clean removes the generated content and site output directories.
func Clean(opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	return site.Clean(app.logger, app.config.Export.ContentDir, app.config.Site.PublicDir)
}
