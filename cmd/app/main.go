package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/export"
	"github.com/starford/ansuz/internal/mcpserver"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfPresent(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func buildAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Build(ctx,
		internal.WithConfig(cfg),
		internal.WithSkipGenerator(cmd.Bool("skip-generator")),
	)
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Serve(ctx,
		internal.WithConfig(cfg),
		internal.WithSkipGenerator(cmd.Bool("skip-generator")),
	)
}

func cleanAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Clean(internal.WithConfig(cfg))
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	loc, err := cfg.Export.Location()
	if err != nil {
		return err
	}
	srv := mcpserver.New(cfg.Source.Path, export.Options{
		DefaultSection: cfg.Export.DefaultSection,
		DefaultDraft:   cfg.Export.DefaultDraft,
		Location:       loc,
	})
	return srv.ServeStdio()
}

func main() {
	cmd := &cli.Command{
		Name:  "ansuz",
		Usage: "Export an org-mode outline into a markdown content tree and preview the generated site",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Export the outline and run the site generator",
				Action: buildAction,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "skip-generator",
						Usage: "Export markdown only; do not invoke the site generator",
					},
				},
			},
			{
				Name:   "run",
				Usage:  "Build, serve the site locally, and rebuild on source changes",
				Action: runAction,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "skip-generator",
						Usage: "Serve exported markdown without invoking the site generator",
					},
				},
			},
			{
				Name:   "clean",
				Usage:  "Remove the generated content and site output directories",
				Action: cleanAction,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the outline over MCP on stdio",
				Action: mcpAction,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
