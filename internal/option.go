package internal

import "log/slog"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config        *Config
	logger        *slog.Logger
	skipGenerator bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogger overrides the default JSON logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *application) {
		a.logger = l
	}
}

// WithSkipGenerator skips the external site generator step during builds.
func WithSkipGenerator(skip bool) Option {
	return func(a *application) {
		a.skipGenerator = skip
	}
}
