// Package internal wires configuration, the export pipeline, and the local
// preview server into the ansuz application.
package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Source SourceConfig      `yaml:"source"`
	Export ExportConfig      `yaml:"export"`
	Site   SiteConfig        `yaml:"site"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Source.Validate(); err != nil {
		return err
	}
	if err := c.Export.Validate(); err != nil {
		return err
	}
	return c.Site.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds the preview server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the preview server listen address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SourceConfig holds the path to the outline document.
type SourceConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the source configuration.
func (c *SourceConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

var utcOffsetRe = regexp.MustCompile(`^[+-]\d{2}:\d{2}$`)

// ExportConfig controls how subtrees become markdown documents.
//
// UTCOffset pins date normalization to one zone recorded on the project, so
// rebuilds produce identical bytes regardless of the machine's locale.
type ExportConfig struct {
	ContentDir     string `yaml:"content_dir"`
	DefaultSection string `yaml:"default_section"`
	DefaultDraft   bool   `yaml:"default_draft"`
	UTCOffset      string `yaml:"utc_offset"`
	Workers        int    `yaml:"workers"`
}

// Validate validates the export configuration.
func (c *ExportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ContentDir, validation.Required),
		validation.Field(&c.UTCOffset, validation.Required, validation.Match(utcOffsetRe)),
		validation.Field(&c.Workers, validation.Min(1), validation.Max(64)),
	)
}

// Location converts the configured offset into a fixed time.Location.
func (c *ExportConfig) Location() (*time.Location, error) {
	m := utcOffsetRe.FindString(c.UTCOffset)
	if m == "" {
		return nil, fmt.Errorf("invalid utc_offset %q", c.UTCOffset)
	}
	hours, _ := strconv.Atoi(c.UTCOffset[1:3])
	mins, _ := strconv.Atoi(c.UTCOffset[4:6])
	secs := hours*3600 + mins*60
	if c.UTCOffset[0] == '-' {
		secs = -secs
	}
	if secs == 0 {
		return time.UTC, nil
	}
	return time.FixedZone("UTC"+c.UTCOffset, secs), nil
}

// SiteConfig holds the external site generator integration.
type SiteConfig struct {
	// Generator is the site generator binary, resolved via PATH.
	Generator string   `yaml:"generator"`
	Args      []string `yaml:"args"`
	// Dir is the generator's working directory (the site root).
	Dir string `yaml:"dir"`
	// PublicDir is where the generator leaves the rendered site.
	PublicDir string `yaml:"public_dir"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Generator, validation.Required),
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.PublicDir, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 1313,
			},
		},
		Source: SourceConfig{
			Path: "./blog.org",
		},
		Export: ExportConfig{
			ContentDir:     "./content",
			DefaultSection: "posts",
			DefaultDraft:   false,
			UTCOffset:      "+00:00",
			Workers:        4,
		},
		Site: SiteConfig{
			Generator: "hugo",
			Dir:       ".",
			PublicDir: "./public",
		},
	}
}
