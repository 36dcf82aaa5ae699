// Package site invokes the external static-site generator and owns the
// generated output directories.
package site

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
)

// Runner shells out to the configured site generator. The pipeline's only
// contract with the generator is the content directory layout; everything
// about templates and themes stays on the generator's side.
type Runner struct {
	generator string
	args      []string
	dir       string
	logger    *slog.Logger
}

// NewRunner creates a runner for the given generator binary and site root.
func NewRunner(generator string, args []string, dir string, logger *slog.Logger) *Runner {
	return &Runner{generator: generator, args: args, dir: dir, logger: logger}
}

// Available reports whether the generator binary resolves on PATH.
func (r *Runner) Available() error {
	if _, err := exec.LookPath(r.generator); err != nil {
		return fmt.Errorf("site generator %q not found: %w", r.generator, err)
	}
	return nil
}

// Build runs the generator in the site root, streaming its output through
// the logger.
func (r *Runner) Build(ctx context.Context) error {
	if err := r.Available(); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, r.generator, r.args...)
	cmd.Dir = r.dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("generator stdout: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	r.logger.Info("running site generator",
		slog.String("generator", r.generator),
		slog.String("dir", r.dir))

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start generator: %w", err)
	}
	r.stream(stdout)

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("site generator failed: %w", err)
	}
	return nil
}

func (r *Runner) stream(out io.Reader) {
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		r.logger.Info("generator: " + sc.Text())
	}
}

// Clean removes generated directories. Missing directories are not an error;
// clean is idempotent.
func Clean(logger *slog.Logger, dirs ...string) error {
	for _, d := range dirs {
		if d == "" || d == "." || d == "/" {
			continue
		}
		if err := os.RemoveAll(d); err != nil {
			return fmt.Errorf("clean %s: %w", d, err)
		}
		logger.Info("removed", slog.String("dir", d))
	}
	return nil
}
