package export

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/outline"
	"github.com/starford/ansuz/internal/storage"
)

// Options configure one pipeline run.
type Options struct {
	// DefaultSection is the content subdirectory for nodes that declare no
	// section of their own.
	DefaultSection string
	// DefaultDraft is the draft value when a node has no draft property.
	DefaultDraft bool
	// Location is the project's fixed UTC offset for date normalization.
	Location *time.Location
	// Workers bounds the number of records exported concurrently.
	Workers int
}

// RecordError is a per-record failure collected during a run.
type RecordError struct {
	Path string
	Err  error
}

func (e RecordError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

func (e RecordError) Unwrap() error { return e.Err }

// Result summarizes a pipeline run.
type Result struct {
	Written   int
	Unchanged int
	Pruned    int
	Posts     []models.Post
	Errors    []RecordError
}

// Failed reports whether any record failed. Structural failures never reach
// a Result; they abort the run before output.
func (r *Result) Failed() bool { return len(r.Errors) > 0 }

// Pipeline exports every marked subtree of a document into the content root.
type Pipeline struct {
	store  storage.Provider
	logger *slog.Logger
	opts   Options
}

// New creates a pipeline writing through store.
func New(store storage.Provider, logger *slog.Logger, opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Pipeline{store: store, logger: logger, opts: opts}
}

// Run exports doc. Path resolution and the duplicate-target check complete
// before any write. Records are then exported through a bounded worker pool;
// each record is independent, so per-record failures (bad date, I/O error)
// are collected and the batch continues. Files under the content root that
// this run did not produce are pruned afterwards, so the directory always
// mirrors the document exactly.
func (p *Pipeline) Run(ctx context.Context, doc *outline.Document) (*Result, error) {
	exports, err := doc.Exportables(p.opts.DefaultSection)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	produced := make(map[string]bool, len(exports))
	for _, ex := range exports {
		produced[ex.Path] = true
	}

	for _, ex := range exports {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			post, expErr := p.exportOne(ex)
			mu.Lock()
			defer mu.Unlock()
			if expErr != nil {
				res.Errors = append(res.Errors, RecordError{Path: ex.Path, Err: expErr})
				return nil
			}
			if post.unchanged {
				res.Unchanged++
			} else {
				res.Written++
			}
			res.Posts = append(res.Posts, post.Post)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.prune(produced, res)

	sort.Slice(res.Posts, func(i, j int) bool { return res.Posts[i].Path < res.Posts[j].Path })
	sort.Slice(res.Errors, func(i, j int) bool { return res.Errors[i].Path < res.Errors[j].Path })

	p.logger.Info("export finished",
		slog.Int("written", res.Written),
		slog.Int("unchanged", res.Unchanged),
		slog.Int("pruned", res.Pruned),
		slog.Int("failed", len(res.Errors)))
	return res, nil
}

type exportedPost struct {
	models.Post
	unchanged bool
}

func (p *Pipeline) exportOne(ex outline.Export) (exportedPost, error) {
	meta, err := Synthesize(ex.Node, p.opts.DefaultDraft, p.opts.Location)
	if err != nil {
		return exportedPost{}, err
	}
	content, err := Render(meta, Transform(ex.Node.Body))
	if err != nil {
		return exportedPost{}, err
	}

	post := exportedPost{Post: models.Post{
		Path:     ex.Path,
		Title:    meta.Title,
		Date:     meta.Date,
		Tags:     meta.Tags,
		Draft:    meta.Draft,
		Content:  content,
		Checksum: checksum.Sum(content),
	}}

	// Identical output is left untouched so rebuild diffs stay meaningful.
	if existing, readErr := p.store.Read(ex.Path); readErr == nil && checksum.Equal(existing, post.Checksum) {
		post.unchanged = true
		return post, nil
	}

	if err := p.store.Write(ex.Path, content); err != nil {
		return exportedPost{}, fmt.Errorf("%w: %v", apperr.ErrWriteFailure, err)
	}
	p.logger.Debug("wrote document", slog.String("path", ex.Path))
	return post, nil
}

// prune removes content files this run did not produce.
func (p *Pipeline) prune(produced map[string]bool, res *Result) {
	existing, err := p.store.List("")
	if err != nil {
		res.Errors = append(res.Errors, RecordError{Path: ".", Err: fmt.Errorf("%w: %v", apperr.ErrWriteFailure, err)})
		return
	}
	for _, path := range existing {
		if produced[path] {
			continue
		}
		if err := p.store.Delete(path); err != nil {
			res.Errors = append(res.Errors, RecordError{Path: path, Err: fmt.Errorf("%w: %v", apperr.ErrWriteFailure, err)})
			continue
		}
		res.Pruned++
		p.logger.Debug("pruned stale document", slog.String("path", path))
	}
}
