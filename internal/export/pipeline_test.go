package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/testutil"
)

func testPipeline(t *testing.T) (*Pipeline, storage.Provider) {
	t.Helper()
	_, store := testutil.TestContentDir(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := New(store, logger, Options{DefaultSection: "posts", Location: time.UTC, Workers: 2})
	return p, store
}

type parsedMeta struct {
	Title string   `yaml:"title"`
	Date  string   `yaml:"date"`
	Tags  []string `yaml:"tags"`
	Draft bool     `yaml:"draft"`
}

func TestRun_TwoPosts(t *testing.T) {
	p, store := testPipeline(t)
	doc := testutil.MustParse(t, testutil.SampleOutline)

	res, err := p.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Written != 2 || res.Failed() {
		t.Fatalf("written = %d, errors = %v", res.Written, res.Errors)
	}

	data, err := store.Read("posts/first-post.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	var meta parsedMeta
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		t.Fatalf("front matter does not parse back: %v", err)
	}
	if meta.Title != "First Post" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.Draft {
		t.Error("draft should be false")
	}
	if meta.Date != "2024-03-01T00:00:00Z" {
		t.Errorf("date = %q", meta.Date)
	}
	if len(meta.Tags) != 2 || meta.Tags[0] != "go" {
		t.Errorf("tags = %v", meta.Tags)
	}
	want := "```go\nfmt.Println(\"hello\")\n```"
	if !strings.Contains(string(body), want) {
		t.Errorf("code block not byte-identical:\n%s", body)
	}

	if _, err := store.Read("posts/second-post.md"); err != nil {
		t.Errorf("second post missing: %v", err)
	}
}

func TestRun_Idempotent(t *testing.T) {
	p, store := testPipeline(t)
	doc := testutil.MustParse(t, testutil.SampleOutline)

	if _, err := p.Run(context.Background(), doc); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, err := store.Read("posts/first-post.md")
	if err != nil {
		t.Fatal(err)
	}

	res, err := p.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Written != 0 || res.Unchanged != 2 {
		t.Errorf("second run written = %d, unchanged = %d", res.Written, res.Unchanged)
	}
	second, err := store.Read("posts/first-post.md")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("rebuild produced different bytes for unchanged input")
	}
}

func TestRun_DuplicateTargetWritesNothing(t *testing.T) {
	p, store := testPipeline(t)
	doc := testutil.MustParse(t, `* One
:PROPERTIES:
:EXPORT_FILE_NAME: same
:END:
* Two
:PROPERTIES:
:EXPORT_FILE_NAME: same
:END:
`)
	_, err := p.Run(context.Background(), doc)
	if !errors.Is(err, apperr.ErrDuplicateExportTarget) {
		t.Fatalf("err = %v, want ErrDuplicateExportTarget", err)
	}
	files, listErr := store.List("")
	if listErr != nil {
		t.Fatal(listErr)
	}
	if len(files) != 0 {
		t.Errorf("files written despite duplicate target: %v", files)
	}
}

func TestRun_InvalidDateIsolatedToRecord(t *testing.T) {
	p, store := testPipeline(t)
	doc := testutil.MustParse(t, `* Good
:PROPERTIES:
:EXPORT_FILE_NAME: good
:END:
* Bad
:PROPERTIES:
:EXPORT_FILE_NAME: bad
:EXPORT_DATE: garbage
:END:
`)
	res, err := p.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("errors = %v, want exactly one", res.Errors)
	}
	if !errors.Is(res.Errors[0], apperr.ErrInvalidDate) {
		t.Errorf("collected error = %v, want ErrInvalidDate", res.Errors[0])
	}
	if _, readErr := store.Read("posts/good.md"); readErr != nil {
		t.Errorf("good record should still export: %v", readErr)
	}
	if _, readErr := store.Read("posts/bad.md"); readErr == nil {
		t.Error("failed record should not produce a file")
	}
}

func TestRun_PrunesStaleFiles(t *testing.T) {
	p, store := testPipeline(t)
	if err := store.Write("posts/stale.md", []byte("old")); err != nil {
		t.Fatal(err)
	}

	doc := testutil.MustParse(t, testutil.SampleOutline)
	res, err := p.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Pruned != 1 {
		t.Errorf("pruned = %d, want 1", res.Pruned)
	}
	if _, readErr := store.Read("posts/stale.md"); readErr == nil {
		t.Error("stale file survived the rebuild")
	}
}

func TestRun_ExplicitDraftStillExported(t *testing.T) {
	p, store := testPipeline(t)
	doc := testutil.MustParse(t, `* WIP Post
:PROPERTIES:
:EXPORT_FILE_NAME: wip
:EXPORT_HUGO_DRAFT: t
:END:
`)
	res, err := p.Run(context.Background(), doc)
	if err != nil || res.Written != 1 {
		t.Fatalf("Run: %v, written = %d", err, res.Written)
	}
	data, err := store.Read("posts/wip.md")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "draft: true") {
		t.Errorf("draft flag not recorded:\n%s", data)
	}
}
