// Package testutil provides shared test helpers for building outlines and
// content directories.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/outline"
	"github.com/starford/ansuz/internal/storage"
)

// TestContentDir creates a temporary content root with a storage.Provider.
func TestContentDir(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteSource writes an outline document into dir and returns its path.
func WriteSource(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "blog.org")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// MustParse parses an outline document from a string literal.
func MustParse(t *testing.T, src string) *outline.Document {
	t.Helper()
	doc, err := outline.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

// SampleOutline is a small two-post document used across packages.
const SampleOutline = `* Blog
:PROPERTIES:
:EXPORT_HUGO_SECTION: posts
:END:
** First Post                                                      :go:notes:
:PROPERTIES:
:EXPORT_FILE_NAME: first-post
:EXPORT_DATE: <2024-03-01 Fri>
:END:

Opening paragraph with *bold* text.

#+begin_src go
fmt.Println("hello")
#+end_src
** Second Post
:PROPERTIES:
:EXPORT_FILE_NAME: second-post
:END:

Another body.
`
