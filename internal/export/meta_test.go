package export

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/outline"
)

func node(t *testing.T, src string) *outline.Node {
	t.Helper()
	doc, err := outline.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Nodes) == 0 {
		t.Fatal("no nodes parsed")
	}
	return doc.Nodes[0]
}

func TestSynthesize_Defaults(t *testing.T) {
	n := node(t, "* Plain Heading\n:PROPERTIES:\n:EXPORT_FILE_NAME: plain\n:END:\n")
	m, err := Synthesize(n, false, time.UTC)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if m.Title != "Plain Heading" {
		t.Errorf("title = %q, want heading text", m.Title)
	}
	if m.Draft {
		t.Error("draft should default to false")
	}
	if len(m.Tags) != 0 {
		t.Errorf("tags = %v, want empty", m.Tags)
	}
	if !m.Date.IsZero() {
		t.Errorf("date = %v, want zero", m.Date)
	}
}

func TestSynthesize_ExplicitOverInferred(t *testing.T) {
	n := node(t, `* Heading Text                                          :headingtag:
:PROPERTIES:
:EXPORT_FILE_NAME: x
:EXPORT_TITLE: Override Title
:EXPORT_HUGO_TAGS: alpha beta
:EXPORT_HUGO_DRAFT: t
:EXPORT_DESCRIPTION: short summary
:END:
`)
	m, err := Synthesize(n, false, time.UTC)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if m.Title != "Override Title" {
		t.Errorf("title = %q", m.Title)
	}
	if len(m.Tags) != 2 || m.Tags[0] != "alpha" || m.Tags[1] != "beta" {
		t.Errorf("tags = %v, want property tags over heading tags", m.Tags)
	}
	if !m.Draft {
		t.Error("explicit draft=t not honored")
	}
	if m.Summary != "short summary" {
		t.Errorf("summary = %q", m.Summary)
	}
}

func TestSynthesize_HeadingTagsInferred(t *testing.T) {
	n := node(t, "* Post                                  :go:tooling:\n:PROPERTIES:\n:EXPORT_FILE_NAME: p\n:END:\n")
	m, err := Synthesize(n, false, time.UTC)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(m.Tags) != 2 || m.Tags[0] != "go" || m.Tags[1] != "tooling" {
		t.Errorf("tags = %v", m.Tags)
	}
}

func TestSynthesize_EmptyTagsPropertyClearsHeadingTags(t *testing.T) {
	n := node(t, "* Post                                  :go:tooling:\n:PROPERTIES:\n:EXPORT_FILE_NAME: p\n:EXPORT_HUGO_TAGS:\n:END:\n")
	m, err := Synthesize(n, false, time.UTC)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(m.Tags) != 0 {
		t.Errorf("tags = %v, want none (declared empty property wins)", m.Tags)
	}
}

func TestSynthesize_DraftDefaultConfigurable(t *testing.T) {
	n := node(t, "* P\n:PROPERTIES:\n:EXPORT_FILE_NAME: p\n:END:\n")
	m, err := Synthesize(n, true, time.UTC)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !m.Draft {
		t.Error("configured draft default not applied")
	}
}

func TestSynthesize_OrgTimestampFixedOffset(t *testing.T) {
	loc := time.FixedZone("UTC+02:00", 2*3600)
	n := node(t, "* P\n:PROPERTIES:\n:EXPORT_FILE_NAME: p\n:EXPORT_DATE: <2024-03-01 Fri 10:30>\n:END:\n")
	m, err := Synthesize(n, false, loc)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	got := m.Date.Format(time.RFC3339)
	if got != "2024-03-01T10:30:00+02:00" {
		t.Errorf("date = %q", got)
	}
}

func TestSynthesize_DateOnlyStamp(t *testing.T) {
	n := node(t, "* P\n:PROPERTIES:\n:EXPORT_FILE_NAME: p\n:EXPORT_DATE: [2023-11-20 Mon]\n:END:\n")
	m, err := Synthesize(n, false, time.UTC)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if m.Date.Format(time.RFC3339) != "2023-11-20T00:00:00Z" {
		t.Errorf("date = %q", m.Date.Format(time.RFC3339))
	}
}

func TestSynthesize_InvalidDate(t *testing.T) {
	n := node(t, "* P\n:PROPERTIES:\n:EXPORT_FILE_NAME: p\n:EXPORT_DATE: not-a-date\n:END:\n")
	_, err := Synthesize(n, false, time.UTC)
	if !errors.Is(err, apperr.ErrInvalidDate) {
		t.Fatalf("err = %v, want ErrInvalidDate", err)
	}
}

func TestSynthesize_CustomPassThrough(t *testing.T) {
	n := node(t, "* P\n:PROPERTIES:\n:EXPORT_FILE_NAME: p\n:series: distributed systems\n:END:\n")
	m, err := Synthesize(n, false, time.UTC)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if m.Custom["series"] != "distributed systems" {
		t.Errorf("custom = %v", m.Custom)
	}
}

func TestRender_CustomKeyVerbatim(t *testing.T) {
	m := Meta{Title: "T", Custom: map[string]string{"series": "runes"}}
	out, err := Render(m, "")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), "series: runes") {
		t.Errorf("custom key missing from front matter:\n%s", out)
	}
}

func TestRender_Shape(t *testing.T) {
	m := Meta{Title: "Hello", Draft: false}
	out, err := Render(m, "Body text.\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := string(out)
	if !strings.HasPrefix(s, "---\n") {
		t.Errorf("missing opening fence:\n%s", s)
	}
	if !strings.Contains(s, "\n---\n\nBody text.\n") {
		t.Errorf("body not separated from front matter:\n%s", s)
	}
	if !strings.Contains(s, "draft: false") {
		t.Errorf("draft flag must always be recorded:\n%s", s)
	}
}
