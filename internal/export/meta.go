// Package export turns exportable outline subtrees into front-matter-annotated
// markdown documents and writes them under the content root.
package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/goliatone/go-slug"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/outline"
)

// Property keys with fixed front-matter meaning. Everything else prefixed
// EXPORT_ passes through as a custom field.
const (
	propTitle      = "EXPORT_TITLE"
	propDate       = "EXPORT_DATE"
	propLastmod    = "EXPORT_HUGO_LASTMOD"
	propTags       = "EXPORT_HUGO_TAGS"
	propCategories = "EXPORT_HUGO_CATEGORIES"
	propDraft      = "EXPORT_HUGO_DRAFT"
	propSummary    = "EXPORT_DESCRIPTION"
	propSlug       = "EXPORT_HUGO_SLUG"
)

// Meta is the typed front-matter record synthesized for one exportable node.
type Meta struct {
	Title      string
	Date       time.Time
	Lastmod    time.Time
	Tags       []string
	Categories []string
	Draft      bool
	Summary    string
	Slug       string
	Custom     map[string]string
}

// Timestamp layouts accepted for date properties, tried in order. Org active
// and inactive stamps plus plain ISO forms.
var timeLayouts = []string{
	"<2006-01-02 Mon 15:04>",
	"<2006-01-02 Mon>",
	"[2006-01-02 Mon 15:04]",
	"[2006-01-02 Mon]",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006-01-02",
}

var truthyRe = regexp.MustCompile(`(?i)^(t|true|yes|1)$`)

// Synthesize maps a node's properties to a Meta record. Field precedence is
// explicit property, then value inferred from the node (heading title,
// heading tags), then the global default (draft from cfg, empty otherwise).
//
// Date values are interpreted in loc, the project's fixed UTC offset, so the
// rendered output is identical on every machine. An unparseable date fails
// the record with ErrInvalidDate.
func Synthesize(n *outline.Node, defaultDraft bool, loc *time.Location) (Meta, error) {
	m := Meta{
		Title:  n.Title,
		Draft:  defaultDraft,
		Custom: map[string]string{},
	}
	if v, ok := n.Property(propTitle); ok && v != "" {
		m.Title = v
	}
	if v, ok := n.Property(propDate); ok {
		t, err := parseStamp(v, loc)
		if err != nil {
			return Meta{}, err
		}
		m.Date = t
	}
	if v, ok := n.Property(propLastmod); ok {
		t, err := parseStamp(v, loc)
		if err != nil {
			return Meta{}, err
		}
		m.Lastmod = t
	}

	// A declared tags property always wins, even when empty: declaring
	// :EXPORT_HUGO_TAGS: with no value clears the heading tags.
	if v, ok := n.Property(propTags); ok {
		m.Tags = splitWords(v)
	} else {
		m.Tags = append(m.Tags, n.Tags...)
	}
	m.Categories = splitWords(propValue(n, propCategories))

	if v, ok := n.Property(propDraft); ok {
		m.Draft = truthyRe.MatchString(strings.TrimSpace(v))
	}
	if v, ok := n.Property(propSummary); ok {
		m.Summary = v
	}
	if v, ok := n.Property(propSlug); ok && v != "" {
		if s, err := slug.Normalize(v); err == nil && s != "" {
			m.Slug = s
		} else {
			m.Slug = v
		}
	}

	for key, val := range n.Properties {
		if isReservedKey(key) {
			continue
		}
		m.Custom[key] = val
	}
	return m, nil
}

func propValue(n *outline.Node, key string) string {
	v, _ := n.Property(key)
	return v
}

// isReservedKey reports whether key already maps to a fixed schema field or
// carries selector-only meaning.
func isReservedKey(key string) bool {
	switch strings.ToUpper(key) {
	case propTitle, propDate, propLastmod, propTags, propCategories,
		propDraft, propSummary, propSlug,
		outline.PropFileName, outline.PropSection:
		return true
	}
	return false
}

// parseStamp tries each accepted layout in the project location.
func parseStamp(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", apperr.ErrInvalidDate, v)
}

// splitWords splits a property value on commas and whitespace, dropping
// surrounding quotes. Returns nil for an empty value.
func splitWords(v string) []string {
	var out []string
	for _, w := range strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	}) {
		w = strings.Trim(w, `"`)
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}
