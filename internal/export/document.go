package export

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// frontMatter is the serialization envelope for Meta. Struct fields keep
// their declared order and yaml.v3 sorts the inline custom map, so output is
// deterministic for identical input.
type frontMatter struct {
	Title      string            `yaml:"title"`
	Date       string            `yaml:"date,omitempty"`
	Lastmod    string            `yaml:"lastmod,omitempty"`
	Tags       []string          `yaml:"tags,omitempty"`
	Categories []string          `yaml:"categories,omitempty"`
	Draft      bool              `yaml:"draft"`
	Summary    string            `yaml:"summary,omitempty"`
	Slug       string            `yaml:"slug,omitempty"`
	Custom     map[string]string `yaml:",inline"`
}

// Render assembles the final document: a "---"-delimited YAML metadata block
// followed by the transformed body.
func Render(m Meta, body string) ([]byte, error) {
	env := frontMatter{
		Title:      m.Title,
		Tags:       m.Tags,
		Categories: m.Categories,
		Draft:      m.Draft,
		Summary:    m.Summary,
		Slug:       m.Slug,
		Custom:     m.Custom,
	}
	if !m.Date.IsZero() {
		env.Date = m.Date.Format(time.RFC3339)
	}
	if !m.Lastmod.IsZero() {
		env.Lastmod = m.Lastmod.Format(time.RFC3339)
	}

	block, err := yaml.Marshal(&env)
	if err != nil {
		return nil, fmt.Errorf("marshal front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(block)
	b.WriteString("---\n")
	if body != "" {
		b.WriteString("\n")
		b.WriteString(body)
	}
	return []byte(b.String()), nil
}
