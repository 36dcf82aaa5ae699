package outline

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/starford/ansuz/internal/apperr"
)

// Export property keys recognized by the selector.
const (
	PropFileName = "EXPORT_FILE_NAME"
	PropSection  = "EXPORT_HUGO_SECTION"
)

// Export pairs an exportable node with its resolved output path, relative to
// the content root.
type Export struct {
	Node *Node
	Path string
}

// Exportables yields, in document order, every node carrying the export
// marker property, each with a resolved output path. Sub-headings under an
// exportable node stay out of its body and are only selected when they carry
// their own marker.
//
// Path collisions are detected here, before anything is written: two nodes
// resolving to the same path fail the whole run with ErrDuplicateExportTarget.
func (d *Document) Exportables(defaultSection string) ([]Export, error) {
	var out []Export
	seen := map[string]*Node{}

	var walkErr error
	d.Walk(func(n *Node) {
		if walkErr != nil {
			return
		}
		if _, ok := n.Property(PropFileName); !ok {
			return
		}
		p, err := resolvePath(n, defaultSection)
		if err != nil {
			walkErr = err
			return
		}
		if prev, dup := seen[p]; dup {
			walkErr = fmt.Errorf("%w: %q claimed by headings at lines %d and %d",
				apperr.ErrDuplicateExportTarget, p, prev.Line, n.Line)
			return
		}
		seen[p] = n
		out = append(out, Export{Node: n, Path: p})
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return out, nil
}

// markerRe matches the org truthy tokens that flag "export me" without
// naming a file.
var markerRe = regexp.MustCompile(`(?i)^(t|true|yes|1)$`)

// resolvePath derives the output path: section directory from the nearest
// ancestor section property (falling back to defaultSection), file name from
// the marker value or a slug of the heading title when the value is empty or
// a bare truthy marker.
func resolvePath(n *Node, defaultSection string) (string, error) {
	name, _ := n.Property(PropFileName)
	name = strings.TrimSpace(name)
	if name == "" || markerRe.MatchString(name) {
		s, err := slug.Normalize(n.Title)
		if err != nil || s == "" {
			return "", apperr.Malformed(n.Line, "cannot derive file name for heading %q", n.Title)
		}
		name = s
	}
	if path.Ext(name) == "" {
		name += ".md"
	}

	section, ok := n.InheritedProperty(PropSection)
	if !ok {
		section = defaultSection
	}
	p := path.Join(section, name)
	if p == "" || p == "." {
		return "", apperr.Malformed(n.Line, "empty export target for heading %q", n.Title)
	}
	return p, nil
}
