package outline

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
)

var (
	headingRe = regexp.MustCompile(`^(\*+)\s+(.*)$`)
	tagsRe    = regexp.MustCompile(`^(.*?)\s+((?::[A-Za-z0-9_@#%-]+)+:)\s*$`)
	propRe    = regexp.MustCompile(`^\s*:([A-Za-z0-9_+-]+):(?:\s+(.*))?$`)
	listRe    = regexp.MustCompile(`^\s*(?:[-+]|\d+[.)])\s+`)
	beginRe   = regexp.MustCompile(`(?i)^\s*#\+begin_(src|example|quote)(?:\s+(\S+))?`)
)

// Parse reads an outline document in full and builds its heading tree.
//
// The scan is a single left-to-right pass over lines with an explicit stack
// of open headings, so nesting depth never grows the call stack. A heading
// more than one level deeper than its parent, an unterminated block, or an
// unterminated property drawer is a structural error; no partial document is
// returned.
func Parse(r io.Reader) (*Document, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	// stack[i] is the open heading at depth i+1.
	var stack []*Node
	// pending accumulates plain body lines until a paragraph boundary.
	var pending []string

	flush := func() {
		cur := top(stack)
		if cur == nil {
			pending = nil
			return
		}
		cur.Body = appendPending(cur.Body, pending)
		pending = nil
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		lineNo := i + 1

		if m := headingRe.FindStringSubmatch(line); m != nil {
			depth := len(m[1])
			if depth > len(stack)+1 {
				return nil, apperr.Malformed(lineNo, "heading depth %d under depth %d", depth, len(stack))
			}
			flush()

			title, tags := splitTags(m[2])
			node := &Node{
				Depth:      depth,
				Title:      title,
				Tags:       tags,
				Properties: map[string]string{},
				Line:       lineNo,
			}

			stack = stack[:depth-1]
			if parent := top(stack); parent != nil {
				node.parent = parent
				parent.Children = append(parent.Children, node)
			} else {
				doc.Nodes = append(doc.Nodes, node)
			}
			stack = append(stack, node)

			// Property drawer must open before any body content.
			if j, ok := drawerStart(lines, i+1); ok {
				end, perr := readDrawer(lines, j, node)
				if perr != nil {
					return nil, perr
				}
				i = end
			}
			continue
		}

		cur := top(stack)
		if cur == nil {
			// File-level keywords and prose before the first heading carry
			// no export semantics; skip them.
			continue
		}

		if m := beginRe.FindStringSubmatch(line); m != nil {
			seg, end, berr := readBlock(lines, i, strings.ToLower(m[1]), m[2])
			if berr != nil {
				return nil, berr
			}
			flush()
			cur.Body = append(cur.Body, seg)
			i = end
			continue
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		pending = append(pending, line)
	}
	flush()

	return doc, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func top(stack []*Node) *Node {
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

// appendPending converts accumulated plain lines into a body segment.
// List-shaped runs become KindList so the transformer can rewrite markers.
func appendPending(body []Segment, pending []string) []Segment {
	end := len(pending)
	for end > 0 && strings.TrimSpace(pending[end-1]) == "" {
		end--
	}
	lines := pending[:end]
	if len(lines) == 0 {
		return body
	}
	kind := KindParagraph
	if listRe.MatchString(lines[0]) {
		kind = KindList
	}
	return append(body, Segment{
		Kind:  kind,
		Text:  strings.Join(lines, "\n"),
		Lines: append([]string(nil), lines...),
	})
}

// splitTags separates a trailing :tag1:tag2: run from the heading title.
func splitTags(raw string) (string, []string) {
	raw = strings.TrimSpace(raw)
	m := tagsRe.FindStringSubmatch(raw)
	if m == nil {
		return raw, nil
	}
	var tags []string
	for _, t := range strings.Split(strings.Trim(m[2], ":"), ":") {
		if t != "" {
			tags = append(tags, t)
		}
	}
	return strings.TrimSpace(m[1]), tags
}

// drawerStart reports whether a :PROPERTIES: drawer opens at the first
// non-blank line at or after index j.
func drawerStart(lines []string, j int) (int, bool) {
	for ; j < len(lines); j++ {
		trimmed := strings.TrimSpace(lines[j])
		if trimmed == "" {
			continue
		}
		if strings.EqualFold(trimmed, ":PROPERTIES:") {
			return j, true
		}
		return 0, false
	}
	return 0, false
}

// readDrawer consumes a :PROPERTIES: drawer starting at lines[start] and
// records its key/value pairs on node. Keys keep their original spelling.
func readDrawer(lines []string, start int, node *Node) (int, error) {
	for i := start + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if strings.EqualFold(trimmed, ":END:") {
			return i, nil
		}
		if m := propRe.FindStringSubmatch(lines[i]); m != nil {
			node.Properties[m[1]] = strings.TrimSpace(m[2])
			continue
		}
		return 0, apperr.Malformed(i+1, "unexpected line inside property drawer")
	}
	return 0, apperr.Malformed(start+1, "property drawer missing :END:")
}

// readBlock consumes a #+begin_… block. Literal content is kept exactly as
// written; only the fence lines themselves are dropped.
func readBlock(lines []string, start int, kind, lang string) (Segment, int, error) {
	endMarker := "#+end_" + kind
	var content []string
	for i := start + 1; i < len(lines); i++ {
		if strings.EqualFold(strings.TrimSpace(lines[i]), endMarker) {
			seg := Segment{Lines: content}
			switch kind {
			case "src":
				seg.Kind = KindCodeBlock
				seg.Lang = lang
				seg.Code = strings.Join(content, "\n")
			case "example":
				seg.Kind = KindExample
				seg.Code = strings.Join(content, "\n")
			case "quote":
				seg.Kind = KindQuote
				seg.Text = strings.Join(content, "\n")
			}
			return seg, i, nil
		}
		content = append(content, lines[i])
	}
	return Segment{}, 0, apperr.Malformed(start+1, "unterminated #+begin_%s block", kind)
}
