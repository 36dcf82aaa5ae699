package export

import (
	"regexp"
	"strings"

	"github.com/starford/ansuz/internal/outline"
)

var (
	linkDescRe = regexp.MustCompile(`\[\[([^\]\[]+)\]\[([^\]\[]+)\]\]`)
	linkBareRe = regexp.MustCompile(`\[\[([^\]\[]+)\]\]`)
	boldRe     = regexp.MustCompile(`(^|[\s(])\*([^*\n]+)\*`)
	italicRe   = regexp.MustCompile(`(^|[\s(])/([^/\s][^/\n]*)/([\s).,;:!?]|$)`)
	verbRe     = regexp.MustCompile(`(^|[\s(])=([^=\n]+)=([\s).,;:!?]|$)`)
	codeRe     = regexp.MustCompile(`(^|[\s(])~([^~\n]+)~([\s).,;:!?]|$)`)
	strikeRe   = regexp.MustCompile(`(^|[\s(])\+([^+\s][^+\n]*)\+([\s).,;:!?]|$)`)
	bulletRe   = regexp.MustCompile(`^(\s*)[-+]\s+`)
	orderedRe  = regexp.MustCompile(`^(\s*)(\d+)[.)]\s+`)

	schedRe     = regexp.MustCompile(`^\s*(SCHEDULED|DEADLINE|CLOSED|CLOCK):`)
	drawerKeyRe = regexp.MustCompile(`^\s*:[A-Za-z0-9_+-]+:\s*$`)
	drawerEndRe = regexp.MustCompile(`(?i)^\s*:end:\s*$`)
	commentRe   = regexp.MustCompile(`^\s*#( |\+|$)`)
)

// Transform renders a node's body segments as markdown. Code and example
// block content is copied between the new fences byte-for-byte; everything
// else is rewritten from outline syntax. Property drawers, scheduling lines,
// and outline-only comments never reach the output.
func Transform(body []outline.Segment) string {
	var parts []string
	for _, seg := range body {
		switch seg.Kind {
		case outline.KindCodeBlock:
			parts = append(parts, fence(seg.Lang, seg.Code))
		case outline.KindExample:
			parts = append(parts, fence("", seg.Code))
		case outline.KindQuote:
			parts = append(parts, quote(seg.Text))
		case outline.KindList:
			parts = append(parts, listLines(seg.Lines))
		default:
			if p := paragraph(seg.Lines); p != "" {
				parts = append(parts, p)
			}
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}

func fence(lang, content string) string {
	var b strings.Builder
	b.WriteString("```")
	b.WriteString(lang)
	b.WriteString("\n")
	b.WriteString(content)
	b.WriteString("\n```")
	return b.String()
}

func quote(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = "> " + Inline(l)
	}
	return strings.Join(lines, "\n")
}

func listLines(lines []string) string {
	var out []string
	for _, l := range stripNoise(lines) {
		l = bulletRe.ReplaceAllString(l, "$1- ")
		l = orderedRe.ReplaceAllString(l, "$1$2. ")
		out = append(out, Inline(l))
	}
	return strings.Join(out, "\n")
}

func paragraph(lines []string) string {
	var out []string
	for _, l := range stripNoise(lines) {
		out = append(out, Inline(l))
	}
	return strings.Join(out, "\n")
}

// stripNoise drops scheduling lines, outline comments, and whole drawer
// spans (a :NAME: line through its closing :END:). A lone :word: line with
// no terminator is authored content and stays.
func stripNoise(lines []string) []string {
	var out []string
	for i := 0; i < len(lines); i++ {
		l := lines[i]
		if schedRe.MatchString(l) || commentRe.MatchString(l) {
			continue
		}
		if drawerEndRe.MatchString(l) {
			continue
		}
		if drawerKeyRe.MatchString(l) {
			if end := drawerEnd(lines, i); end >= 0 {
				i = end
				continue
			}
		}
		out = append(out, l)
	}
	return out
}

func drawerEnd(lines []string, start int) int {
	for i := start + 1; i < len(lines); i++ {
		if drawerEndRe.MatchString(lines[i]) {
			return i
		}
	}
	return -1
}

// Inline rewrites emphasis, code spans, and links on a single line. Link
// targets pass through untouched; validating them is an authoring concern.
func Inline(l string) string {
	l = linkDescRe.ReplaceAllString(l, "[$2]($1)")
	l = linkBareRe.ReplaceAllString(l, "<$1>")
	l = verbRe.ReplaceAllString(l, "$1`$2`$3")
	l = codeRe.ReplaceAllString(l, "$1`$2`$3")
	l = boldRe.ReplaceAllString(l, "$1**$2**")
	l = italicRe.ReplaceAllString(l, "$1*$2*$3")
	l = strikeRe.ReplaceAllString(l, "$1~~$2~~$3")
	return l
}
