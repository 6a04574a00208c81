// Package parse extracts structure from generated prose: heading-delimited
// sections, per-section image directives, and the trailing hero/SEO lines.
package parse

import (
	"strings"

	"github.com/charmbracelet/log"

	"crimson/pkg/schema"
)

// Line markers the prose prompt instructs the model to emit.
const (
	HeadingPrefix   = "## "
	DirectivePrefix = "IMG_PROMPT:"
	HeroPrefix      = "HERO_PROMPT:"
	SEOTitlePrefix  = "SEO_TITLE:"
	SEODescPrefix   = "SEO_DESCRIPTION:"
)

// Result is everything pulled out of one raw prose blob.
type Result struct {
	Sections       []schema.Section
	HeroPrompt     string
	SEOTitle       string
	SEODescription string
}

// Parse strips the single-match lines first so a directive is never captured
// twice, then scans the remainder into sections.
func Parse(prose string) Result {
	var r Result
	r.HeroPrompt, prose = ExtractLine(prose, HeroPrefix)
	r.SEOTitle, prose = ExtractLine(prose, SEOTitlePrefix)
	r.SEODescription, prose = ExtractLine(prose, SEODescPrefix)
	r.Sections = ExtractSections(prose)
	return r
}

// ExtractSections walks the prose once, starting a section at each heading
// line and attaching a directive only when it appears between that heading
// and the next one. A heading with no body, or a body with no heading, is
// dropped: a stray heading must not produce a phantom section. A directive
// with no owning heading is dropped with a warning.
func ExtractSections(prose string) []schema.Section {
	var (
		sections []schema.Section
		cur      schema.Section
		body     []string
		open     bool
	)

	flush := func() {
		if !open {
			return
		}
		cur.Body = strings.TrimSpace(strings.Join(body, "\n"))
		if cur.Heading != "" && cur.Body != "" {
			sections = append(sections, cur)
		}
		cur = schema.Section{}
		body = body[:0]
	}

	for _, line := range strings.Split(prose, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, HeadingPrefix):
			flush()
			cur.Heading = strings.TrimSpace(strings.TrimPrefix(trimmed, HeadingPrefix))
			open = true
		case strings.HasPrefix(trimmed, DirectivePrefix):
			directive := strings.TrimSpace(strings.TrimPrefix(trimmed, DirectivePrefix))
			if !open {
				log.Warn("image directive before any heading, dropping", "directive", directive)
				continue
			}
			if cur.Directive == "" {
				cur.Directive = directive
			}
		default:
			if open {
				body = append(body, line)
			}
		}
	}
	flush()
	return sections
}

// ExtractLine pulls the first line bearing prefix out of prose, returning
// its value and the prose with that line removed. Only the first match is
// consumed.
func ExtractLine(prose, prefix string) (string, string) {
	lines := strings.Split(prose, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, prefix) {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
		remaining := strings.Join(append(lines[:i:i], lines[i+1:]...), "\n")
		return value, remaining
	}
	return "", prose
}
