package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crimson/pkg/schema"
)

func TestExtractSectionsPairsDirectives(t *testing.T) {
	sections := ExtractSections("## A\nIMG_PROMPT: x\nbody1\n## B\nIMG_PROMPT: y\nbody2")
	require.Len(t, sections, 2)
	assert.Equal(t, schema.Section{Heading: "A", Directive: "x", Body: "body1"}, sections[0])
	assert.Equal(t, schema.Section{Heading: "B", Directive: "y", Body: "body2"}, sections[1])
}

func TestExtractSectionsDirectiveOptional(t *testing.T) {
	sections := ExtractSections("## A\nIMG_PROMPT: x\nbody1\n## B\nbody2\n## C\nIMG_PROMPT: z\nbody3")
	require.Len(t, sections, 3)
	assert.Equal(t, "x", sections[0].Directive)
	assert.Equal(t, "", sections[1].Directive, "heading with no directive yields no pairing")
	assert.Equal(t, "z", sections[2].Directive, "directive after a bare section still attaches to its own heading")
}

func TestExtractSectionsDropsEmptyUnits(t *testing.T) {
	sections := ExtractSections("## Stray\n## Real\nIMG_PROMPT: d\nsome body\n## Trailing")
	require.Len(t, sections, 1)
	assert.Equal(t, "Real", sections[0].Heading)
}

func TestExtractSectionsOrphanDirectiveDropped(t *testing.T) {
	sections := ExtractSections("IMG_PROMPT: orphan\n## A\nbody")
	require.Len(t, sections, 1)
	assert.Equal(t, "", sections[0].Directive)
}

func TestExtractSectionsDirectiveStrippedFromBody(t *testing.T) {
	sections := ExtractSections("## A\nIMG_PROMPT: hidden\nline one\nline two")
	require.Len(t, sections, 1)
	assert.NotContains(t, sections[0].Body, "IMG_PROMPT")
	assert.Equal(t, "line one\nline two", sections[0].Body)
}

func TestExtractSectionsPreservesOrder(t *testing.T) {
	var b strings.Builder
	headings := []string{"One", "Two", "Three", "Four", "Five"}
	for _, h := range headings {
		b.WriteString("## " + h + "\nIMG_PROMPT: scene " + h + "\nbody of " + h + "\n")
	}
	sections := ExtractSections(b.String())
	require.Len(t, sections, len(headings))
	for i, h := range headings {
		assert.Equal(t, h, sections[i].Heading)
		assert.Equal(t, "scene "+h, sections[i].Directive)
		assert.Equal(t, "body of "+h, sections[i].Body)
	}
}

func TestExtractLineStripOnce(t *testing.T) {
	prose := "intro\nHERO_PROMPT: first\nmiddle\nHERO_PROMPT: second\nend"
	value, remaining := ExtractLine(prose, HeroPrefix)
	assert.Equal(t, "first", value)
	assert.NotContains(t, remaining, "HERO_PROMPT: first")
	assert.Contains(t, remaining, "HERO_PROMPT: second", "only the first match is consumed")
}

func TestExtractLineAbsent(t *testing.T) {
	value, remaining := ExtractLine("plain prose", SEOTitlePrefix)
	assert.Equal(t, "", value)
	assert.Equal(t, "plain prose", remaining)
}

func TestParseFull(t *testing.T) {
	prose := strings.Join([]string{
		"## Arrival",
		"IMG_PROMPT: standing at the hotel window",
		"She arrived at dusk.",
		"## The Bar",
		"He was already waiting.",
		"HERO_PROMPT: rain-slicked boulevard at dusk",
		"SEO_TITLE: A Night in Lisbon",
		"SEO_DESCRIPTION: One evening changes everything.",
	}, "\n")

	r := Parse(prose)
	assert.Equal(t, "rain-slicked boulevard at dusk", r.HeroPrompt)
	assert.Equal(t, "A Night in Lisbon", r.SEOTitle)
	assert.Equal(t, "One evening changes everything.", r.SEODescription)

	require.Len(t, r.Sections, 2)
	assert.Equal(t, "Arrival", r.Sections[0].Heading)
	assert.Equal(t, "standing at the hotel window", r.Sections[0].Directive)
	for _, sec := range r.Sections {
		assert.NotContains(t, sec.Body, "HERO_PROMPT")
		assert.NotContains(t, sec.Body, "SEO_TITLE")
		assert.NotContains(t, sec.Body, "SEO_DESCRIPTION")
		assert.NotContains(t, sec.Body, "IMG_PROMPT")
	}
}

func TestParseEmpty(t *testing.T) {
	r := Parse("")
	assert.Empty(t, r.Sections)
	assert.Empty(t, r.HeroPrompt)
}
