// Package prompt composes image-generation prompts from story context.
//
// Components are wrapped in SD attention-weight syntax "(text:w)" with a
// fixed emphasis hierarchy: face > age > scene > stage > location. Backends
// with a different weighting mechanism must keep that ordering.
package prompt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"crimson/pkg/imagegen"
	"crimson/pkg/utils"
)

const defaultAge = 30

var (
	ageRX        = regexp.MustCompile(`(\d{1,3})\s*-\s*year\s*-\s*old`)
	nameIsRX     = regexp.MustCompile(`^\s*\p{Lu}[\p{L}'-]*(?:\s+\p{Lu}[\p{L}'-]*)?\s+is\s+`)
	nameCommaRX  = regexp.MustCompile(`^\s*\p{Lu}[\p{L}'-]*(?:\s+\p{Lu}[\p{L}'-]*)?\s*[,:]\s*`)
	multiSpaceRX = regexp.MustCompile(`\s{2,}`)
)

// Inputs carries everything Compose needs for one section image.
type Inputs struct {
	Appearance    string
	Scene         string
	Location      string
	Face          string
	Intensity     int
	SectionIndex  int
	TotalSections int
}

// Compose builds the final prompt for one narrative unit. Assembly order is
// fixed; the result is hard-truncated once, to the image client's limit, so
// composing the same inputs twice is byte-identical.
func Compose(in Inputs) string {
	age := ExtractAge(in.Appearance)

	parts := make([]string, 0, 10)
	parts = append(parts, styleTag(age), weight("solo", 1.3), "one woman")
	if in.Face != "" {
		parts = append(parts, weight(in.Face, 1.5))
	}
	parts = append(parts, weight(fmt.Sprintf("%d years old", age), 1.4), ageBandTag(age))
	if traits := StripNamePrefix(in.Appearance); traits != "" {
		parts = append(parts, traits)
	}
	if in.Scene != "" {
		parts = append(parts, weight(in.Scene, 1.2))
	}
	stage := Stage(in.SectionIndex, in.TotalSections, in.Intensity)
	parts = append(parts, weight(StagePhrase(stage), 1.1))
	if in.Location != "" {
		parts = append(parts, weight("in "+in.Location, 0.8))
	}

	return utils.Truncate(strings.Join(parts, ", "), imagegen.MaxPromptLength)
}

// ExtractAge finds the subject's stated age in an appearance description,
// defaulting to 30 when absent.
func ExtractAge(appearance string) int {
	m := ageRX.FindStringSubmatch(appearance)
	if m == nil {
		return defaultAge
	}
	age, err := strconv.Atoi(m[1])
	if err != nil || age <= 0 {
		return defaultAge
	}
	return age
}

// StripNamePrefix removes a leading "Name is" or "Name," from an appearance
// description, leaving the trait fragment.
func StripNamePrefix(appearance string) string {
	s := nameIsRX.ReplaceAllString(appearance, "")
	if s == appearance {
		s = nameCommaRX.ReplaceAllString(appearance, "")
	}
	return strings.TrimSpace(multiSpaceRX.ReplaceAllString(s, " "))
}

func weight(text string, w float64) string {
	return fmt.Sprintf("(%s:%.1f)", strings.TrimSpace(text), w)
}

// styleTag varies the photorealism tag by age band; older subjects get the
// skin-texture reinforcement so rendering matches the stated age.
func styleTag(age int) string {
	base := weight("photorealistic", 1.4) + ", " + weight("RAW photo", 1.2)
	if age >= 45 {
		return base + ", " + weight("natural aged skin texture", 1.2)
	}
	return base
}

// ageBandTag is always present so depicted age tracks the stated age.
func ageBandTag(age int) string {
	switch {
	case age >= 60:
		return weight("elderly woman, wrinkled skin, gray hair", 1.3)
	case age >= 45:
		return weight("mature woman, middle-aged, visible aging", 1.3)
	case age >= 35:
		return weight("adult woman", 1.1)
	default:
		return weight("young adult woman", 1.1)
	}
}
