package prompt

import (
	"strings"

	"crimson/pkg/imagegen"
	"crimson/pkg/utils"
)

// Hero builds the scene-setting image prompt for a whole story. Hero shots
// are atmospheric and explicitly people-free.
func Hero(directive, city string) string {
	parts := []string{
		weight("atmospheric landscape photograph", 1.4),
		weight("no people, no person, empty scene", 1.5),
	}
	if directive != "" {
		parts = append(parts, weight(directive, 1.3))
	}
	parts = append(parts, "golden hour light", "cinematic composition", "wide shot")
	if city != "" {
		parts = append(parts, weight("in "+city, 0.9))
	}
	return utils.Truncate(strings.Join(parts, ", "), imagegen.MaxPromptLength)
}

// Portrait builds a passport-photo-style headshot prompt for the central
// character, independent of any narrative unit.
func Portrait(face, appearance string) string {
	age := ExtractAge(appearance)

	parts := []string{
		styleTag(age),
		weight("passport photo", 1.3),
		weight("neutral expression", 1.2),
		"plain light background",
		"head and shoulders",
		"looking directly at camera",
	}
	if face != "" {
		parts = append(parts, weight(face, 1.5))
	}
	parts = append(parts, weight("one woman, "+StagePhrase(0), 1.0), ageBandTag(age))

	return utils.Truncate(strings.Join(parts, ", "), imagegen.MaxPromptLength)
}
