package prompt

import "math"

// Escalation stages follow a slow-burn curve: a convex (power-2) ramp over
// the section's position keeps explicitness low for most of the sequence
// and lets it rise sharply only near the end. The requested intensity caps
// how far the ramp can go. Stage is a pure function; regenerating a single
// image recomputes the identical stage.

// stagePhrases are the five descriptive tiers appended to composed prompts.
var stagePhrases = [5]string{
	"fully clothed, elegant outfit, suggestive glance",
	"partially unbuttoned clothing, teasing, hint of lingerie",
	"wearing only lingerie, seductive pose",
	"topless, undressing, sensual pose",
	"fully nude, explicit sensual pose",
}

// Stage maps a section's position and the requested intensity to a tier in
// [0,4]. The first section of a multi-section story is always stage 0; the
// last always reaches the intensity ceiling.
func Stage(sectionIndex, totalSections, intensity int) int {
	p := 1.0
	if totalSections > 1 {
		p = float64(sectionIndex) / float64(totalSections-1)
	}
	curve := int(math.Floor(p * p * 4))
	if curve > 4 {
		curve = 4
	}
	if ceiling := IntensityCeiling(intensity); curve > ceiling {
		return ceiling
	}
	return curve
}

// IntensityCeiling converts the caller's 1-10 intensity knob into the
// maximum reachable stage.
func IntensityCeiling(intensity int) int {
	switch {
	case intensity >= 8:
		return 4
	case intensity >= 6:
		return 3
	case intensity >= 4:
		return 2
	default:
		return 1
	}
}

// StagePhrase returns the descriptive tier for a stage, clamped to range.
func StagePhrase(stage int) string {
	if stage < 0 {
		stage = 0
	}
	if stage > 4 {
		stage = 4
	}
	return stagePhrases[stage]
}
