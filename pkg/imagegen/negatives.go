package imagegen

import "strings"

// baseNegative is attached to every request. The age-exclusion terms are
// never removed.
const baseNegative = "lowres, bad anatomy, bad hands, extra fingers, missing fingers, " +
	"extra limbs, deformed, mutated, blurry, watermark, text, signature, " +
	"jpeg artifacts, cropped, out of frame, child, teenager, underage, minor"

// matureNegative suppresses youthful rendering for subjects at or above
// matureAgeThreshold so depicted age matches the stated age.
const matureNegative = "youthful face, teenage appearance, smooth baby skin, " +
	"young woman, girl, de-aged"

// NegativePrompt returns the negative prompt for a subject of the given
// stated age.
func NegativePrompt(age int) string {
	if age >= matureAgeThreshold {
		return strings.Join([]string{baseNegative, matureNegative}, ", ")
	}
	return baseNegative
}
