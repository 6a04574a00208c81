package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crimson/pkg/imagegen"
)

func TestExtractAge(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"Maria is a 38-year-old teacher", 38},
		{"Helena is a 62-year-old widow with silver hair", 62},
		{"a 45 - year - old woman", 45},
		{"no age here at all", 30},
		{"", 30},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractAge(tt.in), tt.in)
	}
}

func TestStripNamePrefix(t *testing.T) {
	assert.Equal(t, "a 38-year-old teacher with auburn hair",
		StripNamePrefix("Maria is a 38-year-old teacher with auburn hair"))
	assert.Equal(t, "a 51-year-old sommelier",
		StripNamePrefix("Ana Clara is a 51-year-old sommelier"))
	assert.Equal(t, "a 38-year-old teacher",
		StripNamePrefix("Maria, a 38-year-old teacher"))
	assert.Equal(t, "curvy, dark eyes", StripNamePrefix("curvy, dark eyes"))
}

func TestComposeIdempotent(t *testing.T) {
	in := Inputs{
		Appearance:    "Maria is a 48-year-old teacher with auburn hair",
		Scene:         "standing at a rain-streaked window",
		Location:      "Lisbon",
		Face:          "oval face, green eyes",
		Intensity:     8,
		SectionIndex:  3,
		TotalSections: 6,
	}
	assert.Equal(t, Compose(in), Compose(in))
}

func TestComposeLengthCapped(t *testing.T) {
	long := strings.Repeat("very detailed description, ", 200)
	in := Inputs{
		Appearance:    "Maria is a 38-year-old " + long,
		Scene:         long,
		Location:      long,
		Face:          long,
		Intensity:     8,
		SectionIndex:  2,
		TotalSections: 6,
	}
	out := Compose(in)
	assert.LessOrEqual(t, len(out), imagegen.MaxPromptLength)
	// re-truncating changes nothing
	assert.Equal(t, out, Compose(in))
}

func TestComposeOrdering(t *testing.T) {
	in := Inputs{
		Appearance:    "Maria is a 48-year-old teacher",
		Scene:         "reading in a cafe",
		Location:      "Porto",
		Face:          "oval face, green eyes",
		Intensity:     8,
		SectionIndex:  0,
		TotalSections: 6,
	}
	out := Compose(in)

	face := strings.Index(out, "oval face")
	age := strings.Index(out, "48 years old")
	scene := strings.Index(out, "reading in a cafe")
	stage := strings.Index(out, StagePhrase(0))
	location := strings.Index(out, "in Porto")

	require.NotEqual(t, -1, face)
	require.NotEqual(t, -1, age)
	require.NotEqual(t, -1, scene)
	require.NotEqual(t, -1, stage)
	require.NotEqual(t, -1, location)

	assert.Less(t, face, age, "face before age")
	assert.Less(t, age, scene, "age before scene")
	assert.Less(t, scene, stage, "scene before stage")
	assert.Less(t, stage, location, "stage before location")
}

func TestComposeAgeBandAlwaysPresent(t *testing.T) {
	young := Compose(Inputs{Appearance: "Lia is a 26-year-old barista", Scene: "x", Intensity: 5, TotalSections: 4})
	assert.Contains(t, young, "young adult woman")

	mature := Compose(Inputs{Appearance: "Helena is a 52-year-old judge", Scene: "x", Intensity: 5, TotalSections: 4})
	assert.Contains(t, mature, "mature woman")
	assert.Contains(t, mature, "natural aged skin texture")

	elderly := Compose(Inputs{Appearance: "Ruth is a 67-year-old painter", Scene: "x", Intensity: 5, TotalSections: 4})
	assert.Contains(t, elderly, "elderly woman")
}

func TestHeroExcludesPeople(t *testing.T) {
	out := Hero("rain-slicked boulevard at dusk", "Lisbon")
	assert.Contains(t, out, "no people")
	assert.Contains(t, out, "rain-slicked boulevard at dusk")
	assert.Contains(t, out, "in Lisbon")
	assert.LessOrEqual(t, len(out), imagegen.MaxPromptLength)
}

func TestPortraitNeutral(t *testing.T) {
	out := Portrait("oval face, green eyes", "Helena is a 52-year-old judge")
	assert.Contains(t, out, "passport photo")
	assert.Contains(t, out, "neutral expression")
	assert.Contains(t, out, "oval face, green eyes")
	assert.Contains(t, out, "mature woman")
	assert.Equal(t, out, Portrait("oval face, green eyes", "Helena is a 52-year-old judge"))
}
