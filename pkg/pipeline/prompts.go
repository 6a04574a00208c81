package pipeline

import (
	"fmt"
	"strings"

	"crimson/pkg/schema"
)

const storylineSystemPrompt = `You are a fiction planner for an adult short-story magazine. All characters are adults (21+).

Return a single JSON object with these keys and nothing else:
- "titles": 5 distinct, evocative title candidates.
- "appearance": a full physical description of the central character. Start with her name and age in the form "<Name> is a <N>-year-old ...". Include build, hair, skin, clothing style.
- "face": a detailed description of her face only (eyes, nose, lips, complexion, distinguishing marks).
- "quote": one short first-person sentence she might say, in quotes.
- "city": the city or town where the story takes place.
- "outline": a paragraph-level outline of the whole story, beginning to end.

Output only the JSON object. No commentary, no markdown fences.`

const proseSystemPrompt = `You are a fiction writer for an adult short-story magazine. All characters are adults (21+). Write vivid, sensory prose in the first person of the central character.

Format the story exactly like this:
- Split the story into sections. Each section starts with a markdown heading line: "## <section title>".
- Immediately after each heading, add one line "IMG_PROMPT: <short visual description of that scene, naming the setting and what the character is doing>".
- After the story, on separate lines, add:
  "HERO_PROMPT: <a people-free scene description that captures the story's atmosphere>"
  "SEO_TITLE: <a search-friendly page title>"
  "SEO_DESCRIPTION: <a one-sentence page description>"

Do not use any other markdown. Do not number the sections.`

// lengthTiers maps the requested tier to target word and section counts.
var lengthTiers = map[string]struct {
	words    int
	sections int
}{
	schema.LengthShort:  {800, 4},
	schema.LengthMedium: {1500, 6},
	schema.LengthLong:   {2500, 8},
}

// proseTokenBudget sizes the completion cap for a tier's word target, with
// headroom for the heading and directive markup lines. Roughly two tokens
// per word, never below a floor that fits the shortest tier comfortably.
func proseTokenBudget(words int) int64 {
	budget := int64(words) * 2
	if budget < 2048 {
		budget = 2048
	}
	return budget
}

func storylineUserPrompt(req *schema.GenerateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan a %s story.\n", req.StoryType)
	if req.Theme != "" {
		fmt.Fprintf(&b, "Theme: %s\n", req.Theme)
	}
	if req.Style != "" {
		fmt.Fprintf(&b, "Narrative style: %s\n", req.Style)
	}
	if req.Title != "" {
		fmt.Fprintf(&b, "The story is titled %q; make the titles list contain only this title.\n", req.Title)
	}
	if req.Appearance != "" {
		fmt.Fprintf(&b, "Use this central character exactly as described: %s\n", req.Appearance)
	}
	if req.Location != "" {
		fmt.Fprintf(&b, "Key location: %s\n", req.Location)
	}
	if req.City != "" {
		fmt.Fprintf(&b, "City: %s\n", req.City)
	}
	fmt.Fprintf(&b, "Intensity: %d out of 10.\n", req.Intensity)
	b.WriteString(contentPolicyLine(req))
	return b.String()
}

func proseUserPrompt(req *schema.GenerateRequest, storyline *schema.Storyline, title string) string {
	tier := lengthTiers[req.Length]

	var b strings.Builder
	fmt.Fprintf(&b, "Write the story %q in about %d words, split into %d sections.\n\n", title, tier.words, tier.sections)
	fmt.Fprintf(&b, "Central character: %s\n", storyline.Appearance)
	if storyline.City != "" {
		fmt.Fprintf(&b, "Setting: %s\n", storyline.City)
	}
	if req.Location != "" {
		fmt.Fprintf(&b, "Key location: %s\n", req.Location)
	}
	if req.Style != "" {
		fmt.Fprintf(&b, "Narrative style: %s\n", req.Style)
	}
	fmt.Fprintf(&b, "Intensity: %d out of 10; let it build gradually and peak only near the end.\n", req.Intensity)
	b.WriteString(contentPolicyLine(req))
	fmt.Fprintf(&b, "\nOutline to follow:\n%s\n", storyline.Outline)
	return b.String()
}

func contentPolicyLine(req *schema.GenerateRequest) string {
	if req.Explicit {
		return "Explicit adult content is permitted.\n"
	}
	return "Keep the story suggestive rather than graphic; no explicit sexual description.\n"
}
