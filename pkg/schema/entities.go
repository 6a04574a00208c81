package schema

import "time"

// StoryType selects the overall framing of a generated story.
type StoryType string

const (
	StoryRomance   StoryType = "romance"
	StoryAffair    StoryType = "affair"
	StoryEncounter StoryType = "encounter"
)

// Length tiers map to target word counts in the prose prompt.
const (
	LengthShort  = "short"
	LengthMedium = "medium"
	LengthLong   = "long"
)

// GenerateRequest is the caller-facing input of one generation run.
// Title, Appearance and City override their generated counterparts when set.
type GenerateRequest struct {
	Title      string    `json:"title,omitempty"`
	Theme      string    `json:"theme,omitempty"`
	Style      string    `json:"style,omitempty"`
	Length     string    `json:"length,omitempty"`
	Appearance string    `json:"appearance,omitempty"`
	StoryType  StoryType `json:"story_type,omitempty"`
	Intensity  int       `json:"intensity"`
	Location   string    `json:"location,omitempty"`
	City       string    `json:"city,omitempty"`
	Explicit   bool      `json:"explicit,omitempty"`
}

// Storyline is the structured output of the first generation stage.
type Storyline struct {
	Titles     []string `json:"titles" jsonschema_description:"Several distinct title candidates for the story"`
	Appearance string   `json:"appearance" jsonschema_description:"Full physical description of the central character, starting with their name and age (e.g. 'Maria is a 38-year-old ...')"`
	Face       string   `json:"face" jsonschema_description:"Detailed description of the central character's face only, for identity-consistent imagery"`
	Quote      string   `json:"quote" jsonschema_description:"A short first-person quote from the central character"`
	City       string   `json:"city" jsonschema_description:"The city or town where the story takes place"`
	Outline    string   `json:"outline" jsonschema_description:"A paragraph-level outline of the story from beginning to end"`
}

// Section is one heading-delimited unit of prose. Directive is empty when
// the model emitted no image line for this section.
type Section struct {
	Heading   string `json:"heading"`
	Body      string `json:"body"`
	Directive string `json:"directive,omitempty"`
}

// Document is the parsed, immutable result of one generation run.
// Regeneration produces a new document; sections are never edited in place.
type Document struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Sections       []Section `json:"sections"`
	SEOTitle       string    `json:"seo_title,omitempty"`
	SEODescription string    `json:"seo_description,omitempty"`
	HeroPrompt     string    `json:"hero_prompt,omitempty"`
	Appearance     string    `json:"appearance,omitempty"`
	Face           string    `json:"face,omitempty"`
	Quote          string    `json:"quote,omitempty"`
	City           string    `json:"city,omitempty"`
	Intensity      int       `json:"intensity"`
	StoryType      StoryType `json:"story_type,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Asset roles for the two non-section images. Section assets use the
// decimal section index as their role.
const (
	RoleHero     = "hero"
	RolePortrait = "portrait"
)

// Asset is one generated image, addressed by document and role so any
// single asset can be regenerated without touching its siblings.
type Asset struct {
	DocumentID string `json:"document_id" db:"document_id"`
	Role       string `json:"role" db:"role"`
	Prompt     string `json:"prompt" db:"prompt"`
	Path       string `json:"path,omitempty" db:"path"`
	Error      string `json:"error,omitempty" db:"error"`
}
