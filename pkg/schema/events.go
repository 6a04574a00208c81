package schema

// Progress event variants streamed to the client during a generation run.
// At most one Result or Error terminates a stream.

const (
	EventStatus = "status"
	EventResult = "result"
	EventError  = "error"
)

// Pipeline step names carried in Status events.
const (
	StepStoryline     = "storyline"
	StepProse         = "prose"
	StepExtraction    = "extraction"
	StepHeroImage     = "hero_image"
	StepPortraitImage = "portrait_image"
	StepSectionImage  = "section_image"
	StepDone          = "done"
)

type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

type Status struct {
	Step     string    `json:"step"`
	Message  string    `json:"message"`
	Detail   string    `json:"detail,omitempty"`
	Progress *Progress `json:"progress,omitempty"`
}

type Result struct {
	Document *Document `json:"document"`
	Assets   []Asset   `json:"assets"`
}

type Error struct {
	Message string `json:"message"`
}
