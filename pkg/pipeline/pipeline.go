// Package pipeline runs one generation request end to end: storyline,
// prose, directive extraction, then hero, portrait and per-section images,
// emitting progress events as it goes. Image stages tolerate per-unit
// failure; only storyline, prose and configuration failures abort a run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/segmentio/ksuid"

	"crimson/pkg/imagegen"
	"crimson/pkg/parse"
	"crimson/pkg/prompt"
	"crimson/pkg/schema"
	"crimson/pkg/textgen"
	"crimson/pkg/utils"
)

// ErrConfiguration marks a run that cannot start at all.
var ErrConfiguration = errors.New("missing required configuration")

// Image dimensions per role. Hero shots are landscape, everything with a
// subject is portrait.
const (
	heroWidth  = 1216
	heroHeight = 832

	portraitWidth  = 832
	portraitHeight = 1216
)

// Emitter receives the ordered progress events of one run. Exactly one
// Result or Error call terminates the stream.
type Emitter interface {
	Status(schema.Status) error
	Result(schema.Result) error
	Error(schema.Error) error
}

// DocumentStore is the persistence collaborator.
type DocumentStore interface {
	CreateDocument(ctx context.Context, doc *schema.Document) error
	UpsertAsset(ctx context.Context, asset *schema.Asset) error
}

// FileStore is the binary-payload collaborator. Keys are
// "{documentID}/{role}"; storing to an existing key overwrites it.
type FileStore interface {
	Store(key string, payload []byte) (string, error)
}

type Pipeline struct {
	Text   *textgen.Client
	Images imagegen.Client // nil disables all image stages
	Store  DocumentStore   // optional
	Files  FileStore       // optional

	// Rand picks a title among candidates; nil uses math/rand.
	Rand func(n int) int
}

// Run executes the full state machine for one request. External calls are
// strictly sequential; cancellation is checked between stages and the
// context is passed into every upstream call.
func (p *Pipeline) Run(ctx context.Context, req *schema.GenerateRequest, emit Emitter) error {
	if p.Text == nil {
		err := fmt.Errorf("%w: no text backend", ErrConfiguration)
		emit.Error(schema.Error{Message: err.Error()})
		return err
	}
	normalize(req)

	// Storyline
	emit.Status(schema.Status{Step: schema.StepStoryline, Message: "planning storyline"})
	storyline, title, err := p.storyline(ctx, req)
	if err != nil {
		emit.Error(schema.Error{Message: err.Error()})
		return err
	}
	emit.Status(schema.Status{Step: schema.StepStoryline, Message: "storyline ready", Detail: title})

	if err := p.cancelled(ctx, emit); err != nil {
		return err
	}

	// Prose
	emit.Status(schema.Status{Step: schema.StepProse, Message: "writing prose"})
	tier := lengthTiers[req.Length]
	prose, err := p.Text.CompleteText(ctx, proseSystemPrompt, proseUserPrompt(req, storyline, title), textgen.Options{
		Temperature: 0.85,
		MaxTokens:   proseTokenBudget(tier.words),
	})
	if err != nil {
		emit.Error(schema.Error{Message: err.Error()})
		return err
	}
	emit.Status(schema.Status{Step: schema.StepProse, Message: "prose ready",
		Detail: fmt.Sprintf("%d characters, %d tokens", len(prose), utils.CountTokens(prose))})

	// DirectiveExtraction
	parsed := parse.Parse(prose)
	if len(parsed.Sections) == 0 {
		err := fmt.Errorf("%w: no sections extracted from prose", textgen.ErrUpstream)
		emit.Error(schema.Error{Message: err.Error()})
		return err
	}
	emit.Status(schema.Status{Step: schema.StepExtraction, Message: "extracted sections", Detail: strconv.Itoa(len(parsed.Sections))})

	doc := &schema.Document{
		ID:             ksuid.New().String(),
		Title:          title,
		Sections:       parsed.Sections,
		SEOTitle:       parsed.SEOTitle,
		SEODescription: parsed.SEODescription,
		HeroPrompt:     parsed.HeroPrompt,
		Appearance:     storyline.Appearance,
		Face:           storyline.Face,
		Quote:          storyline.Quote,
		City:           storyline.City,
		Intensity:      req.Intensity,
		StoryType:      req.StoryType,
		CreatedAt:      time.Now().UTC(),
	}
	if p.Store != nil {
		if err := p.Store.CreateDocument(ctx, doc); err != nil {
			log.Error("persisting document failed", "id", doc.ID, "error", err)
		}
	}

	var assets []schema.Asset

	// HeroImage: skipped without a directive or a backend; non-fatal.
	if p.Images != nil && doc.HeroPrompt != "" {
		if err := p.cancelled(ctx, emit); err != nil {
			return err
		}
		emit.Status(schema.Status{Step: schema.StepHeroImage, Message: "generating hero image"})
		if asset, err := p.generateAsset(ctx, doc, schema.RoleHero); err != nil {
			emit.Status(schema.Status{Step: schema.StepHeroImage, Message: "hero image failed", Detail: err.Error()})
		} else {
			assets = append(assets, asset)
		}
	}

	// PortraitImage: skipped without a face description; non-fatal.
	if p.Images != nil && doc.Face != "" {
		if err := p.cancelled(ctx, emit); err != nil {
			return err
		}
		emit.Status(schema.Status{Step: schema.StepPortraitImage, Message: "generating portrait"})
		if asset, err := p.generateAsset(ctx, doc, schema.RolePortrait); err != nil {
			emit.Status(schema.Status{Step: schema.StepPortraitImage, Message: "portrait failed", Detail: err.Error()})
		} else {
			assets = append(assets, asset)
		}
	}

	// SectionImages: in section order, one unit's failure never stops the
	// next. Partial completion is a success mode.
	if p.Images != nil {
		total := len(doc.Sections)
		for i, section := range doc.Sections {
			if err := p.cancelled(ctx, emit); err != nil {
				return err
			}
			progress := &schema.Progress{Current: i + 1, Total: total}
			if section.Directive == "" {
				emit.Status(schema.Status{Step: schema.StepSectionImage, Message: "section has no image directive", Progress: progress})
				continue
			}
			emit.Status(schema.Status{Step: schema.StepSectionImage, Message: "generating section image", Progress: progress})
			if asset, err := p.generateAsset(ctx, doc, strconv.Itoa(i)); err != nil {
				emit.Status(schema.Status{Step: schema.StepSectionImage, Message: "section image failed", Detail: err.Error(), Progress: progress})
			} else {
				assets = append(assets, asset)
			}
		}
	}

	emit.Status(schema.Status{Step: schema.StepDone, Message: "generation complete"})
	emit.Result(schema.Result{Document: doc, Assets: assets})
	return nil
}

func (p *Pipeline) storyline(ctx context.Context, req *schema.GenerateRequest) (*schema.Storyline, string, error) {
	format := schema.StorylineResponseFormat()
	var storyline schema.Storyline
	err := p.Text.CompleteJSON(ctx, storylineSystemPrompt, storylineUserPrompt(req), textgen.Options{
		Temperature: 0.9,
		MaxTokens:   2048,
		Format:      &format,
	}, &storyline)
	if err != nil {
		return nil, "", err
	}

	// Caller-supplied fields win over generated ones.
	if req.Appearance != "" {
		storyline.Appearance = req.Appearance
	}
	if req.City != "" {
		storyline.City = req.City
	}

	title := req.Title
	if title == "" && len(storyline.Titles) > 0 {
		pick := p.Rand
		if pick == nil {
			pick = rand.IntN
		}
		// uniform choice among candidates, to avoid repetition across runs
		title = storyline.Titles[pick(len(storyline.Titles))]
	}
	if title == "" {
		title = "Untitled"
	}
	return &storyline, title, nil
}

// generateAsset produces, stores and records one image. The returned asset
// carries the exact prompt sent to the backend.
func (p *Pipeline) generateAsset(ctx context.Context, doc *schema.Document, role string) (schema.Asset, error) {
	req, err := ImageRequest(doc, role)
	if err != nil {
		return schema.Asset{}, err
	}

	asset := schema.Asset{DocumentID: doc.ID, Role: role, Prompt: req.Prompt}
	data, err := p.Images.Generate(ctx, req)
	if err != nil {
		asset.Error = err.Error()
		p.record(ctx, &asset)
		return asset, err
	}

	if p.Files != nil {
		path, err := p.Files.Store(doc.ID+"/"+role, data)
		if err != nil {
			asset.Error = err.Error()
			p.record(ctx, &asset)
			return asset, fmt.Errorf("storing asset: %w", err)
		}
		asset.Path = path
	}
	p.record(ctx, &asset)
	return asset, nil
}

func (p *Pipeline) record(ctx context.Context, asset *schema.Asset) {
	if p.Store == nil {
		return
	}
	if err := p.Store.UpsertAsset(ctx, asset); err != nil {
		log.Warn("recording asset failed", "document", asset.DocumentID, "role", asset.Role, "error", err)
	}
}

func (p *Pipeline) cancelled(ctx context.Context, emit Emitter) error {
	if err := ctx.Err(); err != nil {
		emit.Error(schema.Error{Message: err.Error()})
		return err
	}
	return nil
}

// ImageRequest recomputes the backend request for one role of a stored
// document. Regeneration goes through the same composition as the original
// run, so identical document fields yield an identical prompt and stage.
func ImageRequest(doc *schema.Document, role string) (*imagegen.Request, error) {
	switch role {
	case schema.RoleHero:
		if doc.HeroPrompt == "" {
			return nil, fmt.Errorf("document %s has no hero directive", doc.ID)
		}
		return &imagegen.Request{
			Prompt: prompt.Hero(doc.HeroPrompt, doc.City),
			Width:  heroWidth,
			Height: heroHeight,
		}, nil
	case schema.RolePortrait:
		if doc.Face == "" {
			return nil, fmt.Errorf("document %s has no face description", doc.ID)
		}
		return &imagegen.Request{
			Prompt:     prompt.Portrait(doc.Face, doc.Appearance),
			Width:      portraitWidth,
			Height:     portraitHeight,
			SubjectAge: prompt.ExtractAge(doc.Appearance),
		}, nil
	default:
		idx, err := strconv.Atoi(role)
		if err != nil || idx < 0 || idx >= len(doc.Sections) {
			return nil, fmt.Errorf("document %s has no asset role %q", doc.ID, role)
		}
		section := doc.Sections[idx]
		if section.Directive == "" {
			return nil, fmt.Errorf("section %d of document %s has no image directive", idx, doc.ID)
		}
		return &imagegen.Request{
			Prompt: prompt.Compose(prompt.Inputs{
				Appearance:    doc.Appearance,
				Scene:         section.Directive,
				Location:      doc.City,
				Face:          doc.Face,
				Intensity:     doc.Intensity,
				SectionIndex:  idx,
				TotalSections: len(doc.Sections),
			}),
			Width:      portraitWidth,
			Height:     portraitHeight,
			SubjectAge: prompt.ExtractAge(doc.Appearance),
		}, nil
	}
}

func normalize(req *schema.GenerateRequest) {
	if req.Intensity < 1 {
		req.Intensity = 5
	}
	if req.Intensity > 10 {
		req.Intensity = 10
	}
	if _, ok := lengthTiers[req.Length]; !ok {
		req.Length = schema.LengthMedium
	}
	switch req.StoryType {
	case schema.StoryRomance, schema.StoryAffair, schema.StoryEncounter:
	default:
		req.StoryType = schema.StoryRomance
	}
}
