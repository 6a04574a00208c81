// Package imagegen drives an SD-WebUI-compatible image backend.
package imagegen

import (
	"context"
	"errors"
)

const (
	// MaxPromptLength is the hard cap the backend accepts. Prompts are
	// composed generously upstream and trimmed once here.
	MaxPromptLength = 1490

	// minPayloadBytes rejects corrupt or empty images; a payload this
	// small is indistinguishable from a failure and is retried instead.
	minPayloadBytes = 1024

	// matureAgeThreshold switches on the anti-youthful negative terms.
	matureAgeThreshold = 45
)

// ErrImageGeneration marks an exhausted retry budget or an unusable payload.
var ErrImageGeneration = errors.New("image generation failed")

// Request describes one image. SubjectAge conditions the negative prompt;
// zero means no subject (hero scenes) and applies no age terms.
type Request struct {
	Prompt     string
	Width      int
	Height     int
	SubjectAge int
}

type Client interface {
	Generate(ctx context.Context, req *Request) ([]byte, error)
}
