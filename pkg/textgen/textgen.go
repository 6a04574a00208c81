// Package textgen wraps an inference backend with the retry and
// response-recovery behavior the generation pipeline depends on.
package textgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"

	"crimson/pkg/inference"
	"crimson/pkg/retry"
	"crimson/pkg/utils"
)

// ErrUpstream marks a non-retryable text backend failure, or one that
// survived the retry budget.
var ErrUpstream = errors.New("text backend error")

type Options struct {
	Temperature float64
	MaxTokens   int64
	Format      *openai.ChatCompletionNewParamsResponseFormatUnion
}

type Client struct {
	inf    inference.Inferencer
	policy retry.Policy
}

// New builds a client around inf. The policy decides how service-unavailable
// responses are retried; interactive callers should pass retry.Interactive.
func New(inf inference.Inferencer, policy retry.Policy) *Client {
	return &Client{inf: inf, policy: policy}
}

// CompleteText returns the raw completion content for one prompt pair.
func (c *Client) CompleteText(ctx context.Context, system, user string, opts Options) (string, error) {
	params := c.params(opts)

	var out string
	err := c.policy.Do(ctx, func() error {
		var err error
		out, err = c.inf.Infer(ctx, params, system, user)
		return err
	}, Retryable)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return out, nil
}

// CompleteJSON completes a prompt pair and decodes the content into v.
// When the model returns malformed or truncated JSON, the expected fields
// are recovered one by one from the raw text instead of failing the call.
func (c *Client) CompleteJSON(ctx context.Context, system, user string, opts Options, v any) error {
	raw, err := c.CompleteText(ctx, system, user, opts)
	if err != nil {
		return err
	}

	cleaned := utils.CleanJSON(raw)
	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	n, err := RecoverFields(cleaned, v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: unparseable response: %s", ErrUpstream, utils.LimitStr(cleaned, 200))
	}
	return nil
}

func (c *Client) params(opts Options) *openai.ChatCompletionNewParams {
	params := new(openai.ChatCompletionNewParams)
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if opts.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(opts.MaxTokens)
	}
	if opts.Format != nil {
		params.ResponseFormat = *opts.Format
	}
	return params
}

// Retryable reports whether err is a transient backend condition worth
// another attempt.
func Retryable(err error) bool {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case 429, 500, 502, 503, 504:
			return true
		}
	}
	return false
}
