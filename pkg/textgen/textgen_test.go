package textgen

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crimson/pkg/retry"
)

// scriptedInferencer returns canned responses (or errors) in order.
type scriptedInferencer struct {
	responses []any // string or error
	calls     int
}

func (s *scriptedInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	if s.calls >= len(s.responses) {
		return "", errors.New("no more scripted responses")
	}
	r := s.responses[s.calls]
	s.calls++
	if err, ok := r.(error); ok {
		return "", err
	}
	return r.(string), nil
}

func TestCompleteTextRetriesUnavailable(t *testing.T) {
	inf := &scriptedInferencer{responses: []any{
		fmt.Errorf("wrapped: %w", &openai.Error{StatusCode: 503}),
		"recovered output",
	}}
	c := New(inf, retry.Policy{Attempts: 3})

	out, err := c.CompleteText(context.Background(), "sys", "user", Options{})
	require.NoError(t, err)
	assert.Equal(t, "recovered output", out)
	assert.Equal(t, 2, inf.calls)
}

func TestCompleteTextExhaustsRetries(t *testing.T) {
	unavailable := fmt.Errorf("wrapped: %w", &openai.Error{StatusCode: 503})
	inf := &scriptedInferencer{responses: []any{unavailable, unavailable, unavailable}}
	c := New(inf, retry.Policy{Attempts: 3})

	_, err := c.CompleteText(context.Background(), "sys", "user", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, 3, inf.calls)
}

func TestCompleteTextNonRetryableFailsFast(t *testing.T) {
	inf := &scriptedInferencer{responses: []any{
		fmt.Errorf("wrapped: %w", &openai.Error{StatusCode: 400}),
		"never reached",
	}}
	c := New(inf, retry.Policy{Attempts: 3})

	_, err := c.CompleteText(context.Background(), "sys", "user", Options{})
	require.Error(t, err)
	assert.Equal(t, 1, inf.calls)
}

func TestCompleteJSONParsesCleanResponse(t *testing.T) {
	inf := &scriptedInferencer{responses: []any{"```json\n{\"title\": \"Foo\"}\n```"}}
	c := New(inf, retry.Policy{Attempts: 1})

	var out struct {
		Title string `json:"title"`
	}
	err := c.CompleteJSON(context.Background(), "sys", "user", Options{}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Foo", out.Title)
}

func TestCompleteJSONRecoversTruncated(t *testing.T) {
	inf := &scriptedInferencer{responses: []any{`{"title": "Foo`}}
	c := New(inf, retry.Policy{Attempts: 1})

	var out struct {
		Title string `json:"title"`
	}
	err := c.CompleteJSON(context.Background(), "sys", "user", Options{}, &out)
	require.NoError(t, err, "truncated JSON must not fail the call")
	assert.Equal(t, "Foo", out.Title)
}

func TestCompleteJSONUnusableResponse(t *testing.T) {
	inf := &scriptedInferencer{responses: []any{"nothing json-like at all"}}
	c := New(inf, retry.Policy{Attempts: 1})

	var out struct {
		Title string `json:"title"`
	}
	err := c.CompleteJSON(context.Background(), "sys", "user", Options{}, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(&openai.Error{StatusCode: 429}))
	assert.True(t, Retryable(&openai.Error{StatusCode: 503}))
	assert.False(t, Retryable(&openai.Error{StatusCode: 401}))
	assert.False(t, Retryable(errors.New("plain error")))
}
