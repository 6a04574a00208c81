package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"crimson/pkg/retry"
	"crimson/pkg/utils"
)

// txt2imgRequest is the SD-WebUI txt2img payload.
type txt2imgRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	Steps          int     `json:"steps"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	CFGScale       float64 `json:"cfg_scale,omitempty"`
	BatchSize      int     `json:"batch_size,omitempty"`
}

type txt2imgResponse struct {
	Images []string `json:"images"`
	Info   string   `json:"info"`
	Error  string   `json:"error,omitempty"`
}

// SDWebUI generates images through a Stable Diffusion WebUI endpoint.
type SDWebUI struct {
	baseURL string
	http    *http.Client
	policy  retry.Policy
	steps   int
	cfg     float64
}

func NewSDWebUI(baseURL string, policy retry.Policy) *SDWebUI {
	return &SDWebUI{
		baseURL: baseURL,
		// generation can take a while on a busy backend
		http:   &http.Client{Timeout: 5 * time.Minute},
		policy: policy,
		steps:  28,
		cfg:    5.0,
	}
}

// Generate produces one image. The prompt is truncated to MaxPromptLength
// at this boundary; the negative prompt is derived from the subject age.
// Failed or implausibly small responses are retried per the policy.
func (c *SDWebUI) Generate(ctx context.Context, req *Request) ([]byte, error) {
	payload := txt2imgRequest{
		Prompt:         utils.Truncate(req.Prompt, MaxPromptLength),
		NegativePrompt: NegativePrompt(req.SubjectAge),
		Steps:          c.steps,
		Width:          req.Width,
		Height:         req.Height,
		CFGScale:       c.cfg,
		BatchSize:      1,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var data []byte
	err = c.policy.Do(ctx, func() error {
		var attemptErr error
		data, attemptErr = c.generateOnce(ctx, body)
		return attemptErr
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageGeneration, err)
	}
	return data, nil
}

func (c *SDWebUI) generateOnce(ctx context.Context, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sdapi/v1/txt2img", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, utils.LimitStr(string(respBody), 200))
	}

	var parsed txt2imgResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("backend error: %s", parsed.Error)
	}
	if len(parsed.Images) == 0 {
		return nil, fmt.Errorf("no images in response")
	}

	data, err := base64.StdEncoding.DecodeString(parsed.Images[0])
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	if len(data) < minPayloadBytes {
		return nil, fmt.Errorf("payload implausibly small (%d bytes)", len(data))
	}
	return data, nil
}
