package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Compile-time check that AnthropicClient implements Client.
var _ Client = (*AnthropicClient)(nil)

const (
	defaultMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion   = "2023-06-01"
	defaultTimeout     = 25 * time.Second

	systemPrompt = `You are a procurement analyst scoring a vendor proposal against a market request.
Return ONLY a valid JSON object (no markdown, no code fences) with this exact structure:
{
  "costScore": <number 0-100>,
  "deliveryScore": <number 0-100>,
  "complianceScore": <number 0-100>,
  "overallScore": <number 0-100>,
  "confidence": <number 0.0-1.0>,
  "insights": ["<short finding>", ...]
}

Rules:
- costScore: value for money against the stated budget.
- deliveryScore: feasibility of the delivery date against the deadline.
- complianceScore: coverage of the stated requirements and documents.
- overallScore: weighted judgement across the three dimensions.
- Do not include text outside the JSON object.`
)

// AnthropicClient implements the oracle port against the Anthropic Messages
// REST API using net/http; no SDK required.
type AnthropicClient struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	return &AnthropicClient{
		apiKey: apiKey,
		model:  model,
		url:    defaultMessagesURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// NewAnthropicClientWithURL points the adapter at a non-default endpoint;
// used by tests.
func NewAnthropicClientWithURL(apiKey, model, url string) *AnthropicClient {
	c := NewAnthropicClient(apiKey, model)
	c.url = url
	return c
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// jsonBlockRe captures the first '{' through the last '}' so a JSON object
// survives being wrapped in prose or markdown.
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

func (c *AnthropicClient) EvaluateProposal(ctx context.Context, req *EvaluationRequest) (*EvaluationResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: api key not configured", ErrEvaluationFailed)
	}

	userContent, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrEvaluationFailed, err)
	}

	payload := anthropicRequest{
		Model:     c.model,
		MaxTokens: 1024,
		System:    systemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: string(userContent)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %v", ErrEvaluationFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrEvaluationFailed, err)
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: timeout or cancellation: %v", ErrEvaluationFailed, ctx.Err())
		}
		return nil, fmt.Errorf("%w: call failed: %v", ErrEvaluationFailed, err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrEvaluationFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp anthropicResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Error != nil {
			return nil, fmt.Errorf("%w: api error (%s): %s", ErrEvaluationFailed, errResp.Error.Type, errResp.Error.Message)
		}
		return nil, fmt.Errorf("%w: http %d", ErrEvaluationFailed, resp.StatusCode)
	}

	var anthResp anthropicResponse
	if err := json.Unmarshal(rawBody, &anthResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrEvaluationFailed, err)
	}

	if len(anthResp.Content) == 0 {
		return nil, fmt.Errorf("%w: empty completion", ErrEvaluationFailed)
	}

	cleanJSON := extractJSON(anthResp.Content[0].Text)
	if cleanJSON == "" {
		return nil, fmt.Errorf("%w: no JSON object in completion", ErrEvaluationFailed)
	}

	var result EvaluationResult
	if err := json.Unmarshal([]byte(cleanJSON), &result); err != nil {
		return nil, fmt.Errorf("%w: parse scores: %v", ErrEvaluationFailed, err)
	}

	normalize(&result)

	return &result, nil
}

func normalize(r *EvaluationResult) {
	r.CostScore = clampScore(r.CostScore)
	r.DeliveryScore = clampScore(r.DeliveryScore)
	r.ComplianceScore = clampScore(r.ComplianceScore)
	r.OverallScore = clampScore(r.OverallScore)
	if r.Confidence < 0 {
		r.Confidence = 0
	} else if r.Confidence > 1 {
		r.Confidence = 1
	}
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// extractJSON pulls the first well-formed JSON object out of free text,
// stripping markdown code fences first.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		if close := strings.LastIndex(after, "```"); close != -1 {
			after = after[:close]
		}
		text = strings.TrimSpace(after)
	}

	if strings.HasPrefix(text, "{") {
		return text
	}

	return strings.TrimSpace(jsonBlockRe.FindString(text))
}
