package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrAIAPIKeyMissing 表示未提供必需的 Gemini API Key。
var ErrAIAPIKeyMissing = errors.New("gemini api key is required")

// ErrAIEmptyResponse 表示模型未返回可用内容。
var ErrAIEmptyResponse = errors.New("gemini response contained no text")

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

type geminiGenerateRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// geminiClient is a minimal generateContent client. One blocking call per
// request, no retries.
type geminiClient struct {
	apiKey  string
	http    httpDoer
	baseURL string
	model   string
}

func newGeminiClient(apiKey string) *geminiClient {
	return &geminiClient{
		apiKey:  strings.TrimSpace(apiKey),
		http:    &http.Client{Timeout: 120 * time.Second},
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		model:   "gemini-pro",
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (c *geminiClient) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: 120 * time.Second}
		return
	}
	c.http = client
}

// SetBaseURL 覆盖默认的 Gemini API 地址。
func (c *geminiClient) SetBaseURL(base string) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return
	}
	c.baseURL = base
}

// SetModel 指定所使用的模型名称。
func (c *geminiClient) SetModel(model string) {
	model = strings.TrimSpace(model)
	if model == "" {
		return
	}
	c.model = model
}

func (c *geminiClient) generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	if c.apiKey == "" {
		return "", ErrAIAPIKeyMissing
	}

	client := c.http
	if client == nil {
		client = http.DefaultClient
	}

	payload := geminiGenerateRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}
	if maxTokens > 0 || temperature > 0 {
		payload.GenerationConfig = &geminiGenerationConfig{
			MaxOutputTokens: maxTokens,
			Temperature:     temperature,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}

	var generated geminiGenerateResponse
	if err := json.Unmarshal(respBody, &generated); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		errMsg := strings.TrimSpace(generated.Error.Message)
		if errMsg == "" {
			errMsg = resp.Status
		}
		return "", fmt.Errorf("gemini api error: %s", errMsg)
	}

	if len(generated.Candidates) == 0 {
		return "", ErrAIEmptyResponse
	}

	var builder strings.Builder
	for _, part := range generated.Candidates[0].Content.Parts {
		builder.WriteString(part.Text)
	}

	content := strings.TrimSpace(builder.String())
	if content == "" {
		return "", ErrAIEmptyResponse
	}
	return content, nil
}
