package service

import (
	"context"
	"fmt"
	"strings"
)

const (
	defaultRewriteMaxTokens   = 1000
	defaultRewriteTemperature = 0.7
	defaultSummaryLength      = 150
)

// Preset instruction fragments for the rewrite prompt. Unrecognized values
// fall back to the professional tone and medium length.
var lengthInstructions = map[string]string{
	"short":  "Keep it concise, around 100-150 words",
	"medium": "Write a medium-length article, around 200-300 words",
	"long":   "Write a comprehensive article, around 400-500 words",
}

var toneInstructions = map[string]string{
	"professional": "Use a professional, journalistic tone",
	"casual":       "Use a casual, conversational tone",
	"formal":       "Use a formal, academic tone",
}

// RewriteOptions selects the target tone, length preset and language for a
// rewrite.
type RewriteOptions struct {
	Tone     string
	Length   string
	Language string
}

// ArticleRewriter 定义文章改写相关的能力，便于在业务层注入不同实现。
type ArticleRewriter interface {
	Rewrite(ctx context.Context, text string, opts RewriteOptions) (string, error)
	Summarize(ctx context.Context, text string, maxLength int) (string, error)
	ExtractKeyPoints(ctx context.Context, text string) ([]string, error)
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// AIService 基于 Gemini 接口实现文章改写、摘要、要点提取与翻译。
// Every operation is a single blocking call; failures are returned to the
// caller without retries.
type AIService struct {
	client *geminiClient
}

// NewAIService constructs an AIService for the given API key. An empty key
// is allowed; calls then fail with ErrAIAPIKeyMissing.
func NewAIService(apiKey string) *AIService {
	return &AIService{client: newGeminiClient(apiKey)}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (s *AIService) SetHTTPClient(client httpDoer) {
	s.client.SetHTTPClient(client)
}

// SetBaseURL 覆盖默认的 Gemini API 地址。
func (s *AIService) SetBaseURL(base string) {
	s.client.SetBaseURL(base)
}

// SetModel 指定所使用的模型名称。
func (s *AIService) SetModel(model string) {
	s.client.SetModel(model)
}

// Rewrite rewrites the article text per the requested tone, length and
// language. Each successful call replaces the previous rewrite wholesale.
func (s *AIService) Rewrite(ctx context.Context, text string, opts RewriteOptions) (string, error) {
	prompt := buildRewritePrompt(text, opts)
	logAIExchange("rewrite", "request", prompt)

	content, err := s.client.generate(ctx, prompt, defaultRewriteMaxTokens, defaultRewriteTemperature)
	if err != nil {
		return "", err
	}
	logAIExchange("rewrite", "response", content)
	return content, nil
}

// Summarize produces a summary, post-truncated to maxLength characters.
func (s *AIService) Summarize(ctx context.Context, text string, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = defaultSummaryLength
	}

	prompt := fmt.Sprintf(
		"Please provide a concise summary of this article in %d characters or less:\n\n%s\n\nSummary:",
		maxLength, text,
	)
	logAIExchange("summary", "request", prompt)

	content, err := s.client.generate(ctx, prompt, 0, 0)
	if err != nil {
		return "", err
	}
	logAIExchange("summary", "response", content)
	return truncateRunes(content, maxLength), nil
}

// ExtractKeyPoints asks for bullet points and returns one entry per
// non-blank response line.
func (s *AIService) ExtractKeyPoints(ctx context.Context, text string) ([]string, error) {
	prompt := fmt.Sprintf(
		"Extract 3-5 key points from this article as bullet points:\n\n%s\n\nKey Points:",
		text,
	)
	logAIExchange("keypoints", "request", prompt)

	content, err := s.client.generate(ctx, prompt, 0, 0)
	if err != nil {
		return nil, err
	}
	logAIExchange("keypoints", "response", content)

	lines := strings.Split(content, "\n")
	points := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		points = append(points, trimmed)
	}
	return points, nil
}

// Translate renders the article in the target language, keeping the
// journalistic register.
func (s *AIService) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	prompt := fmt.Sprintf(
		"Translate the following article to %s. Maintain the journalistic style and all factual information:\n\n%s\n\nTranslation:",
		targetLanguage, text,
	)
	logAIExchange("translate", "request", prompt)

	content, err := s.client.generate(ctx, prompt, 0, 0)
	if err != nil {
		return "", err
	}
	logAIExchange("translate", "response", content)
	return content, nil
}

func buildRewritePrompt(text string, opts RewriteOptions) string {
	tone, ok := toneInstructions[strings.ToLower(strings.TrimSpace(opts.Tone))]
	if !ok {
		tone = toneInstructions["professional"]
	}

	length, ok := lengthInstructions[strings.ToLower(strings.TrimSpace(opts.Length))]
	if !ok {
		length = lengthInstructions["medium"]
	}

	language := strings.TrimSpace(opts.Language)
	if language == "" {
		language = "en"
	}

	var builder strings.Builder
	builder.WriteString("Please rewrite the following news article with these specifications:\n\n")
	builder.WriteString("TONE: " + tone + "\n")
	builder.WriteString("LENGTH: " + length + "\n")
	builder.WriteString("LANGUAGE: " + language + "\n\n")
	builder.WriteString("Requirements:\n")
	builder.WriteString("- Maintain all factual information\n")
	builder.WriteString("- Make it engaging and well-structured\n")
	builder.WriteString("- Use clear, readable language\n")
	builder.WriteString("- Add appropriate transitions between paragraphs\n")
	builder.WriteString("- Ensure proper grammar and spelling\n\n")
	builder.WriteString("Original Article:\n")
	builder.WriteString(text)
	builder.WriteString("\n\nRewritten Article:")
	return builder.String()
}

func truncateRunes(input string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(input)
	if len(runes) <= limit {
		return input
	}
	return string(runes[:limit])
}
