package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

const (
	maxContentRuneCount = 1000
	validateTimeout     = 10 * time.Second

	fallbackTitle   = "No Title"
	fallbackContent = "No content available"
	fallbackSource  = "Unknown Source"
)

// RawArticle is a normalized feed entry, shaped like a draft before it is
// persisted.
type RawArticle struct {
	Title        string
	OriginalText string
	Source       string
	URL          string
	Category     string
	Published    string
}

// FeedService 负责抓取 RSS 源并归一化为草稿形状的记录。
type FeedService struct {
	feedURLs []string
	parser   *gofeed.Parser
	client   *http.Client
	policy   *bluemonday.Policy
}

// NewFeedService creates a FeedService over the configured feed URLs.
func NewFeedService(feedURLs []string) *FeedService {
	client := &http.Client{Timeout: 30 * time.Second}
	parser := gofeed.NewParser()
	parser.Client = client

	return &FeedService{
		feedURLs: feedURLs,
		parser:   parser,
		client:   client,
		policy:   bluemonday.StrictPolicy(),
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (s *FeedService) SetHTTPClient(client *http.Client) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	s.client = client
	s.parser.Client = client
}

// FetchArticles pulls up to limit entries across all feeds. Each feed gets a
// floor(limit/feedCount) allocation and is fetched independently; a failing
// feed is logged and skipped without aborting the others. The concatenated
// result is truncated to limit, so later feeds may be under-represented when
// earlier ones under-deliver.
func (s *FeedService) FetchArticles(ctx context.Context, limit int) []RawArticle {
	if limit <= 0 || len(s.feedURLs) == 0 {
		return []RawArticle{}
	}

	perFeed := limit / len(s.feedURLs)
	articles := make([]RawArticle, 0, limit)
	for _, feedURL := range s.feedURLs {
		batch, err := s.fetchFromFeed(ctx, feedURL, perFeed)
		if err != nil {
			log.Printf("feed fetch: %s: %v", feedURL, err)
			continue
		}
		articles = append(articles, batch...)
	}

	if len(articles) > limit {
		articles = articles[:limit]
	}
	return articles
}

func (s *FeedService) fetchFromFeed(ctx context.Context, feedURL string, limit int) ([]RawArticle, error) {
	feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = fallbackSource
	}

	count := len(feed.Items)
	if count > limit {
		count = limit
	}

	articles := make([]RawArticle, 0, count)
	for _, item := range feed.Items[:count] {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = fallbackTitle
		}

		articles = append(articles, RawArticle{
			Title:        title,
			OriginalText: s.extractContent(item),
			Source:       source,
			URL:          item.Link,
			Category:     firstCategory(item),
			Published:    item.Published,
		})
	}
	return articles, nil
}

// extractContent picks the best available body field, strips markup and
// truncates to the draft content cap.
func (s *FeedService) extractContent(item *gofeed.Item) string {
	content := item.Content
	if strings.TrimSpace(content) == "" {
		content = item.Description
	}

	content = html.UnescapeString(s.policy.Sanitize(content))
	content = strings.TrimSpace(content)
	if content == "" {
		return fallbackContent
	}
	return truncateRunes(content, maxContentRuneCount)
}

func firstCategory(item *gofeed.Item) string {
	if len(item.Categories) == 0 {
		return ""
	}
	return strings.TrimSpace(item.Categories[0])
}

// ValidateFeedURL reports whether the URL serves a parseable feed with at
// least one entry. Any fetch or parse failure yields false.
func (s *FeedService) ValidateFeedURL(ctx context.Context, feedURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return false
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return false
	}
	return len(feed.Items) > 0
}
