package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/newsdesk/internal/db"
)

// ApprovedArticle is the denormalized copy of a draft persisted at approval
// time. It reuses the draft's id but lives in the flat-file store with its
// own lifecycle; deleting either side never touches the other.
type ApprovedArticle struct {
	ID           uint    `json:"id"`
	Title        string  `json:"title"`
	OriginalText string  `json:"original_text"`
	AIText       *string `json:"ai_text"`
	Source       string  `json:"source"`
	Category     string  `json:"category"`
	URL          string  `json:"url"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
	ApprovedAt   string  `json:"approved_at"`
}

// ApprovedStatistics aggregates the approved collection.
type ApprovedStatistics struct {
	TotalArticles  int      `json:"total_articles"`
	Sources        []string `json:"sources"`
	Categories     []string `json:"categories"`
	LatestApproval *string  `json:"latest_approval"`
}

// ApprovedStore persists approved articles as a single pretty-printed JSON
// array. Every mutation is a full load-mutate-save of the file, guarded by a
// single writer lock so concurrent approvals cannot lose updates.
type ApprovedStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewApprovedStore opens the store at path, creating the parent directory
// and an empty array file when absent.
func NewApprovedStore(path string) (*ApprovedStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "data/approved_articles.json"
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	store := &ApprovedStore{path: path, now: time.Now}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := store.save(nil); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// SetNowFunc overrides the approval clock, mainly for tests.
func (s *ApprovedStore) SetNowFunc(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// Append stamps the draft copy with the approval time, forces the status to
// approved and rewrites the whole file. Duplicate ids are permitted; the
// store keeps a plain ordered sequence with no uniqueness check.
func (s *ApprovedStore) Append(draft db.DraftArticle) (ApprovedArticle, error) {
	entry := ApprovedArticle{
		ID:           draft.ID,
		Title:        draft.Title,
		OriginalText: draft.OriginalText,
		AIText:       draft.AIText,
		Source:       draft.Source,
		Category:     draft.Category,
		URL:          draft.URL,
		Status:       db.StatusApproved,
		CreatedAt:    formatTimestamp(draft.CreatedAt),
		UpdatedAt:    formatTimestamp(draft.UpdatedAt),
		ApprovedAt:   s.now().UTC().Format(time.RFC3339),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	articles := s.load()
	articles = append(articles, entry)
	if err := s.save(articles); err != nil {
		return ApprovedArticle{}, err
	}
	return entry, nil
}

// LoadAll returns every approved article. A missing file or unparseable
// content yields an empty list; the parse failure is logged, not surfaced.
func (s *ApprovedStore) LoadAll() []ApprovedArticle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// GetByID scans for an article with the given id.
func (s *ApprovedStore) GetByID(id uint) (*ApprovedArticle, bool) {
	for _, article := range s.LoadAll() {
		if article.ID == id {
			found := article
			return &found, true
		}
	}
	return nil, false
}

// DeleteByID removes every entry matching id, rewriting the file only when
// something was actually removed. The bool reports whether a delete occurred.
func (s *ApprovedStore) DeleteByID(id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	articles := s.load()
	remaining := make([]ApprovedArticle, 0, len(articles))
	for _, article := range articles {
		if article.ID != id {
			remaining = append(remaining, article)
		}
	}

	if len(remaining) == len(articles) {
		return false, nil
	}
	if err := s.save(remaining); err != nil {
		return false, err
	}
	return true, nil
}

// Export serializes the approved collection. JSON and CSV are implemented;
// any other requested format falls back to JSON.
func (s *ApprovedStore) Export(format string) (string, error) {
	articles := s.LoadAll()

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return exportCSV(articles)
	default:
		data, err := marshalArticles(articles)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// Statistics computes aggregate counts over a full scan. Categories exclude
// empty values; the latest approval relies on ISO-8601 timestamps sorting
// lexicographically with time.
func (s *ApprovedStore) Statistics() ApprovedStatistics {
	articles := s.LoadAll()

	stats := ApprovedStatistics{
		Sources:    make([]string, 0),
		Categories: make([]string, 0),
	}

	sources := make(map[string]struct{})
	categories := make(map[string]struct{})
	latest := ""
	for _, article := range articles {
		source := article.Source
		if source == "" {
			source = "Unknown"
		}
		sources[source] = struct{}{}

		if article.Category != "" {
			categories[article.Category] = struct{}{}
		}
		if article.ApprovedAt > latest {
			latest = article.ApprovedAt
		}
	}

	for source := range sources {
		stats.Sources = append(stats.Sources, source)
	}
	for category := range categories {
		stats.Categories = append(stats.Categories, category)
	}
	sort.Strings(stats.Sources)
	sort.Strings(stats.Categories)

	stats.TotalArticles = len(articles)
	if latest != "" {
		stats.LatestApproval = &latest
	}
	return stats
}

func (s *ApprovedStore) load() []ApprovedArticle {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("approved store: failed to read %s: %v", s.path, err)
		}
		return []ApprovedArticle{}
	}

	var articles []ApprovedArticle
	if err := json.Unmarshal(raw, &articles); err != nil {
		log.Printf("approved store: failed to parse %s: %v", s.path, err)
		return []ApprovedArticle{}
	}
	if articles == nil {
		articles = []ApprovedArticle{}
	}
	return articles
}

func (s *ApprovedStore) save(articles []ApprovedArticle) error {
	if articles == nil {
		articles = []ApprovedArticle{}
	}
	data, err := marshalArticles(articles)
	if err != nil {
		return fmt.Errorf("failed to encode approved articles: %w", err)
	}
	return os.WriteFile(s.path, data, 0o644)
}

// marshalArticles pretty-prints without HTML escaping so non-ASCII and
// entity characters stay literal in the file.
func marshalArticles(articles []ApprovedArticle) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(articles); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func exportCSV(articles []ApprovedArticle) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"id", "title", "original_text", "ai_text", "source",
		"category", "url", "status", "created_at", "updated_at", "approved_at",
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, article := range articles {
		aiText := ""
		if article.AIText != nil {
			aiText = *article.AIText
		}
		record := []string{
			strconv.FormatUint(uint64(article.ID), 10),
			article.Title,
			article.OriginalText,
			aiText,
			article.Source,
			article.Category,
			article.URL,
			article.Status,
			article.CreatedAt,
			article.UpdatedAt,
			article.ApprovedAt,
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
