package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/newsdesk/internal/db"
	"github.com/newsdesk/internal/service"
)

func TestApproveArticleFlow(t *testing.T) {
	env := setupTestEnv(t, nil)
	draft := env.seedDraft(t, "Story")

	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/approve/%d", draft.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Message string          `json:"message"`
		Article db.DraftArticle `json:"article"`
	}
	decodeBody(t, w, &resp)
	if resp.Article.Status != db.StatusApproved {
		t.Fatalf("expected approved article in response, got %+v", resp.Article)
	}

	entry, found := env.approved.GetByID(draft.ID)
	if !found {
		t.Fatal("expected approved store entry")
	}
	if entry.Status != db.StatusApproved || entry.ApprovedAt == "" {
		t.Fatalf("expected stamped approval metadata, got %+v", entry)
	}

	stored, err := env.drafts.Get(draft.ID)
	if err != nil {
		t.Fatalf("failed to reload draft: %v", err)
	}
	if stored.Status != db.StatusApproved {
		t.Fatalf("expected flipped status, got %q", stored.Status)
	}
}

func TestApproveArticleTwice(t *testing.T) {
	env := setupTestEnv(t, nil)
	draft := env.seedDraft(t, "Story")

	if w := env.do(t, http.MethodPost, fmt.Sprintf("/api/approve/%d", draft.ID), nil); w.Code != http.StatusOK {
		t.Fatalf("first approve failed with %d", w.Code)
	}

	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/approve/%d", draft.ID), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on second approve, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "already approved") {
		t.Fatalf("unexpected error body %q", w.Body.String())
	}

	// The second call must not touch the approved store.
	if entries := env.approved.LoadAll(); len(entries) != 1 {
		t.Fatalf("expected a single store entry, got %d", len(entries))
	}
}

func TestApproveArticleNotFound(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/approve/99", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestApproveRevertsStatusWhenStoreFails(t *testing.T) {
	env := setupTestEnv(t, nil)
	draft := env.seedDraft(t, "Story")

	// Replace the store with one whose file can no longer be written.
	dir := filepath.Join(t.TempDir(), "gone")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create store dir: %v", err)
	}
	broken, err := service.NewApprovedStore(filepath.Join(dir, "approved.json"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("failed to break store dir: %v", err)
	}
	env.api.approved = broken

	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/approve/%d", draft.ID), nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when the store write fails, got %d", w.Code)
	}

	stored, err := env.drafts.Get(draft.ID)
	if err != nil {
		t.Fatalf("failed to reload draft: %v", err)
	}
	if stored.Status != db.StatusPending {
		t.Fatalf("expected compensated pending status, got %q", stored.Status)
	}
}

func TestGetApprovedSortedNewestFirst(t *testing.T) {
	env := setupTestEnv(t, nil)

	for _, title := range []string{"First", "Second", "Third"} {
		draft := env.seedDraft(t, title)
		if w := env.do(t, http.MethodPost, fmt.Sprintf("/api/approve/%d", draft.ID), nil); w.Code != http.StatusOK {
			t.Fatalf("approve %s failed with %d", title, w.Code)
		}
	}

	w := env.do(t, http.MethodGet, "/api/approved", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var listed []service.ApprovedArticle
	decodeBody(t, w, &listed)
	if len(listed) != 3 {
		t.Fatalf("expected 3 approved articles, got %d", len(listed))
	}
	for i := 1; i < len(listed); i++ {
		if listed[i-1].ApprovedAt < listed[i].ApprovedAt {
			t.Fatalf("expected newest-approved-first ordering, got %v before %v",
				listed[i-1].ApprovedAt, listed[i].ApprovedAt)
		}
	}
}

func TestGetApprovedArticleByID(t *testing.T) {
	env := setupTestEnv(t, nil)
	draft := env.seedDraft(t, "Story")
	if w := env.do(t, http.MethodPost, fmt.Sprintf("/api/approve/%d", draft.ID), nil); w.Code != http.StatusOK {
		t.Fatalf("approve failed with %d", w.Code)
	}

	w := env.do(t, http.MethodGet, fmt.Sprintf("/api/approved/%d", draft.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var article service.ApprovedArticle
	decodeBody(t, w, &article)
	if article.ID != draft.ID || article.Title != "Story" {
		t.Fatalf("unexpected article %+v", article)
	}

	if w := env.do(t, http.MethodGet, "/api/approved/99", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", w.Code)
	}
}

func TestDeleteApprovedArticle(t *testing.T) {
	env := setupTestEnv(t, nil)
	draft := env.seedDraft(t, "Story")
	if w := env.do(t, http.MethodPost, fmt.Sprintf("/api/approve/%d", draft.ID), nil); w.Code != http.StatusOK {
		t.Fatalf("approve failed with %d", w.Code)
	}

	w := env.do(t, http.MethodDelete, fmt.Sprintf("/api/approved/%d", draft.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/approved/%d", draft.ID), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}

	// Deleting the approved copy does not revert the draft.
	stored, err := env.drafts.Get(draft.ID)
	if err != nil {
		t.Fatalf("failed to reload draft: %v", err)
	}
	if stored.Status != db.StatusApproved {
		t.Fatalf("expected draft to stay approved, got %q", stored.Status)
	}
}

func TestStatisticsEndpoint(t *testing.T) {
	env := setupTestEnv(t, nil)
	env.seedDraft(t, "Pending Story")
	approved := env.seedDraft(t, "Approved Story")
	if w := env.do(t, http.MethodPost, fmt.Sprintf("/api/approve/%d", approved.ID), nil); w.Code != http.StatusOK {
		t.Fatalf("approve failed with %d", w.Code)
	}

	w := env.do(t, http.MethodGet, "/api/statistics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var stats struct {
		TotalArticles  int      `json:"total_articles"`
		Sources        []string `json:"sources"`
		Categories     []string `json:"categories"`
		LatestApproval *string  `json:"latest_approval"`
		DraftCount     int      `json:"draft_count"`
		ApprovedCount  int      `json:"approved_count"`
		TotalProcessed int      `json:"total_processed"`
	}
	decodeBody(t, w, &stats)

	if stats.TotalArticles != 1 {
		t.Fatalf("expected 1 approved article, got %d", stats.TotalArticles)
	}
	if stats.DraftCount != 1 || stats.ApprovedCount != 1 || stats.TotalProcessed != 2 {
		t.Fatalf("unexpected draft counters %+v", stats)
	}
	if len(stats.Sources) != 1 || stats.Sources[0] != "BBC News" {
		t.Fatalf("unexpected sources %v", stats.Sources)
	}
	if stats.LatestApproval == nil {
		t.Fatal("expected a latest approval timestamp")
	}
}

func TestStatisticsEndpointEmpty(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/statistics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var stats struct {
		TotalArticles  int      `json:"total_articles"`
		Sources        []string `json:"sources"`
		Categories     []string `json:"categories"`
		LatestApproval *string  `json:"latest_approval"`
		TotalProcessed int      `json:"total_processed"`
	}
	decodeBody(t, w, &stats)
	if stats.TotalArticles != 0 || stats.TotalProcessed != 0 {
		t.Fatalf("expected zeroed statistics, got %+v", stats)
	}
	if stats.Sources == nil || stats.Categories == nil {
		t.Fatal("expected empty arrays, not null")
	}
	if stats.LatestApproval != nil {
		t.Fatalf("expected null latest approval, got %v", *stats.LatestApproval)
	}
}

func TestExportEndpoint(t *testing.T) {
	env := setupTestEnv(t, nil)
	draft := env.seedDraft(t, "Story")
	if w := env.do(t, http.MethodPost, fmt.Sprintf("/api/approve/%d", draft.ID), nil); w.Code != http.StatusOK {
		t.Fatalf("approve failed with %d", w.Code)
	}

	w := env.do(t, http.MethodGet, "/api/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var jsonExport struct {
		Data   string `json:"data"`
		Format string `json:"format"`
	}
	decodeBody(t, w, &jsonExport)
	if jsonExport.Format != "json" || !strings.Contains(jsonExport.Data, "\"Story\"") {
		t.Fatalf("unexpected json export %+v", jsonExport)
	}

	w = env.do(t, http.MethodGet, "/api/export?format=csv", nil)
	var csvExport struct {
		Data   string `json:"data"`
		Format string `json:"format"`
	}
	decodeBody(t, w, &csvExport)
	if csvExport.Format != "csv" || !strings.HasPrefix(csvExport.Data, "id,title") {
		t.Fatalf("unexpected csv export %+v", csvExport)
	}
}

func TestHealthCheck(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var health struct {
		Status           string `json:"status"`
		Message          string `json:"message"`
		GeminiConfigured bool   `json:"gemini_configured"`
	}
	decodeBody(t, w, &health)
	if health.Status != "healthy" || !health.GeminiConfigured {
		t.Fatalf("unexpected health payload %+v", health)
	}
}
