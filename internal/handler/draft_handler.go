package handler

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/newsdesk/internal/db"
	"github.com/newsdesk/internal/service"
	"github.com/yuin/goldmark"
	"gorm.io/gorm"
)

const fetchLimit = 10

// GetDrafts 获取待审核的草稿列表，按抓取时间倒序。
func (a *API) GetDrafts(c *gin.Context) {
	drafts, err := a.drafts.ListPending()
	if err != nil {
		log.Printf("error fetching drafts: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch drafts")
		return
	}
	c.JSON(http.StatusOK, drafts)
}

// GetArticle 获取单篇草稿。
func (a *API) GetArticle(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	draft, err := a.drafts.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrDraftNotFound) {
			respondError(c, http.StatusNotFound, "Article not found")
			return
		}
		log.Printf("error fetching article %d: %v", id, err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch article")
		return
	}
	c.JSON(http.StatusOK, draft)
}

// PreviewArticle renders the draft's AI text (or the original text when no
// rewrite exists) from markdown into sanitized HTML.
func (a *API) PreviewArticle(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	draft, err := a.drafts.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrDraftNotFound) {
			respondError(c, http.StatusNotFound, "Article not found")
			return
		}
		log.Printf("error fetching article %d: %v", id, err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch article")
		return
	}

	text := draft.OriginalText
	field := "original_text"
	if draft.AIText != nil && *draft.AIText != "" {
		text = *draft.AIText
		field = "ai_text"
	}

	var rendered bytes.Buffer
	if err := goldmark.Convert([]byte(text), &rendered); err != nil {
		log.Printf("error rendering preview for article %d: %v", id, err)
		respondError(c, http.StatusInternalServerError, "Failed to render preview")
		return
	}

	safe := bluemonday.UGCPolicy().SanitizeBytes(rendered.Bytes())
	c.JSON(http.StatusOK, gin.H{
		"html":  string(safe),
		"field": field,
	})
}

// FetchArticles 抓取 RSS 源并去重入库。
func (a *API) FetchArticles(c *gin.Context) {
	articles := a.feeds.FetchArticles(c.Request.Context(), fetchLimit)

	saved := 0
	for _, article := range articles {
		exists, err := a.drafts.ExistsByTitleAndSource(article.Title, article.Source)
		if err != nil {
			log.Printf("error checking for duplicate draft: %v", err)
			respondError(c, http.StatusInternalServerError, "Failed to fetch articles")
			return
		}
		if exists {
			continue
		}

		if _, err := a.drafts.Create(service.DraftInput{
			Title:        article.Title,
			OriginalText: article.OriginalText,
			Source:       article.Source,
			Category:     article.Category,
			URL:          article.URL,
		}); err != nil {
			// A racing insert loses on the (title, source) unique index;
			// treat it like the pre-check catching the duplicate.
			if isUniqueViolation(err) {
				log.Printf("skipping duplicate draft %q from %q", article.Title, article.Source)
				continue
			}
			log.Printf("error saving draft: %v", err)
			respondError(c, http.StatusInternalServerError, "Failed to fetch articles")
			return
		}
		saved++
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       fmt.Sprintf("Successfully fetched %d new articles", saved),
		"total_fetched": len(articles),
		"saved_count":   saved,
	})
}

// ValidateFeed 校验查询参数中的 RSS 源地址是否可用。
func (a *API) ValidateFeed(c *gin.Context) {
	feedURL := strings.TrimSpace(c.Query("url"))
	if feedURL == "" {
		respondError(c, http.StatusBadRequest, "Feed url is required")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":   feedURL,
		"valid": a.feeds.ValidateFeedURL(c.Request.Context(), feedURL),
	})
}

type rewriteRequest struct {
	Tone     string `json:"tone"`
	Length   string `json:"length"`
	Language string `json:"language"`
}

// RewriteArticle 调用改写服务并保存生成文本。
func (a *API) RewriteArticle(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	draft, err := a.drafts.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrDraftNotFound) {
			respondError(c, http.StatusNotFound, "Article not found")
			return
		}
		log.Printf("error fetching article %d: %v", id, err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch article")
		return
	}

	// The body is optional; absent fields fall back to configured defaults.
	var req rewriteRequest
	_ = c.ShouldBindJSON(&req)
	opts := service.RewriteOptions{
		Tone:     defaultString(req.Tone, a.defaultTone),
		Length:   defaultString(req.Length, a.defaultLength),
		Language: defaultString(req.Language, "en"),
	}

	aiText, err := a.rewriter.Rewrite(c.Request.Context(), draft.OriginalText, opts)
	if err != nil {
		if errors.Is(err, service.ErrAIAPIKeyMissing) {
			respondError(c, http.StatusInternalServerError, "Gemini API key not configured")
			return
		}
		log.Printf("error rewriting article %d: %v", id, err)
		respondError(c, http.StatusInternalServerError, "Failed to generate AI rewrite")
		return
	}

	if _, err := a.drafts.SetAIText(id, aiText); err != nil {
		log.Printf("error saving rewrite for article %d: %v", id, err)
		respondError(c, http.StatusInternalServerError, "Failed to save AI rewrite")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Article rewritten successfully",
		"ai_text": aiText,
	})
}

// SummarizeArticle 生成草稿摘要，不修改草稿本身。
func (a *API) SummarizeArticle(c *gin.Context) {
	draft, ok := a.loadDraftForAI(c)
	if !ok {
		return
	}

	summary, err := a.rewriter.Summarize(c.Request.Context(), draft.OriginalText, 0)
	if err != nil {
		a.respondAIError(c, err, "Failed to generate summary")
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// ExtractKeyPoints 提取草稿要点，不修改草稿本身。
func (a *API) ExtractKeyPoints(c *gin.Context) {
	draft, ok := a.loadDraftForAI(c)
	if !ok {
		return
	}

	points, err := a.rewriter.ExtractKeyPoints(c.Request.Context(), draft.OriginalText)
	if err != nil {
		a.respondAIError(c, err, "Failed to extract key points")
		return
	}
	c.JSON(http.StatusOK, gin.H{"key_points": points})
}

type translateRequest struct {
	Language string `json:"language"`
}

// TranslateArticle 翻译草稿正文，不修改草稿本身。
func (a *API) TranslateArticle(c *gin.Context) {
	draft, ok := a.loadDraftForAI(c)
	if !ok {
		return
	}

	var req translateRequest
	_ = c.ShouldBindJSON(&req)
	language := defaultString(req.Language, "en")

	translation, err := a.rewriter.Translate(c.Request.Context(), draft.OriginalText, language)
	if err != nil {
		a.respondAIError(c, err, "Failed to translate article")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"language":    language,
		"translation": translation,
	})
}

// DeleteDraft 删除草稿；审核存档中的副本不受影响。
func (a *API) DeleteDraft(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	if err := a.drafts.Delete(id); err != nil {
		if errors.Is(err, service.ErrDraftNotFound) {
			respondError(c, http.StatusNotFound, "Article not found")
			return
		}
		log.Printf("error deleting draft %d: %v", id, err)
		respondError(c, http.StatusInternalServerError, "Failed to delete draft")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Draft deleted successfully"})
}

func (a *API) loadDraftForAI(c *gin.Context) (*db.DraftArticle, bool) {
	id, ok := articleID(c)
	if !ok {
		return nil, false
	}

	draft, err := a.drafts.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrDraftNotFound) {
			respondError(c, http.StatusNotFound, "Article not found")
			return nil, false
		}
		log.Printf("error fetching article %d: %v", id, err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch article")
		return nil, false
	}
	return draft, true
}

func (a *API) respondAIError(c *gin.Context, err error, message string) {
	if errors.Is(err, service.ErrAIAPIKeyMissing) {
		respondError(c, http.StatusInternalServerError, "Gemini API key not configured")
		return
	}
	log.Printf("%s: %v", message, err)
	respondError(c, http.StatusInternalServerError, message)
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
