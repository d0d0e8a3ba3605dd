package handler

import (
	"errors"
	"log"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/internal/db"
	"github.com/newsdesk/internal/service"
)

// ApproveArticle 将草稿标记为已审核并复制到审核存档。
// The status flip happens first; if the file write then fails, the flip is
// reverted so the two stores do not drift on a partial failure.
func (a *API) ApproveArticle(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	draft, err := a.drafts.MarkApproved(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDraftNotFound):
			respondError(c, http.StatusNotFound, "Article not found")
		case errors.Is(err, service.ErrDraftAlreadyApproved):
			respondError(c, http.StatusBadRequest, "Article already approved")
		default:
			log.Printf("error approving article %d: %v", id, err)
			respondError(c, http.StatusInternalServerError, "Failed to approve article")
		}
		return
	}

	if _, err := a.approved.Append(*draft); err != nil {
		log.Printf("error saving approved article %d: %v", id, err)
		if revertErr := a.drafts.RevertApproval(id); revertErr != nil {
			log.Printf("error reverting approval for article %d: %v", id, revertErr)
		}
		respondError(c, http.StatusInternalServerError, "Failed to save approved article")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Article approved successfully",
		"article": draft,
	})
}

// GetApprovedArticles 获取审核存档列表，按审核时间倒序。
func (a *API) GetApprovedArticles(c *gin.Context) {
	articles := a.approved.LoadAll()
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].ApprovedAt > articles[j].ApprovedAt
	})
	c.JSON(http.StatusOK, articles)
}

// GetApprovedArticle 获取单篇已审核文章。
func (a *API) GetApprovedArticle(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	article, found := a.approved.GetByID(id)
	if !found {
		respondError(c, http.StatusNotFound, "Approved article not found")
		return
	}
	c.JSON(http.StatusOK, article)
}

// DeleteApprovedArticle 从审核存档中删除文章；草稿的状态不受影响。
func (a *API) DeleteApprovedArticle(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	deleted, err := a.approved.DeleteByID(id)
	if err != nil {
		log.Printf("error deleting approved article %d: %v", id, err)
		respondError(c, http.StatusInternalServerError, "Failed to delete approved article")
		return
	}
	if !deleted {
		respondError(c, http.StatusNotFound, "Approved article not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Approved article deleted successfully"})
}

// GetStatistics 聚合审核存档与草稿库的统计数据。
func (a *API) GetStatistics(c *gin.Context) {
	stats := a.approved.Statistics()

	draftCount, err := a.drafts.CountByStatus(db.StatusPending)
	if err != nil {
		log.Printf("error counting drafts: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch statistics")
		return
	}
	approvedCount, err := a.drafts.CountByStatus(db.StatusApproved)
	if err != nil {
		log.Printf("error counting approved drafts: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch statistics")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_articles":  stats.TotalArticles,
		"sources":         stats.Sources,
		"categories":      stats.Categories,
		"latest_approval": stats.LatestApproval,
		"draft_count":     draftCount,
		"approved_count":  approvedCount,
		"total_processed": draftCount + approvedCount,
	})
}

// ExportApprovedArticles 导出审核存档，支持 json 与 csv。
func (a *API) ExportApprovedArticles(c *gin.Context) {
	format := c.DefaultQuery("format", "json")

	data, err := a.approved.Export(format)
	if err != nil {
		log.Printf("error exporting approved articles: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to export approved articles")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   data,
		"format": format,
	})
}
