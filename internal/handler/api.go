package handler

import (
	"github.com/newsdesk/internal/config"
	"github.com/newsdesk/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	drafts   *service.DraftService
	approved *service.ApprovedStore
	feeds    *service.FeedService
	rewriter service.ArticleRewriter

	geminiConfigured bool
	defaultTone      string
	defaultLength    string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, approved *service.ApprovedStore, feeds *service.FeedService, rewriter service.ArticleRewriter, cfg config.AppConfig) *API {
	return &API{
		drafts:           service.NewDraftService(gdb),
		approved:         approved,
		feeds:            feeds,
		rewriter:         rewriter,
		geminiConfigured: cfg.GeminiAPIKey != "",
		defaultTone:      cfg.DefaultTone,
		defaultLength:    cfg.DefaultLength,
	}
}
