package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/internal/config"
	"github.com/newsdesk/internal/db"
	"github.com/newsdesk/internal/handler"
	"github.com/newsdesk/internal/router"
	"github.com/newsdesk/internal/service"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	approved, err := service.NewApprovedStore(cfg.ApprovedPath)
	if err != nil {
		log.Fatalf("failed to open approved store: %v", err)
	}

	feeds := service.NewFeedService(cfg.FeedURLs)
	rewriter := service.NewAIService(cfg.GeminiAPIKey)
	if !cfg.HasGeminiKey() {
		log.Println("GEMINI_API_KEY not set; rewrite endpoints will report a configuration error")
	}

	api := handler.NewAPI(db.DB, approved, feeds, rewriter, cfg)

	// 设置并运行 Gin 服务器
	r := router.Setup(cfg, api)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
