package router

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/newsdesk/internal/config"
	"github.com/newsdesk/internal/handler"
)

// Setup 配置 Gin 引擎和路由。
func Setup(cfg config.AppConfig, api *handler.API) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("newsdesk_session", store))
	r.Use(requestID())

	// CORS for the dev frontend
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		AllowCredentials: true,
	}))

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/drafts", api.GetDrafts)
		apiGroup.GET("/article/:id", api.GetArticle)
		apiGroup.GET("/article/:id/preview", api.PreviewArticle)
		apiGroup.POST("/fetch-articles", api.FetchArticles)
		apiGroup.GET("/validate-feed", api.ValidateFeed)
		apiGroup.POST("/rewrite/:id", api.RewriteArticle)
		apiGroup.POST("/summarize/:id", api.SummarizeArticle)
		apiGroup.POST("/keypoints/:id", api.ExtractKeyPoints)
		apiGroup.POST("/translate/:id", api.TranslateArticle)
		apiGroup.DELETE("/delete/:id", api.DeleteDraft)

		apiGroup.POST("/approve/:id", api.ApproveArticle)
		apiGroup.GET("/approved", api.GetApprovedArticles)
		apiGroup.GET("/approved/:id", api.GetApprovedArticle)
		apiGroup.DELETE("/approved/:id", api.DeleteApprovedArticle)

		apiGroup.GET("/statistics", api.GetStatistics)
		apiGroup.GET("/export", api.ExportApprovedArticles)
		apiGroup.GET("/health", api.HealthCheck)
	}

	// 前端构建产物的静态文件服务
	if assets := filepath.Join(cfg.FrontendDir, "assets"); dirExists(assets) {
		r.Static("/assets", assets)
	}

	// Unknown /api paths stay JSON; everything else falls back to the SPA
	// entry point so client-side routing keeps working.
	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(404, gin.H{"error": "Endpoint not found"})
			return
		}
		index := filepath.Join(cfg.FrontendDir, "index.html")
		if _, err := os.Stat(index); err != nil {
			c.JSON(404, gin.H{"error": "Endpoint not found"})
			return
		}
		c.File(index)
	})

	return r
}

// requestID stamps each response with an id for log correlation, honoring
// one supplied by the caller.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
