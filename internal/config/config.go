package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Default RSS feeds used when RSS_FEEDS is not configured.
var defaultFeeds = []string{
	"https://feeds.bbci.co.uk/news/rss.xml",
	"https://rss.cnn.com/rss/edition.rss",
	"https://feeds.reuters.com/reuters/topNews",
	"https://techcrunch.com/feed/",
	"https://www.theguardian.com/world/rss",
}

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr    string
	Port          string
	DatabasePath  string
	ApprovedPath  string
	SessionSecret string
	GeminiAPIKey  string
	FeedURLs      []string
	DefaultTone   string
	DefaultLength string
	FrontendDir   string
	GinMode       string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// A .env file in the working directory is honored when present.
func Load() AppConfig {
	_ = godotenv.Load()

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5000"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "data/drafts.db"
	}

	approvedPath := strings.TrimSpace(os.Getenv("APPROVED_PATH"))
	if approvedPath == "" {
		approvedPath = "data/approved_articles.json"
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		sessionSecret = "dev-secret-key-change-in-production"
	}

	defaultTone := strings.TrimSpace(os.Getenv("AI_DEFAULT_TONE"))
	if defaultTone == "" {
		defaultTone = "professional"
	}

	defaultLength := strings.TrimSpace(os.Getenv("AI_DEFAULT_LENGTH"))
	if defaultLength == "" {
		defaultLength = "medium"
	}

	frontendDir := strings.TrimSpace(os.Getenv("FRONTEND_DIR"))
	if frontendDir == "" {
		frontendDir = "../frontend/dist"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	return AppConfig{
		ListenAddr:    listenAddr,
		Port:          port,
		DatabasePath:  databasePath,
		ApprovedPath:  approvedPath,
		SessionSecret: sessionSecret,
		GeminiAPIKey:  strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		FeedURLs:      parseFeedList(os.Getenv("RSS_FEEDS")),
		DefaultTone:   defaultTone,
		DefaultLength: defaultLength,
		FrontendDir:   frontendDir,
		GinMode:       ginMode,
	}
}

// HasGeminiKey reports whether a generative API key was configured.
func (c AppConfig) HasGeminiKey() bool {
	return c.GeminiAPIKey != ""
}

func parseFeedList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		feeds := make([]string, len(defaultFeeds))
		copy(feeds, defaultFeeds)
		return feeds
	}

	parts := strings.Split(raw, ",")
	feeds := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		feeds = append(feeds, trimmed)
	}
	if len(feeds) == 0 {
		feeds = append(feeds, defaultFeeds...)
	}
	return feeds
}
