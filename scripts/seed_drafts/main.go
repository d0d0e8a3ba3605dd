package main

import (
	"fmt"
	"log"

	"github.com/newsdesk/internal/config"
	"github.com/newsdesk/internal/db"
	"github.com/newsdesk/internal/service"
)

// 测试数据生成器：向草稿库写入几篇示例文章，方便本地调试前端。
func main() {
	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	drafts := service.NewDraftService(db.DB)
	samples := []service.DraftInput{
		{
			Title:        "Global Markets Rally After Rate Decision",
			OriginalText: "Stock markets across Europe and Asia rallied on Thursday after the central bank held interest rates steady, citing cooling inflation and resilient employment figures.",
			Source:       "Sample Business Wire",
			Category:     "Business",
			URL:          "https://example.com/markets-rally",
		},
		{
			Title:        "New Deep-Sea Species Discovered in Pacific Trench",
			OriginalText: "Researchers aboard the research vessel Atlantis describe a previously unknown species of snailfish found at a depth of 8,300 meters, the deepest fish ever recorded on camera.",
			Source:       "Sample Science Daily",
			Category:     "Science",
			URL:          "https://example.com/deep-sea-species",
		},
		{
			Title:        "City Council Approves Expanded Bike Lane Network",
			OriginalText: "The council voted 7-2 to fund 40 kilometers of protected bike lanes over the next three years, a plan officials say will cut downtown congestion and improve rider safety.",
			Source:       "Sample Metro News",
			Category:     "Local",
			URL:          "https://example.com/bike-lanes",
		},
	}

	saved := 0
	for _, sample := range samples {
		exists, err := drafts.ExistsByTitleAndSource(sample.Title, sample.Source)
		if err != nil {
			log.Fatalf("failed to check for existing draft: %v", err)
		}
		if exists {
			continue
		}
		if _, err := drafts.Create(sample); err != nil {
			log.Fatalf("failed to create draft: %v", err)
		}
		saved++
	}

	fmt.Printf("seeded %d draft articles into %s\n", saved, cfg.DatabasePath)
}
