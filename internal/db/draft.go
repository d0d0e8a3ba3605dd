package db

import "time"

// Draft lifecycle states.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

// DraftArticle 定义了从 RSS 抓取的草稿文章模型。
// The (title, source) pair carries a composite unique index so duplicate
// ingestion loses the race at the database instead of silently doubling up.
type DraftArticle struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:500;not null;uniqueIndex:idx_drafts_title_source" json:"title"`
	OriginalText string    `gorm:"type:text;not null" json:"original_text"`
	AIText       *string   `gorm:"type:text" json:"ai_text"`
	Source       string    `gorm:"size:200;not null;uniqueIndex:idx_drafts_title_source" json:"source"`
	Category     string    `gorm:"size:100" json:"category"`
	URL          string    `gorm:"size:1000" json:"url"`
	Status       string    `gorm:"size:20;default:pending" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName 指定表名
func (DraftArticle) TableName() string {
	return "draft_articles"
}
