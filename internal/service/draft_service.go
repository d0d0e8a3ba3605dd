package service

import (
	"errors"
	"strings"

	"github.com/newsdesk/internal/db"
	"gorm.io/gorm"
)

var (
	ErrDraftNotFound        = errors.New("draft article not found")
	ErrDraftAlreadyApproved = errors.New("draft article already approved")
	ErrDraftInvalid         = errors.New("draft article is missing required fields")
)

// DraftInput represents fields accepted when creating a draft article.
type DraftInput struct {
	Title        string
	OriginalText string
	Source       string
	Category     string
	URL          string
}

// DraftService wraps draft article database operations.
type DraftService struct {
	db *gorm.DB
}

// NewDraftService creates a DraftService instance.
func NewDraftService(gdb *gorm.DB) *DraftService {
	return &DraftService{db: gdb}
}

// Create inserts a new pending draft. Title, original text and source are
// required; the store assigns id and timestamps.
func (s *DraftService) Create(input DraftInput) (*db.DraftArticle, error) {
	title := strings.TrimSpace(input.Title)
	text := strings.TrimSpace(input.OriginalText)
	source := strings.TrimSpace(input.Source)
	if title == "" || text == "" || source == "" {
		return nil, ErrDraftInvalid
	}

	draft := db.DraftArticle{
		Title:        title,
		OriginalText: text,
		Source:       source,
		Category:     strings.TrimSpace(input.Category),
		URL:          strings.TrimSpace(input.URL),
		Status:       db.StatusPending,
	}
	if err := s.db.Create(&draft).Error; err != nil {
		return nil, err
	}
	return &draft, nil
}

// Get fetches a draft by id.
func (s *DraftService) Get(id uint) (*db.DraftArticle, error) {
	var draft db.DraftArticle
	if err := s.db.First(&draft, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDraftNotFound
		}
		return nil, err
	}
	return &draft, nil
}

// ListPending returns pending drafts ordered by created time descending.
func (s *DraftService) ListPending() ([]db.DraftArticle, error) {
	drafts := make([]db.DraftArticle, 0)
	if err := s.db.Where("status = ?", db.StatusPending).
		Order("created_at desc").Find(&drafts).Error; err != nil {
		return nil, err
	}
	return drafts, nil
}

// SetAIText stores the rewritten text on a draft, replacing any previous
// rewrite. UpdatedAt is refreshed by the update.
func (s *DraftService) SetAIText(id uint, text string) (*db.DraftArticle, error) {
	draft, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(draft).Update("ai_text", text).Error; err != nil {
		return nil, err
	}
	draft.AIText = &text
	return draft, nil
}

// MarkApproved flips a pending draft to approved. The transition happens at
// most once; a second call returns ErrDraftAlreadyApproved.
func (s *DraftService) MarkApproved(id uint) (*db.DraftArticle, error) {
	draft, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if draft.Status == db.StatusApproved {
		return nil, ErrDraftAlreadyApproved
	}

	if err := s.db.Model(draft).Update("status", db.StatusApproved).Error; err != nil {
		return nil, err
	}
	draft.Status = db.StatusApproved
	return draft, nil
}

// RevertApproval undoes MarkApproved. Only used to compensate when the
// approved store write and the status flip cannot both be completed.
func (s *DraftService) RevertApproval(id uint) error {
	return s.db.Model(&db.DraftArticle{}).Where("id = ?", id).
		Update("status", db.StatusPending).Error
}

// Delete removes a draft. Approved copies in the flat-file store are left
// untouched; the two stores have independent lifecycles.
func (s *DraftService) Delete(id uint) error {
	draft, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Delete(draft).Error
}

// ExistsByTitleAndSource reports whether a draft with the same title and
// source was already ingested.
func (s *DraftService) ExistsByTitleAndSource(title, source string) (bool, error) {
	var count int64
	if err := s.db.Model(&db.DraftArticle{}).
		Where("title = ? AND source = ?", title, source).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByStatus returns the number of drafts in the given status.
func (s *DraftService) CountByStatus(status string) (int64, error) {
	var count int64
	if err := s.db.Model(&db.DraftArticle{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
