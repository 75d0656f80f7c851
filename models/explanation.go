package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Explanation struct {
	ID             string `gorm:"primaryKey"`
	ComicId        string `gorm:"uniqueIndex;not null"`
	Comic          *Comic `gorm:"foreignKey:ComicId;references:ID"`
	Text           string
	GeneratedBy    string
	ApprovalStatus bool
	ReviewComment  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (e *Explanation) BeforeCreate(*gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	return nil
}

// IndexedExplanation is the document stored in the search index.
type IndexedExplanation struct {
	ExplanationId string `json:"explanation_id"`
	ComicId       string `json:"comic_id"`
	Explanation   string `json:"explanation"`
	GeneratedBy   string `json:"generated_by"`
}

func (e *Explanation) GetIndexedExplanation() *IndexedExplanation {
	return &IndexedExplanation{
		ExplanationId: e.ID,
		ComicId:       e.ComicId,
		Explanation:   e.Text,
		GeneratedBy:   e.GeneratedBy,
	}
}
