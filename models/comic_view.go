package models

import (
	"time"
)

// ComicView marks a comic as one of a user's favorites.
type ComicView struct {
	UserId    string `gorm:"primaryKey"`
	ComicId   string `gorm:"primaryKey"`
	Comic     *Comic `gorm:"foreignKey:ComicId;references:ID"`
	CreatedAt time.Time
}
