package models

import "time"

const DefaultLanguage = "en"

type Preferences struct {
	UserId    string `gorm:"primaryKey"`
	Language  string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
