package models

import (
	"time"
)

type Comic struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Num       int       `json:"num" gorm:"index"`
	Title     string    `json:"title"`
	ImgUrl    string    `json:"img_url"`
	CreatedAt time.Time `json:"-"`
}
