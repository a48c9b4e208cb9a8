package models

import (
	"html/template"
	"time"

	"gorm.io/gorm"
)

type Question struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"size:36;not null;index" json:"user_id"`
	User        *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Tags        []string  `gorm:"serializer:json;type:text" json:"tags"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Not stored; filled when rendering responses.
	DescriptionHTML template.HTML `gorm:"-" json:"description_html,omitempty"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	assignID(&q.ID)
	return nil
}
