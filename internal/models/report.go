package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ReportTargetQuestion = "question"
	ReportTargetReply    = "reply"
	ReportTargetUser     = "user"
)

type Report struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"size:36;not null;index" json:"user_id"` // Reporter
	User       *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
	TargetType string    `gorm:"size:20;not null" json:"target_type"` // "question", "reply", "user"
	TargetID   string    `gorm:"size:36;not null;index" json:"target_id"`
	Reason     string    `gorm:"size:500;not null" json:"reason"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	assignID(&r.ID)
	return nil
}

// All lists every model for migration.
func All() []any {
	return []any{
		&User{},
		&Question{},
		&Reply{},
		&ReplyVote{},
		&Notification{},
		&Report{},
	}
}
