package models

import (
	"time"

	"gorm.io/gorm"
)

// ReplyVote is one user's vote on one reply. The (user_id, reply_id) pair is
// unique; a changed vote updates the row in place.
type ReplyVote struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_reply_vote_user" json:"user_id"`
	ReplyID   string    `gorm:"size:36;not null;uniqueIndex:idx_reply_vote_user;index" json:"reply_id"`
	Value     int       `gorm:"not null" json:"value"` // 1 or -1
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (v *ReplyVote) BeforeCreate(tx *gorm.DB) error {
	assignID(&v.ID)
	return nil
}
