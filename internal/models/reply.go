package models

import (
	"html/template"
	"time"

	"gorm.io/gorm"
)

// Reply is a node of the reply tree. QuestionID always names the root
// question, also on nested replies.
type Reply struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"size:36;not null;index" json:"user_id"`
	User       *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
	QuestionID string    `gorm:"size:36;not null;index:idx_reply_question_parent" json:"question_id"`
	ParentID   *string   `gorm:"size:36;index;index:idx_reply_question_parent" json:"parent_id"` // Nullable for top-level replies
	Content    string    `gorm:"type:text;not null" json:"content"`
	IsAccepted bool      `gorm:"default:false;not null" json:"is_accepted"`
	Votes      int       `gorm:"default:0;not null" json:"votes"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	ContentHTML template.HTML `gorm:"-" json:"content_html,omitempty"`
}

func (r *Reply) BeforeCreate(tx *gorm.DB) error {
	assignID(&r.ID)
	return nil
}

// IsTopLevel reports whether the reply hangs directly off its question.
func (r *Reply) IsTopLevel() bool {
	return r.ParentID == nil
}
