// Package services implements askboard's operations on top of gorm.
//
// Every operation takes the calling Actor, checks it with CanAccess and
// returns errors that match one of the Err* kinds.
package services

import (
	"askboard/internal/models"
	"askboard/internal/notify"
	"askboard/internal/utils"

	"gorm.io/gorm"
)

type Services struct {
	Accounts      *AccountService
	Questions     *QuestionService
	Replies       *ReplyService
	Votes         *VoteService
	Notifications *NotificationService
	Reports       *ReportService
	Moderation    *ModerationService
}

func New(db *gorm.DB, cache *utils.Cache[[]models.Question], emitter notify.Emitter) *Services {
	questions := NewQuestionService(db, cache)
	return &Services{
		Accounts:      NewAccountService(db),
		Questions:     questions,
		Replies:       NewReplyService(db, emitter),
		Votes:         NewVoteService(db, emitter),
		Notifications: NewNotificationService(db),
		Reports:       NewReportService(db),
		Moderation:    NewModerationService(db, questions),
	}
}
