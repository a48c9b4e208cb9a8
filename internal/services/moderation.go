package services

import (
	"context"
	"log/slog"

	"askboard/internal/logctx"
	"askboard/internal/models"

	"gorm.io/gorm"
)

// ModerationService holds the admin-only operations.
type ModerationService struct {
	db        *gorm.DB
	questions *QuestionService
}

func NewModerationService(db *gorm.DB, questions *QuestionService) *ModerationService {
	return &ModerationService{db: db, questions: questions}
}

func (s *ModerationService) gate(op string, actor Actor) error {
	return authorize(op, actor, Resource{Kind: resourceUser}, ActionModerate)
}

// ListUsers returns every user, newest first. Password hashes are never
// loaded.
func (s *ModerationService) ListUsers(ctx context.Context, actor Actor) ([]models.User, error) {
	const op = "services.moderation.ListUsers"

	if err := s.gate(op, actor); err != nil {
		return nil, err
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Omit("password").
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, storeError(op, err)
	}
	return users, nil
}

// ToggleBan flips the banned flag of a user and returns the new value.
// Concurrent toggles are last-write-wins.
func (s *ModerationService) ToggleBan(ctx context.Context, actor Actor, userID string) (bool, error) {
	const op = "services.moderation.ToggleBan"

	if err := s.gate(op, actor); err != nil {
		return false, err
	}

	db := s.db.WithContext(ctx)
	var user models.User
	if err := db.Select("id", "is_banned").Where("id = ?", userID).Take(&user).Error; err != nil {
		return false, storeError(op, err)
	}

	banned := !user.IsBanned
	if err := db.Model(&user).Update("is_banned", banned).Error; err != nil {
		return false, storeError(op, err)
	}

	logctx.From(ctx).Info("user_ban_toggled",
		slog.String("op", op),
		slog.String("user_id", userID),
		slog.Bool("banned", banned),
		slog.String("admin_id", actor.ID),
	)
	return banned, nil
}

// ListReports returns all reports, newest first, with reporters resolved.
func (s *ModerationService) ListReports(ctx context.Context, actor Actor) ([]models.Report, error) {
	const op = "services.moderation.ListReports"

	if err := s.gate(op, actor); err != nil {
		return nil, err
	}

	var reports []models.Report
	err := s.db.WithContext(ctx).
		Preload("User", selectAuthor).
		Order("created_at DESC, id DESC").
		Find(&reports).Error
	if err != nil {
		return nil, storeError(op, err)
	}
	return reports, nil
}

// DeleteContent removes whatever question or reply carries id, with
// everything hanging off it. The caller is not told which one matched, or
// whether anything did.
func (s *ModerationService) DeleteContent(ctx context.Context, actor Actor, id string) error {
	const op = "services.moderation.DeleteContent"

	if err := s.gate(op, actor); err != nil {
		return err
	}

	var questionHit, replyHit bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if questionHit, err = deleteQuestionTree(tx, id); err != nil {
			return err
		}
		replyHit, err = deleteReplyTree(tx, id)
		return err
	})
	if err != nil {
		return storeError(op, err)
	}
	if questionHit {
		s.questions.purge()
	}

	logctx.From(ctx).Info("content_deleted",
		slog.String("op", op),
		slog.String("id", id),
		slog.Bool("question", questionHit),
		slog.Bool("reply", replyHit),
		slog.String("admin_id", actor.ID),
	)
	return nil
}
