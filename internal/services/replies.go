package services

import (
	"context"
	"log/slog"
	"strings"

	"askboard/internal/logctx"
	"askboard/internal/models"
	"askboard/internal/notify"

	"gorm.io/gorm"
)

type ReplyService struct {
	db      *gorm.DB
	emitter notify.Emitter
}

func NewReplyService(db *gorm.DB, emitter notify.Emitter) *ReplyService {
	return &ReplyService{db: db, emitter: emitter}
}

// ReplyTarget names where a new reply goes: directly under a question, or
// under an existing reply. Exactly one field is set.
type ReplyTarget struct {
	QuestionID string
	ParentID   string
}

func OnQuestion(id string) ReplyTarget { return ReplyTarget{QuestionID: id} }

func UnderReply(id string) ReplyTarget { return ReplyTarget{ParentID: id} }

// Create adds a reply. A nested reply takes the question id of its parent,
// so every node of a tree points at the same root question.
func (s *ReplyService) Create(ctx context.Context, actor Actor, target ReplyTarget, content string) (*models.Reply, error) {
	const op = "services.replies.Create"
	lg := logctx.From(ctx).With("op", op, "actor_id", actor.ID)

	if err := authorize(op, actor, Resource{Kind: resourceReply}, ActionCreate); err != nil {
		return nil, err
	}
	if (target.QuestionID == "") == (target.ParentID == "") {
		return nil, fail(op, ErrInvalidArgument, "reply target is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, fail(op, ErrInvalidArgument, "content is required")
	}

	reply := models.Reply{
		UserID:  actor.ID,
		Content: content,
	}
	ev := notify.Event{ActorID: actor.ID}

	db := s.db.WithContext(ctx)
	if target.ParentID != "" {
		var parent models.Reply
		if err := db.Select("id", "user_id", "question_id").Where("id = ?", target.ParentID).Take(&parent).Error; err != nil {
			return nil, storeError(op, err)
		}
		reply.QuestionID = parent.QuestionID
		reply.ParentID = &parent.ID
		ev.TargetUserID = parent.UserID
	} else {
		var question models.Question
		if err := db.Select("id", "user_id").Where("id = ?", target.QuestionID).Take(&question).Error; err != nil {
			return nil, storeError(op, err)
		}
		reply.QuestionID = question.ID
		ev.TargetUserID = question.UserID
	}

	if err := db.Create(&reply).Error; err != nil {
		lg.Error("create_reply_failed", slog.String("err", err.Error()))
		return nil, storeError(op, err)
	}

	ev.Kind = models.NotificationTypeReply
	if !reply.IsTopLevel() {
		ev.Kind = models.NotificationTypeNestedReply
	}
	ev.QuestionID = reply.QuestionID
	ev.ReplyID = reply.ID
	s.emitter.Emit(ctx, ev)

	lg.Info("reply_created", slog.String("reply_id", reply.ID), slog.String("question_id", reply.QuestionID))
	return &reply, nil
}

// ListTopLevel returns the replies attached directly to a question, oldest
// first.
func (s *ReplyService) ListTopLevel(ctx context.Context, questionID string) ([]models.Reply, error) {
	const op = "services.replies.ListTopLevel"

	db := s.db.WithContext(ctx)
	if err := db.Select("id").Where("id = ?", questionID).Take(&models.Question{}).Error; err != nil {
		return nil, storeError(op, err)
	}

	var replies []models.Reply
	err := db.Preload("User", selectAuthor).
		Where("question_id = ? AND parent_id IS NULL", questionID).
		Order("created_at ASC, id ASC").
		Find(&replies).Error
	if err != nil {
		return nil, storeError(op, err)
	}
	return replies, nil
}

// ListChildren returns the direct children of a reply, oldest first.
func (s *ReplyService) ListChildren(ctx context.Context, replyID string) ([]models.Reply, error) {
	const op = "services.replies.ListChildren"

	db := s.db.WithContext(ctx)
	if err := db.Select("id").Where("id = ?", replyID).Take(&models.Reply{}).Error; err != nil {
		return nil, storeError(op, err)
	}

	var replies []models.Reply
	err := db.Preload("User", selectAuthor).
		Where("parent_id = ?", replyID).
		Order("created_at ASC, id ASC").
		Find(&replies).Error
	if err != nil {
		return nil, storeError(op, err)
	}
	return replies, nil
}

func (s *ReplyService) Get(ctx context.Context, id string) (*models.Reply, error) {
	const op = "services.replies.Get"

	var reply models.Reply
	if err := s.db.WithContext(ctx).Preload("User", selectAuthor).Where("id = ?", id).Take(&reply).Error; err != nil {
		return nil, storeError(op, err)
	}
	return &reply, nil
}

// UpdateContent replaces the content of a reply. Empty content leaves the
// reply unchanged.
func (s *ReplyService) UpdateContent(ctx context.Context, actor Actor, id, content string) (*models.Reply, error) {
	const op = "services.replies.UpdateContent"

	db := s.db.WithContext(ctx)
	var reply models.Reply
	if err := db.Where("id = ?", id).Take(&reply).Error; err != nil {
		return nil, storeError(op, err)
	}
	if err := authorize(op, actor, Resource{Kind: resourceReply, OwnerID: reply.UserID}, ActionUpdate); err != nil {
		return nil, err
	}

	if content == "" {
		return &reply, nil
	}
	if err := db.Model(&reply).Update("content", content).Error; err != nil {
		return nil, storeError(op, err)
	}
	reply.Content = content
	return &reply, nil
}

// Delete removes a reply with its whole subtree and all their votes.
func (s *ReplyService) Delete(ctx context.Context, actor Actor, id string) error {
	const op = "services.replies.Delete"

	db := s.db.WithContext(ctx)
	var reply models.Reply
	if err := db.Select("id", "user_id").Where("id = ?", id).Take(&reply).Error; err != nil {
		return storeError(op, err)
	}
	if err := authorize(op, actor, Resource{Kind: resourceReply, OwnerID: reply.UserID}, ActionDelete); err != nil {
		return err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := deleteReplyTree(tx, id)
		return err
	})
	if err != nil {
		return storeError(op, err)
	}

	logctx.From(ctx).Info("reply_deleted", slog.String("op", op), slog.String("reply_id", id), slog.String("actor_id", actor.ID))
	return nil
}

// Accept marks a reply as the answer to its question. Only the question
// owner may accept; any previously accepted reply of the question is
// cleared. Accepting the current answer again changes nothing.
func (s *ReplyService) Accept(ctx context.Context, actor Actor, id string) (*models.Reply, error) {
	const op = "services.replies.Accept"

	db := s.db.WithContext(ctx)
	var reply models.Reply
	if err := db.Where("id = ?", id).Take(&reply).Error; err != nil {
		return nil, storeError(op, err)
	}
	var question models.Question
	if err := db.Select("id", "user_id").Where("id = ?", reply.QuestionID).Take(&question).Error; err != nil {
		return nil, storeError(op, err)
	}
	if err := authorize(op, actor, Resource{Kind: resourceQuestion, OwnerID: question.UserID}, ActionAccept); err != nil {
		return nil, err
	}
	if reply.IsAccepted {
		return &reply, nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Reply{}).
			Where("question_id = ? AND id <> ? AND is_accepted = ?", question.ID, reply.ID, true).
			Update("is_accepted", false).Error; err != nil {
			return err
		}
		return tx.Model(&reply).Update("is_accepted", true).Error
	})
	if err != nil {
		return nil, storeError(op, err)
	}
	reply.IsAccepted = true

	s.emitter.Emit(ctx, notify.Event{
		Kind:         models.NotificationTypeAccepted,
		ActorID:      actor.ID,
		TargetUserID: reply.UserID,
		QuestionID:   question.ID,
		ReplyID:      reply.ID,
	})
	return &reply, nil
}

// deleteReplyTree removes a reply, every descendant and their votes. It
// reports whether the reply existed.
func deleteReplyTree(tx *gorm.DB, replyID string) (bool, error) {
	ids := []string{replyID}
	level := []string{replyID}
	for len(level) > 0 {
		var children []string
		if err := tx.Model(&models.Reply{}).Where("parent_id IN ?", level).Pluck("id", &children).Error; err != nil {
			return false, err
		}
		ids = append(ids, children...)
		level = children
	}

	if err := tx.Where("reply_id IN ?", ids).Delete(&models.ReplyVote{}).Error; err != nil {
		return false, err
	}
	res := tx.Where("id IN ?", ids).Delete(&models.Reply{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
