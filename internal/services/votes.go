package services

import (
	"context"
	"errors"
	"log/slog"

	"askboard/internal/logctx"
	"askboard/internal/metrics"
	"askboard/internal/models"
	"askboard/internal/notify"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoteService struct {
	db      *gorm.DB
	emitter notify.Emitter
}

func NewVoteService(db *gorm.DB, emitter notify.Emitter) *VoteService {
	return &VoteService{db: db, emitter: emitter}
}

// VoteResult is the state of a reply after a vote change.
type VoteResult struct {
	ReplyID string `json:"reply_id"`
	Votes   int    `json:"votes"`
	Value   int    `json:"value"` // caller's vote, 0 if none
}

// Cast records the actor's vote on a reply. A repeated vote with the same
// value is a conflict; the opposite value flips the existing vote. The
// reply total is recomputed from all votes inside the same transaction.
func (s *VoteService) Cast(ctx context.Context, actor Actor, replyID string, value int) (*VoteResult, error) {
	const op = "services.votes.Cast"
	lg := logctx.From(ctx).With("op", op, "reply_id", replyID, "actor_id", actor.ID)

	if err := authorize(op, actor, Resource{Kind: resourceVote}, ActionVote); err != nil {
		return nil, err
	}
	if value != 1 && value != -1 {
		return nil, fail(op, ErrInvalidArgument, "vote value must be 1 or -1")
	}

	var reply models.Reply
	var total int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockReply(tx, replyID, &reply); err != nil {
			return storeError(op, err)
		}

		var existing models.ReplyVote
		err := tx.Where("user_id = ? AND reply_id = ?", actor.ID, replyID).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.ReplyVote{UserID: actor.ID, ReplyID: replyID, Value: value}
			if err := tx.Create(&vote).Error; err != nil {
				return storeError(op, err)
			}
		case err != nil:
			return storeError(op, err)
		case existing.Value == value:
			return fail(op, ErrConflict, "already voted this way")
		default:
			if err := tx.Model(&existing).Update("value", value).Error; err != nil {
				return storeError(op, err)
			}
		}

		total, err = recountVotes(tx, replyID)
		if err != nil {
			return storeError(op, err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrConflict) && !errors.Is(err, ErrNotFound) {
			lg.Error("cast_vote_failed", slog.String("err", err.Error()))
		}
		return nil, err
	}
	metrics.Votes.WithLabelValues(metrics.VoteLabel(value)).Inc()

	if value == 1 {
		s.emitter.Emit(ctx, notify.Event{
			Kind:         models.NotificationTypeVote,
			ActorID:      actor.ID,
			TargetUserID: reply.UserID,
			QuestionID:   reply.QuestionID,
			ReplyID:      reply.ID,
		})
	}

	lg.Info("vote_cast", slog.Int("value", value), slog.Int("votes", total))
	return &VoteResult{ReplyID: replyID, Votes: total, Value: value}, nil
}

// Remove deletes the actor's vote on a reply if there is one, then
// recomputes the total. Removing a vote that was never cast is not an error.
func (s *VoteService) Remove(ctx context.Context, actor Actor, replyID string) (*VoteResult, error) {
	const op = "services.votes.Remove"

	if err := authorize(op, actor, Resource{Kind: resourceVote}, ActionVote); err != nil {
		return nil, err
	}

	var total int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reply models.Reply
		if err := lockReply(tx, replyID, &reply); err != nil {
			return storeError(op, err)
		}
		if err := tx.Where("user_id = ? AND reply_id = ?", actor.ID, replyID).Delete(&models.ReplyVote{}).Error; err != nil {
			return storeError(op, err)
		}

		var err error
		total, err = recountVotes(tx, replyID)
		if err != nil {
			return storeError(op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &VoteResult{ReplyID: replyID, Votes: total}, nil
}

// lockReply loads the reply and holds its row for the rest of the
// transaction. sqlite has no row locks but serializes writers.
func lockReply(tx *gorm.DB, replyID string, reply *models.Reply) error {
	q := tx.Select("id", "user_id", "question_id")
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q.Where("id = ?", replyID).Take(reply).Error
}

// recountVotes stores SUM(value) of the reply's votes as its total.
func recountVotes(tx *gorm.DB, replyID string) (int, error) {
	var total int
	if err := tx.Model(&models.ReplyVote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("reply_id = ?", replyID).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&models.Reply{}).Where("id = ?", replyID).UpdateColumn("votes", total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
