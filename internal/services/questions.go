package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"askboard/internal/logctx"
	"askboard/internal/models"
	"askboard/internal/utils"

	"gorm.io/gorm"
)

// QuestionsPerPage is the page size of the question list.
const QuestionsPerPage = 30

type QuestionService struct {
	db    *gorm.DB
	cache *utils.Cache[[]models.Question]
}

// NewQuestionService creates the question store. cache may be nil.
func NewQuestionService(db *gorm.DB, cache *utils.Cache[[]models.Question]) *QuestionService {
	return &QuestionService{db: db, cache: cache}
}

// QuestionPatch holds the fields of an update; nil fields are left alone.
type QuestionPatch struct {
	Title       *string
	Description *string
	Tags        []string
	SetTags     bool
}

func (s *QuestionService) Create(ctx context.Context, actor Actor, title, description string, tags []string) (*models.Question, error) {
	const op = "services.questions.Create"

	if err := authorize(op, actor, Resource{Kind: resourceQuestion}, ActionCreate); err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fail(op, ErrInvalidArgument, "title is required")
	}

	q := models.Question{
		UserID:      actor.ID,
		Title:       title,
		Description: description,
		Tags:        NormalizeTags(tags),
	}
	if err := s.db.WithContext(ctx).Create(&q).Error; err != nil {
		logctx.From(ctx).Error("create_question_failed", slog.String("op", op), slog.String("err", err.Error()))
		return nil, storeError(op, err)
	}
	s.purge()

	logctx.From(ctx).Info("question_created", slog.String("op", op), slog.String("question_id", q.ID))
	return &q, nil
}

// List returns one page of questions, newest first, with authors resolved.
func (s *QuestionService) List(ctx context.Context, page int) ([]models.Question, error) {
	const op = "services.questions.List"

	if page < 1 {
		page = 1
	}
	key := fmt.Sprintf("questions:page:%d", page)
	if s.cache != nil {
		if qs, ok := s.cache.Get(key); ok {
			return qs, nil
		}
	}

	var questions []models.Question
	err := s.db.WithContext(ctx).
		Preload("User", selectAuthor).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * QuestionsPerPage).
		Limit(QuestionsPerPage).
		Find(&questions).Error
	if err != nil {
		return nil, storeError(op, err)
	}

	if s.cache != nil {
		s.cache.Set(key, questions)
	}
	return questions, nil
}

func (s *QuestionService) Get(ctx context.Context, id string) (*models.Question, error) {
	const op = "services.questions.Get"

	var q models.Question
	if err := s.db.WithContext(ctx).Preload("User", selectAuthor).Where("id = ?", id).Take(&q).Error; err != nil {
		return nil, storeError(op, err)
	}
	return &q, nil
}

func (s *QuestionService) Update(ctx context.Context, actor Actor, id string, patch QuestionPatch) (*models.Question, error) {
	const op = "services.questions.Update"

	var q models.Question
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&q).Error; err != nil {
		return nil, storeError(op, err)
	}
	if err := authorize(op, actor, Resource{Kind: resourceQuestion, OwnerID: q.UserID}, ActionUpdate); err != nil {
		return nil, err
	}

	var columns []string
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fail(op, ErrInvalidArgument, "title cannot be empty")
		}
		q.Title = title
		columns = append(columns, "title")
	}
	if patch.Description != nil {
		q.Description = *patch.Description
		columns = append(columns, "description")
	}
	if patch.SetTags {
		q.Tags = NormalizeTags(patch.Tags)
		columns = append(columns, "tags")
	}
	if len(columns) == 0 {
		return &q, nil
	}

	// Struct updates keep the json serializer on tags.
	if err := s.db.WithContext(ctx).Model(&q).Select(columns).Updates(&q).Error; err != nil {
		return nil, storeError(op, err)
	}
	s.purge()
	return &q, nil
}

// Delete removes the question together with its replies and their votes.
func (s *QuestionService) Delete(ctx context.Context, actor Actor, id string) error {
	const op = "services.questions.Delete"

	var q models.Question
	if err := s.db.WithContext(ctx).Select("id", "user_id").Where("id = ?", id).Take(&q).Error; err != nil {
		return storeError(op, err)
	}
	if err := authorize(op, actor, Resource{Kind: resourceQuestion, OwnerID: q.UserID}, ActionDelete); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := deleteQuestionTree(tx, id)
		return err
	})
	if err != nil {
		return storeError(op, err)
	}
	s.purge()

	logctx.From(ctx).Info("question_deleted", slog.String("op", op), slog.String("question_id", id), slog.String("actor_id", actor.ID))
	return nil
}

func (s *QuestionService) purge() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

// NormalizeTags trims, lower-cases and de-duplicates tags, keeping first
// occurrence order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// selectAuthor limits preloaded users to their public columns.
func selectAuthor(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "role", "is_banned", "created_at")
}

// deleteQuestionTree removes a question, its replies and their votes. It
// reports whether the question existed.
func deleteQuestionTree(tx *gorm.DB, questionID string) (bool, error) {
	replyIDs := tx.Model(&models.Reply{}).Select("id").Where("question_id = ?", questionID)
	if err := tx.Where("reply_id IN (?)", replyIDs).Delete(&models.ReplyVote{}).Error; err != nil {
		return false, err
	}
	if err := tx.Where("question_id = ?", questionID).Delete(&models.Reply{}).Error; err != nil {
		return false, err
	}
	res := tx.Where("id = ?", questionID).Delete(&models.Question{})
	return res.RowsAffected > 0, res.Error
}
