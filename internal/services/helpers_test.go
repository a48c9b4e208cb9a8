package services

import (
	"context"
	"testing"
	"time"

	"askboard/internal/config"
	"askboard/internal/db"
	"askboard/internal/models"
	"askboard/internal/notify"
	"askboard/internal/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db  *gorm.DB
	svc *Services
	ctx context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb, err := db.Open(config.DBConfig{URL: "sqlite://:memory:", MaxConns: 1}, nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	cache, err := utils.NewCache[[]models.Question](16, time.Minute)
	require.NoError(t, err)

	emitter := notify.NewInline(notify.NewRecorder(gdb, nil, ""))
	return &fixture{db: gdb, svc: New(gdb, cache, emitter), ctx: context.Background()}
}

func (f *fixture) user(t *testing.T, name string) Actor {
	t.Helper()
	u := models.User{Username: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, f.db.Create(&u).Error)
	return ActorFromUser(&u)
}

func (f *fixture) admin(t *testing.T, name string) Actor {
	t.Helper()
	u := models.User{Username: name, Email: name + "@example.com", Password: "x", Role: models.RoleAdmin}
	require.NoError(t, f.db.Create(&u).Error)
	return ActorFromUser(&u)
}

func (f *fixture) question(t *testing.T, owner Actor) *models.Question {
	t.Helper()
	q, err := f.svc.Questions.Create(f.ctx, owner, "How do I exit vim?", "I am stuck.", []string{"vim"})
	require.NoError(t, err)
	return q
}

func (f *fixture) reply(t *testing.T, actor Actor, target ReplyTarget, content string) *models.Reply {
	t.Helper()
	r, err := f.svc.Replies.Create(f.ctx, actor, target, content)
	require.NoError(t, err)
	return r
}

func (f *fixture) notifications(t *testing.T, userID string) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, f.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&out).Error)
	return out
}

func (f *fixture) storedVotes(t *testing.T, replyID string) int {
	t.Helper()
	var r models.Reply
	require.NoError(t, f.db.Select("votes").Where("id = ?", replyID).Take(&r).Error)
	return r.Votes
}

func (f *fixture) sumVotes(t *testing.T, replyID string) int {
	t.Helper()
	var total int
	require.NoError(t, f.db.Model(&models.ReplyVote{}).Select("COALESCE(SUM(value), 0)").Where("reply_id = ?", replyID).Scan(&total).Error)
	return total
}
