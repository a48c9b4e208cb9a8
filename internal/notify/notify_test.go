package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"askboard/internal/config"
	"askboard/internal/db"
	"askboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(config.DBConfig{URL: "sqlite://:memory:", MaxConns: 1}, nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func createUser(t *testing.T, gdb *gorm.DB, name string) models.User {
	t.Helper()
	u := models.User{Username: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

type fakeMailer struct {
	mu    sync.Mutex
	sent  []string
	links []string
}

func (m *fakeMailer) SendReplyNotification(to, actor, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+"|"+actor)
	m.links = append(m.links, link)
	return nil
}

func TestBuild_Templates(t *testing.T) {
	cases := []struct {
		kind    models.NotificationType
		message string
		link    string
	}{
		{models.NotificationTypeReply, "Someone replied to your question.", "/questions/q1"},
		{models.NotificationTypeNestedReply, "Someone replied to your comment.", "/questions/q1#reply-r1"},
		{models.NotificationTypeAccepted, "Your reply was accepted as the answer.", "/questions/q1#reply-r1"},
		{models.NotificationTypeVote, "Your reply was upvoted.", "/questions/q1#reply-r1"},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			n, ok := Build(Event{Kind: tc.kind, ActorID: "a", TargetUserID: "b", QuestionID: "q1", ReplyID: "r1"})
			require.True(t, ok)
			assert.Equal(t, tc.kind, n.Type)
			assert.Equal(t, "b", n.UserID)
			assert.Equal(t, "a", n.ActorID)
			assert.Equal(t, tc.message, n.Message)
			assert.Equal(t, tc.link, n.Link)
			assert.False(t, n.IsRead)
		})
	}
}

func TestBuild_SuppressesSelf(t *testing.T) {
	for _, kind := range []models.NotificationType{
		models.NotificationTypeReply,
		models.NotificationTypeNestedReply,
		models.NotificationTypeAccepted,
		models.NotificationTypeVote,
	} {
		_, ok := Build(Event{Kind: kind, ActorID: "a", TargetUserID: "a", QuestionID: "q", ReplyID: "r"})
		assert.False(t, ok, kind)
	}
}

func TestBuild_RejectsIncomplete(t *testing.T) {
	_, ok := Build(Event{Kind: models.NotificationTypeReply, ActorID: "a", QuestionID: "q"})
	assert.False(t, ok)
	_, ok = Build(Event{Kind: "unknown", ActorID: "a", TargetUserID: "b", QuestionID: "q"})
	assert.False(t, ok)
}

func TestRecorder_WritesAndMails(t *testing.T) {
	gdb := openTestDB(t)
	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")
	mailer := &fakeMailer{}
	rec := NewRecorder(gdb, mailer, "https://ask.example.com")
	ctx := context.Background()

	require.NoError(t, rec.Record(ctx, Event{
		Kind: models.NotificationTypeNestedReply, ActorID: bob.ID, TargetUserID: alice.ID,
		QuestionID: "q1", ReplyID: "r2",
	}))
	require.NoError(t, rec.Record(ctx, Event{
		Kind: models.NotificationTypeVote, ActorID: bob.ID, TargetUserID: alice.ID,
		QuestionID: "q1", ReplyID: "r1",
	}))
	require.NoError(t, rec.Record(ctx, Event{
		Kind: models.NotificationTypeVote, ActorID: alice.ID, TargetUserID: alice.ID,
		QuestionID: "q1", ReplyID: "r1",
	}))

	var got []models.Notification
	require.NoError(t, gdb.Where("user_id = ?", alice.ID).Order("created_at ASC").Find(&got).Error)
	require.Len(t, got, 2)

	require.Len(t, mailer.sent, 1, "only nested replies are mailed")
	assert.Equal(t, "alice@example.com|bob", mailer.sent[0])
	assert.Equal(t, "https://ask.example.com/questions/q1#reply-r2", mailer.links[0])
}

func TestInline(t *testing.T) {
	gdb := openTestDB(t)
	alice := createUser(t, gdb, "alice")
	em := NewInline(NewRecorder(gdb, nil, ""))

	em.Emit(context.Background(), Event{
		Kind: models.NotificationTypeReply, ActorID: "someone", TargetUserID: alice.ID, QuestionID: "q1",
	})

	var count int64
	require.NoError(t, gdb.Model(&models.Notification{}).Where("user_id = ?", alice.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDispatcher_DrainsOnClose(t *testing.T) {
	gdb := openTestDB(t)
	alice := createUser(t, gdb, "alice")
	d := NewDispatcher(NewRecorder(gdb, nil, ""), 100)

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 10; i++ {
		d.Emit(ctx, Event{
			Kind: models.NotificationTypeVote, ActorID: "other", TargetUserID: alice.ID,
			QuestionID: "q1", ReplyID: "r1",
		})
	}
	// Delivery must not depend on the caller's context staying alive.
	cancel()

	closeCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	require.NoError(t, d.Close(closeCtx))

	var count int64
	require.NoError(t, gdb.Model(&models.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 10, count)

	// Emit after Close is dropped, not a panic.
	d.Emit(context.Background(), Event{Kind: models.NotificationTypeVote, ActorID: "x", TargetUserID: alice.ID, QuestionID: "q"})
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	gdb := openTestDB(t)
	rec := NewRecorder(gdb, nil, "")
	// No worker: the queue is never consumed.
	d := &Dispatcher{recorder: rec, queue: make(chan queued, 1), done: make(chan struct{})}

	ev := Event{Kind: models.NotificationTypeVote, ActorID: "x", TargetUserID: "y", QuestionID: "q"}
	d.Emit(context.Background(), ev)
	d.Emit(context.Background(), ev)

	assert.Len(t, d.queue, 1)
}
