package services

import (
	"strings"
	"testing"

	"askboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenario_QuestionReplyAcceptVote(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	c := f.user(t, "c")
	d := f.user(t, "d")

	q := f.question(t, a)

	r1 := f.reply(t, b, OnQuestion(q.ID), "try :q!")
	na := f.notifications(t, a.ID)
	require.Len(t, na, 1)
	assert.Equal(t, models.NotificationTypeReply, na[0].Type)
	assert.True(t, strings.Contains(na[0].Link, q.ID))
	assert.Equal(t, b.ID, na[0].ActorID)

	r2 := f.reply(t, c, UnderReply(r1.ID), "or ZQ")
	assert.Equal(t, q.ID, r2.QuestionID)
	assert.NotEqual(t, r1.ID, r2.QuestionID)
	nb := f.notifications(t, b.ID)
	require.Len(t, nb, 1)
	assert.Equal(t, models.NotificationTypeNestedReply, nb[0].Type)
	assert.Contains(t, nb[0].Link, "#reply-"+r2.ID)

	_, err := f.svc.Replies.Accept(f.ctx, a, r1.ID)
	require.NoError(t, err)
	nb = f.notifications(t, b.ID)
	require.Len(t, nb, 2)
	assert.Equal(t, models.NotificationTypeAccepted, nb[1].Type)

	res, err := f.svc.Votes.Cast(f.ctx, d, r1.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Votes)
	nb = f.notifications(t, b.ID)
	require.Len(t, nb, 3)
	assert.Equal(t, models.NotificationTypeVote, nb[2].Type)
	assert.Equal(t, 1, f.storedVotes(t, r1.ID))

	res, err = f.svc.Votes.Remove(f.ctx, d, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Votes)
	assert.Equal(t, 0, f.storedVotes(t, r1.ID))
	assert.Len(t, f.notifications(t, b.ID), 3)

	// Nobody was ever told about their own action.
	var self int64
	require.NoError(t, f.db.Model(&models.Notification{}).Where("user_id = actor_id").Count(&self).Error)
	assert.Zero(t, self)
}
