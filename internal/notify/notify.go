// Package notify turns reply, acceptance and vote events into notifications
// for the affected user.
//
// Services describe what happened with an Event and hand it to an Emitter
// after their own write has committed. Emitters never report failure back:
// a lost notification does not undo the action that caused it.
package notify

import (
	"context"
	"fmt"

	"askboard/internal/models"
)

// Event is one notifiable action. TargetUserID is the user who would be told
// about it; ReplyID is the reply the link anchors to, if any.
type Event struct {
	Kind         models.NotificationType
	ActorID      string
	TargetUserID string
	QuestionID   string
	ReplyID      string
}

// Emitter accepts events for delivery.
type Emitter interface {
	Emit(ctx context.Context, ev Event)
}

// Build renders the notification for ev. It returns false when nothing must
// be sent: the actor is the target, or the event is incomplete.
func Build(ev Event) (models.Notification, bool) {
	if ev.TargetUserID == "" || ev.ActorID == ev.TargetUserID || ev.QuestionID == "" {
		return models.Notification{}, false
	}

	n := models.Notification{
		UserID:  ev.TargetUserID,
		ActorID: ev.ActorID,
		Type:    ev.Kind,
		Link:    questionLink(ev.QuestionID, ev.ReplyID),
	}

	switch ev.Kind {
	case models.NotificationTypeReply:
		n.Message = "Someone replied to your question."
		n.Link = questionLink(ev.QuestionID, "")
	case models.NotificationTypeNestedReply:
		n.Message = "Someone replied to your comment."
	case models.NotificationTypeAccepted:
		n.Message = "Your reply was accepted as the answer."
	case models.NotificationTypeVote:
		n.Message = "Your reply was upvoted."
	default:
		return models.Notification{}, false
	}
	return n, true
}

func questionLink(questionID, replyID string) string {
	if replyID == "" {
		return fmt.Sprintf("/questions/%s", questionID)
	}
	return fmt.Sprintf("/questions/%s#reply-%s", questionID, replyID)
}
