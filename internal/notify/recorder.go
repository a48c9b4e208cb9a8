package notify

import (
	"context"
	"fmt"
	"log/slog"

	"askboard/internal/logctx"
	"askboard/internal/metrics"
	"askboard/internal/models"

	"gorm.io/gorm"
)

// Recorder persists notifications and, when a Mailer is set, mails the
// parent owner about nested replies.
type Recorder struct {
	db      *gorm.DB
	mailer  Mailer
	siteURL string
}

func NewRecorder(db *gorm.DB, mailer Mailer, siteURL string) *Recorder {
	return &Recorder{db: db, mailer: mailer, siteURL: siteURL}
}

// Record writes the notification for ev. Suppressed events are not errors.
func (r *Recorder) Record(ctx context.Context, ev Event) error {
	const op = "notify.Record"

	n, ok := Build(ev)
	if !ok {
		metrics.Notifications.WithLabelValues(string(ev.Kind), metrics.ResultSuppressed).Inc()
		return nil
	}

	if err := r.db.WithContext(ctx).Create(&n).Error; err != nil {
		metrics.Notifications.WithLabelValues(string(ev.Kind), metrics.ResultFailed).Inc()
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.Notifications.WithLabelValues(string(ev.Kind), metrics.ResultCreated).Inc()

	if r.mailer != nil && ev.Kind == models.NotificationTypeNestedReply {
		r.mail(ctx, n)
	}
	return nil
}

func (r *Recorder) mail(ctx context.Context, n models.Notification) {
	lg := logctx.From(ctx).With("op", "notify.mail", "notification_id", n.ID)

	var users []models.User
	if err := r.db.WithContext(ctx).
		Select("id", "username", "email").
		Where("id IN ?", []string{n.UserID, n.ActorID}).
		Find(&users).Error; err != nil {
		lg.Warn("mail_lookup_failed", slog.String("err", err.Error()))
		return
	}

	var to, actor string
	for _, u := range users {
		if u.ID == n.UserID {
			to = u.Email
		}
		if u.ID == n.ActorID {
			actor = u.Username
		}
	}
	if to == "" {
		return
	}

	if err := r.mailer.SendReplyNotification(to, actor, r.siteURL+n.Link); err != nil {
		lg.Warn("mail_send_failed", slog.String("err", err.Error()))
	}
}

// Inline records events synchronously in the caller's goroutine.
type Inline struct {
	recorder *Recorder
}

func NewInline(r *Recorder) *Inline {
	return &Inline{recorder: r}
}

func (e *Inline) Emit(ctx context.Context, ev Event) {
	if err := e.recorder.Record(ctx, ev); err != nil {
		logctx.From(ctx).Error("notification_failed",
			slog.String("type", string(ev.Kind)),
			slog.String("err", err.Error()),
		)
	}
}
