package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"strings"

	"askboard/internal/config"
)

//go:embed templates/*.html
var mailTemplates embed.FS

// Mailer sends notification e-mails.
type Mailer interface {
	SendReplyNotification(to, actor, link string) error
}

// SMTPMailer sends HTML mail through a plain-auth SMTP server.
type SMTPMailer struct {
	cfg  config.MailConfig
	tmpl *template.Template
}

// NewSMTPMailer returns nil when cfg is incomplete, which disables mail.
func NewSMTPMailer(cfg config.MailConfig) (*SMTPMailer, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	tmpl, err := template.ParseFS(mailTemplates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &SMTPMailer{cfg: cfg, tmpl: tmpl}, nil
}

func (s *SMTPMailer) SendReplyNotification(to, actor, link string) error {
	if actor == "" {
		actor = "Someone"
	}
	body, err := renderMail(s.tmpl, "reply.html", map[string]string{
		"ActiveUser": actor,
		"Link":       link,
	})
	if err != nil {
		return err
	}
	return s.send(to, actor+" replied to your comment", body)
}

func renderMail(t *template.Template, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (s *SMTPMailer) send(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)

	msg := buildMessage(to, s.cfg.From, subject, body)
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// buildMessage assembles the raw message. Header values never carry line
// breaks; the subject is Q-encoded so user names survive as plain text.
func buildMessage(to, from, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", headerValue(to))
	fmt.Fprintf(&b, "From: askboard <%s>\r\n", headerValue(from))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", headerValue(subject)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

var headerBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

func headerValue(v string) string {
	return headerBreaks.Replace(v)
}
