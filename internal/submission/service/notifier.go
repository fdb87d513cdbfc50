package service

import (
	"bytes"
	"context"
	"embed"
	"html/template"

	"submitrelay/internal/common/mail"
	"submitrelay/internal/submission/model"
	appErr "submitrelay/pkg/errors"
	"submitrelay/pkg/utils/logger"

	"go.uber.org/zap"
)

const (
	successSubject = "Assignment submission accepted"
	failureSubject = "Assignment submission failed"
)

//go:embed templates/*.html
var templateFS embed.FS

var emailTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// NotifyContext is the data rendered into notification emails.
type NotifyContext struct {
	AssignmentID  string
	SubmissionURL string
	UserEmail     string
}

// Notifier sends the outcome email to the submitter.
type Notifier struct {
	mailer mail.Mailer
	sender string
}

// NewNotifier creates a notifier sending from sender.
func NewNotifier(mailer mail.Mailer, sender string) *Notifier {
	return &Notifier{mailer: mailer, sender: sender}
}

// Notify renders the outcome template and sends it to email. It reports whether the send succeeded.
func (n *Notifier) Notify(ctx context.Context, email string, outcome model.OutcomeType, data NotifyContext) bool {
	if n == nil || n.mailer == nil {
		logger.Warn(ctx, "mailer is not configured, skip notification", zap.String("outcome", string(outcome)))
		return false
	}
	msg, err := n.render(email, outcome, data)
	if err != nil {
		logger.Error(ctx, "render notification failed", zap.String("outcome", string(outcome)), zap.Error(err))
		return false
	}
	id, err := n.mailer.Send(ctx, msg)
	if err != nil {
		logger.Error(ctx, "send notification failed",
			zap.String("to", email),
			zap.String("outcome", string(outcome)),
			zap.Error(appErr.Wrap(err, appErr.NotificationSendFailed)),
		)
		return false
	}
	logger.Info(ctx, "notification sent", zap.String("to", email), zap.String("outcome", string(outcome)), zap.String("message_id", id))
	return true
}

func (n *Notifier) render(email string, outcome model.OutcomeType, data NotifyContext) (mail.Message, error) {
	name, subject := "failure.html", failureSubject
	if outcome == model.OutcomeSuccess {
		name, subject = "success.html", successSubject
	}
	var body bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&body, name, data); err != nil {
		return mail.Message{}, appErr.Wrapf(err, appErr.NotificationRenderFail, "render %s failed", name)
	}
	return mail.Message{
		From:    n.sender,
		To:      []string{email},
		Subject: subject,
		HTML:    body.String(),
	}, nil
}
