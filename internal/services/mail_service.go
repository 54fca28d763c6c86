package services

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/containrrr/shoutrrr"
	"github.com/microcosm-cc/bluemonday"

	"github.com/tasklane/backend/internal/config"
	"github.com/tasklane/backend/internal/logger"
	"github.com/tasklane/backend/internal/models"
)

var ErrMailNotConfigured = errors.New("SMTP not configured")

// Mailer delivers a single HTML email.
type Mailer interface {
	SendEmail(to, subject, htmlBody string) error
}

// MailService sends email through shoutrrr's SMTP service.
type MailService struct {
	cfg  config.SMTPConfig
	send func(rawURL, message string) error
}

// NewMailService creates a new mail service instance.
func NewMailService(cfg config.SMTPConfig) *MailService {
	return &MailService{cfg: cfg, send: shoutrrr.Send}
}

// IsConfigured returns true if SMTP is properly configured.
func (s *MailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.FromAddress != ""
}

// SendEmail sends an email using the configured SMTP settings.
func (s *MailService) SendEmail(to, subject, htmlBody string) error {
	if !s.IsConfigured() {
		return ErrMailNotConfigured
	}
	rawURL, err := s.smtpURL(to, subject)
	if err != nil {
		return err
	}
	if err := s.send(rawURL, htmlBody); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// smtpURL builds the shoutrrr service URL for one recipient.
func (s *MailService) smtpURL(to, subject string) (string, error) {
	if strings.TrimSpace(to) == "" {
		return "", errors.New("recipient address is required")
	}

	u := url.URL{
		Scheme: "smtp",
		Host:   s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port),
		Path:   "/",
	}
	q := url.Values{}
	if s.cfg.Username != "" {
		u.User = url.UserPassword(s.cfg.Username, s.cfg.Password)
		q.Set("auth", "Plain")
	} else {
		q.Set("auth", "None")
	}
	q.Set("from", s.cfg.FromAddress)
	q.Set("to", to)
	q.Set("subject", subject)
	q.Set("usehtml", "yes")

	switch strings.ToLower(s.cfg.Encryption) {
	case "ssl":
		q.Set("encryption", "ImplicitTLS")
		q.Set("starttls", "no")
	case "none":
		q.Set("encryption", "None")
		q.Set("starttls", "no")
	case "starttls", "":
		q.Set("encryption", "ExplicitTLS")
		q.Set("starttls", "yes")
	default:
		return "", fmt.Errorf("unsupported SMTP encryption: %s", s.cfg.Encryption)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

const notificationEmailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <p style="color: #666; font-size: 14px;">Hi {{.ReceiverName}},</p>
    <h2 style="margin-top: 0;">{{.Title}}</h2>
    {{if .Actor}}<p style="color: #666; font-size: 14px;">{{.Actor}} updated this {{.EntityName}}.</p>{{end}}
    {{if .MessageHTML}}<div style="background: #f9f9f9; padding: 16px; border-radius: 6px; border: 1px solid #e0e0e0;">{{.MessageHTML}}</div>{{end}}
    <hr style="border: none; border-top: 1px solid #e0e0e0; margin: 20px 0;">
    <p style="color: #999; font-size: 12px;">You are receiving this because of your notification preferences.</p>
</body>
</html>
`

var notificationEmail = template.Must(template.New("notification").Parse(notificationEmailTemplate))

// messagePolicy keeps rich-text formatting and drops scripts, event handlers
// and unsafe URLs from event-supplied message_html.
var messagePolicy = bluemonday.UGCPolicy()

// RenderNotificationEmail builds the subject and HTML body for a queued email
// log. Receiver and TriggeredBy should be preloaded.
func RenderNotificationEmail(log models.EmailNotificationLog) (string, string, error) {
	title, _ := log.Data["title"].(string)
	if title == "" {
		title = fmt.Sprintf("Updates on your %s", log.EntityName)
	}
	messageHTML, _ := log.Data["message_html"].(string)

	data := map[string]interface{}{
		"Title":        title,
		"EntityName":   log.EntityName,
		"ReceiverName": "there",
		"Actor":        "",
		"MessageHTML":  template.HTML(messagePolicy.Sanitize(messageHTML)),
	}
	if log.Receiver != nil && log.Receiver.DisplayName != "" {
		data["ReceiverName"] = log.Receiver.DisplayName
	}
	if log.TriggeredBy != nil {
		actor := log.TriggeredBy.DisplayName
		if actor == "" {
			actor = log.TriggeredBy.Email
		}
		data["Actor"] = actor
	}

	var body bytes.Buffer
	if err := notificationEmail.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("failed to execute email template: %w", err)
	}

	logger.Log().WithField("entity", log.EntityName).Debug("rendered notification email")
	return title, body.String(), nil
}
