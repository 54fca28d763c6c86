package services

import (
	"testing"

	"gorm.io/datatypes"

	"github.com/tasklane/backend/internal/config"
	"github.com/tasklane/backend/internal/models"
)

func BenchmarkSMTPURL(b *testing.B) {
	svc := NewMailService(config.SMTPConfig{Host: "smtp.example.com", Port: 587, FromAddress: "noreply@example.com"})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = svc.smtpURL("bob@example.com", "Updates on WEB-12")
	}
}

func BenchmarkRenderNotificationEmail(b *testing.B) {
	entry := models.EmailNotificationLog{
		EntityName:  "issue",
		Receiver:    &models.User{DisplayName: "Bob"},
		TriggeredBy: &models.User{DisplayName: "Alice"},
		Data:        datatypes.JSONMap{"title": "WEB-12 updated", "message_html": "<p>Done</p>"},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = RenderNotificationEmail(entry)
	}
}
