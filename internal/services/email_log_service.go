package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tasklane/backend/internal/metrics"
	"github.com/tasklane/backend/internal/models"
)

var ErrEmailLogNotFound = errors.New("email notification log not found")

// MaxEmailAttempts is how many failed sends a log gets before it is parked.
const MaxEmailAttempts = 5

// EmailLogService stores the queue of email notifications owed to users.
type EmailLogService struct {
	DB *gorm.DB
}

func NewEmailLogService(db *gorm.DB) *EmailLogService {
	return &EmailLogService{DB: db}
}

func (s *EmailLogService) Record(log *models.EmailNotificationLog) error {
	if err := s.DB.Create(log).Error; err != nil {
		return fmt.Errorf("record email notification: %w", err)
	}
	metrics.IncEmailLogRecorded()
	return nil
}

// ListPending returns unsent logs with receiver and actor loaded. Logs never
// attempted come first, oldest first, then failed logs by least recent
// attempt. Logs that reached MaxEmailAttempts are not returned.
func (s *EmailLogService) ListPending(limit int) ([]models.EmailNotificationLog, error) {
	query := s.DB.Preload("Receiver").Preload("TriggeredBy").
		Where("sent_at IS NULL AND attempts < ?", MaxEmailAttempts).
		Order("CASE WHEN last_attempt_at IS NULL THEN 0 ELSE 1 END").
		Order("last_attempt_at asc").
		Order("created_at asc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var logs []models.EmailNotificationLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list pending email notifications: %w", err)
	}
	return logs, nil
}

func (s *EmailLogService) ListForReceiver(receiverID string) ([]models.EmailNotificationLog, error) {
	var logs []models.EmailNotificationLog
	if err := s.DB.Where("receiver_id = ?", receiverID).Order(models.NewestFirst).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list email notifications: %w", err)
	}
	return logs, nil
}

// MarkSent stamps the log as delivered. Already-sent logs are left untouched.
func (s *EmailLogService) MarkSent(id string, at time.Time) error {
	result := s.DB.Model(&models.EmailNotificationLog{}).
		Where("id = ? AND sent_at IS NULL", id).
		Update("sent_at", at.UTC())
	if result.Error != nil {
		return fmt.Errorf("mark email notification sent: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEmailLogNotFound
	}
	return nil
}

// MarkFailed records a failed send so the log moves behind untried mail.
func (s *EmailLogService) MarkFailed(id string, at time.Time) error {
	result := s.DB.Model(&models.EmailNotificationLog{}).
		Where("id = ? AND sent_at IS NULL", id).
		Updates(map[string]interface{}{
			"attempts":        gorm.Expr("attempts + 1"),
			"last_attempt_at": at.UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("mark email notification failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEmailLogNotFound
	}
	return nil
}
