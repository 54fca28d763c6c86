package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tasklane/backend/internal/metrics"
	"github.com/tasklane/backend/internal/models"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidSnooze        = errors.New("snooze time must be in the future")
)

// NotificationFilter narrows a receiver's notification listing.
type NotificationFilter struct {
	WorkspaceID string
	// Read selects read (true) or unread (false) notifications; nil keeps both.
	Read     *bool
	Archived bool
	Snoozed  bool
}

type NotificationService struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db, now: utcNow}
}

func (s *NotificationService) Create(n *models.Notification) error {
	if err := s.DB.Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	metrics.IncNotificationCreated()
	return nil
}

// List returns the receiver's notifications newest first. Without Archived or
// Snoozed set it hides archived and currently snoozed notifications, which is
// what an inbox shows.
func (s *NotificationService) List(receiverID string, filter NotificationFilter) ([]models.Notification, error) {
	now := s.now()
	query := s.DB.Where("receiver_id = ?", receiverID).Order(models.NewestFirst)
	if filter.WorkspaceID != "" {
		query = query.Where("workspace_id = ?", filter.WorkspaceID)
	}

	switch {
	case filter.Archived:
		query = query.Where("archived_at IS NOT NULL")
	case filter.Snoozed:
		query = query.Where("archived_at IS NULL").Where("snoozed_till > ?", now)
	default:
		query = visibleInInbox(query, now)
	}

	if filter.Read != nil {
		if *filter.Read {
			query = query.Where("read_at IS NOT NULL")
		} else {
			query = query.Where("read_at IS NULL")
		}
	}

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

func (s *NotificationService) Get(receiverID, id string) (*models.Notification, error) {
	var n models.Notification
	err := s.DB.Preload("TriggeredBy").Where("receiver_id = ?", receiverID).First(&n, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return &n, nil
}

func (s *NotificationService) MarkRead(receiverID, id string) error {
	return s.update(receiverID, id, "read_at", s.now())
}

func (s *NotificationService) MarkUnread(receiverID, id string) error {
	return s.update(receiverID, id, "read_at", nil)
}

func (s *NotificationService) Archive(receiverID, id string) error {
	return s.update(receiverID, id, "archived_at", s.now())
}

func (s *NotificationService) Unarchive(receiverID, id string) error {
	return s.update(receiverID, id, "archived_at", nil)
}

// Snooze hides the notification from the inbox until the given time.
func (s *NotificationService) Snooze(receiverID, id string, until time.Time) error {
	if !until.After(s.now()) {
		return ErrInvalidSnooze
	}
	return s.update(receiverID, id, "snoozed_till", until.UTC())
}

func (s *NotificationService) Unsnooze(receiverID, id string) error {
	return s.update(receiverID, id, "snoozed_till", nil)
}

// MarkAllRead marks every unread notification of the receiver in the
// workspace as read and returns how many changed.
func (s *NotificationService) MarkAllRead(receiverID, workspaceID string) (int64, error) {
	result := s.DB.Model(&models.Notification{}).
		Where("receiver_id = ? AND workspace_id = ? AND read_at IS NULL", receiverID, workspaceID).
		Update("read_at", s.now())
	if result.Error != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// UnreadCount counts unread notifications currently visible in the inbox.
func (s *NotificationService) UnreadCount(receiverID, workspaceID string) (int64, error) {
	query := s.DB.Model(&models.Notification{}).
		Where("receiver_id = ? AND workspace_id = ? AND read_at IS NULL", receiverID, workspaceID)

	var count int64
	if err := visibleInInbox(query, s.now()).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// Timestamps are stored in UTC so SQLite's text comparison orders them correctly.
func utcNow() time.Time {
	return time.Now().UTC()
}

func visibleInInbox(query *gorm.DB, now time.Time) *gorm.DB {
	return query.Where("archived_at IS NULL").Where("(snoozed_till IS NULL OR snoozed_till <= ?)", now)
}

func (s *NotificationService) update(receiverID, id, column string, value interface{}) error {
	result := s.DB.Model(&models.Notification{}).
		Where("id = ? AND receiver_id = ?", id, receiverID).
		Update(column, value)
	if result.Error != nil {
		return fmt.Errorf("update notification %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
