package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tasklane/backend/internal/logger"
	"github.com/tasklane/backend/internal/models"
)

var errNoReceivers = errors.New("event has no receivers")

// Event describes something that happened to an entity and who should hear
// about it.
type Event struct {
	WorkspaceID      string                  `json:"workspace_id" binding:"required"`
	ProjectID        *string                 `json:"project_id"`
	Kind             models.NotificationKind `json:"kind" binding:"required"`
	EntityIdentifier *string                 `json:"entity_identifier"`
	EntityName       string                  `json:"entity_name" binding:"required"`
	Title            string                  `json:"title" binding:"required"`
	Message          datatypes.JSON          `json:"message"`
	MessageHTML      *string                 `json:"message_html"`
	MessageStripped  *string                 `json:"message_stripped"`
	Sender           string                  `json:"sender"`
	TriggeredByID    string                  `json:"triggered_by_id" binding:"required"`
	ReceiverIDs      []string                `json:"receiver_ids" binding:"required"`
	Data             datatypes.JSONMap       `json:"data"`
}

// NotifyResult counts what an event produced.
type NotifyResult struct {
	Notifications int `json:"notifications"`
	Emails        int `json:"emails"`
}

// Notifier fans an event out into in-app notifications and queued emails.
// Every receiver other than the actor gets an in-app notification; the email
// is only queued when the receiver's preference allows the event kind.
type Notifier struct {
	db            *gorm.DB
	notifications *NotificationService
	preferences   *PreferenceService
	emails        *EmailLogService
}

func NewNotifier(db *gorm.DB, notifications *NotificationService, preferences *PreferenceService, emails *EmailLogService) *Notifier {
	return &Notifier{db: db, notifications: notifications, preferences: preferences, emails: emails}
}

func (n *Notifier) Notify(ctx context.Context, ev Event) (NotifyResult, error) {
	var res NotifyResult
	if !ev.Kind.Valid() {
		return res, fmt.Errorf("unknown notification kind %q", ev.Kind)
	}
	if ev.Sender == "" {
		ev.Sender = "in_app:" + string(ev.Kind)
	}
	messageHTML := models.DefaultMessageHTML
	if ev.MessageHTML != nil {
		messageHTML = *ev.MessageHTML
	}

	seen := make(map[string]struct{}, len(ev.ReceiverIDs))
	err := n.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		notifications := &NotificationService{DB: tx, now: n.notifications.now}
		preferences := &PreferenceService{DB: tx}
		emails := &EmailLogService{DB: tx}

		for _, receiverID := range ev.ReceiverIDs {
			if receiverID == "" || receiverID == ev.TriggeredByID {
				continue
			}
			if _, dup := seen[receiverID]; dup {
				continue
			}
			seen[receiverID] = struct{}{}

			triggeredBy := ev.TriggeredByID
			if err := notifications.Create(&models.Notification{
				WorkspaceID:      ev.WorkspaceID,
				ProjectID:        ev.ProjectID,
				Data:             ev.Data,
				EntityIdentifier: ev.EntityIdentifier,
				EntityName:       ev.EntityName,
				Title:            ev.Title,
				Message:          ev.Message,
				MessageHTML:      messageHTML,
				MessageStripped:  ev.MessageStripped,
				Sender:           ev.Sender,
				TriggeredByID:    &triggeredBy,
				ReceiverID:       receiverID,
			}); err != nil {
				return err
			}
			res.Notifications++

			allowed, err := preferences.Allows(receiverID, ev.WorkspaceID, ev.ProjectID, ev.Kind)
			if err != nil {
				return err
			}
			if !allowed {
				continue
			}
			if err := emails.Record(&models.EmailNotificationLog{
				ReceiverID:       receiverID,
				TriggeredByID:    ev.TriggeredByID,
				EntityIdentifier: ev.EntityIdentifier,
				EntityName:       ev.EntityName,
				Data:             emailData(ev),
			}); err != nil {
				return err
			}
			res.Emails++
		}
		return nil
	})
	if err != nil {
		return NotifyResult{}, fmt.Errorf("notify %s: %w", ev.Kind, err)
	}

	logger.Component("notifier").WithFields(map[string]interface{}{
		"kind":          ev.Kind,
		"workspace_id":  ev.WorkspaceID,
		"notifications": res.Notifications,
		"emails":        res.Emails,
	}).Debug("event delivered")
	return res, nil
}

// emailData keeps what the mail template needs alongside the event payload.
func emailData(ev Event) datatypes.JSONMap {
	data := datatypes.JSONMap{}
	for k, v := range ev.Data {
		data[k] = v
	}
	data["kind"] = string(ev.Kind)
	data["title"] = ev.Title
	data["workspace_id"] = ev.WorkspaceID
	if ev.MessageHTML != nil && *ev.MessageHTML != "" {
		data["message_html"] = *ev.MessageHTML
	}
	return data
}

// Validate checks the parts of an event that binding tags cannot.
func (ev Event) Validate() error {
	if len(ev.ReceiverIDs) == 0 {
		return errNoReceivers
	}
	if !ev.Kind.Valid() {
		return fmt.Errorf("unknown notification kind %q", ev.Kind)
	}
	return nil
}
