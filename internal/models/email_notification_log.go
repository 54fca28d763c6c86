package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// EmailNotificationLog records an email owed to a receiver. SentAt stays nil
// until the dispatcher has handed it to the mail server. Attempts and
// LastAttemptAt track failed sends.
type EmailNotificationLog struct {
	Base
	ReceiverID       string            `gorm:"type:varchar(36);not null;index" json:"receiver_id"`
	Receiver         *User             `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE;" json:"receiver,omitempty"`
	TriggeredByID    string            `gorm:"type:varchar(36);not null;index" json:"triggered_by_id"`
	TriggeredBy      *User             `gorm:"foreignKey:TriggeredByID;constraint:OnDelete:CASCADE;" json:"triggered_by,omitempty"`
	EntityIdentifier *string           `gorm:"type:varchar(36)" json:"entity_identifier"`
	EntityName       string            `gorm:"size:255;not null" json:"entity_name"`
	Data             datatypes.JSONMap `json:"data"`
	SentAt           *time.Time        `gorm:"index" json:"sent_at"`
	Attempts         int               `gorm:"not null;default:0" json:"attempts"`
	LastAttemptAt    *time.Time        `json:"last_attempt_at"`
}

func (EmailNotificationLog) TableName() string {
	return "email_notification_logs"
}

func (l EmailNotificationLog) String() string {
	if l.Receiver != nil {
		return fmt.Sprintf("<receiver=%s>", l.Receiver)
	}
	return fmt.Sprintf("<receiver=%s>", l.ReceiverID)
}
