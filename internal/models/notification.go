package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// DefaultMessageHTML is the body given to notifications whose event carries no
// HTML message. An explicitly empty body is stored as is.
const DefaultMessageHTML = "<p></p>"

// Notification is an in-app notification delivered to a single receiver
// inside a workspace.
type Notification struct {
	Base
	WorkspaceID      string            `gorm:"type:varchar(36);not null;index" json:"workspace_id"`
	Workspace        *Workspace        `gorm:"constraint:OnDelete:CASCADE;" json:"workspace,omitempty"`
	ProjectID        *string           `gorm:"type:varchar(36);index" json:"project_id"`
	Project          *Project          `gorm:"constraint:OnDelete:CASCADE;" json:"project,omitempty"`
	Data             datatypes.JSONMap `json:"data"`
	EntityIdentifier *string           `gorm:"type:varchar(36)" json:"entity_identifier"`
	EntityName       string            `gorm:"size:255;not null" json:"entity_name"`
	Title            string            `gorm:"type:text;not null" json:"title"`
	Message          datatypes.JSON    `json:"message"`
	MessageHTML      string            `gorm:"type:text;not null" json:"message_html"`
	MessageStripped  *string           `gorm:"type:text" json:"message_stripped"`
	Sender           string            `gorm:"size:255;not null" json:"sender"`
	TriggeredByID    *string           `gorm:"type:varchar(36);index" json:"triggered_by_id"`
	TriggeredBy      *User             `gorm:"foreignKey:TriggeredByID;constraint:OnDelete:SET NULL;" json:"triggered_by,omitempty"`
	ReceiverID       string            `gorm:"type:varchar(36);not null;index" json:"receiver_id"`
	Receiver         *User             `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE;" json:"receiver,omitempty"`
	ReadAt           *time.Time        `json:"read_at"`
	SnoozedTill      *time.Time        `json:"snoozed_till"`
	ArchivedAt       *time.Time        `json:"archived_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// IsRead reports whether the receiver has opened the notification.
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// IsSnoozed reports whether the notification is hidden until a later time.
func (n *Notification) IsSnoozed(now time.Time) bool {
	return n.SnoozedTill != nil && n.SnoozedTill.After(now)
}

// IsArchived reports whether the receiver archived the notification.
func (n *Notification) IsArchived() bool {
	return n.ArchivedAt != nil
}

// String renders "<receiver email> <<workspace name>>". Receiver and Workspace
// must be preloaded.
func (n Notification) String() string {
	var email, workspace string
	if n.Receiver != nil {
		email = n.Receiver.Email
	}
	if n.Workspace != nil {
		workspace = n.Workspace.Name
	}
	return fmt.Sprintf("%s <%s>", email, workspace)
}
