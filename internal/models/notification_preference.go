package models

import "fmt"

// NotificationKind names an event category a user can opt out of.
type NotificationKind string

const (
	KindPropertyChange NotificationKind = "property_change"
	KindStateChange    NotificationKind = "state_change"
	KindComment        NotificationKind = "comment"
	KindMention        NotificationKind = "mention"
	KindIssueCompleted NotificationKind = "issue_completed"
)

// Valid reports whether k is one of the known kinds.
func (k NotificationKind) Valid() bool {
	switch k {
	case KindPropertyChange, KindStateChange, KindComment, KindMention, KindIssueCompleted:
		return true
	}
	return false
}

// UserNotificationPreference stores which kinds of events a user wants to be
// emailed about. WorkspaceID and ProjectID are nil for the account-wide row;
// a set WorkspaceID (and optionally ProjectID) narrows it to that scope.
type UserNotificationPreference struct {
	Base
	UserID      string     `gorm:"type:varchar(36);not null;index" json:"user_id"`
	User        *User      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	WorkspaceID *string    `gorm:"type:varchar(36);index" json:"workspace_id"`
	Workspace   *Workspace `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	ProjectID   *string    `gorm:"type:varchar(36);index" json:"project_id"`
	Project     *Project   `gorm:"constraint:OnDelete:CASCADE;" json:"-"`

	// No gorm default tags here: gorm skips zero values on insert when a
	// default is declared, which would turn an explicit false into true.
	PropertyChange bool `gorm:"not null" json:"property_change"`
	StateChange    bool `gorm:"not null" json:"state_change"`
	Comment        bool `gorm:"not null" json:"comment"`
	Mention        bool `gorm:"not null" json:"mention"`
	IssueCompleted bool `gorm:"not null" json:"issue_completed"`
}

func (UserNotificationPreference) TableName() string {
	return "user_notification_preferences"
}

// NewUserNotificationPreference returns a preference row with every kind enabled.
func NewUserNotificationPreference(userID string) UserNotificationPreference {
	return UserNotificationPreference{
		UserID:         userID,
		PropertyChange: true,
		StateChange:    true,
		Comment:        true,
		Mention:        true,
		IssueCompleted: true,
	}
}

// Allows reports whether the preference opts in to the given kind. Unknown
// kinds are allowed.
func (p *UserNotificationPreference) Allows(kind NotificationKind) bool {
	switch kind {
	case KindPropertyChange:
		return p.PropertyChange
	case KindStateChange:
		return p.StateChange
	case KindComment:
		return p.Comment
	case KindMention:
		return p.Mention
	case KindIssueCompleted:
		return p.IssueCompleted
	default:
		return true
	}
}

func (p UserNotificationPreference) String() string {
	if p.User != nil {
		return fmt.Sprintf("<%s>", p.User)
	}
	return fmt.Sprintf("<%s>", p.UserID)
}
