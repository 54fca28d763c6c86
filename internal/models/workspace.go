package models

// Workspace groups projects and members. Notifications are always scoped to one.
type Workspace struct {
	Base
	Name    string `gorm:"size:80;not null" json:"name"`
	Slug    string `gorm:"size:48;uniqueIndex;not null" json:"slug"`
	OwnerID string `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	Owner   *User  `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE;" json:"-"`
}

// Project belongs to a workspace.
type Project struct {
	Base
	WorkspaceID string     `gorm:"type:varchar(36);not null;index" json:"workspace_id"`
	Workspace   *Workspace `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Identifier  string     `gorm:"size:12" json:"identifier"`
}
