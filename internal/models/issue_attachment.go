package models

import "gorm.io/datatypes"

// IssueAttachment references an uploaded file by its object key in storage.
type IssueAttachment struct {
	Base
	WorkspaceID string            `gorm:"type:varchar(36);not null;index" json:"workspace_id"`
	Workspace   *Workspace        `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	ProjectID   string            `gorm:"type:varchar(36);not null;index" json:"project_id"`
	Project     *Project          `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	IssueID     string            `gorm:"type:varchar(36);index" json:"issue_id"`
	Asset       string            `gorm:"size:1024;not null" json:"asset"`
	Attributes  datatypes.JSONMap `json:"attributes"`
}
