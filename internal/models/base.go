package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base holds the columns shared by every table: a UUID primary key, timestamps
// and the users who created and last updated the row.
type Base struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedByID *string   `gorm:"type:varchar(36)" json:"created_by_id,omitempty"`
	UpdatedByID *string   `gorm:"type:varchar(36)" json:"updated_by_id,omitempty"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

// NewestFirst is the default ordering for listings.
const NewestFirst = "created_at desc"
