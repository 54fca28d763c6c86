package datamigrate

import (
	"context"

	"gorm.io/gorm"
)

const (
	VersionDefaultPreferences int64 = 47
	VersionMoveAttachments    int64 = 48
)

func registry(db *gorm.DB, deps Deps) []step {
	return []step{
		{
			version: VersionDefaultPreferences,
			name:    "create_default_notification_preferences",
			up: func(ctx context.Context) error {
				_, err := CreateDefaultPreferences(ctx, db)
				return err
			},
		},
		{
			version: VersionMoveAttachments,
			name:    "move_attachment_assets_to_private_bucket",
			up: func(ctx context.Context) error {
				_, err := MoveAttachmentAssets(ctx, db, deps.Copier, deps.PublicBucket, deps.PrivateBucket)
				return err
			},
		},
	}
}
