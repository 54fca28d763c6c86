package datamigrate

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tasklane/backend/internal/logger"
	"github.com/tasklane/backend/internal/metrics"
	"github.com/tasklane/backend/internal/models"
	"github.com/tasklane/backend/internal/storage"
	"github.com/tasklane/backend/internal/util"
)

// CopyReport summarises a bucket-to-bucket asset move.
type CopyReport struct {
	Total   int `json:"total"`
	Copied  int `json:"copied"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// MoveAttachmentAssets copies every issue attachment object from srcBucket to
// dstBucket under the same key. A failed copy is logged and counted and the
// loop moves on. Without storage every key is counted as failed. Only listing
// the attachments or a cancelled context stop the run.
func MoveAttachmentAssets(ctx context.Context, db *gorm.DB, copier storage.Copier, srcBucket, dstBucket string) (CopyReport, error) {
	var report CopyReport
	log := logger.Component("datamigrate")

	var keys []string
	if err := db.WithContext(ctx).Model(&models.IssueAttachment{}).Order("created_at").Pluck("asset", &keys).Error; err != nil {
		return report, fmt.Errorf("list attachment assets: %w", err)
	}
	report.Total = len(keys)
	if report.Total == 0 {
		log.Info("no attachment assets to move")
		return report, nil
	}

	if copier == nil || srcBucket == "" || dstBucket == "" {
		report.Failed = report.Total
		log.WithError(storage.ErrNotConfigured).WithField("total", report.Total).Error("attachment assets not moved")
		return report, nil
	}

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if strings.TrimSpace(key) == "" {
			report.Skipped++
			continue
		}
		if err := copier.CopyObject(ctx, srcBucket, dstBucket, key); err != nil {
			report.Failed++
			metrics.IncStorageCopy(false)
			log.WithError(err).WithField("key", util.SanitizeForLog(key)).Warn("failed to copy attachment asset")
			continue
		}
		report.Copied++
		metrics.IncStorageCopy(true)
	}

	log.WithFields(map[string]interface{}{
		"source":      srcBucket,
		"destination": dstBucket,
		"total":       report.Total,
		"copied":      report.Copied,
		"failed":      report.Failed,
		"skipped":     report.Skipped,
	}).Info("moved attachment assets")

	return report, nil
}
