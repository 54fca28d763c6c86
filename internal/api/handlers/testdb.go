package handlers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tasklane/backend/internal/database"
	"gorm.io/gorm"
)

// OpenTestDB creates a SQLite in-memory DB unique per test with foreign keys
// enforced and the full schema migrated.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsnName := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", dsnName)
	db, err := database.Connect(dsn)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}
