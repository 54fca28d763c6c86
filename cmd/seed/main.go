package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tasklane/backend/internal/config"
	"github.com/tasklane/backend/internal/database"
	"github.com/tasklane/backend/internal/models"
	"github.com/tasklane/backend/internal/services"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
	fmt.Println("✓ Database migrated successfully")

	adminPassword := os.Getenv("TASKLANE_DEFAULT_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "changeme123"
	}
	admin := seedUser(db, "admin@localhost", "Administrator", models.RoleAdmin, adminPassword)
	alex := seedUser(db, "alex@localhost", "Alex", models.RoleMember, "changeme123")
	sam := seedUser(db, "sam@localhost", "Sam", models.RoleMember, "changeme123")

	workspace := models.Workspace{Name: "Demo", Slug: "demo", OwnerID: admin.ID}
	report(db.Where("slug = ?", workspace.Slug).FirstOrCreate(&workspace), "workspace", workspace.Slug)

	project := models.Project{WorkspaceID: workspace.ID, Name: "Website", Identifier: "WEB"}
	report(db.Where("workspace_id = ? AND identifier = ?", workspace.ID, project.Identifier).FirstOrCreate(&project),
		"project", project.Identifier)

	issueID := "5b7e0c1a-3f4d-4e2b-9a6c-8d1f2e3a4b5c"
	messageHTML := "<p>Can we ship this on Friday?</p>"
	for _, asset := range []string{
		"attachments/" + workspace.ID + "/mockup.png",
		"attachments/" + workspace.ID + "/roadmap.pdf",
	} {
		attachment := models.IssueAttachment{
			WorkspaceID: workspace.ID,
			ProjectID:   project.ID,
			IssueID:     issueID,
			Asset:       asset,
			Attributes:  datatypes.JSONMap{"name": asset},
		}
		report(db.Where("asset = ?", asset).FirstOrCreate(&attachment), "attachment", asset)
	}

	// Sam opts out of comment emails in the demo workspace.
	preferences := services.NewPreferenceService(db)
	off := false
	if _, err := preferences.SetScoped(sam.ID, workspace.ID, nil, services.PreferencePatch{Comment: &off}); err != nil {
		log.Printf("Failed to seed preference for %s: %v", sam.Email, err)
	}

	var existing int64
	db.Model(&models.Notification{}).Where("workspace_id = ?", workspace.ID).Count(&existing)
	if existing == 0 {
		notifier := services.NewNotifier(db,
			services.NewNotificationService(db), preferences, services.NewEmailLogService(db))
		res, err := notifier.Notify(context.Background(), services.Event{
			WorkspaceID:      workspace.ID,
			ProjectID:        &project.ID,
			Kind:             models.KindComment,
			EntityIdentifier: &issueID,
			EntityName:       "issue",
			Title:            "Administrator commented on WEB-1",
			MessageHTML:      &messageHTML,
			TriggeredByID:    admin.ID,
			ReceiverIDs:      []string{alex.ID, sam.ID},
			Data:             datatypes.JSONMap{"issue": map[string]interface{}{"sequence_id": 1, "name": "Landing page"}},
		})
		if err != nil {
			log.Printf("Failed to seed notifications: %v", err)
		} else {
			fmt.Printf("✓ Created %d notifications and %d queued emails\n", res.Notifications, res.Emails)
		}
	} else {
		fmt.Printf("  Notifications already exist: %d\n", existing)
	}

	fmt.Println("\n✓ Database seeding completed successfully!")
	fmt.Println("  You can now start the application and see sample data.")
}

func seedUser(db *gorm.DB, email, name, role, password string) models.User {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err == nil {
		fmt.Printf("  User already exists: %s\n", email)
		return user
	}

	user = models.User{Email: email, DisplayName: name, Role: role, IsActive: true}
	if err := user.SetPassword(password); err != nil {
		log.Fatalf("Failed to hash password for %s: %v", email, err)
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("Failed to seed user %s: %v", email, err)
	}
	fmt.Printf("✓ Created user: %s\n", email)
	return user
}

func report(result *gorm.DB, kind, name string) {
	switch {
	case result.Error != nil:
		log.Printf("Failed to seed %s %s: %v", kind, name, result.Error)
	case result.RowsAffected > 0:
		fmt.Printf("✓ Created %s: %s\n", kind, name)
	default:
		fmt.Printf("  %s already exists: %s\n", kind, name)
	}
}
