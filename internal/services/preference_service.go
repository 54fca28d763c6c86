package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tasklane/backend/internal/models"
)

// PreferencePatch carries a partial preference update; nil fields are left alone.
type PreferencePatch struct {
	PropertyChange *bool `json:"property_change"`
	StateChange    *bool `json:"state_change"`
	Comment        *bool `json:"comment"`
	Mention        *bool `json:"mention"`
	IssueCompleted *bool `json:"issue_completed"`
}

func (p PreferencePatch) apply(pref *models.UserNotificationPreference) {
	if p.PropertyChange != nil {
		pref.PropertyChange = *p.PropertyChange
	}
	if p.StateChange != nil {
		pref.StateChange = *p.StateChange
	}
	if p.Comment != nil {
		pref.Comment = *p.Comment
	}
	if p.Mention != nil {
		pref.Mention = *p.Mention
	}
	if p.IssueCompleted != nil {
		pref.IssueCompleted = *p.IssueCompleted
	}
}

// PreferenceService manages per-user notification preferences. A user has one
// account-wide row and optional workspace or project overrides.
type PreferenceService struct {
	DB *gorm.DB
}

func NewPreferenceService(db *gorm.DB) *PreferenceService {
	return &PreferenceService{DB: db}
}

// Get returns the account-wide preference, creating the all-enabled default
// on first access.
func (s *PreferenceService) Get(userID string) (*models.UserNotificationPreference, error) {
	pref, err := s.find(userID, nil, nil)
	if err != nil {
		return nil, err
	}
	if pref != nil {
		return pref, nil
	}

	created := models.NewUserNotificationPreference(userID)
	if err := s.DB.Create(&created).Error; err != nil {
		return nil, fmt.Errorf("create default preference: %w", err)
	}
	return &created, nil
}

// Update applies patch to the account-wide preference.
func (s *PreferenceService) Update(userID string, patch PreferencePatch) (*models.UserNotificationPreference, error) {
	pref, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	patch.apply(pref)
	if err := s.DB.Save(pref).Error; err != nil {
		return nil, fmt.Errorf("save preference: %w", err)
	}
	return pref, nil
}

// SetScoped upserts a workspace override, or a project override when projectID
// is set. A new override starts from the user's effective preference for that
// scope so unspecified kinds keep their current behaviour.
func (s *PreferenceService) SetScoped(userID, workspaceID string, projectID *string, patch PreferencePatch) (*models.UserNotificationPreference, error) {
	if workspaceID == "" {
		return nil, errors.New("workspace id is required for a scoped preference")
	}

	pref, err := s.find(userID, &workspaceID, projectID)
	if err != nil {
		return nil, err
	}
	if pref == nil {
		base, err := s.Effective(userID, workspaceID, projectID)
		if err != nil {
			return nil, err
		}
		pref = &models.UserNotificationPreference{
			UserID:         userID,
			WorkspaceID:    &workspaceID,
			ProjectID:      projectID,
			PropertyChange: base.PropertyChange,
			StateChange:    base.StateChange,
			Comment:        base.Comment,
			Mention:        base.Mention,
			IssueCompleted: base.IssueCompleted,
		}
	}

	patch.apply(pref)
	if err := s.DB.Save(pref).Error; err != nil {
		return nil, fmt.Errorf("save scoped preference: %w", err)
	}
	return pref, nil
}

// Effective resolves the preference that applies to an event in the given
// scope: project override, then workspace override, then the account-wide row,
// then the all-enabled default. It never writes.
func (s *PreferenceService) Effective(userID, workspaceID string, projectID *string) (models.UserNotificationPreference, error) {
	query := s.DB.Where("user_id = ?", userID)
	scope := s.DB.Where("workspace_id IS NULL AND project_id IS NULL")
	if workspaceID != "" {
		scope = scope.Or("workspace_id = ? AND project_id IS NULL", workspaceID)
		if projectID != nil {
			scope = scope.Or("workspace_id = ? AND project_id = ?", workspaceID, *projectID)
		}
	}

	var rows []models.UserNotificationPreference
	if err := query.Where(scope).Find(&rows).Error; err != nil {
		return models.UserNotificationPreference{}, fmt.Errorf("load preferences: %w", err)
	}

	best := models.NewUserNotificationPreference(userID)
	bestRank := -1
	for _, row := range rows {
		if r := specificity(row); r > bestRank {
			best, bestRank = row, r
		}
	}
	return best, nil
}

// Allows reports whether the user wants email about an event of kind in scope.
func (s *PreferenceService) Allows(userID, workspaceID string, projectID *string, kind models.NotificationKind) (bool, error) {
	pref, err := s.Effective(userID, workspaceID, projectID)
	if err != nil {
		return false, err
	}
	return pref.Allows(kind), nil
}

func specificity(p models.UserNotificationPreference) int {
	switch {
	case p.ProjectID != nil:
		return 2
	case p.WorkspaceID != nil:
		return 1
	default:
		return 0
	}
}

func (s *PreferenceService) find(userID string, workspaceID, projectID *string) (*models.UserNotificationPreference, error) {
	query := s.DB.Where("user_id = ?", userID)
	if workspaceID == nil {
		query = query.Where("workspace_id IS NULL")
	} else {
		query = query.Where("workspace_id = ?", *workspaceID)
	}
	if projectID == nil {
		query = query.Where("project_id IS NULL")
	} else {
		query = query.Where("project_id = ?", *projectID)
	}

	var pref models.UserNotificationPreference
	err := query.Order(models.NewestFirst).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find preference: %w", err)
	}
	return &pref, nil
}
