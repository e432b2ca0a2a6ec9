package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/replykit/pagebot/pkg/db/models"
)

// SettingsStore persists the global policy singleton.
type SettingsStore struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewSettingsStore(db *gorm.DB, logger *logrus.Logger) *SettingsStore {
	return &SettingsStore{db: db, logger: logger}
}

// Load returns the global settings, falling back to defaults when no
// row exists. Partially populated rows are normalized so pacing and
// budgets are never accidentally disabled.
func (s *SettingsStore) Load(ctx context.Context) (models.Settings, error) {
	var settings models.Settings
	err := s.db.WithContext(ctx).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Debug("No settings row, using defaults")
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	settings.Normalize()
	return settings, nil
}

// Save upserts the singleton settings row.
func (s *SettingsStore) Save(ctx context.Context, settings *models.Settings) error {
	var existing models.Settings
	err := s.db.WithContext(ctx).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.WithContext(ctx).Create(settings).Error; err != nil {
			return fmt.Errorf("failed to create settings: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to load settings: %w", err)
	default:
		settings.ID = existing.ID
		if err := s.db.WithContext(ctx).Save(settings).Error; err != nil {
			return fmt.Errorf("failed to update settings: %w", err)
		}
	}

	s.logger.Info("Updated global settings")
	return nil
}
