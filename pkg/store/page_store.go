package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/replykit/pagebot/pkg/db/models"
)

// ErrPageNotFound is returned when no page matches the given id.
var ErrPageNotFound = errors.New("page not found")

// PageStore persists the registry of connected pages.
type PageStore struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewPageStore(db *gorm.DB, logger *logrus.Logger) *PageStore {
	return &PageStore{db: db, logger: logger}
}

// Eligible returns the pages qualifying for automatic runs: active with
// auto-reply enabled, in registration order.
func (s *PageStore) Eligible(ctx context.Context) ([]models.Page, error) {
	var pages []models.Page
	err := s.db.WithContext(ctx).
		Where("status = ? AND auto_reply = ?", models.PageActive, true).
		Order("id ASC").
		Find(&pages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load eligible pages: %w", err)
	}
	return pages, nil
}

// ByPageID looks a page up by its platform id.
func (s *PageStore) ByPageID(ctx context.Context, pageID string) (*models.Page, error) {
	var page models.Page
	err := s.db.WithContext(ctx).Where("page_id = ?", pageID).First(&page).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load page: %w", err)
	}
	return &page, nil
}

// ActiveByPageID looks an active page up by its platform id; used by
// webhook ingestion to drop events for unregistered or paused pages.
func (s *PageStore) ActiveByPageID(ctx context.Context, pageID string) (*models.Page, error) {
	var page models.Page
	err := s.db.WithContext(ctx).
		Where("page_id = ? AND status = ?", pageID, models.PageActive).
		First(&page).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load page: %w", err)
	}
	return &page, nil
}

// List returns every registered page.
func (s *PageStore) List(ctx context.Context) ([]models.Page, error) {
	var pages []models.Page
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&pages).Error; err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	return pages, nil
}

// Create registers a new page. Activation time defaults to now so
// pre-existing comments are never replied to.
func (s *PageStore) Create(ctx context.Context, page *models.Page) error {
	if page.Status == "" {
		page.Status = models.PageActive
	}
	if page.ActivatedAt.IsZero() {
		page.ActivatedAt = time.Now()
	}

	if err := s.db.WithContext(ctx).Create(page).Error; err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"page_id": page.PageID,
		"name":    page.Name,
	}).Info("Registered page")
	return nil
}

// Update applies field changes to a page by record id.
func (s *PageStore) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	result := s.db.WithContext(ctx).
		Model(&models.Page{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update page: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPageNotFound
	}
	return nil
}

// Delete removes a page by record id.
func (s *PageStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Page{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete page: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPageNotFound
	}
	return nil
}

// Pause marks a page paused with the given reason. Used by the
// orchestrator's error-threshold auto-pause.
func (s *PageStore) Pause(ctx context.Context, pageID, reason string) error {
	err := s.db.WithContext(ctx).
		Model(&models.Page{}).
		Where("page_id = ?", pageID).
		Updates(map[string]interface{}{
			"status":       models.PagePaused,
			"pause_reason": reason,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to pause page: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"page_id": pageID,
		"reason":  reason,
	}).Warn("Paused page")
	return nil
}

// Counts returns total and active page counts for the stats endpoint.
func (s *PageStore) Counts(ctx context.Context) (total, active int64, err error) {
	if err = s.db.WithContext(ctx).Model(&models.Page{}).Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count pages: %w", err)
	}
	err = s.db.WithContext(ctx).
		Model(&models.Page{}).
		Where("status = ?", models.PageActive).
		Count(&active).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count active pages: %w", err)
	}
	return total, active, nil
}
