package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/replykit/pagebot/pkg/db/models"
)

// RunStore is the append-only ledger of orchestration executions.
type RunStore struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewRunStore(db *gorm.DB, logger *logrus.Logger) *RunStore {
	return &RunStore{db: db, logger: logger}
}

// Append inserts one run record. Records are never updated afterwards.
func (s *RunStore) Append(ctx context.Context, run *models.Run) error {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}

	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to append run record: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":    run.RunID,
		"processed": run.Processed,
		"replied":   run.Replied,
		"skipped":   run.Skipped,
		"failed":    run.Failed,
	}).Debug("Appended run record")
	return nil
}

// Recent returns the latest runs, newest first.
func (s *RunStore) Recent(ctx context.Context, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 10
	}

	var runs []models.Run
	err := s.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent runs: %w", err)
	}
	return runs, nil
}
