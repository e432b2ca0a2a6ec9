package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/replykit/pagebot/pkg/db/models"
)

// CommentStore persists comment lifecycle state.
type CommentStore struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewCommentStore(db *gorm.DB, logger *logrus.Logger) *CommentStore {
	return &CommentStore{db: db, logger: logger}
}

// Upsert stores a comment keyed by its platform comment id. A second
// ingestion of the same id is a no-op; the return value reports whether
// a row was created.
func (s *CommentStore) Upsert(ctx context.Context, comment *models.Comment) (bool, error) {
	if comment.ReceivedAt.IsZero() {
		comment.ReceivedAt = time.Now()
	}
	if comment.Status == "" {
		comment.Status = models.StatusPending
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "comment_id"}},
			DoNothing: true,
		}).
		Create(comment)
	if result.Error != nil {
		return false, fmt.Errorf("failed to upsert comment: %w", result.Error)
	}

	created := result.RowsAffected > 0
	s.logger.WithFields(logrus.Fields{
		"comment_id": comment.CommentID,
		"page_id":    comment.PageID,
		"created":    created,
	}).Debug("Upserted comment")

	return created, nil
}

// Claim atomically transitions a comment from pending to the in-flight
// processing marker. It returns false when the comment is no longer
// pending, meaning another invocation owns it or it already reached a
// terminal state.
func (s *CommentStore) Claim(ctx context.Context, commentID string) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("comment_id = ? AND status = ?", commentID, models.StatusPending).
		Update("status", models.StatusProcessing)
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim comment: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// ReplyRecord captures the outcome of a successful (or shadow) reply.
type ReplyRecord struct {
	Type           models.ReplyType
	Message        string
	ReplyCommentID string
	Shadow         bool
	At             time.Time
}

// MarkReplied records a sent or shadow reply. Terminal.
func (s *CommentStore) MarkReplied(ctx context.Context, commentID string, record ReplyRecord) error {
	if record.At.IsZero() {
		record.At = time.Now()
	}

	err := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("comment_id = ?", commentID).
		Updates(map[string]interface{}{
			"status":           models.StatusReplied,
			"reply_type":       record.Type,
			"reply_message":    record.Message,
			"reply_comment_id": record.ReplyCommentID,
			"replied_at":       record.At,
			"shadow_mode":      record.Shadow,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark comment replied: %w", err)
	}
	return nil
}

// MarkSkipped records why a comment was not replied to. Terminal.
func (s *CommentStore) MarkSkipped(ctx context.Context, commentID, reason string) error {
	err := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("comment_id = ?", commentID).
		Updates(map[string]interface{}{
			"status":      models.StatusSkipped,
			"skip_reason": reason,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark comment skipped: %w", err)
	}
	return nil
}

// MarkFailed records a per-comment processing failure. Terminal.
func (s *CommentStore) MarkFailed(ctx context.Context, commentID, reason string) error {
	err := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("comment_id = ?", commentID).
		Updates(map[string]interface{}{
			"status":      models.StatusFailed,
			"skip_reason": reason,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark comment failed: %w", err)
	}
	return nil
}

// PendingForPage selects the page's pending comments created at or
// after the activation floor, in arrival order.
func (s *CommentStore) PendingForPage(ctx context.Context, pageID string, activatedAt time.Time) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("page_id = ? AND status = ? AND created_time >= ?",
			pageID, models.StatusPending, activatedAt).
		Order("created_time ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load pending comments: %w", err)
	}
	return comments, nil
}

// Recent lists comments newest-received first, optionally filtered by
// status and page.
func (s *CommentStore) Recent(ctx context.Context, status models.CommentStatus, pageID string, limit int) ([]models.Comment, error) {
	if limit <= 0 {
		limit = 50
	}

	q := s.db.WithContext(ctx).Model(&models.Comment{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if pageID != "" {
		q = q.Where("page_id = ?", pageID)
	}

	var comments []models.Comment
	if err := q.Order("received_at DESC").Limit(limit).Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent comments: %w", err)
	}
	return comments, nil
}

// Stats holds aggregate comment counts for the stats endpoint.
type Stats struct {
	TotalComments int64 `json:"totalComments"`
	TotalReplies  int64 `json:"totalReplies"`
	EmojiReplies  int64 `json:"emojiReplies"`
	AIReplies     int64 `json:"aiReplies"`
	Pending       int64 `json:"pending"`
	Skipped       int64 `json:"skipped"`
	Failed        int64 `json:"failed"`
}

// CountStats aggregates comment counts, optionally scoped to one page.
func (s *CommentStore) CountStats(ctx context.Context, pageID string) (Stats, error) {
	var stats Stats

	scoped := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Comment{})
		if pageID != "" {
			q = q.Where("page_id = ?", pageID)
		}
		return q
	}

	counts := []struct {
		dest  *int64
		apply func(*gorm.DB) *gorm.DB
	}{
		{&stats.TotalComments, func(q *gorm.DB) *gorm.DB { return q }},
		{&stats.TotalReplies, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", models.StatusReplied) }},
		{&stats.EmojiReplies, func(q *gorm.DB) *gorm.DB { return q.Where("reply_type = ?", models.ReplyTypeEmoji) }},
		{&stats.AIReplies, func(q *gorm.DB) *gorm.DB { return q.Where("reply_type = ?", models.ReplyTypeAI) }},
		{&stats.Pending, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", models.StatusPending) }},
		{&stats.Skipped, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", models.StatusSkipped) }},
		{&stats.Failed, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", models.StatusFailed) }},
	}

	for _, c := range counts {
		if err := c.apply(scoped()).Count(c.dest).Error; err != nil {
			return Stats{}, fmt.Errorf("failed to count comments: %w", err)
		}
	}

	return stats, nil
}
