package orchestrator

import (
	"context"
	"time"

	"github.com/replykit/pagebot/pkg/db/models"
	"github.com/replykit/pagebot/pkg/interfaces/facebook"
	"github.com/replykit/pagebot/pkg/store"
)

// CommentStore is the persistence surface the orchestrator needs for
// comment lifecycle transitions.
type CommentStore interface {
	Upsert(ctx context.Context, comment *models.Comment) (bool, error)
	Claim(ctx context.Context, commentID string) (bool, error)
	MarkReplied(ctx context.Context, commentID string, record store.ReplyRecord) error
	MarkSkipped(ctx context.Context, commentID, reason string) error
	MarkFailed(ctx context.Context, commentID, reason string) error
	PendingForPage(ctx context.Context, pageID string, activatedAt time.Time) ([]models.Comment, error)
}

// PageStore resolves the candidate page set and applies auto-pause.
type PageStore interface {
	Eligible(ctx context.Context) ([]models.Page, error)
	ByPageID(ctx context.Context, pageID string) (*models.Page, error)
	Pause(ctx context.Context, pageID, reason string) error
}

// SettingsLoader loads the global policy once per invocation.
type SettingsLoader interface {
	Load(ctx context.Context) (models.Settings, error)
}

// RunLedger records one audit row per invocation.
type RunLedger interface {
	Append(ctx context.Context, run *models.Run) error
}

// Poster performs the authenticated Graph write and the external
// already-replied check.
type Poster interface {
	PostReply(ctx context.Context, pageToken, targetID, message string) (string, error)
	AlreadyReplied(ctx context.Context, pageToken, targetID, pageID string) (bool, error)
}

// ContentLister enumerates a page's content and comments for live scans.
type ContentLister interface {
	ListContent(ctx context.Context, pageToken, pageID string, contentType facebook.ContentType, limit int) ([]facebook.ContentItem, error)
	ListComments(ctx context.Context, pageToken string, params facebook.ListCommentsParams) ([]facebook.CommentData, error)
}

// Sleeper performs the mandatory inter-reply pacing delay. It is an
// interface so tests run without wall-clock waits.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Rand draws the pacing jitter.
type Rand interface {
	Intn(n int) int
}
