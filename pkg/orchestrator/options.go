package orchestrator

import (
	"github.com/replykit/pagebot/pkg/interfaces/facebook"
)

// Options carries per-invocation run parameters, typically from the
// trigger surface or the cron ticker.
type Options struct {
	// ShadowMode suppresses the external write while still recording
	// decisions, for safe dry runs.
	ShadowMode bool

	// Manual marks an operator-triggered invocation, exempt from the
	// global-pause circuit breaker.
	Manual bool

	// PageID targets a single page, bypassing the active/auto-reply
	// eligibility check.
	PageID string

	// PostID targets a single content item. Both the bare id and the
	// page-qualified composite id are tried.
	PostID string

	// Limit caps how many content items a live scan fetches per page.
	Limit int

	// ContentType prefers posts or reels during a live scan.
	ContentType facebook.ContentType

	// AccessToken overrides the stored page credential for this run.
	AccessToken string
}

// live reports whether this run scans the platform directly instead of
// draining the stored pending queue.
func (o Options) live() bool {
	return o.PostID != "" || o.Limit > 0 || o.ContentType != ""
}
