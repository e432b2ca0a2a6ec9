package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/replykit/pagebot/pkg/db/models"
	"github.com/replykit/pagebot/pkg/interfaces/facebook"
)

// Candidate is one comment a run may reply to, regardless of whether it
// came from the stored queue or a live scan.
type Candidate struct {
	Comment models.Comment

	// PageReplied reports a page reply observed in nested listing data.
	// Only meaningful when ReplyKnown is true; otherwise the
	// orchestrator falls back to the per-comment reply listing.
	PageReplied bool
	ReplyKnown  bool
}

// CommentSource resolves the candidate comments for one page. The two
// implementations share all safety-policy logic in the orchestrator;
// only candidate resolution differs.
type CommentSource interface {
	Candidates(ctx context.Context, page *models.Page, pageToken string, opts Options) ([]Candidate, error)
}

// storedSource drains the webhook-fed pending queue.
type storedSource struct {
	comments CommentStore
}

func (s *storedSource) Candidates(ctx context.Context, page *models.Page, _ string, _ Options) ([]Candidate, error) {
	pending, err := s.comments.PendingForPage(ctx, page.PageID, page.ActivatedAt)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(pending))
	for _, comment := range pending {
		candidates = append(candidates, Candidate{Comment: comment})
	}
	return candidates, nil
}

// liveSource scans the page's recent content directly on the platform
// and synthesizes pending comment records for whatever it finds.
type liveSource struct {
	lister   ContentLister
	comments CommentStore
	logger   *logrus.Logger
}

func (s *liveSource) Candidates(ctx context.Context, page *models.Page, pageToken string, opts Options) ([]Candidate, error) {
	log := s.logger.WithFields(logrus.Fields{
		"method":  "liveSource.Candidates",
		"page_id": page.PageID,
	})

	items, err := s.resolveContent(ctx, page, pageToken, opts)
	if err != nil {
		return nil, err
	}
	log.WithField("content_count", len(items)).Debug("Resolved content items")

	var candidates []Candidate
	for _, item := range items {
		listed, err := s.lister.ListComments(ctx, pageToken, facebook.ListCommentsParams{
			ObjectID:       item.ID,
			IncludeReplies: true,
		})
		if err != nil {
			return nil, err
		}

		for _, data := range listed {
			// Never reply to the page's own comments
			if data.From != nil && data.From.ID == page.PageID {
				continue
			}

			comment := synthesizeComment(data, item.ID, page.PageID)

			// Activation floor applies to scanned comments too
			if !comment.CreatedTime.IsZero() && comment.CreatedTime.Before(page.ActivatedAt) {
				continue
			}

			if _, err := s.comments.Upsert(ctx, &comment); err != nil {
				return nil, err
			}

			replied, known := facebook.PageRepliedIn(data, page.PageID)
			candidates = append(candidates, Candidate{
				Comment:     comment,
				PageReplied: replied,
				ReplyKnown:  known,
			})
		}
	}

	return candidates, nil
}

// resolveContent picks the content items to scan: the requested item if
// one was given (trying both the bare id and the page-qualified
// composite id), else the page's recent content listing.
func (s *liveSource) resolveContent(ctx context.Context, page *models.Page, pageToken string, opts Options) ([]facebook.ContentItem, error) {
	if opts.PostID == "" {
		return s.lister.ListContent(ctx, pageToken, page.PageID, opts.ContentType, opts.Limit)
	}

	ids := []string{opts.PostID}
	if composite := fmt.Sprintf("%s_%s", page.PageID, opts.PostID); composite != opts.PostID {
		ids = append(ids, composite)
	}

	for _, id := range ids {
		listed, err := s.lister.ListComments(ctx, pageToken, facebook.ListCommentsParams{ObjectID: id})
		if err != nil {
			s.logger.WithError(err).WithField("post_id", id).Debug("Target id variant yielded no listing")
			continue
		}
		if len(listed) > 0 {
			return []facebook.ContentItem{{ID: id}}, nil
		}
	}

	// Neither variant yielded comments; scan the bare id so an empty
	// target still resolves rather than erroring.
	return []facebook.ContentItem{{ID: opts.PostID}}, nil
}

func synthesizeComment(data facebook.CommentData, postID, pageID string) models.Comment {
	comment := models.Comment{
		CommentID:   data.ID,
		PostID:      postID,
		PageID:      pageID,
		Message:     data.Message,
		Status:      models.StatusPending,
		ReceivedAt:  time.Now(),
		CreatedTime: time.Now(),
	}
	if data.From != nil {
		comment.FromID = data.From.ID
		comment.FromName = data.From.Name
	}
	if data.CreatedTime != "" {
		if t, err := time.Parse("2006-01-02T15:04:05-0700", data.CreatedTime); err == nil {
			comment.CreatedTime = t
		}
	}
	return comment
}
