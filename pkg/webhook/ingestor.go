package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/replykit/pagebot/pkg/db/models"
	"github.com/replykit/pagebot/pkg/store"
)

// ErrNotPageEvent is returned for events that are not page feed events.
var ErrNotPageEvent = errors.New("not a page event")

// CommentWriter is the store surface ingestion needs.
type CommentWriter interface {
	Upsert(ctx context.Context, comment *models.Comment) (bool, error)
}

// PageResolver checks whether an event's page is registered and active.
type PageResolver interface {
	ActiveByPageID(ctx context.Context, pageID string) (*models.Page, error)
}

// Ingestor normalizes inbound webhook events into pending comment
// records. Ingestion is idempotent: re-delivery of the same comment id
// never creates a duplicate.
type Ingestor struct {
	comments CommentWriter
	pages    PageResolver
	logger   *logrus.Logger
}

func NewIngestor(comments CommentWriter, pages PageResolver, logger *logrus.Logger) *Ingestor {
	return &Ingestor{
		comments: comments,
		pages:    pages,
		logger:   logger,
	}
}

// IngestResult summarizes one event delivery.
type IngestResult struct {
	Stored  int `json:"stored"`
	Skipped int `json:"skipped"`
}

// Ingest stores every new comment in the event. Self-authored comments
// and entries for unregistered or inactive pages are skipped.
func (i *Ingestor) Ingest(ctx context.Context, event *Event) (*IngestResult, error) {
	log := i.logger.WithField("method", "Ingest")

	if event.Object != "page" {
		return nil, ErrNotPageEvent
	}

	result := &IngestResult{}

	for _, entry := range event.Entry {
		pageID := entry.ID

		if _, err := i.pages.ActiveByPageID(ctx, pageID); err != nil {
			if errors.Is(err, store.ErrPageNotFound) {
				log.WithField("page_id", pageID).Debug("Page not registered or inactive, skipping entry")
				result.Skipped += countComments(entry)
				continue
			}
			return nil, fmt.Errorf("failed to resolve page: %w", err)
		}

		for _, change := range entry.Changes {
			if !change.IsComment() {
				continue
			}
			value := change.Value

			// Skip the page's own comments
			if value.From.ID == pageID {
				log.WithField("comment_id", value.CommentID).Debug("Skipping self-comment from page")
				result.Skipped++
				continue
			}

			fromName := value.From.Name
			if fromName == "" {
				fromName = "Unknown"
			}

			comment := models.Comment{
				CommentID:   value.CommentID,
				PostID:      value.PostID,
				PageID:      pageID,
				FromID:      value.From.ID,
				FromName:    fromName,
				Message:     value.Message,
				CreatedTime: value.CreatedAt(),
				ReceivedAt:  time.Now(),
				Status:      models.StatusPending,
			}

			created, err := i.comments.Upsert(ctx, &comment)
			if err != nil {
				return nil, err
			}
			if !created {
				log.WithField("comment_id", value.CommentID).Debug("Comment already exists, skipping")
				result.Skipped++
				continue
			}

			log.WithFields(logrus.Fields{
				"comment_id": value.CommentID,
				"page_id":    pageID,
				"from_name":  fromName,
			}).Info("Stored comment")
			result.Stored++
		}
	}

	return result, nil
}

func countComments(entry Entry) int {
	n := 0
	for _, change := range entry.Changes {
		if change.IsComment() {
			n++
		}
	}
	return n
}
