package webhook_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/replykit/pagebot/pkg/db/models"
	"github.com/replykit/pagebot/pkg/store"
	"github.com/replykit/pagebot/pkg/webhook"
)

type fakeCommentWriter struct {
	stored map[string]models.Comment
	err    error
}

func newFakeCommentWriter() *fakeCommentWriter {
	return &fakeCommentWriter{stored: make(map[string]models.Comment)}
}

func (w *fakeCommentWriter) Upsert(_ context.Context, comment *models.Comment) (bool, error) {
	if w.err != nil {
		return false, w.err
	}
	if _, ok := w.stored[comment.CommentID]; ok {
		return false, nil
	}
	w.stored[comment.CommentID] = *comment
	return true, nil
}

type fakePageResolver struct {
	active map[string]bool
	err    error
}

func (r *fakePageResolver) ActiveByPageID(_ context.Context, pageID string) (*models.Page, error) {
	if r.err != nil {
		return nil, r.err
	}
	if !r.active[pageID] {
		return nil, store.ErrPageNotFound
	}
	return &models.Page{PageID: pageID, Status: models.PageActive}, nil
}

func commentChange(commentID, postID, fromID, fromName, message string) webhook.Change {
	return webhook.Change{
		Field: "feed",
		Value: webhook.ChangeValue{
			Item:        "comment",
			CommentID:   commentID,
			PostID:      postID,
			Message:     message,
			CreatedTime: time.Now().Unix(),
			From:        webhook.Actor{ID: fromID, Name: fromName},
		},
	}
}

var _ = Describe("Ingestor", func() {
	var (
		ctx      context.Context
		logger   *logrus.Logger
		comments *fakeCommentWriter
		pages    *fakePageResolver
		ingestor *webhook.Ingestor
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger = logrus.New()
		logger.SetOutput(GinkgoWriter)
		logger.SetLevel(logrus.DebugLevel)

		comments = newFakeCommentWriter()
		pages = &fakePageResolver{active: map[string]bool{"page1": true}}
		ingestor = webhook.NewIngestor(comments, pages, logger)
	})

	It("stores new comments as pending", func() {
		event := &webhook.Event{
			Object: "page",
			Entry: []webhook.Entry{{
				ID: "page1",
				Changes: []webhook.Change{
					commentChange("c1", "post1", "user1", "User One", "Hello there"),
				},
			}},
		}

		result, err := ingestor.Ingest(ctx, event)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Stored).To(Equal(1))
		Expect(result.Skipped).To(BeZero())

		stored := comments.stored["c1"]
		Expect(stored.Status).To(Equal(models.StatusPending))
		Expect(stored.PageID).To(Equal("page1"))
		Expect(stored.PostID).To(Equal("post1"))
		Expect(stored.FromName).To(Equal("User One"))
	})

	It("is idempotent across redeliveries", func() {
		event := &webhook.Event{
			Object: "page",
			Entry: []webhook.Entry{{
				ID: "page1",
				Changes: []webhook.Change{
					commentChange("c1", "post1", "user1", "User One", "Hello there"),
				},
			}},
		}

		first, err := ingestor.Ingest(ctx, event)
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Stored).To(Equal(1))

		second, err := ingestor.Ingest(ctx, event)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Stored).To(BeZero())
		Expect(second.Skipped).To(Equal(1))
		Expect(comments.stored).To(HaveLen(1))
	})

	It("skips the page's own comments", func() {
		event := &webhook.Event{
			Object: "page",
			Entry: []webhook.Entry{{
				ID: "page1",
				Changes: []webhook.Change{
					commentChange("own1", "post1", "page1", "Test Page", "Thanks everyone!"),
					commentChange("c1", "post1", "user1", "User One", "Great post"),
				},
			}},
		}

		result, err := ingestor.Ingest(ctx, event)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Stored).To(Equal(1))
		Expect(result.Skipped).To(Equal(1))
		Expect(comments.stored).NotTo(HaveKey("own1"))
	})

	It("skips entries for unregistered pages", func() {
		event := &webhook.Event{
			Object: "page",
			Entry: []webhook.Entry{{
				ID: "unknown-page",
				Changes: []webhook.Change{
					commentChange("c1", "post1", "user1", "User One", "Hello there"),
				},
			}},
		}

		result, err := ingestor.Ingest(ctx, event)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Stored).To(BeZero())
		Expect(result.Skipped).To(Equal(1))
		Expect(comments.stored).To(BeEmpty())
	})

	It("ignores non-comment feed changes", func() {
		event := &webhook.Event{
			Object: "page",
			Entry: []webhook.Entry{{
				ID: "page1",
				Changes: []webhook.Change{
					{Field: "feed", Value: webhook.ChangeValue{Item: "reaction"}},
					{Field: "mention", Value: webhook.ChangeValue{Item: "comment"}},
					commentChange("c1", "post1", "user1", "User One", "Hello there"),
				},
			}},
		}

		result, err := ingestor.Ingest(ctx, event)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Stored).To(Equal(1))
		Expect(comments.stored).To(HaveLen(1))
	})

	It("defaults a missing author name", func() {
		event := &webhook.Event{
			Object: "page",
			Entry: []webhook.Entry{{
				ID: "page1",
				Changes: []webhook.Change{
					commentChange("c1", "post1", "user1", "", "Hello there"),
				},
			}},
		}

		_, err := ingestor.Ingest(ctx, event)
		Expect(err).NotTo(HaveOccurred())
		Expect(comments.stored["c1"].FromName).To(Equal("Unknown"))
	})

	It("rejects events that are not page events", func() {
		event := &webhook.Event{Object: "user"}

		_, err := ingestor.Ingest(ctx, event)
		Expect(err).To(MatchError(webhook.ErrNotPageEvent))
	})

	It("propagates page resolution failures", func() {
		pages.err = errors.New("connection refused")
		event := &webhook.Event{
			Object: "page",
			Entry:  []webhook.Entry{{ID: "page1"}},
		}

		_, err := ingestor.Ingest(ctx, event)
		Expect(err).To(HaveOccurred())
	})

	It("propagates storage failures", func() {
		comments.err = errors.New("disk full")
		event := &webhook.Event{
			Object: "page",
			Entry: []webhook.Entry{{
				ID: "page1",
				Changes: []webhook.Change{
					commentChange("c1", "post1", "user1", "User One", "Hello there"),
				},
			}},
		}

		_, err := ingestor.Ingest(ctx, event)
		Expect(err).To(HaveOccurred())
	})
})
