package orchestrator_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/replykit/pagebot/pkg/db/models"
	"github.com/replykit/pagebot/pkg/orchestrator"
)

func testSettings() models.Settings {
	return models.Settings{
		MaxRepliesPerRun:           100,
		MinDelay:                   1,
		MaxDelay:                   1,
		ShortCommentThresholdWords: 6,
		ShortCommentThresholdChars: 40,
		AutoPauseOnErrors:          true,
		ErrorThreshold:             5,
	}
}

func activePage(pageID string) models.Page {
	return models.Page{
		PageID:      pageID,
		Name:        "Test Page",
		AccessToken: "token-" + pageID,
		Status:      models.PageActive,
		AutoReply:   true,
	}
}

func pendingComment(commentID, postID, pageID, fromID, message string) models.Comment {
	return models.Comment{
		CommentID:   commentID,
		PostID:      postID,
		PageID:      pageID,
		FromID:      fromID,
		FromName:    "Commenter " + fromID,
		Message:     message,
		Status:      models.StatusPending,
		CreatedTime: time.Now().Add(-time.Hour),
	}
}

var _ = Describe("Orchestrator", func() {
	var (
		ctx       context.Context
		logger    *logrus.Logger
		comments  *fakeCommentStore
		pages     *fakePageStore
		settings  *fakeSettingsLoader
		runs      *fakeRunLedger
		poster    *fakePoster
		generator *fakeGenerator
		sleeper   *fakeSleeper
		lister    *fakeLister
	)

	newOrchestrator := func() *orchestrator.Orchestrator {
		orch, err := orchestrator.New(orchestrator.Config{
			Comments:  comments,
			Pages:     pages,
			Settings:  settings,
			Runs:      runs,
			Generator: generator,
			Poster:    poster,
			Lister:    lister,
			Logger:    logger,
			Sleeper:   sleeper,
			Rand:      fixedRand{},
		})
		Expect(err).NotTo(HaveOccurred())
		return orch
	}

	BeforeEach(func() {
		ctx = context.Background()
		logger = logrus.New()
		logger.SetOutput(GinkgoWriter)
		logger.SetLevel(logrus.DebugLevel)

		comments = newFakeCommentStore()
		pages = newFakePageStore(activePage("page1"))
		settings = &fakeSettingsLoader{settings: testSettings()}
		runs = &fakeRunLedger{}
		poster = newFakePoster()
		generator = newFakeGenerator()
		sleeper = &fakeSleeper{}
		lister = &fakeLister{}
	})

	Describe("processing the stored queue", func() {
		It("replies to each pending comment and records the outcome", func() {
			comments = newFakeCommentStore(
				pendingComment("c1", "post1", "page1", "user1", "This restaurant looks absolutely amazing, when do you open?"),
				pendingComment("c2", "post1", "page1", "user2", "What are your opening hours on weekends please?"),
			)

			result, err := newOrchestrator().Run(ctx, orchestrator.Options{})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Processed).To(Equal(2))
			Expect(result.Replied).To(Equal(2))
			Expect(result.Skipped).To(BeZero())
			Expect(result.Failed).To(BeZero())

			Expect(poster.posted).To(HaveLen(2))
			Expect(poster.posted[0].Token).To(Equal("token-page1"))

			c1 := comments.byID("c1")
			Expect(c1.Status).To(Equal(models.StatusReplied))
			Expect(c1.ReplyMessage).To(Equal("Thanks for your comment!"))
			Expect(c1.ReplyCommentID).NotTo(BeEmpty())
		})

		It("paces between replies within the configured delay window", func() {
			comments = newFakeCommentStore(
				pendingComment("c1", "post1", "page1", "user1", "First long enough comment to need an answer today"),
				pendingComment("c2", "post1", "page1", "user2", "Second long enough comment to need an answer today"),
			)

			_, err := newOrchestrator().Run(ctx, orchestrator.Options{})
			Expect(err).NotTo(HaveOccurred())

			// One delay after every reply, including the last
			Expect(sleeper.slept).To(HaveLen(2))
			for _, d := range sleeper.slept {
				Expect(d).To(BeNumerically(">=", 1*time.Second))
				Expect(d).To(BeNumerically("<=", 1*time.Second))
			}
		})

		It("appends exactly one run record with a fresh run id", func() {
			comments = newFakeCommentStore(
				pendingComment("c1", "post1", "page1", "user1", "A comment that is clearly long enough for the AI path"),
			)

			_, err := newOrchestrator().Run(ctx, orchestrator.Options{})
			Expect(err).NotTo(HaveOccurred())

			Expect(runs.runs).To(HaveLen(1))
			Expect(runs.runs[0].RunID).NotTo(BeEmpty())
			Expect(runs.runs[0].Replied).To(Equal(1))
		})
	})

	Describe("the per-run reply budget", func() {
		It("stops after the configured number of replies", func() {
			s := testSettings()
			s.MaxRepliesPerRun = 2
			settings.settings = s

			comments = newFakeCommentStore(
				pendingComment("c1", "post1", "page1", "user1", "First long enough comment that needs an answer today"),
				pendingComment("c2", "post1", "page1", "user2", "Second long enough comment that needs an answer today"),
				pendingComment("c3", "post1", "page1", "user3", "Third long enough comment that needs an answer today"),
			)

			result, err := newOrchestrator().Run(ctx, orchestrator.Options{})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Replied).To(Equal(2))
			Expect(poster.posted).To(HaveLen(2))

			// The third comment was never claimed
			Expect(comments.byID("c3").Status).To(Equal(models.StatusPending))
		})

		It("enforces the budget across pages", func() {
			s := testSettings()
			s.MaxRepliesPerRun = 1
			settings.settings = s

			pages = newFakePageStore(activePage("page1"), activePage("page2"))
			comments = newFakeCommentStore(
				pendingComment("c1", "post1", "page1", "user1", "A long enough comment that deserves an answer today"),
				pendingComment("c2", "post2", "page2", "user2", "Another long enough comment that deserves an answer"),
			)

			result, err := newOrchestrator().Run(ctx, orchestrator.Options{})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Replied).To(Equal(1))
			Expect(comments.byID("c2").Status).To(Equal(models.StatusPending))
		})
	})

	Describe("per-user-per-post deduplication", func() {
		It("skips a second comment by the same user on the same post", func() {
			comments = newFakeCommentStore(
				pendingComment("c1", "post1", "page1", "user1", "A first long enough comment that deserves an answer"),
				pendingComment("c2", "post1", "page1", "user1", "A second long enough comment by the very same user"),
			)

			result, err := newOrchestrator().Run(ctx, orchestrator.Options{})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Replied).To(Equal(1))
			Expect(result.Skipped).To(Equal(1))

			skipped := comments.byID("c2")
			Expect(skipped.Status).To(Equal(models.StatusSkipped))
			Expect(skipped.SkipReason).To(Equal("Already replied to user on this post"))
		})

		It("still replies to the same user on a different post", func() {
			comments = newFakeCommentStore(
				pendingComment("c1", "post1", "page1", "user1", "A first long enough comment that deserves an answer"),
				pendingComment("c2", "post2", "page1", "user1", "A second long enough comment on a different post"),
			)

			result, err := newOrchestrator().Run(ctx, orchestrator.Options{})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Replied).To(Equal(2))
			Expect(result.Skipped).To(BeZero())
		})
	})

	Describe("the external already-replied check", func() {
		It("skips comments the page already answered", func() {
			comments = newFakeCommentStore(
				pendingComment("c1", "post1", "page1", "user1", "A long enough comment the page already responded to"),
			)
			poster.replied["c1"] = true

			result, err := newOrchestrator().Run(ctx, orchestrator.Options{})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Skipped).To(Equal(1))
			Expect(result.Replied).To(BeZero())
			Expect(comments.byID("c1").SkipReason).To(Equal("Page already replied to this comment"))
		})

		It("proceeds when the check itself fails", func() {
			comments = newFakeCommentStore(
				pendingComment("c1", "post1", "page1", "user1", "A long enough comment that still deserves an answer"),
			)
			poster.alreadyErr = errors.New("transport down")

			result, err := newOrchestrator().Run(ctx, orchestrator.Options{})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Replied).To(Equal(1))
		})
	})

	Describe("shadow mode", func() {
		It("records decisions without posting anything", func() {
			comments = newFakeCommentStore(
				pendingComment("c1", "post1", "page1", "user1", "A long enough comment that would normally get posted"),
			)

			result, err := newOrchestrator().Run(ctx, orchestrator.Options{ShadowMode: true, Manual: true})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Replied).To(Equal(1))
			Expect(poster.posted).To(BeEmpty())

			c := comments.byID("c1")
			Expect(c.Status).To(Equal(models.StatusReplied))
			Expect(c.ShadowMode).To(BeTrue())
			Expect(c.ReplyCommentID).To(BeEmpty())

			// Pacing still applies in shadow mode
			Expect(sleeper.slept).To(HaveLen(1))
		})
	})

	Describe("global pause", func() {
		BeforeEach(func() {
			s := testSettings()
			s.GlobalPause = true
			settings.settings = s
			comments = newFakeCommentStore(
				pendingComment("c1", "post1", "page1", "user1", "A long enough comment waiting behind the pause"),
			)
		})

		It("short-circuits scheduled runs but still writes the ledger", func() {
			result, err := newOrchestrator().Run(ctx, orchestrator.Options{})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Processed).To(BeZero())
			Expect(result.Message).To(Equal("Skipped due to global pause"))
			Expect(runs.runs).To(HaveLen(1))
			Expect(runs.runs[0].Message).To(Equal("Skipped due to global pause"))
			Expect(comments.byID("c1").Status).To(Equal(models.StatusPending))
		})

		It("does not apply to manual runs", func() {
			result, err := newOrchestrator().Run(ctx, orchestrator.Options{Manual: true})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Replied).To(Equal(1))
		})
	})

	Describe("failure handling and auto-pause", func() {
		It("marks a failed comment and keeps going", func() {
			comments = newFakeCommentStore(
				pendingComment("c1", "post1", "page1", "user1", "A long enough comment whose posting will fail today"),
				pendingComment("c2", "post1", "page1", "user2", "A long enough comment whose posting will succeed"),
			)
			poster.postErrs["c1"] = errors.New("429 rate limited")

			result, err := newOrchestrator().Run(ctx, orchestrator.Options{})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Failed).To(Equal(1))
			Expect(result.Replied).To(Equal(1))
			Expect(result.Errors).To(HaveLen(1))
			Expect(comments.byID("c1").Status).To(Equal(models.StatusFailed))
		})

		It("auto-pauses the page once the error threshold is reached", func() {
			s := testSettings()
			s.ErrorThreshold = 2
			settings.settings = s

			comments = newFakeCommentStore(
				pendingComment("c1", "post1", "page1", "user1", "A long enough comment whose posting will fail today"),
				pendingComment("c2", "post1", "page1", "user2", "Another long enough comment whose posting will fail"),
				pendingComment("c3", "post1", "page1", "user3", "A long enough comment that never gets its turn here"),
			)
			poster.alwaysFail = errors.New("boom")

			result, err := newOrchestrator().Run(ctx, orchestrator.Options{})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Failed).To(Equal(2))
			Expect(pages.paused).To(HaveKeyWithValue("page1", "Auto-paused due to errors"))

			// Processing stopped at the threshold
			Expect(comments.byID("c3").Status).To(Equal(models.StatusPending))
		})

		It("does not auto-pause when the breaker is disabled", func() {
			s := testSettings()
			s.ErrorThreshold = 1
			s.AutoPauseOnErrors = false
			settings.settings = s

			comments = newFakeCommentStore(
				pendingComment("c1", "post1", "page1", "user1", "A long enough comment whose posting will fail today"),
				pendingComment("c2", "post1", "page1", "user2", "Another long enough comment whose posting will fail"),
			)
			poster.alwaysFail = errors.New("boom")

			result, err := newOrchestrator().Run(ctx, orchestrator.Options{})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Failed).To(Equal(2))
			Expect(pages.paused).To(BeEmpty())
		})
	})

	Describe("claiming", func() {
		It("silently passes over comments another invocation claimed", func() {
			comments = newFakeCommentStore(
				pendingComment("c1", "post1", "page1", "user1", "A long enough comment that someone else is handling"),
				pendingComment("c2", "post1", "page1", "user2", "A long enough comment this run should still answer"),
			)
			comments.comments["c1"].Status = models.StatusProcessing

			result, err := newOrchestrator().Run(ctx, orchestrator.Options{})
			Expect(err).NotTo(HaveOccurred())

			// The unclaimable comment was neither processed nor skipped
			Expect(result.Processed).To(Equal(1))
			Expect(result.Replied).To(Equal(1))
			Expect(result.Skipped).To(BeZero())
		})

		It("aborts the run when the claim itself fails", func() {
			comments = newFakeCommentStore(
				pendingComment("c1", "post1", "page1", "user1", "A long enough comment behind a broken database now"),
			)
			comments.claimErr = errors.New("connection refused")

			_, err := newOrchestrator().Run(ctx, orchestrator.Options{})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("failed to claim comment"))
		})
	})

	Describe("page credentials", func() {
		It("skips a page without an access token and records the error", func() {
			page := activePage("page1")
			page.AccessToken = ""
			pages = newFakePageStore(page)
			comments = newFakeCommentStore(
				pendingComment("c1", "post1", "page1", "user1", "A long enough comment stuck behind missing credentials"),
			)

			result, err := newOrchestrator().Run(ctx, orchestrator.Options{})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Processed).To(BeZero())
			Expect(result.Errors).To(ContainElement(ContainSubstring("missing access token")))
		})

		It("uses the per-run token override when given", func() {
			page := activePage("page1")
			page.AccessToken = ""
			pages = newFakePageStore(page)
			comments = newFakeCommentStore(
				pendingComment("c1", "post1", "page1", "user1", "A long enough comment answered with an override token"),
			)

			result, err := newOrchestrator().Run(ctx, orchestrator.Options{PageID: "page1", AccessToken: "override-token"})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Replied).To(Equal(1))
			Expect(poster.posted[0].Token).To(Equal("override-token"))
		})
	})

	Describe("targeted runs", func() {
		It("processes the requested page even when it is paused", func() {
			page := activePage("page1")
			page.Status = models.PagePaused
			pages = newFakePageStore(page)
			comments = newFakeCommentStore(
				pendingComment("c1", "post1", "page1", "user1", "A long enough comment on an otherwise paused page"),
			)

			result, err := newOrchestrator().Run(ctx, orchestrator.Options{Manual: true, PageID: "page1"})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Replied).To(Equal(1))
		})

		It("fails the run when the target page does not exist", func() {
			_, err := newOrchestrator().Run(ctx, orchestrator.Options{Manual: true, PageID: "nope"})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("failed to resolve target page"))
		})
	})

	Describe("page-level recovery", func() {
		It("records a page whose candidate listing fails and finishes the run", func() {
			lister.contentErr = errors.New("(#803) object does not exist")

			result, err := newOrchestrator().Run(ctx, orchestrator.Options{Manual: true, Limit: 5})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Errors).To(ContainElement(ContainSubstring("page1")))
			Expect(result.Replied).To(BeZero())
			Expect(runs.runs).To(HaveLen(1))
		})
	})

	Describe("cancellation", func() {
		It("stops cleanly between comments and still writes the ledger", func() {
			comments = newFakeCommentStore(
				pendingComment("c1", "post1", "page1", "user1", "A long enough comment processed before cancellation"),
				pendingComment("c2", "post1", "page1", "user2", "A long enough comment abandoned after cancellation"),
			)

			cancelCtx, cancel := context.WithCancel(ctx)
			sleeper.err = context.Canceled
			cancel()

			result, err := newOrchestrator().Run(cancelCtx, orchestrator.Options{})
			Expect(err).To(MatchError(context.Canceled))

			Expect(result.Replied).To(BeZero())
			Expect(runs.runs).To(HaveLen(1))
		})
	})

})
