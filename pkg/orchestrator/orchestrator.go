package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/replykit/pagebot/pkg/db/models"
	"github.com/replykit/pagebot/pkg/replies"
	"github.com/replykit/pagebot/pkg/store"
)

const (
	// skipReasonDedup marks the per-run one-reply-per-user-per-post rule.
	skipReasonDedup = "Already replied to user on this post"
	// skipReasonExternal marks a reply the page already made outside
	// this system's view.
	skipReasonExternal = "Page already replied to this comment"
	// autoPauseReason is written to a page paused by the error breaker.
	autoPauseReason = "Auto-paused due to errors"
)

// Orchestrator is the reply-processing job: it selects eligible pages
// and comments, applies the safety policy, and records outcomes. One
// invocation processes pages, content, and comments strictly
// sequentially; the inter-reply delay is a deliberate pacing control.
type Orchestrator struct {
	comments  CommentStore
	pages     PageStore
	settings  SettingsLoader
	runs      RunLedger
	generator replies.Generator
	poster    Poster
	lister    ContentLister
	logger    *logrus.Logger
	sleeper   Sleeper
	rng       Rand
}

// Config holds the configuration for the Orchestrator
type Config struct {
	Comments  CommentStore
	Pages     PageStore
	Settings  SettingsLoader
	Runs      RunLedger
	Generator replies.Generator
	Poster    Poster
	Lister    ContentLister
	Logger    *logrus.Logger

	// Optional; real implementations are used when nil.
	Sleeper Sleeper
	Rand    Rand
}

// New creates a new Orchestrator instance
func New(config Config) (*Orchestrator, error) {
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &Orchestrator{
		comments:  config.Comments,
		pages:     config.Pages,
		settings:  config.Settings,
		runs:      config.Runs,
		generator: config.Generator,
		poster:    config.Poster,
		lister:    config.Lister,
		logger:    config.Logger,
		sleeper:   config.Sleeper,
		rng:       config.Rand,
	}, nil
}

func validateConfig(config *Config) error {
	if config.Comments == nil {
		return fmt.Errorf("comment store is required")
	}
	if config.Pages == nil {
		return fmt.Errorf("page store is required")
	}
	if config.Settings == nil {
		return fmt.Errorf("settings loader is required")
	}
	if config.Runs == nil {
		return fmt.Errorf("run ledger is required")
	}
	if config.Generator == nil {
		return fmt.Errorf("reply generator is required")
	}
	if config.Poster == nil {
		return fmt.Errorf("poster is required")
	}
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	if config.Sleeper == nil {
		config.Sleeper = realSleeper{}
	}
	if config.Rand == nil {
		config.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return nil
}

// Run executes one reply-processing job and returns its aggregate
// result. Per-comment failures are recovered locally; only run-wide
// conditions (persistence failure, unresolvable target page) surface as
// an error.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Result, error) {
	runID := uuid.NewString()
	log := o.logger.WithFields(logrus.Fields{
		"method": "Run",
		"run_id": runID,
		"shadow": opts.ShadowMode,
		"manual": opts.Manual,
	})

	result := newResult()

	settings, err := o.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	// Operator-initiated full stop; manual runs are exempt
	if settings.GlobalPause && !opts.Manual {
		log.Info("Global pause is active, skipping run")
		result.Message = "Skipped due to global pause"
		o.appendRun(ctx, runID, opts, result)
		return result, nil
	}

	pages, err := o.resolvePages(ctx, opts)
	if err != nil {
		return nil, err
	}
	log.WithField("page_count", len(pages)).Info("Starting reply job")

	source := o.selectSource(opts)

	totalReplies := 0
	for i := range pages {
		page := &pages[i]
		if totalReplies >= settings.MaxRepliesPerRun {
			log.WithField("max_replies", settings.MaxRepliesPerRun).Info("Reached max replies limit, stopping")
			break
		}
		if err := ctx.Err(); err != nil {
			break
		}

		n, err := o.processPage(ctx, source, page, opts, settings, totalReplies, result)
		totalReplies += n
		if err != nil {
			return result, err
		}
	}

	o.appendRun(ctx, runID, opts, result)
	log.WithFields(logrus.Fields{
		"processed": result.Processed,
		"replied":   result.Replied,
		"skipped":   result.Skipped,
		"failed":    result.Failed,
	}).Info("Reply job completed")

	return result, ctx.Err()
}

// resolvePages returns exactly the requested page for targeted runs
// (bypassing eligibility flags), else every active auto-reply page.
func (o *Orchestrator) resolvePages(ctx context.Context, opts Options) ([]models.Page, error) {
	if opts.PageID != "" {
		page, err := o.pages.ByPageID(ctx, opts.PageID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve target page: %w", err)
		}
		return []models.Page{*page}, nil
	}
	return o.pages.Eligible(ctx)
}

func (o *Orchestrator) selectSource(opts Options) CommentSource {
	if opts.live() && o.lister != nil {
		return &liveSource{lister: o.lister, comments: o.comments, logger: o.logger}
	}
	return &storedSource{comments: o.comments}
}

// processPage runs the safety-policy loop over one page's candidates.
// It returns how many replies were sent for budget accounting; an error
// return aborts the whole run (persistence failures only).
func (o *Orchestrator) processPage(ctx context.Context, source CommentSource, page *models.Page, opts Options, settings models.Settings, repliesSoFar int, result *Result) (int, error) {
	log := o.logger.WithFields(logrus.Fields{
		"method":  "processPage",
		"page_id": page.PageID,
	})

	token := opts.AccessToken
	if token == "" {
		token = page.AccessToken
	}
	if token == "" {
		log.Error("Page has no access token")
		result.Errors = append(result.Errors, fmt.Sprintf("%s: missing access token", page.PageID))
		return 0, nil
	}

	candidates, err := source.Candidates(ctx, page, token, opts)
	if err != nil {
		// Listing failures are recovered at the page level
		log.WithError(err).Error("Failed to resolve candidate comments, skipping page")
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", page.PageID, err))
		return 0, nil
	}

	log.WithField("candidate_count", len(candidates)).Info("Found candidate comments")
	result.TotalComments += len(candidates)

	sent := 0
	pageFailures := 0

	// One reply per user per post within this run
	repliedUsers := make(map[string]map[string]bool)

	for _, cand := range candidates {
		if repliesSoFar+sent >= settings.MaxRepliesPerRun {
			break
		}
		// Replies already posted cannot be rolled back, so
		// cancellation is a clean stop between comments
		if err := ctx.Err(); err != nil {
			break
		}

		comment := cand.Comment
		clog := log.WithFields(logrus.Fields{
			"comment_id": comment.CommentID,
			"post_id":    comment.PostID,
		})

		claimed, err := o.comments.Claim(ctx, comment.CommentID)
		if err != nil {
			return sent, fmt.Errorf("failed to claim comment: %w", err)
		}
		if !claimed {
			// Another invocation owns it, or it is already terminal
			clog.Debug("Comment not claimable, skipping")
			continue
		}

		result.Processed++

		if repliedUsers[comment.PostID][comment.FromID] {
			if err := o.comments.MarkSkipped(ctx, comment.CommentID, skipReasonDedup); err != nil {
				return sent, err
			}
			clog.WithField("from_id", comment.FromID).Debug("Skipped duplicate user on post")
			result.Skipped++
			continue
		}

		if o.externallyReplied(ctx, cand, token, page.PageID) {
			if err := o.comments.MarkSkipped(ctx, comment.CommentID, skipReasonExternal); err != nil {
				return sent, err
			}
			clog.Debug("Skipped comment the page already replied to")
			result.Skipped++
			continue
		}

		reply, err := o.generator.Generate(ctx, comment.Message, settings)
		if err == nil {
			clog.WithFields(logrus.Fields{
				"reply_type": reply.Kind,
			}).Debug("Generated reply")
		}

		var replyCommentID string
		if err == nil && !opts.ShadowMode {
			replyCommentID, err = o.poster.PostReply(ctx, token, comment.CommentID, reply.Text)
		}

		if err != nil {
			clog.WithError(err).Error("Failed to process comment")
			if markErr := o.comments.MarkFailed(ctx, comment.CommentID, err.Error()); markErr != nil {
				return sent, markErr
			}
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", comment.CommentID, err))

			pageFailures++
			if settings.AutoPauseOnErrors && pageFailures >= settings.ErrorThreshold {
				log.WithField("failures", pageFailures).Warn("Error threshold reached, auto-pausing page")
				if pauseErr := o.pages.Pause(ctx, page.PageID, autoPauseReason); pauseErr != nil {
					return sent, pauseErr
				}
				break
			}
			continue
		}

		if opts.ShadowMode {
			clog.Info("[SHADOW MODE] Would have posted reply")
		}

		record := store.ReplyRecord{
			Type:           reply.Kind,
			Message:        reply.Text,
			ReplyCommentID: replyCommentID,
			Shadow:         opts.ShadowMode,
			At:             time.Now(),
		}
		if err := o.comments.MarkReplied(ctx, comment.CommentID, record); err != nil {
			return sent, err
		}

		if repliedUsers[comment.PostID] == nil {
			repliedUsers[comment.PostID] = make(map[string]bool)
		}
		repliedUsers[comment.PostID][comment.FromID] = true

		sent++
		result.Replied++

		// Mandatory pacing before the next comment
		if err := o.pace(ctx, settings); err != nil {
			break
		}
	}

	return sent, nil
}

// externallyReplied checks whether the page already replied to this
// comment, preferring nested reply data fetched with the listing. On
// transport failure the check fails open: the comment proceeds, and the
// per-run error threshold bounds the damage of a sustained outage.
func (o *Orchestrator) externallyReplied(ctx context.Context, cand Candidate, token, pageID string) bool {
	if cand.ReplyKnown {
		return cand.PageReplied
	}

	replied, err := o.poster.AlreadyReplied(ctx, token, cand.Comment.CommentID, pageID)
	if err != nil {
		o.logger.WithError(err).WithFields(logrus.Fields{
			"comment_id": cand.Comment.CommentID,
			"page_id":    pageID,
		}).Warn("Could not verify existing replies, proceeding")
		return false
	}
	return replied
}

// pace sleeps a duration drawn uniformly from [minDelay, maxDelay]
// seconds.
func (o *Orchestrator) pace(ctx context.Context, settings models.Settings) error {
	span := settings.MaxDelay - settings.MinDelay + 1
	seconds := settings.MinDelay + o.rng.Intn(span)
	return o.sleeper.Sleep(ctx, time.Duration(seconds)*time.Second)
}

func (o *Orchestrator) appendRun(ctx context.Context, runID string, opts Options, result *Result) {
	run := &models.Run{
		RunID:         runID,
		Timestamp:     time.Now(),
		ShadowMode:    opts.ShadowMode,
		ManualRun:     opts.Manual,
		Processed:     result.Processed,
		Replied:       result.Replied,
		Skipped:       result.Skipped,
		Failed:        result.Failed,
		TotalComments: result.TotalComments,
		Errors:        result.Errors,
		Message:       result.Message,
	}

	// The ledger is best-effort: a failed audit write must not undo an
	// otherwise completed run, and a canceled run still gets its row
	ctx = context.WithoutCancel(ctx)
	if err := o.runs.Append(ctx, run); err != nil {
		o.logger.WithError(err).WithField("run_id", runID).Error("Failed to append run record")
	}
}

// realSleeper blocks on the wall clock, honoring cancellation.
type realSleeper struct{}

func (realSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
