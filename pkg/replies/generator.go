package replies

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/replykit/pagebot/internal/personality/traits"
	"github.com/replykit/pagebot/pkg/db/models"
	"github.com/replykit/pagebot/pkg/llm"
)

const (
	// replyMaxTokens caps the generated reply length.
	replyMaxTokens = 150
	// replyTemperature is the sampling temperature for generated replies.
	replyTemperature = 0.7
)

// Reply is the outcome of classification and generation for one comment.
type Reply struct {
	Text string
	Kind models.ReplyType
}

// Generator decides how to reply to a comment: a random emoji for short
// comments, an AI-generated message for everything else.
type Generator interface {
	Generate(ctx context.Context, message string, settings models.Settings) (Reply, error)
}

type ReplyGenerator struct {
	llm    llm.LLM
	logger *logrus.Logger
	rng    Rand
}

// GeneratorOption customizes a ReplyGenerator.
type GeneratorOption func(*ReplyGenerator)

// WithRand substitutes the randomness source used for emoji selection.
func WithRand(rng Rand) GeneratorOption {
	return func(g *ReplyGenerator) {
		g.rng = rng
	}
}

func NewReplyGenerator(model llm.LLM, logger *logrus.Logger, opts ...GeneratorOption) *ReplyGenerator {
	g := &ReplyGenerator{
		llm:    model,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate classifies the comment and produces a reply. The short path
// never makes an external call; the long path fails with a
// GenerationError when the upstream service does.
func (g *ReplyGenerator) Generate(ctx context.Context, message string, settings models.Settings) (Reply, error) {
	log := g.logger.WithField("method", "Generate")

	if IsShortComment(message, settings.ShortCommentThresholdWords, settings.ShortCommentThresholdChars) {
		reply := Reply{
			Text: EmojiReply(g.rng),
			Kind: models.ReplyTypeEmoji,
		}
		log.WithFields(logrus.Fields{
			"reply_type": reply.Kind,
			"reply":      reply.Text,
		}).Debug("Classified comment as short")
		return reply, nil
	}

	systemPrompt := settings.AITone
	if systemPrompt == "" {
		systemPrompt = traits.DefaultSystemPrompt
	}

	userMessage := fmt.Sprintf(`Reply to this comment: "%s"`, message)

	text, err := g.llm.Generate(ctx, systemPrompt, userMessage,
		llm.WithMaxTokens(replyMaxTokens),
		llm.WithTemperature(replyTemperature),
	)
	if err != nil {
		return Reply{}, &GenerationError{Err: err}
	}

	if text == "" {
		return Reply{}, &GenerationError{Err: fmt.Errorf("empty completion")}
	}

	log.WithFields(logrus.Fields{
		"reply_type":   models.ReplyTypeAI,
		"reply_length": len(text),
	}).Debug("Generated AI reply")

	return Reply{Text: text, Kind: models.ReplyTypeAI}, nil
}
