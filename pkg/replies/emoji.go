package replies

// Rand is the source of randomness used for emoji selection. It is an
// interface so tests can substitute a deterministic source.
type Rand interface {
	Intn(n int) int
}

// emojiPalette is the fixed set of glyphs used for short-comment replies.
var emojiPalette = []string{"❤️", "🙌", "👍", "🔥", "💯", "✨", "👏", "😊", "🎉", "💪"}

// EmojiReply returns one pseudo-randomly chosen glyph from the palette.
func EmojiReply(rng Rand) string {
	return emojiPalette[rng.Intn(len(emojiPalette))]
}
