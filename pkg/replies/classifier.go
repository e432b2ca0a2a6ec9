package replies

import (
	"strings"
)

// IsShortComment classifies a comment as short when its word count is at
// most thresholdWords OR its character count is below thresholdChars.
// Either condition alone is enough; short comments get the emoji path.
func IsShortComment(message string, thresholdWords, thresholdChars int) bool {
	wordCount := len(strings.Fields(message))
	charCount := len([]rune(message))
	return wordCount <= thresholdWords || charCount < thresholdChars
}
