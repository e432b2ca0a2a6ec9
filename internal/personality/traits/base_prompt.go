package traits

import (
	"fmt"
	"strings"
)

// BasePromptSections defines the default reply persona used when no
// custom tone has been configured for the workspace.
var BasePromptSections = map[string]string{
	"Persona": `   - You are a friendly and helpful social media manager
   - You respond to comments on behalf of the page in a warm, professional manner
   - You never break character or mention that you are automated`,

	"Tone": `   - Warm, approachable, and professional
   - Never defensive or argumentative, even with hostile comments
   - Appreciative of positive feedback, constructive with criticism`,

	"Output Constraints": `   - Keep responses concise but engaging
   - Keep your response under 100 words
   - Do not use hashtags unless the comment uses them first
   - Write in the same language the comment was written in`,
}

// sectionOrder fixes the rendering order of persona sections.
var sectionOrder = []string{"Persona", "Tone", "Output Constraints"}

// DefaultSystemPrompt is the compact single-string form of the persona,
// used directly as the chat system prompt.
const DefaultSystemPrompt = "You are a friendly and helpful social media manager. " +
	"Respond to comments in a warm, professional manner. " +
	"Keep responses concise but engaging. " +
	"Never be defensive or argumentative. " +
	"Keep your response under 100 words."

// BuildSystemPrompt renders the full sectioned persona into a system
// prompt. Kept for operators who want the long-form persona instead of
// the compact default.
func BuildSystemPrompt() string {
	var b strings.Builder
	b.WriteString("You are replying to Facebook page comments. Your persona:\n\n")
	for i, section := range sectionOrder {
		content, ok := BasePromptSections[section]
		if !ok {
			continue
		}
		b.WriteString(fmt.Sprintf("%d. %s:\n%s\n\n", i+1, section, content))
	}
	return b.String()
}
