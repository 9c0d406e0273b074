package ai

import (
	"fmt"
	"strings"
)

const (
	// ApplicationJSON is the MIME type for JSON content.
	ApplicationJSON = "application/json"
)

// ContextType represents the type of message context.
type ContextType string

const (
	ContextTypeHuman ContextType = "human"
	ContextTypeAI    ContextType = "ai"
)

// ChatContext is a slice of ordered conversation entries.
type ChatContext []Context

// Context represents a single entry in the chat history.
type Context struct {
	Type    ContextType
	Content string
}

// FormatForAI formats the conversation history for inclusion in AI messages.
func (cc ChatContext) FormatForAI() string {
	if len(cc) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Previous conversation:\n")

	for _, ctx := range cc {
		content := ctx.Content

		// For AI responses, remove thinking blocks
		if ctx.Type == ContextTypeAI {
			for {
				startIdx := strings.Index(content, "<think>")
				if startIdx == -1 {
					break
				}

				endIdx := strings.Index(content[startIdx:], "</think>")
				if endIdx == -1 {
					break
				}

				endIdx += startIdx + 8 // Add length of "</think>"
				content = content[:startIdx] + content[endIdx:]
			}

			content = strings.TrimSpace(content)
		}

		switch ctx.Type {
		case ContextTypeHuman:
			b.WriteString(fmt.Sprintf("<previous user>%s</previous>\n", content))
		case ContextTypeAI:
			if content != "" {
				b.WriteString(fmt.Sprintf("<previous assistant>%s</previous>\n", content))
			}
		}
	}

	return strings.TrimSpace(b.String())
}
