package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/civicpulse/civicpulse/internal/ai/client"
	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	"github.com/openai/openai-go"
	"go.uber.org/zap"
)

// Assistant manages streaming conversations with the civic assistant.
type Assistant struct {
	chat   client.ChatCompletions
	logger *zap.Logger
	model  string
}

// NewAssistant creates a new assistant with the specified model.
func NewAssistant(chat client.ChatCompletions, model string, logger *zap.Logger) *Assistant {
	return &Assistant{
		chat:   chat,
		logger: logger.Named("ai_assistant"),
		model:  model,
	}
}

// StreamResponse sends a message to the assistant and streams the response.
// Any failure surfaces as a single fallback message on the channel rather
// than an error; the conversation UI never hard-fails on the model.
func (a *Assistant) StreamResponse(
	ctx context.Context, chatContext ChatContext, persona enum.Persona, message string,
) chan string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	responseChan := make(chan string, 1)

	go func() {
		defer close(responseChan)
		defer cancel()
		defer func() {
			if err := recover(); err != nil {
				a.logger.Error("Panic in chat stream", zap.Any("error", err))
				select {
				case responseChan <- AssistantFallbackMessage:
				case <-ctx.Done():
				}
			}
		}()

		// Build chat history prompt
		var historyPrompt strings.Builder
		if formatted := chatContext.FormatForAI(); formatted != "" {
			historyPrompt.WriteString(formatted)
			historyPrompt.WriteString("\n\n")
		}
		historyPrompt.WriteString("Current message:\n")
		historyPrompt.WriteString(fmt.Sprintf("<user>%s</user>", message))

		// Create chat stream
		stream := a.chat.NewStreaming(ctx, openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(a.systemPrompt(persona)),
				openai.UserMessage(historyPrompt.String()),
			},
			Model:       a.model,
			Temperature: openai.Float(0.5),
			TopP:        openai.Float(0.7),
		})

		// Check for initial stream error
		if err := stream.Err(); err != nil {
			a.logger.Error("Error starting chat stream", zap.Error(err))
			select {
			case responseChan <- AssistantFallbackMessage:
			case <-ctx.Done():
			}
			return
		}

		sent := false

		// Stream responses as they arrive
		for stream.Next() {
			select {
			case <-ctx.Done():
				a.logger.Warn("Chat stream timeout")
				return
			default:
				chunk := stream.Current()
				if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
					select {
					case responseChan <- chunk.Choices[0].Delta.Content:
						sent = true
					case <-ctx.Done():
						return
					}
				}
			}
		}

		// Check for stream errors
		if err := stream.Err(); err != nil {
			a.logger.Error("Error streaming chat response", zap.Error(err))

			if !sent {
				select {
				case responseChan <- AssistantFallbackMessage:
				case <-ctx.Done():
				}
			}
		}
	}()

	return responseChan
}

// systemPrompt combines the base assistant prompt with the persona context.
func (a *Assistant) systemPrompt(persona enum.Persona) string {
	extra, ok := personaPrompts[string(persona)]
	if !ok {
		return AssistantSystemPrompt
	}

	return AssistantSystemPrompt + "\n\nUser context:\n" + extra
}
