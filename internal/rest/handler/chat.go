package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/civicpulse/civicpulse/internal/ai"
	"github.com/civicpulse/civicpulse/internal/database"
	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	restTypes "github.com/civicpulse/civicpulse/internal/rest/types"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// ChatHandler streams assistant responses.
type ChatHandler struct {
	db        database.Client
	assistant *ai.Assistant
	logger    *zap.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(db database.Client, assistant *ai.Assistant, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		db:        db,
		assistant: assistant,
		logger:    logger,
	}
}

// Stream sends the assistant's reply as server-sent events, one data
// frame per chunk. AI failures surface as a normal apology message, so
// the stream itself never errors.
func (h *ChatHandler) Stream(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	var body restTypes.ChatRequest
	if err := decodeBody(req, &body); err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid request body", "")
	}

	if strings.TrimSpace(body.Message) == "" {
		return respondError(w, http.StatusBadRequest, "Message is empty", "")
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		return respondError(w, http.StatusInternalServerError, "Streaming unsupported", "")
	}

	var persona enum.Persona
	if user, err := h.db.Service().User().GetUser(req.Context(), caller.UserID); err == nil {
		persona = user.Persona
	}

	chatContext := make(ai.ChatContext, 0, len(body.History))

	for _, message := range body.History {
		contextType := ai.ContextTypeHuman
		if message.Role == "assistant" {
			contextType = ai.ContextTypeAI
		}

		chatContext = append(chatContext, ai.Context{
			Type:    contextType,
			Content: message.Content,
		})
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for chunk := range h.assistant.StreamResponse(req.Context(), chatContext, persona, body.Message) {
		for _, line := range strings.Split(chunk, "\n") {
			fmt.Fprintf(w, "data: %s\n", line)
		}

		fmt.Fprint(w, "\n")
		flusher.Flush()
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()

	return nil
}
