package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dahui-ai/assistant-server-go/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	Brand     string `json:"brand"`
	Style     string `json:"style"`
	Voice     string `json:"voice"`
}

// Chat handles a text-only conversation turn.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	h.handleChat(w, r, false)
}

// ChatTTS handles a conversation turn plus speech synthesis of the reply.
func (h *ChatHandler) ChatTTS(w http.ResponseWriter, r *http.Request) {
	h.handleChat(w, r, true)
}

func (h *ChatHandler) handleChat(w http.ResponseWriter, r *http.Request, withAudio bool) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.chat.Chat(r.Context(), service.ChatRequest{
		SessionID: req.SessionID,
		Message:   req.Message,
		Brand:     req.Brand,
		Style:     req.Style,
		Voice:     req.Voice,
		WithAudio: withAudio,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// TTS synthesizes speech for arbitrary text. Fails soft: success=false with
// empty audio instead of an error status.
func (h *ChatHandler) TTS(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text  string `json:"text"`
		Voice string `json:"voice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}

	audioData, ok := h.chat.Synthesize(r.Context(), req.Text, req.Voice)
	writeJSON(w, http.StatusOK, map[string]any{
		"audioData": audioData,
		"success":   ok,
	})
}
