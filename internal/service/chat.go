package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dahui-ai/assistant-server-go/internal/brand"
	"github.com/dahui-ai/assistant-server-go/internal/config"
	apperrors "github.com/dahui-ai/assistant-server-go/internal/errors"
	"github.com/dahui-ai/assistant-server-go/internal/model"
	"github.com/dahui-ai/assistant-server-go/internal/tts"
)

// User-facing replies for the soft-failure paths. Collaborator errors never
// reach the end user.
const (
	FallbackReply   = "Sorry, I ran into a technical problem answering that. Please try again later."
	EmptyInputReply = "Please provide a valid question."
	TooLongReply    = "Your question is too long. Please shorten it."
)

// Completer is the hosted LLM. Implemented by *llm.Client.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Synthesizer is the speech service. Implemented by *tts.Client.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// ChatService brokers one conversation turn: session check, prompt assembly,
// LLM call with fallback, optional speech, and the bounded chat log.
type ChatService struct {
	sessions SessionRepository
	logs     LogRepository
	llm      Completer
	tts      Synthesizer
}

func NewChatService(sessions SessionRepository, logs LogRepository, llm Completer, synth Synthesizer) *ChatService {
	return &ChatService{
		sessions: sessions,
		logs:     logs,
		llm:      llm,
		tts:      synth,
	}
}

type ChatRequest struct {
	SessionID string
	Message   string
	Brand     string
	Style     string
	Voice     string
	WithAudio bool
	IPAddress string
	UserAgent string
}

type ChatResult struct {
	Response   string `json:"response"`
	Brand      string `json:"brand"`
	AudioData  string `json:"audioData,omitempty"`
	TTSSuccess bool   `json:"ttsSuccess,omitempty"`
}

// Chat handles one user turn. Brands that require auth demand a valid
// session and get their turns logged; anonymous brands skip both.
func (s *ChatService) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	b, ok := brand.Get(req.Brand)
	if !ok {
		return nil, apperrors.ValidationError("unknown brand: " + req.Brand)
	}

	var session *model.SessionInfo
	if b.RequireAuth {
		var err error
		session, err = s.sessions.Validate(req.SessionID)
		if err != nil {
			return nil, err
		}
	}

	response := s.respond(ctx, b, req.Message, req.Style)

	result := &ChatResult{Response: response, Brand: b.ID}
	if req.WithAudio {
		result.AudioData, result.TTSSuccess = s.synthesize(ctx, response, req.Voice)
	}

	if session != nil {
		s.logTurn(session, b.ID, req, response)
		s.sessions.Touch(session.SessionID)
	}

	return result, nil
}

// respond applies the input guards and the fail-soft LLM call.
func (s *ChatService) respond(ctx context.Context, b brand.Brand, message, style string) string {
	if strings.TrimSpace(message) == "" {
		return EmptyInputReply
	}
	if len([]rune(message)) > config.MaxChatMessageLen {
		return TooLongReply
	}

	text, err := s.llm.Complete(ctx, b.Prompt(message, style))
	if err != nil || text == "" {
		log.Error().Err(err).Str("brand", b.ID).Msg("llm completion failed, using fallback reply")
		return FallbackReply
	}
	return text
}

// Synthesize is the standalone TTS path. Success is encoded as a non-empty
// data URI.
func (s *ChatService) Synthesize(ctx context.Context, text, voice string) (string, bool) {
	return s.synthesize(ctx, text, voice)
}

func (s *ChatService) synthesize(ctx context.Context, text, voice string) (string, bool) {
	if s.tts == nil {
		return "", false
	}
	audio, err := s.tts.Synthesize(ctx, text, voice)
	if err != nil || len(audio) == 0 {
		log.Warn().Err(err).Msg("tts synthesis failed")
		return "", false
	}
	return tts.DataURI(audio), true
}

// logTurn appends to the chat log best-effort: a storage hiccup must not
// fail the chat itself.
func (s *ChatService) logTurn(session *model.SessionInfo, brandID string, req ChatRequest, response string) {
	entry := model.ChatLogEntry{
		Timestamp:   time.Now().UTC(),
		SessionID:   session.SessionID,
		AccessCode:  session.AccessCode,
		UserMessage: req.Message,
		BotResponse: response,
		Brand:       brandID,
		IPAddress:   req.IPAddress,
		UserAgent:   req.UserAgent,
	}
	if err := s.logs.Append(entry); err != nil {
		log.Error().Err(err).Msg("failed to append chat log entry")
	}
}
