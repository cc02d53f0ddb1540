package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dahui-ai/assistant-server-go/internal/config"
)

// Voices maps supported voice ids to display names. Requests for a voice
// outside this list fall back to the client's default voice.
var Voices = map[string]string{
	"zh-TW-HsiaoChenNeural": "HsiaoChen (female)",
	"zh-TW-YunJheNeural":    "YunJhe (male)",
	"zh-TW-HsiaoYuNeural":   "HsiaoYu (female)",
	"zh-CN-XiaoxiaoNeural":  "Xiaoxiao (female)",
	"zh-CN-YunxiNeural":     "Yunxi (male)",
}

// Client talks to the speech-synthesis service. Like the LLM client it fails
// soft: callers encode success as presence of audio bytes.
type Client struct {
	baseURL      string
	defaultVoice string
	client       *http.Client
}

func NewClient(baseURL, defaultVoice string) *Client {
	return &Client{
		baseURL:      baseURL,
		defaultVoice: defaultVoice,
		client: &http.Client{
			Timeout: config.TTSRequestTimeout,
		},
	}
}

type synthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// Synthesize converts text to audio bytes. Over-long text is truncated
// rather than rejected, matching the assistant's chat behaviour.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("tts: not configured")
	}
	if text == "" {
		return nil, fmt.Errorf("tts: empty text")
	}

	if runes := []rune(text); len(runes) > config.MaxTTSTextLen {
		text = string(runes[:config.MaxTTSTextLen]) + "..."
		log.Info().Msg("tts text truncated")
	}

	if _, ok := Voices[voice]; !ok {
		if voice != "" {
			log.Warn().Str("voice", voice).Msg("unsupported tts voice, using default")
		}
		voice = c.defaultVoice
	}

	body, err := json.Marshal(synthesizeRequest{Text: text, Voice: voice})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		log.Error().Err(err).Str("voice", voice).Dur("elapsed", elapsed).Msg("tts request error")
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().Int("status", resp.StatusCode).Str("voice", voice).Dur("elapsed", elapsed).Msg("tts request rejected")
		return nil, fmt.Errorf("tts request failed with status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		log.Warn().Str("voice", voice).Msg("tts returned empty audio")
		return nil, fmt.Errorf("tts returned no audio")
	}

	log.Info().Str("voice", voice).Int("bytes", len(audio)).Dur("elapsed", elapsed).Msg("tts audio generated")
	return audio, nil
}

// DataURI encodes audio bytes the way the web client consumes them.
func DataURI(audio []byte) string {
	return "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(audio)
}
