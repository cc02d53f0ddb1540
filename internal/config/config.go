package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakAdminCodes = []string{
	"admin", "password", "123456", "test",
}

type Config struct {
	Port            int    `env:"PORT" envDefault:"8080"`
	DataDir         string `env:"DATA_DIR" envDefault:"data"`
	AdminAccessCode string `env:"ADMIN_ACCESS_CODE" envDefault:"ai360"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	GeminiModel     string `env:"GEMINI_MODEL" envDefault:"gemma-3-27b-it"`
	TTSBaseURL      string `env:"TTS_BASE_URL"`
	TTSDefaultVoice string `env:"TTS_DEFAULT_VOICE" envDefault:"zh-TW-HsiaoChenNeural"`
	ChatLogLimit    int    `env:"CHAT_LOG_LIMIT" envDefault:"50"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) CodesFile() string {
	return filepath.Join(c.DataDir, "access_codes.json")
}

func (c *Config) LogsFile() string {
	return filepath.Join(c.DataDir, "chat_logs.json")
}

func (c *Config) Validate(isProduction bool) error {
	if c.AdminAccessCode == "" {
		return fmt.Errorf("ADMIN_ACCESS_CODE must not be empty")
	}
	if c.ChatLogLimit <= 0 {
		return fmt.Errorf("CHAT_LOG_LIMIT must be positive")
	}

	if isProduction {
		if len(c.AdminAccessCode) < 6 {
			return fmt.Errorf("ADMIN_ACCESS_CODE must be at least 6 characters in production")
		}
		for _, weak := range knownWeakAdminCodes {
			if strings.EqualFold(c.AdminAccessCode, weak) {
				return fmt.Errorf("ADMIN_ACCESS_CODE is a known weak value; set a strong code in production")
			}
		}
		if c.GeminiAPIKey == "" {
			log.Warn().Msg("GEMINI_API_KEY is empty in production: chat responses will fall back to the canned reply")
		}
		if c.TTSBaseURL == "" {
			log.Warn().Msg("TTS_BASE_URL is empty in production: speech synthesis disabled")
		}
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
