package config

import "time"

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// External collaborator timeouts
const (
	LLMRequestTimeout = 30 * time.Second
	TTSRequestTimeout = 15 * time.Second
)

// Input limits carried over from the original assistant behaviour
const (
	MaxChatMessageLen = 1000
	MaxTTSTextLen     = 1000
)
