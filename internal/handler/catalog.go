package handler

import (
	"net/http"

	"github.com/dahui-ai/assistant-server-go/internal/brand"
	"github.com/dahui-ai/assistant-server-go/internal/llm"
	"github.com/dahui-ai/assistant-server-go/internal/tts"
)

// CatalogHandler serves the static brand/voice/model catalogs for the UI.
type CatalogHandler struct {
	defaultModel string
	defaultVoice string
}

func NewCatalogHandler(defaultModel, defaultVoice string) *CatalogHandler {
	return &CatalogHandler{
		defaultModel: defaultModel,
		defaultVoice: defaultVoice,
	}
}

func (h *CatalogHandler) Brands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"brands":  brand.List(),
		"default": brand.DefaultBrandID,
	})
}

func (h *CatalogHandler) Voices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"voices":  tts.Voices,
		"default": h.defaultVoice,
	})
}

func (h *CatalogHandler) Models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"models":  llm.Models,
		"default": h.defaultModel,
	})
}
