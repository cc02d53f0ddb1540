package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dahui-ai/assistant-server-go/internal/middleware"
	"github.com/dahui-ai/assistant-server-go/internal/service"
)

type AuthHandler struct {
	access *service.AccessService
}

func NewAuthHandler(access *service.AccessService) *AuthHandler {
	return &AuthHandler{access: access}
}

// Login exchanges an access code for a session id. One-time codes are
// consumed by a successful login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "code is required"})
		return
	}

	result, err := h.access.Login(strings.TrimSpace(req.Code), clientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"sessionId": result.SessionID,
		"codeType":  result.CodeKind,
	})
}

// Session returns the authenticated session's info, for clients restoring
// state after a page reload. Guarded by the session middleware.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	if session == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid or expired session"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid":      true,
		"sessionId":  session.SessionID,
		"accessCode": session.AccessCode,
		"codeType":   session.CodeKind,
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	return r.RemoteAddr
}
