package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dahui-ai/assistant-server-go/internal/model"
	"github.com/dahui-ai/assistant-server-go/internal/service"
)

const defaultLogQueryLimit = 100

// AdminHandler exposes the code-management surface. Every route is gated on
// a permanent access code supplied via the X-Admin-Code header (or an
// adminCode body field for POSTs).
type AdminHandler struct {
	access *service.AccessService
}

func NewAdminHandler(access *service.AccessService) *AdminHandler {
	return &AdminHandler{access: access}
}

func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/codes", h.ListCodes)
	r.Post("/codes", h.GenerateCode)
	r.Post("/codes/custom", h.CreateCustomCode)
	r.Post("/codes/{code}/reset", h.ResetCode)
	r.Delete("/codes/{code}", h.DeleteCode)
	r.Get("/logs", h.ListLogs)
	r.Get("/sessions", h.ListSessions)

	return r
}

func (h *AdminHandler) GenerateCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdminCode   string `json:"adminCode"`
		Type        string `json:"type"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	kind := model.CodeKind(req.Type)
	if req.Type == "" {
		kind = model.CodeKindOneTime
	}

	code, err := h.access.GenerateCode(adminCode(r, req.AdminCode), kind, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"code":    code,
		"type":    kind,
	})
}

func (h *AdminHandler) CreateCustomCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdminCode   string `json:"adminCode"`
		Code        string `json:"code"`
		Type        string `json:"type"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	kind := model.CodeKind(req.Type)
	if req.Type == "" {
		kind = model.CodeKindOneTime
	}

	if err := h.access.CreateCustomCode(adminCode(r, req.AdminCode), req.Code, kind, req.Description); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"code":    req.Code,
		"type":    kind,
	})
}

func (h *AdminHandler) ResetCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdminCode string `json:"adminCode"`
	}
	// Body is optional when the header carries the admin code.
	json.NewDecoder(r.Body).Decode(&req)

	code, err := h.access.ResetCode(adminCode(r, req.AdminCode), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"resetCount": code.ResetCount,
	})
}

func (h *AdminHandler) DeleteCode(w http.ResponseWriter, r *http.Request) {
	code, err := h.access.DeleteCode(adminCode(r, ""), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"deleted": code,
	})
}

func (h *AdminHandler) ListCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.access.ListCodes(adminCode(r, ""))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": codes,
		"total": len(codes),
	})
}

func (h *AdminHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit := defaultLogQueryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	logs, err := h.access.ChatLogs(adminCode(r, ""), r.URL.Query().Get("accessCode"), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": logs,
		"total": len(logs),
	})
}

func (h *AdminHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.access.ListSessions(adminCode(r, ""))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": sessions,
		"total": len(sessions),
	})
}

func adminCode(r *http.Request, bodyValue string) string {
	if header := r.Header.Get("X-Admin-Code"); header != "" {
		return header
	}
	return bodyValue
}
