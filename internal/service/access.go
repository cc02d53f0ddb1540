package service

import (
	"github.com/rs/zerolog/log"

	"github.com/dahui-ai/assistant-server-go/internal/audit"
	apperrors "github.com/dahui-ai/assistant-server-go/internal/errors"
	"github.com/dahui-ai/assistant-server-go/internal/model"
)

// CodeRepository is the durable access-code store. Implemented by
// *store.CodeStore.
type CodeRepository interface {
	Create(kind model.CodeKind, description string) (string, error)
	CreateCustom(token string, kind model.CodeKind, description string) error
	Validate(token string) (*model.CodeInfo, error)
	Consume(token string) error
	Reset(token, actor string) (*model.AccessCode, error)
	Delete(token string) (*model.AccessCode, error)
	List() ([]model.AccessCode, error)
}

// SessionRepository is the in-memory session table. Implemented by
// *store.SessionTable.
type SessionRepository interface {
	Create(accessCode, ip, userAgent string) string
	Validate(sessionID string) (*model.SessionInfo, error)
	Touch(sessionID string)
	List() []model.Session
}

// LogRepository is the bounded chat log store. Implemented by
// *store.LogStore.
type LogRepository interface {
	Append(entry model.ChatLogEntry) error
	Query(accessCode string, limit int) ([]model.ChatLogEntry, error)
}

// AccessService orchestrates the code, session and log stores: login flow,
// admin-gated code management, and the admin listings.
type AccessService struct {
	codes    CodeRepository
	sessions SessionRepository
	logs     LogRepository
}

func NewAccessService(codes CodeRepository, sessions SessionRepository, logs LogRepository) *AccessService {
	return &AccessService{
		codes:    codes,
		sessions: sessions,
		logs:     logs,
	}
}

type LoginResult struct {
	SessionID string         `json:"sessionId"`
	CodeKind  model.CodeKind `json:"codeType"`
}

// Login validates an access code and binds a fresh session to it. A one-time
// code is consumed before the session is created, so under concurrent logins
// exactly one caller wins the code; the rest observe ALREADY_USED and get no
// session.
func (s *AccessService) Login(code, ip, userAgent string) (*LoginResult, error) {
	info, err := s.codes.Validate(code)
	if err != nil {
		audit.Log(audit.Event{
			Type: audit.EventLoginFailure,
			IP:   ip,
			Details: map[string]interface{}{
				"reason": string(apperrors.GetCode(err)),
			},
		})
		return nil, err
	}

	if info.Kind == model.CodeKindOneTime {
		if err := s.codes.Consume(code); err != nil {
			audit.Log(audit.Event{
				Type: audit.EventLoginFailure,
				IP:   ip,
				Details: map[string]interface{}{
					"reason": string(apperrors.GetCode(err)),
				},
			})
			return nil, err
		}
	}

	sessionID := s.sessions.Create(code, ip, userAgent)

	audit.Log(audit.Event{
		Type:      audit.EventLoginSuccess,
		SessionID: sessionID,
		IP:        ip,
		UserAgent: userAgent,
		Details: map[string]interface{}{
			"code_type": string(info.Kind),
		},
	})

	return &LoginResult{SessionID: sessionID, CodeKind: info.Kind}, nil
}

// ValidateSession resolves a session id to its bound code.
func (s *AccessService) ValidateSession(sessionID string) (*model.SessionInfo, error) {
	return s.sessions.Validate(sessionID)
}

// TouchSession refreshes a session's activity timestamp.
func (s *AccessService) TouchSession(sessionID string) {
	s.sessions.Touch(sessionID)
}

// GenerateCode mints a new access code. Admin-gated.
func (s *AccessService) GenerateCode(adminToken string, kind model.CodeKind, description string) (string, error) {
	if err := s.requireAdmin(adminToken); err != nil {
		return "", err
	}
	if !kind.Valid() {
		return "", apperrors.ValidationError("code type must be one_time or permanent")
	}

	code, err := s.codes.Create(kind, description)
	if err != nil {
		return "", err
	}

	audit.Log(audit.Event{
		Type: audit.EventCodeGenerate,
		Details: map[string]interface{}{
			"code_type": string(kind),
		},
	})
	return code, nil
}

// CreateCustomCode registers a caller-supplied token. Admin-gated.
func (s *AccessService) CreateCustomCode(adminToken, token string, kind model.CodeKind, description string) error {
	if err := s.requireAdmin(adminToken); err != nil {
		return err
	}
	if token == "" {
		return apperrors.MissingRequired("code")
	}
	if !kind.Valid() {
		return apperrors.ValidationError("code type must be one_time or permanent")
	}

	if err := s.codes.CreateCustom(token, kind, description); err != nil {
		return err
	}

	audit.Log(audit.Event{
		Type: audit.EventCodeCustom,
		Details: map[string]interface{}{
			"code_type": string(kind),
		},
	})
	return nil
}

// ResetCode returns a used one-time code to the unused state. Admin-gated.
func (s *AccessService) ResetCode(adminToken, target string) (*model.AccessCode, error) {
	if err := s.requireAdmin(adminToken); err != nil {
		return nil, err
	}

	code, err := s.codes.Reset(target, adminToken)
	if err != nil {
		return nil, err
	}

	audit.Log(audit.Event{
		Type: audit.EventCodeReset,
		Details: map[string]interface{}{
			"reset_count": code.ResetCount,
		},
	})
	return code, nil
}

// DeleteCode removes a code. Admin-gated; the admin code itself is protected.
func (s *AccessService) DeleteCode(adminToken, target string) (*model.AccessCode, error) {
	if err := s.requireAdmin(adminToken); err != nil {
		return nil, err
	}

	code, err := s.codes.Delete(target)
	if err != nil {
		return nil, err
	}

	audit.Log(audit.Event{
		Type: audit.EventCodeDelete,
		Details: map[string]interface{}{
			"code_type": string(code.Kind),
		},
	})
	return code, nil
}

// ListCodes returns every code record. Admin-gated.
func (s *AccessService) ListCodes(adminToken string) ([]model.AccessCode, error) {
	if err := s.requireAdmin(adminToken); err != nil {
		return nil, err
	}
	return s.codes.List()
}

// ChatLogs returns recent conversation turns, optionally filtered by access
// code. Admin-gated.
func (s *AccessService) ChatLogs(adminToken, accessCode string, limit int) ([]model.ChatLogEntry, error) {
	if err := s.requireAdmin(adminToken); err != nil {
		return nil, err
	}
	return s.logs.Query(accessCode, limit)
}

// ListSessions returns a snapshot of the in-memory session table. Admin-gated.
func (s *AccessService) ListSessions(adminToken string) ([]model.Session, error) {
	if err := s.requireAdmin(adminToken); err != nil {
		return nil, err
	}
	return s.sessions.List(), nil
}

// requireAdmin short-circuits admin-gated operations before any store
// mutation: the token must validate and be permanent.
func (s *AccessService) requireAdmin(adminToken string) error {
	info, err := s.codes.Validate(adminToken)
	if err != nil || info.Kind != model.CodeKindPermanent {
		log.Warn().Msg("admin operation rejected: invalid admin code")
		audit.Log(audit.Event{Type: audit.EventAdminRejected})
		return apperrors.InvalidAdmin()
	}
	return nil
}
