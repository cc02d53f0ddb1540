package store

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/dahui-ai/assistant-server-go/internal/errors"
	"github.com/dahui-ai/assistant-server-go/internal/model"
)

const generatedCodeBytes = 8

type codesDocument struct {
	Codes []model.AccessCode `json:"codes"`
}

// CodeStore is the durable collection of access codes, backed by a single
// JSON document. Every mutation is a whole-document load-modify-persist
// cycle serialized by one mutex: two concurrent consumes of the same
// one-time code can never both win.
type CodeStore struct {
	mu        sync.Mutex
	path      string
	adminCode string
}

// NewCodeStore opens (or seeds) the code document at path. The store is
// self-healing: a missing or corrupt document is quarantined and recreated
// with the distinguished admin code, favouring availability over retaining
// unreadable state.
func NewCodeStore(path, adminCode string) (*CodeStore, error) {
	s := &CodeStore{path: path, adminCode: adminCode}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load must be called with s.mu held.
func (s *CodeStore) load() (*codesDocument, error) {
	doc := &codesDocument{}
	err := loadDocument(s.path, doc)
	if err == nil {
		return doc, nil
	}

	if os.IsNotExist(err) {
		log.Info().Str("path", s.path).Msg("code store missing, seeding with admin code")
	} else {
		log.Error().Err(err).Str("path", s.path).Msg("code store unreadable, reseeding")
		quarantineDocument(s.path)
	}

	doc = &codesDocument{Codes: []model.AccessCode{{
		Code:         s.adminCode,
		Kind:         model.CodeKindPermanent,
		Description:  "Administrator permanent access code",
		IsUsed:       false,
		CreatedAt:    time.Now().UTC(),
		UsageHistory: []model.UsageRecord{},
	}}}

	if err := persistDocument(s.path, doc); err != nil {
		log.Error().Err(err).Str("path", s.path).Msg("failed to reinitialize code store")
		return nil, apperrors.Storage(err)
	}

	// Read back once so a persistently broken filesystem surfaces now
	// rather than on the first mutation.
	reloaded := &codesDocument{}
	if err := loadDocument(s.path, reloaded); err != nil {
		return nil, apperrors.Storage(err)
	}
	return reloaded, nil
}

// persist must be called with s.mu held.
func (s *CodeStore) persist(doc *codesDocument) error {
	if err := persistDocument(s.path, doc); err != nil {
		log.Error().Err(err).Str("path", s.path).Msg("failed to persist code store")
		return apperrors.Storage(err)
	}
	return nil
}

func (doc *codesDocument) find(token string) *model.AccessCode {
	for i := range doc.Codes {
		if doc.Codes[i].Code == token {
			return &doc.Codes[i]
		}
	}
	return nil
}

// Create mints a fresh code token and appends a new record. Generated tokens
// are 16 uppercase hex characters, regenerated on the (unlikely) collision.
func (s *CodeStore) Create(kind model.CodeKind, description string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return "", err
	}

	var token string
	for {
		token = generateCodeToken()
		if doc.find(token) == nil {
			break
		}
	}

	doc.Codes = append(doc.Codes, newAccessCode(token, kind, description))
	if err := s.persist(doc); err != nil {
		return "", err
	}

	log.Info().Str("code", maskCode(token)).Str("kind", string(kind)).Msg("access code created")
	return token, nil
}

// CreateCustom behaves like Create with a caller-supplied token.
func (s *CodeStore) CreateCustom(token string, kind model.CodeKind, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	if doc.find(token) != nil {
		return apperrors.AlreadyExists("Access code")
	}

	doc.Codes = append(doc.Codes, newAccessCode(token, kind, description))
	if err := s.persist(doc); err != nil {
		return err
	}

	log.Info().Str("code", maskCode(token)).Str("kind", string(kind)).Msg("custom access code created")
	return nil
}

// Validate reports whether token can authorize a login right now.
func (s *CodeStore) Validate(token string) (*model.CodeInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	code := doc.find(token)
	if code == nil {
		return nil, apperrors.NotFound("Access code")
	}
	if code.Spent() {
		return nil, apperrors.AlreadyUsed()
	}

	return &model.CodeInfo{
		Code:      code.Code,
		Kind:      code.Kind,
		IsUsed:    code.IsUsed,
		CreatedAt: code.CreatedAt,
	}, nil
}

// Consume marks a one-time code as used. Exactly one of N concurrent
// consumers succeeds; the rest observe ALREADY_USED. Permanent codes are
// never consumed.
func (s *CodeStore) Consume(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	code := doc.find(token)
	if code == nil {
		return apperrors.NotFound("Access code")
	}
	if code.Kind != model.CodeKindOneTime {
		return apperrors.NotOneTime()
	}
	if code.IsUsed {
		return apperrors.AlreadyUsed()
	}

	now := time.Now().UTC()
	code.IsUsed = true
	code.UsedAt = &now
	code.UsageHistory = append(code.UsageHistory, model.UsageRecord{
		Timestamp: now,
		Action:    model.UsageActionUsed,
	})

	if err := s.persist(doc); err != nil {
		return err
	}

	log.Info().Str("code", maskCode(token)).Msg("one-time access code consumed")
	return nil
}

// Reset returns a used one-time code to the unused state. Admin gating
// happens at the service layer; actor records who authorized the reset.
func (s *CodeStore) Reset(token, actor string) (*model.AccessCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	code := doc.find(token)
	if code == nil {
		return nil, apperrors.NotFound("Access code")
	}
	if code.Kind != model.CodeKindOneTime {
		return nil, apperrors.NotOneTime()
	}
	if !code.IsUsed {
		return nil, apperrors.NotUsed()
	}

	code.IsUsed = false
	code.UsedAt = nil
	code.ResetCount++
	code.UsageHistory = append(code.UsageHistory, model.UsageRecord{
		Timestamp: time.Now().UTC(),
		Action:    model.UsageActionReset,
		Actor:     actor,
	})

	if err := s.persist(doc); err != nil {
		return nil, err
	}

	snapshot := *code
	log.Info().Str("code", maskCode(token)).Int("resetCount", code.ResetCount).Msg("access code reset")
	return &snapshot, nil
}

// Delete removes a code and returns the removed record. The distinguished
// admin code is never deletable.
func (s *CodeStore) Delete(token string) (*model.AccessCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	for i := range doc.Codes {
		if doc.Codes[i].Code != token {
			continue
		}
		if doc.Codes[i].Code == s.adminCode {
			return nil, apperrors.ProtectedCode()
		}

		removed := doc.Codes[i]
		doc.Codes = append(doc.Codes[:i], doc.Codes[i+1:]...)
		if err := s.persist(doc); err != nil {
			return nil, err
		}

		log.Info().Str("code", maskCode(token)).Msg("access code deleted")
		return &removed, nil
	}

	return nil, apperrors.NotFound("Access code")
}

// List returns every code record. Caller is responsible for admin gating.
func (s *CodeStore) List() ([]model.AccessCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Codes, nil
}

// KindOf resolves the current kind of a code, for session validation.
// Reports false when the code no longer exists.
func (s *CodeStore) KindOf(token string) (model.CodeKind, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return model.CodeKindUnknown, false
	}
	code := doc.find(token)
	if code == nil {
		return model.CodeKindUnknown, false
	}
	return code.Kind, true
}

func newAccessCode(token string, kind model.CodeKind, description string) model.AccessCode {
	return model.AccessCode{
		Code:         token,
		Kind:         kind,
		Description:  description,
		IsUsed:       false,
		CreatedAt:    time.Now().UTC(),
		UsageHistory: []model.UsageRecord{},
	}
}

func generateCodeToken() string {
	bytes := make([]byte, generatedCodeBytes)
	if _, err := rand.Read(bytes); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return strings.ToUpper(hex.EncodeToString(bytes))
}

func maskCode(code string) string {
	if len(code) <= 4 {
		return "****"
	}
	return code[:4] + "-****"
}
