package store

import (
	"os"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	apperrors "github.com/dahui-ai/assistant-server-go/internal/errors"
	"github.com/dahui-ai/assistant-server-go/internal/model"
)

type logsDocument struct {
	Logs []model.ChatLogEntry `json:"logs"`
}

// LogStore keeps a bounded, durable log of conversation turns in a single
// JSON document. Only the most recent maxEntries turns survive; every append
// rewrites the whole document.
type LogStore struct {
	mu         sync.Mutex
	path       string
	maxEntries int
}

func NewLogStore(path string, maxEntries int) (*LogStore, error) {
	s := &LogStore{path: path, maxEntries: maxEntries}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.load()
	if err := s.persist(doc); err != nil {
		return nil, err
	}
	return s, nil
}

// load must be called with s.mu held. A missing or corrupt document starts
// the log over empty; chat logs are breadcrumbs, not records worth wedging
// the service for.
func (s *LogStore) load() *logsDocument {
	doc := &logsDocument{}
	err := loadDocument(s.path, doc)
	if err == nil {
		return doc
	}

	if !os.IsNotExist(err) {
		log.Error().Err(err).Str("path", s.path).Msg("chat log store unreadable, starting empty")
		quarantineDocument(s.path)
	}
	return &logsDocument{Logs: []model.ChatLogEntry{}}
}

// persist must be called with s.mu held.
func (s *LogStore) persist(doc *logsDocument) error {
	if err := persistDocument(s.path, doc); err != nil {
		log.Error().Err(err).Str("path", s.path).Msg("failed to persist chat log store")
		return apperrors.Storage(err)
	}
	return nil
}

// Append records a conversation turn and enforces the retention bound by
// dropping the oldest entries.
func (s *LogStore) Append(entry model.ChatLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	doc.Logs = append(doc.Logs, entry)

	if len(doc.Logs) > s.maxEntries {
		sortByTimestampDesc(doc.Logs)
		doc.Logs = doc.Logs[:s.maxEntries]
	}

	return s.persist(doc)
}

// Query returns entries newest-first, optionally filtered by access code,
// truncated to limit.
func (s *LogStore) Query(accessCode string, limit int) ([]model.ChatLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()

	entries := doc.Logs
	if accessCode != "" {
		filtered := make([]model.ChatLogEntry, 0, len(entries))
		for _, e := range entries {
			if e.AccessCode == accessCode {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	sortByTimestampDesc(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func sortByTimestampDesc(entries []model.ChatLogEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}
