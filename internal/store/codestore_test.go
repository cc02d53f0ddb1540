package store

import (
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dahui-ai/assistant-server-go/internal/errors"
	"github.com/dahui-ai/assistant-server-go/internal/model"
)

const testAdminCode = "ai360"

func newTestCodeStore(t *testing.T) *CodeStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "access_codes.json")
	s, err := NewCodeStore(path, testAdminCode)
	require.NoError(t, err)
	return s
}

func assertCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperrors.GetCode(err))
}

func TestNewCodeStore_SeedsAdminCode(t *testing.T) {
	s := newTestCodeStore(t)

	info, err := s.Validate(testAdminCode)
	require.NoError(t, err)
	assert.Equal(t, model.CodeKindPermanent, info.Kind)
	assert.False(t, info.IsUsed)
}

func TestNewCodeStore_RecoversFromCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "access_codes.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s, err := NewCodeStore(path, testAdminCode)
	require.NoError(t, err)

	// Admin code reseeded
	info, err := s.Validate(testAdminCode)
	require.NoError(t, err)
	assert.Equal(t, model.CodeKindPermanent, info.Kind)

	// Corrupt document quarantined, not discarded
	quarantined, err := os.ReadFile(path + ".corrupt")
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(quarantined))
}

func TestCreate_RoundTrip(t *testing.T) {
	s := newTestCodeStore(t)

	code, err := s.Create(model.CodeKindOneTime, "demo access")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-F]{16}$`), code)

	info, err := s.Validate(code)
	require.NoError(t, err)
	assert.Equal(t, model.CodeKindOneTime, info.Kind)
	assert.False(t, info.IsUsed)
	assert.False(t, info.CreatedAt.IsZero())
}

func TestCreate_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access_codes.json")

	s1, err := NewCodeStore(path, testAdminCode)
	require.NoError(t, err)
	code, err := s1.Create(model.CodeKindPermanent, "")
	require.NoError(t, err)

	s2, err := NewCodeStore(path, testAdminCode)
	require.NoError(t, err)
	info, err := s2.Validate(code)
	require.NoError(t, err)
	assert.Equal(t, model.CodeKindPermanent, info.Kind)
}

func TestValidate_NotFound(t *testing.T) {
	s := newTestCodeStore(t)

	_, err := s.Validate("NO-SUCH-CODE")
	assertCode(t, err, apperrors.ErrCodeNotFound)
}

func TestConsume_OneTimeLifecycle(t *testing.T) {
	s := newTestCodeStore(t)

	code, err := s.Create(model.CodeKindOneTime, "")
	require.NoError(t, err)

	require.NoError(t, s.Consume(code))

	// Spent: both validate and consume now report ALREADY_USED
	_, err = s.Validate(code)
	assertCode(t, err, apperrors.ErrCodeAlreadyUsed)
	assertCode(t, s.Consume(code), apperrors.ErrCodeAlreadyUsed)

	codes, err := s.List()
	require.NoError(t, err)
	for _, c := range codes {
		if c.Code != code {
			continue
		}
		assert.True(t, c.IsUsed)
		require.NotNil(t, c.UsedAt)
		require.Len(t, c.UsageHistory, 1)
		assert.Equal(t, model.UsageActionUsed, c.UsageHistory[0].Action)
	}
}

func TestConsume_PermanentNeverMarkedUsed(t *testing.T) {
	s := newTestCodeStore(t)

	assertCode(t, s.Consume(testAdminCode), apperrors.ErrCodeNotOneTime)

	info, err := s.Validate(testAdminCode)
	require.NoError(t, err)
	assert.False(t, info.IsUsed)
}

func TestConsume_NotFound(t *testing.T) {
	s := newTestCodeStore(t)
	assertCode(t, s.Consume("MISSING"), apperrors.ErrCodeNotFound)
}

func TestConsume_ConcurrentSingleWinner(t *testing.T) {
	s := newTestCodeStore(t)

	code, err := s.Create(model.CodeKindOneTime, "")
	require.NoError(t, err)

	const n = 50
	results := make([]error, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = s.Consume(code)
		}(i)
	}
	wg.Wait()

	successes := 0
	alreadyUsed := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else if apperrors.GetCode(err) == apperrors.ErrCodeAlreadyUsed {
			alreadyUsed++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, alreadyUsed)
}

func TestReset(t *testing.T) {
	s := newTestCodeStore(t)

	code, err := s.Create(model.CodeKindOneTime, "")
	require.NoError(t, err)

	t.Run("rejects unused code", func(t *testing.T) {
		_, err := s.Reset(code, testAdminCode)
		assertCode(t, err, apperrors.ErrCodeNotUsed)
	})

	t.Run("rejects permanent code", func(t *testing.T) {
		_, err := s.Reset(testAdminCode, testAdminCode)
		assertCode(t, err, apperrors.ErrCodeNotOneTime)
	})

	t.Run("rejects missing code", func(t *testing.T) {
		_, err := s.Reset("MISSING", testAdminCode)
		assertCode(t, err, apperrors.ErrCodeNotFound)
	})

	t.Run("returns used code to unused", func(t *testing.T) {
		require.NoError(t, s.Consume(code))

		reset, err := s.Reset(code, testAdminCode)
		require.NoError(t, err)
		assert.False(t, reset.IsUsed)
		assert.Nil(t, reset.UsedAt)
		assert.Equal(t, 1, reset.ResetCount)
		require.Len(t, reset.UsageHistory, 2)
		assert.Equal(t, model.UsageActionReset, reset.UsageHistory[1].Action)
		assert.Equal(t, testAdminCode, reset.UsageHistory[1].Actor)

		// Code usable again
		info, err := s.Validate(code)
		require.NoError(t, err)
		assert.False(t, info.IsUsed)
	})

	t.Run("reset count accumulates", func(t *testing.T) {
		require.NoError(t, s.Consume(code))
		reset, err := s.Reset(code, testAdminCode)
		require.NoError(t, err)
		assert.Equal(t, 2, reset.ResetCount)
	})
}

func TestDelete(t *testing.T) {
	s := newTestCodeStore(t)

	t.Run("admin code is protected", func(t *testing.T) {
		_, err := s.Delete(testAdminCode)
		assertCode(t, err, apperrors.ErrCodeProtectedCode)
	})

	t.Run("removes and returns the record", func(t *testing.T) {
		code, err := s.Create(model.CodeKindOneTime, "to delete")
		require.NoError(t, err)

		removed, err := s.Delete(code)
		require.NoError(t, err)
		assert.Equal(t, code, removed.Code)
		assert.Equal(t, "to delete", removed.Description)

		_, err = s.Validate(code)
		assertCode(t, err, apperrors.ErrCodeNotFound)
	})

	t.Run("missing code", func(t *testing.T) {
		_, err := s.Delete("MISSING")
		assertCode(t, err, apperrors.ErrCodeNotFound)
	})
}

func TestCreateCustom(t *testing.T) {
	s := newTestCodeStore(t)

	require.NoError(t, s.CreateCustom("X1", model.CodeKindPermanent, ""))

	err := s.CreateCustom("X1", model.CodeKindOneTime, "duplicate")
	assertCode(t, err, apperrors.ErrCodeAlreadyExists)

	info, err := s.Validate("X1")
	require.NoError(t, err)
	assert.Equal(t, model.CodeKindPermanent, info.Kind)
}

func TestKindOf(t *testing.T) {
	s := newTestCodeStore(t)

	kind, ok := s.KindOf(testAdminCode)
	assert.True(t, ok)
	assert.Equal(t, model.CodeKindPermanent, kind)

	kind, ok = s.KindOf("MISSING")
	assert.False(t, ok)
	assert.Equal(t, model.CodeKindUnknown, kind)
}

func TestGenerateCodeToken_Format(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token := generateCodeToken()
		assert.Regexp(t, regexp.MustCompile(`^[0-9A-F]{16}$`), token)
		assert.False(t, seen[token], "generated duplicate token: %s", token)
		seen[token] = true
	}
}
