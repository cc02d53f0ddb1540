package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginRateLimiter(t *testing.T) {
	newRequest := func(ip string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.RemoteAddr = ip + ":12345"
		return r
	}

	t.Run("allows up to limit then rejects", func(t *testing.T) {
		limiter := NewLoginRateLimiter()
		handler := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		for i := 0; i < loginMaxAttempts; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newRequest("10.0.0.1"))
			assert.Equal(t, http.StatusOK, rec.Code, "attempt %d", i+1)
		}

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest("10.0.0.1"))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	})

	t.Run("limits per ip independently", func(t *testing.T) {
		limiter := NewLoginRateLimiter()
		handler := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		for i := 0; i < loginMaxAttempts; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newRequest("10.0.0.1"))
			assert.Equal(t, http.StatusOK, rec.Code)
		}

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest("10.0.0.2"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("uses forwarded header when present", func(t *testing.T) {
		limiter := NewLoginRateLimiter()
		handler := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		for i := 0; i < loginMaxAttempts; i++ {
			r := newRequest("10.0.0.1")
			r.Header.Set("X-Forwarded-For", "203.0.113.7")
			handler.ServeHTTP(httptest.NewRecorder(), r)
		}

		r := newRequest("10.0.0.9")
		r.Header.Set("X-Forwarded-For", "203.0.113.7")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("window reset allows again", func(t *testing.T) {
		limiter := NewLoginRateLimiter()
		for i := 0; i < loginMaxAttempts; i++ {
			assert.True(t, limiter.isAllowed("10.0.0.5"))
		}
		assert.False(t, limiter.isAllowed("10.0.0.5"))

		limiter.mu.Lock()
		limiter.attempts["10.0.0.5"].windowStart = limiter.attempts["10.0.0.5"].windowStart.Add(-2 * loginWindowDuration)
		limiter.mu.Unlock()

		assert.True(t, limiter.isAllowed("10.0.0.5"))
	})
}
