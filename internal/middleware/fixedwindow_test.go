package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentbridge/internal/model"
	"talentbridge/internal/ratelimit"
)

type scriptedStore struct {
	result ratelimit.Result
	err    error

	lastKey string
}

func (s *scriptedStore) Check(_ context.Context, key string, _ int, _ time.Duration) (ratelimit.Result, error) {
	s.lastKey = key
	return s.result, s.err
}

func TestAuthRateLimitAllows(t *testing.T) {
	store := &scriptedStore{result: ratelimit.Result{Allowed: true, Remaining: 4, ResetAt: time.Now().Add(time.Minute)}}
	limit := NewAuthRateLimit(store).Limit("login", 5, time.Minute)

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	r.RemoteAddr = "1.2.3.4:5678"

	limit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "login:1.2.3.4", store.lastKey)
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}

func TestAuthRateLimitRejectsWith429(t *testing.T) {
	store := &scriptedStore{result: ratelimit.Result{Allowed: false, ResetAt: time.Now().Add(30 * time.Second)}}
	limit := NewAuthRateLimit(store).Limit("login", 5, time.Minute)

	rec := httptest.NewRecorder()
	limit(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run when rate limited")
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body model.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "RATE_LIMITED", body.Error.Code)
	assert.Greater(t, body.Error.RetryAfter, 0)
}

func TestAuthRateLimitFailsOpenOnStoreError(t *testing.T) {
	store := &scriptedStore{err: errors.New("redis down")}
	limit := NewAuthRateLimit(store).Limit("login", 5, time.Minute)

	rec := httptest.NewRecorder()
	limit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
