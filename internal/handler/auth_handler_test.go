package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"talentbridge/internal/event"
	"talentbridge/internal/middleware"
	"talentbridge/internal/model"
	"talentbridge/internal/ratelimit"
	"talentbridge/internal/service"
)

type memUserStore struct {
	users map[string]*model.User
}

func (s *memUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	if u, ok := s.users[id]; ok {
		return *u, nil
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return *u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.FindByEmail(ctx, email)
	return err == nil, nil
}

func (s *memUserStore) Create(_ context.Context, u model.User) error {
	s.users[u.ID] = &u
	return nil
}

func (s *memUserStore) RecordFailedLogin(_ context.Context, userID string, maxAttempts int) (int, *time.Time, error) {
	u, ok := s.users[userID]
	if !ok {
		return 0, nil, model.ErrUserNotFound
	}
	u.LoginAttempts++
	if u.LoginAttempts >= maxAttempts && u.LockedAt == nil {
		now := time.Now().UTC()
		u.LockedAt = &now
	}
	return u.LoginAttempts, u.LockedAt, nil
}

func (s *memUserStore) ResetLoginAttempts(_ context.Context, userID string) error {
	if u, ok := s.users[userID]; ok {
		u.LoginAttempts = 0
		u.LockedAt = nil
	}
	return nil
}

func (s *memUserStore) FindActiveUniversityAdmin(context.Context, string) (model.User, error) {
	return model.User{}, model.ErrUserNotFound
}

type memTokenStore struct {
	tokens map[string]*model.PasswordResetToken
}

func (s *memTokenStore) Replace(_ context.Context, t model.PasswordResetToken) error {
	s.tokens[t.ID] = &t
	return nil
}

func (s *memTokenStore) FindByToken(_ context.Context, token string) (model.PasswordResetToken, error) {
	for _, t := range s.tokens {
		if t.Token == token {
			return *t, nil
		}
	}
	return model.PasswordResetToken{}, model.ErrTokenNotFound
}

func (s *memTokenStore) Consume(_ context.Context, tokenID string, _ string, _ string) error {
	t, ok := s.tokens[tokenID]
	if !ok {
		return model.ErrTokenNotFound
	}
	if t.Used {
		return model.ErrTokenUsed
	}
	t.Used = true
	return nil
}

type memUniversityStore struct{}

func (memUniversityStore) FindByID(context.Context, string) (model.University, error) {
	return model.University{}, model.ErrUniversityNotFound
}

func (memUniversityStore) SetVerificationStatus(context.Context, string, model.VerificationStatus) error {
	return nil
}

// newTestServer wires the auth routes the way the real router does, with an
// in-memory fixed-window store so rate limits are observable.
func newTestServer(t *testing.T) (*httptest.Server, *memUserStore) {
	t.Helper()

	users := &memUserStore{users: map[string]*model.User{}}
	tokens := &memTokenStore{tokens: map[string]*model.PasswordResetToken{}}

	authService, err := service.NewAuthService("test-secret", time.Hour, bcrypt.MinCost,
		"http://localhost:3000", users, tokens, memUniversityStore{}, service.LogMailer{}, event.NewBus())
	require.NoError(t, err)

	authHandler := NewAuthHandler(authService, false)
	authMw := middleware.NewAuthMiddleware(authService)
	authLimit := middleware.NewAuthRateLimit(ratelimit.NewMemoryStore())

	r := chi.NewRouter()
	r.With(authLimit.Limit("login", 100, time.Minute)).Post("/auth/login", authHandler.Login)
	r.With(authLimit.Limit("signup", 3, time.Hour)).Post("/auth/signup", authHandler.Signup)
	r.Post("/auth/forgot-password", authHandler.ForgotPassword)
	r.Post("/auth/reset-password", authHandler.ResetPassword)
	r.Post("/auth/logout", authHandler.Logout)
	r.With(authMw.RequireAuth).Get("/auth/me", authHandler.Me)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, users
}

func addServerUser(t *testing.T, users *memUserStore, email string, password string) model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	u := model.User{
		ID:                 "user-" + email,
		Email:              email,
		Name:               "Test User",
		PasswordHash:       string(hash),
		Role:               model.RoleStudent,
		VerificationStatus: model.VerificationVerified,
	}
	users.users[u.ID] = &u
	return u
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) model.APIResponse {
	t.Helper()
	defer resp.Body.Close()

	var body model.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestLoginEndpointSuccess(t *testing.T) {
	srv, users := newTestServer(t)
	addServerUser(t, users, "alice@example.com", "correct-horse")

	resp := postJSON(t, srv.URL+"/auth/login", model.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var sessionCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "login must set the session cookie")
	assert.True(t, sessionCookie.HttpOnly)
	assert.NotEmpty(t, sessionCookie.Value)

	body := decodeEnvelope(t, resp)
	assert.True(t, body.Success)
}

func TestLoginEndpointLockout(t *testing.T) {
	srv, users := newTestServer(t)
	addServerUser(t, users, "alice@example.com", "correct-horse")

	for i := 0; i < service.MaxLoginAttempts; i++ {
		resp := postJSON(t, srv.URL+"/auth/login", model.LoginRequest{
			Email:    "alice@example.com",
			Password: "wrong-password",
		})
		body := decodeEnvelope(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "attempt %d", i+1)
		assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
	}

	resp := postJSON(t, srv.URL+"/auth/login", model.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	body := decodeEnvelope(t, resp)
	assert.Equal(t, "LOCKED_OUT", body.Error.Code)
	assert.Contains(t, body.Error.Message, "locked")
	assert.Greater(t, body.Error.RetryAfter, 0)
}

func TestMeEndpointWithBearerToken(t *testing.T) {
	srv, users := newTestServer(t)
	addServerUser(t, users, "alice@example.com", "correct-horse")

	resp := postJSON(t, srv.URL+"/auth/login", model.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Success bool          `json:"success"`
		Data    model.Session `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	resp.Body.Close()
	require.NotEmpty(t, envelope.Data.Token)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+envelope.Data.Token)

	meResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, meResp.StatusCode)

	body := decodeEnvelope(t, meResp)
	assert.True(t, body.Success)
}

func TestMeEndpointRejectsAnonymous(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/auth/me")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignupEndpointRateLimited(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 0; i < 3; i++ {
		resp := postJSON(t, srv.URL+"/auth/signup", model.SignupRequest{
			Email:     fmt.Sprintf("user%d@example.com", i),
			Password:  "long-enough",
			FirstName: "New",
			LastName:  "User",
			Role:      "STUDENT",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode, "signup %d should pass", i+1)
		resp.Body.Close()
	}

	resp := postJSON(t, srv.URL+"/auth/signup", model.SignupRequest{
		Email:     "user4@example.com",
		Password:  "long-enough",
		FirstName: "New",
		LastName:  "User",
		Role:      "STUDENT",
	})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	body := decodeEnvelope(t, resp)
	assert.Equal(t, "RATE_LIMITED", body.Error.Code)
}

func TestForgotPasswordEndpointIsGeneric(t *testing.T) {
	srv, users := newTestServer(t)
	addServerUser(t, users, "alice@example.com", "correct-horse")

	known := decodeEnvelope(t, postJSON(t, srv.URL+"/auth/forgot-password",
		model.ForgotPasswordRequest{Email: "alice@example.com"}))
	unknown := decodeEnvelope(t, postJSON(t, srv.URL+"/auth/forgot-password",
		model.ForgotPasswordRequest{Email: "nobody@example.com"}))

	assert.True(t, known.Success)
	assert.True(t, unknown.Success)
	assert.Equal(t, known.Data, unknown.Data)
}

func TestLogoutClearsCookie(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/auth/logout", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var cleared bool
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "logout must expire the session cookie")
}
