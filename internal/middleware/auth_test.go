package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentbridge/internal/model"
)

type stubVerifier struct {
	claims *model.AuthClaims
	err    error

	lastToken string
}

func (v *stubVerifier) VerifyToken(tokenString string) (*model.AuthClaims, error) {
	v.lastToken = tokenString
	if v.err != nil {
		return nil, v.err
	}
	return v.claims, nil
}

func okHandler(captured **model.AuthClaims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := ClaimsFromContext(r.Context()); ok && captured != nil {
			*captured = claims
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestExtractTokenPrefersBearerHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer header-token")
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})

	assert.Equal(t, "header-token", ExtractToken(r))
}

func TestExtractTokenFallsBackToCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})

	assert.Equal(t, "cookie-token", ExtractToken(r))
}

func TestExtractTokenIgnoresOtherSchemes(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	assert.Empty(t, ExtractToken(r))
}

func TestRequireAuthWithoutToken(t *testing.T) {
	m := NewAuthMiddleware(&stubVerifier{})
	rec := httptest.NewRecorder()

	m.RequireAuth(okHandler(nil)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body model.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
}

func TestRequireAuthRejectsBadToken(t *testing.T) {
	m := NewAuthMiddleware(&stubVerifier{err: errors.New("bad signature")})
	rec := httptest.NewRecorder()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer tampered")
	m.RequireAuth(okHandler(nil)).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthStoresClaims(t *testing.T) {
	want := &model.AuthClaims{UserID: "u-1", Email: "a@b.c", Role: model.RoleStudent}
	verifier := &stubVerifier{claims: want}
	m := NewAuthMiddleware(verifier)

	var got *model.AuthClaims
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer good-token")
	m.RequireAuth(okHandler(&got)).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "good-token", verifier.lastToken)
	assert.Equal(t, want, got)
}

func TestRequireRoles(t *testing.T) {
	m := NewAuthMiddleware(&stubVerifier{})
	guard := m.RequireRoles(model.RolePlatformAdmin, model.RoleUniversityAdmin)

	cases := []struct {
		role model.Role
		want int
	}{
		{model.RolePlatformAdmin, http.StatusOK},
		{model.RoleUniversityAdmin, http.StatusOK},
		{model.RoleStudent, http.StatusForbidden},
		{model.RoleEmployer, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			rec := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r = r.WithContext(ContextWithClaims(r.Context(), &model.AuthClaims{UserID: "u-1", Role: tc.role}))

			guard(okHandler(nil)).ServeHTTP(rec, r)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	m := NewAuthMiddleware(&stubVerifier{})
	rec := httptest.NewRecorder()

	m.RequireRoles(model.RoleStudent)(okHandler(nil)).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExtractClientIP(t *testing.T) {
	cases := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"forwarded chain", "10.0.0.1, 10.0.0.2", "", "192.168.1.1:1234", "10.0.0.1"},
		{"real ip", "", "10.0.0.9", "192.168.1.1:1234", "10.0.0.9"},
		{"remote addr", "", "", "192.168.1.1:1234", "192.168.1.1"},
		{"remote addr without port", "", "", "192.168.1.1", "192.168.1.1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if tc.realIP != "" {
				r.Header.Set("X-Real-IP", tc.realIP)
			}

			assert.Equal(t, tc.want, ExtractClientIP(r))
		})
	}
}
