package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"talentbridge/internal/event"
	"talentbridge/internal/model"
	"talentbridge/pkg/apierror"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*model.User{}}
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return *u, nil
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return *u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *fakeUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *fakeUserStore) Create(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = &u
	return nil
}

func (s *fakeUserStore) RecordFailedLogin(_ context.Context, userID string, maxAttempts int) (int, *time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
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

func (s *fakeUserStore) ResetLoginAttempts(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.LoginAttempts = 0
	u.LockedAt = nil
	return nil
}

func (s *fakeUserStore) FindActiveUniversityAdmin(_ context.Context, universityID string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Role == model.RoleUniversityAdmin && u.UniversityID != nil && *u.UniversityID == universityID {
			return *u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*model.PasswordResetToken

	lastPasswordHash string
	lastUserID       string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[string]*model.PasswordResetToken{}}
}

func (s *fakeTokenStore) Replace(_ context.Context, t model.PasswordResetToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.tokens {
		if existing.UserID == t.UserID && !existing.Used {
			delete(s.tokens, id)
		}
	}
	s.tokens[t.ID] = &t
	return nil
}

func (s *fakeTokenStore) FindByToken(_ context.Context, token string) (model.PasswordResetToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if t.Token == token {
			return *t, nil
		}
	}
	return model.PasswordResetToken{}, model.ErrTokenNotFound
}

func (s *fakeTokenStore) Consume(_ context.Context, tokenID string, userID string, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[tokenID]
	if !ok {
		return model.ErrTokenNotFound
	}
	if t.Used {
		return model.ErrTokenUsed
	}
	t.Used = true
	s.lastUserID = userID
	s.lastPasswordHash = passwordHash
	return nil
}

type fakeUniversityStore struct {
	mu           sync.Mutex
	universities map[string]*model.University
}

func newFakeUniversityStore() *fakeUniversityStore {
	return &fakeUniversityStore{universities: map[string]*model.University{}}
}

func (s *fakeUniversityStore) FindByID(_ context.Context, id string) (model.University, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.universities[id]; ok {
		return *u, nil
	}
	return model.University{}, model.ErrUniversityNotFound
}

func (s *fakeUniversityStore) SetVerificationStatus(_ context.Context, id string, status model.VerificationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.universities[id]
	if !ok {
		return model.ErrUniversityNotFound
	}
	u.VerificationStatus = status
	return nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, email string, resetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email+" "+resetURL)
	return nil
}

type authFixture struct {
	svc          *AuthService
	users        *fakeUserStore
	tokens       *fakeTokenStore
	universities *fakeUniversityStore
	mailer       *recordingMailer
}

func newAuthFixture(t *testing.T, tokenTTL time.Duration) *authFixture {
	t.Helper()

	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	universities := newFakeUniversityStore()
	mailer := &recordingMailer{}

	svc, err := NewAuthService("test-secret", tokenTTL, bcrypt.MinCost,
		"http://localhost:3000", users, tokens, universities, mailer, event.NewBus())
	require.NoError(t, err)

	return &authFixture{svc: svc, users: users, tokens: tokens, universities: universities, mailer: mailer}
}

func (f *authFixture) addUser(t *testing.T, email string, password string, role model.Role) model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	u := model.User{
		ID:                 "user-" + email,
		Email:              email,
		Name:               "Test User",
		PasswordHash:       string(hash),
		Role:               role,
		VerificationStatus: model.VerificationVerified,
		CreatedAt:          time.Now().UTC(),
		UpdatedAt:          time.Now().UTC(),
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func asAPIError(t *testing.T, err error) *apierror.APIError {
	t.Helper()
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	return apiErr
}

func TestTokenRoundTrip(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	u := f.addUser(t, "alice@example.com", "correct-horse", model.RoleStudent)

	token, err := f.svc.IssueToken(u)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := f.svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, u.Email, claims.Email)
	assert.Equal(t, model.RoleStudent, claims.Role)
	assert.Equal(t, string(model.VerificationVerified), claims.VerificationStatus)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	u := f.addUser(t, "alice@example.com", "correct-horse", model.RoleStudent)

	other, err := NewAuthService("a-different-secret", time.Hour, bcrypt.MinCost,
		"http://localhost:3000", f.users, f.tokens, f.universities, f.mailer, event.NewBus())
	require.NoError(t, err)

	token, err := other.IssueToken(u)
	require.NoError(t, err)

	_, err = f.svc.VerifyToken(token)
	apiErr := asAPIError(t, err)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
}

func TestVerifyTokenExpired(t *testing.T) {
	f := newAuthFixture(t, -time.Minute)
	u := f.addUser(t, "alice@example.com", "correct-horse", model.RoleStudent)

	token, err := f.svc.IssueToken(u)
	require.NoError(t, err)

	_, err = f.svc.VerifyToken(token)
	apiErr := asAPIError(t, err)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
}

func TestVerifyTokenGarbage(t *testing.T) {
	f := newAuthFixture(t, time.Hour)

	for _, token := range []string{"", "not-a-token", "aaa.bbb.ccc"} {
		_, err := f.svc.VerifyToken(token)
		apiErr := asAPIError(t, err)
		assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
	}
}

func TestLoginSuccess(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	f.addUser(t, "alice@example.com", "correct-horse", model.RoleStudent)

	session, err := f.svc.Login(context.Background(), "alice@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "Bearer", session.TokenType)
	assert.Equal(t, int64(3600), session.ExpiresIn)
	assert.Equal(t, "alice@example.com", session.User.Email)
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	f.addUser(t, "alice@example.com", "correct-horse", model.RoleStudent)

	_, errWrong := f.svc.Login(context.Background(), "alice@example.com", "nope")
	_, errUnknown := f.svc.Login(context.Background(), "nobody@example.com", "nope")

	wrongErr := asAPIError(t, errWrong)
	unknownErr := asAPIError(t, errUnknown)
	assert.Equal(t, wrongErr.Code, unknownErr.Code)
	assert.Equal(t, wrongErr.Message, unknownErr.Message)
}

func TestLoginLockoutAfterMaxAttempts(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	u := f.addUser(t, "alice@example.com", "correct-horse", model.RoleStudent)

	for i := 0; i < MaxLoginAttempts; i++ {
		_, err := f.svc.Login(context.Background(), u.Email, "wrong-password")
		apiErr := asAPIError(t, err)
		assert.Equal(t, "UNAUTHORIZED", apiErr.Code, "attempt %d should be a plain rejection", i+1)
	}

	// Even the correct password is rejected while locked.
	_, err := f.svc.Login(context.Background(), u.Email, "correct-horse")
	apiErr := asAPIError(t, err)
	assert.Equal(t, "LOCKED_OUT", apiErr.Code)
	assert.Equal(t, 403, apiErr.HTTPStatus)
	assert.Greater(t, apiErr.RetryAfter, 0)
	assert.LessOrEqual(t, apiErr.RetryAfter, int(LockoutDuration.Seconds())+1)
}

func TestLoginLockoutExpiresAfterWindow(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	u := f.addUser(t, "alice@example.com", "correct-horse", model.RoleStudent)

	expired := time.Now().UTC().Add(-LockoutDuration - time.Minute)
	f.users.mu.Lock()
	f.users.users[u.ID].LoginAttempts = MaxLoginAttempts
	f.users.users[u.ID].LockedAt = &expired
	f.users.mu.Unlock()

	session, err := f.svc.Login(context.Background(), u.Email, "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)

	stored, err := f.users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.LoginAttempts)
	assert.Nil(t, stored.LockedAt)
}

func TestLoginSuccessResetsAttemptCounter(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	u := f.addUser(t, "alice@example.com", "correct-horse", model.RoleStudent)

	for i := 0; i < MaxLoginAttempts-1; i++ {
		_, _ = f.svc.Login(context.Background(), u.Email, "wrong-password")
	}

	_, err := f.svc.Login(context.Background(), u.Email, "correct-horse")
	require.NoError(t, err)

	stored, err := f.users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.LoginAttempts)
}

func TestSignupValidation(t *testing.T) {
	f := newAuthFixture(t, time.Hour)

	base := model.SignupRequest{
		Email:     "new@example.com",
		Password:  "long-enough",
		FirstName: "New",
		LastName:  "User",
		Role:      "STUDENT",
	}

	cases := []struct {
		name     string
		mutate   func(r *model.SignupRequest)
		wantCode string
	}{
		{"missing email", func(r *model.SignupRequest) { r.Email = "" }, "BAD_REQUEST"},
		{"invalid email", func(r *model.SignupRequest) { r.Email = "not-an-email" }, "BAD_REQUEST"},
		{"short password", func(r *model.SignupRequest) { r.Password = "short" }, "BAD_REQUEST"},
		{"missing name", func(r *model.SignupRequest) { r.FirstName = "" }, "BAD_REQUEST"},
		{"invalid role", func(r *model.SignupRequest) { r.Role = "WIZARD" }, "BAD_REQUEST"},
		{"platform admin forbidden", func(r *model.SignupRequest) { r.Role = "PLATFORM_ADMIN" }, "FORBIDDEN"},
		{"bad mobile number", func(r *model.SignupRequest) {
			bad := "12345"
			r.MobileNumber = &bad
		}, "BAD_REQUEST"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			_, err := f.svc.Signup(context.Background(), req)
			apiErr := asAPIError(t, err)
			assert.Equal(t, tc.wantCode, apiErr.Code)
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	f.addUser(t, "alice@example.com", "correct-horse", model.RoleStudent)

	_, err := f.svc.Signup(context.Background(), model.SignupRequest{
		Email:     "Alice@Example.com",
		Password:  "long-enough",
		FirstName: "Alice",
		LastName:  "Again",
		Role:      "STUDENT",
	})
	apiErr := asAPIError(t, err)
	assert.Equal(t, "ALREADY_EXISTS", apiErr.Code)
	assert.Equal(t, 409, apiErr.HTTPStatus)
}

func TestSignupUniversityAdminClaimsUniversity(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	f.universities.universities["uni-1"] = &model.University{
		ID:                 "uni-1",
		Name:               "Test University",
		VerificationStatus: model.VerificationPending,
	}

	session, err := f.svc.Signup(context.Background(), model.SignupRequest{
		Email:        "admin@uni.example",
		Password:     "long-enough",
		FirstName:    "Uni",
		LastName:     "Admin",
		Role:         "UNIVERSITY_ADMIN",
		UniversityID: ptr("uni-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUniversityAdmin, session.User.Role)
	assert.Equal(t, model.VerificationUnderReview, f.universities.universities["uni-1"].VerificationStatus)

	// A second admin cannot claim the same university.
	_, err = f.svc.Signup(context.Background(), model.SignupRequest{
		Email:        "other@uni.example",
		Password:     "long-enough",
		FirstName:    "Other",
		LastName:     "Admin",
		Role:         "UNIVERSITY_ADMIN",
		UniversityID: ptr("uni-1"),
	})
	apiErr := asAPIError(t, err)
	assert.Equal(t, "ALREADY_EXISTS", apiErr.Code)
}

func TestForgotPasswordResponsesAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	f.addUser(t, "alice@example.com", "correct-horse", model.RoleStudent)

	known, err := f.svc.ForgotPassword(context.Background(), "alice@example.com")
	require.NoError(t, err)

	unknown, err := f.svc.ForgotPassword(context.Background(), "nobody@example.com")
	require.NoError(t, err)

	assert.Equal(t, known, unknown)
	assert.Len(t, f.mailer.sent, 1, "mail goes out only for the real account")
}

func TestForgotPasswordReplacesOlderTokens(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	f.addUser(t, "alice@example.com", "correct-horse", model.RoleStudent)

	_, err := f.svc.ForgotPassword(context.Background(), "alice@example.com")
	require.NoError(t, err)
	_, err = f.svc.ForgotPassword(context.Background(), "alice@example.com")
	require.NoError(t, err)

	f.tokens.mu.Lock()
	defer f.tokens.mu.Unlock()
	assert.Len(t, f.tokens.tokens, 1)
	for _, tok := range f.tokens.tokens {
		assert.Len(t, tok.Token, 64, "token is 32 random bytes hex encoded")
	}
}

func TestResetPasswordHappyPath(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	u := f.addUser(t, "alice@example.com", "correct-horse", model.RoleStudent)

	_, err := f.svc.ForgotPassword(context.Background(), u.Email)
	require.NoError(t, err)

	var raw string
	f.tokens.mu.Lock()
	for _, tok := range f.tokens.tokens {
		raw = tok.Token
	}
	f.tokens.mu.Unlock()
	require.NotEmpty(t, raw)

	require.NoError(t, f.svc.ResetPassword(context.Background(), raw, "new-password-123"))
	assert.Equal(t, u.ID, f.tokens.lastUserID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(f.tokens.lastPasswordHash), []byte("new-password-123")))
}

func TestResetPasswordTokenIsSingleUse(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	u := f.addUser(t, "alice@example.com", "correct-horse", model.RoleStudent)

	_, err := f.svc.ForgotPassword(context.Background(), u.Email)
	require.NoError(t, err)

	var raw string
	f.tokens.mu.Lock()
	for _, tok := range f.tokens.tokens {
		raw = tok.Token
	}
	f.tokens.mu.Unlock()

	require.NoError(t, f.svc.ResetPassword(context.Background(), raw, "new-password-123"))

	err = f.svc.ResetPassword(context.Background(), raw, "another-password")
	apiErr := asAPIError(t, err)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
	assert.Contains(t, apiErr.Message, "already been used")
}

func TestResetPasswordExpiredToken(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	u := f.addUser(t, "alice@example.com", "correct-horse", model.RoleStudent)

	expired := model.PasswordResetToken{
		ID:        "tok-1",
		UserID:    u.ID,
		Token:     strings.Repeat("ab", 32),
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
		CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
	}
	require.NoError(t, f.tokens.Replace(context.Background(), expired))

	err := f.svc.ResetPassword(context.Background(), expired.Token, "new-password-123")
	apiErr := asAPIError(t, err)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
	assert.Contains(t, apiErr.Message, "expired")
}

func TestResetPasswordUnknownToken(t *testing.T) {
	f := newAuthFixture(t, time.Hour)

	err := f.svc.ResetPassword(context.Background(), "no-such-token", "new-password-123")
	apiErr := asAPIError(t, err)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
}

func ptr(s string) *string { return &s }
