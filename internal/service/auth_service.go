package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"golang.org/x/crypto/bcrypt"

	"talentbridge/internal/event"
	"talentbridge/internal/model"
	"talentbridge/pkg/apierror"
)

const (
	MaxLoginAttempts = 5
	LockoutDuration  = 30 * time.Minute

	resetTokenTTL     = time.Hour
	minPasswordLength = 8
)

// forgotPasswordMessage is returned whether or not the email exists, so the
// endpoint cannot be used to enumerate accounts.
const forgotPasswordMessage = "If an account with that email exists, a password reset link has been sent."

type UserStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u model.User) error
	RecordFailedLogin(ctx context.Context, userID string, maxAttempts int) (int, *time.Time, error)
	ResetLoginAttempts(ctx context.Context, userID string) error
	FindActiveUniversityAdmin(ctx context.Context, universityID string) (model.User, error)
}

type ResetTokenStore interface {
	Replace(ctx context.Context, t model.PasswordResetToken) error
	FindByToken(ctx context.Context, token string) (model.PasswordResetToken, error)
	Consume(ctx context.Context, tokenID string, userID string, passwordHash string) error
}

type UniversityStore interface {
	FindByID(ctx context.Context, id string) (model.University, error)
	SetVerificationStatus(ctx context.Context, id string, status model.VerificationStatus) error
}

// Mailer delivers the password-reset link out-of-band. The real transport is
// an external collaborator; LogMailer stands in outside production.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email string, resetURL string) error
}

type LogMailer struct{}

func (LogMailer) SendPasswordReset(ctx context.Context, email string, resetURL string) error {
	slog.Info("password reset link issued", "email", email, "url", resetURL)
	return nil
}

type AuthService struct {
	jwtSecret    []byte
	tokenTTL     time.Duration
	bcryptCost   int
	appBaseURL   string
	users        UserStore
	resetTokens  ResetTokenStore
	universities UniversityStore
	mailer       Mailer
	bus          event.Bus
}

func NewAuthService(
	jwtSecret string,
	tokenTTL time.Duration,
	bcryptCost int,
	appBaseURL string,
	users UserStore,
	resetTokens ResetTokenStore,
	universities UniversityStore,
	mailer Mailer,
	bus event.Bus,
) (*AuthService, error) {
	if strings.TrimSpace(jwtSecret) == "" {
		return nil, errors.New("jwt secret is required")
	}

	return &AuthService{
		jwtSecret:    []byte(jwtSecret),
		tokenTTL:     tokenTTL,
		bcryptCost:   bcryptCost,
		appBaseURL:   strings.TrimRight(appBaseURL, "/"),
		users:        users,
		resetTokens:  resetTokens,
		universities: universities,
		mailer:       mailer,
		bus:          bus,
	}, nil
}

// IssueToken signs a credential carrying the user's identity, role and
// verification status. Tokens are immutable once issued.
func (s *AuthService) IssueToken(u model.User) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":                 u.ID,
		"email":               u.Email,
		"role":                string(u.Role),
		"verification_status": string(u.VerificationStatus),
		"iat":                 now.Unix(),
		"exp":                 now.Add(s.tokenTTL).Unix(),
	})
	return token.SignedString(s.jwtSecret)
}

// VerifyToken checks signature and expiry. Every failure mode (malformed
// input, wrong algorithm, bad signature, expired) comes back as the same
// UNAUTHORIZED error; callers treat it as "unauthenticated".
func (s *AuthService) VerifyToken(tokenString string) (*model.AuthClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apierror.New("UNAUTHORIZED", "invalid or expired token", "", http.StatusUnauthorized)
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apierror.New("UNAUTHORIZED", "invalid token claims", "", http.StatusUnauthorized)
	}

	claims := &model.AuthClaims{}
	claims.UserID, _ = claimsMap["sub"].(string)
	claims.Email, _ = claimsMap["email"].(string)
	if role, ok := claimsMap["role"].(string); ok {
		claims.Role = model.Role(role)
	}
	claims.VerificationStatus, _ = claimsMap["verification_status"].(string)

	if claims.UserID == "" {
		return nil, apierror.New("UNAUTHORIZED", "invalid token subject", "", http.StatusUnauthorized)
	}

	return claims, nil
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (model.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.Session{}, apierror.New("BAD_REQUEST", "email and password are required", "", http.StatusBadRequest)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		// Same message as a wrong password so the response does not reveal
		// which emails have accounts.
		return model.Session{}, apierror.New("UNAUTHORIZED", "invalid email or password", "", http.StatusUnauthorized)
	}
	if err != nil {
		return model.Session{}, err
	}

	if user.LockedAt != nil {
		remaining := time.Until(user.LockedAt.Add(LockoutDuration))
		if remaining > 0 {
			minutes := int(remaining.Minutes()) + 1
			return model.Session{}, apierror.NewRetryable("LOCKED_OUT",
				fmt.Sprintf("account locked, retry in ~%d minutes", minutes),
				http.StatusForbidden, int(remaining.Seconds())+1)
		}

		// Lockout window elapsed: reset and fall through to the normal
		// credential check.
		if err := s.users.ResetLoginAttempts(ctx, user.ID); err != nil {
			return model.Session{}, err
		}
		user.LoginAttempts = 0
		user.LockedAt = nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		attempts, lockedAt, recordErr := s.users.RecordFailedLogin(ctx, user.ID, MaxLoginAttempts)
		if recordErr != nil {
			return model.Session{}, recordErr
		}
		if lockedAt != nil && attempts == MaxLoginAttempts {
			s.bus.Publish(event.New(event.TypeLoginLockedOut, user.ID, map[string]any{
				"email":    user.Email,
				"attempts": attempts,
			}))
		}
		return model.Session{}, apierror.New("UNAUTHORIZED", "invalid email or password", "", http.StatusUnauthorized)
	}

	if user.LoginAttempts > 0 {
		if err := s.users.ResetLoginAttempts(ctx, user.ID); err != nil {
			return model.Session{}, err
		}
	}

	return s.newSession(user)
}

func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (model.Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return model.Session{}, apierror.New("BAD_REQUEST", "a valid email is required", "email", http.StatusBadRequest)
	}
	if len(req.Password) < minPasswordLength {
		return model.Session{}, apierror.New("BAD_REQUEST", "password must be at least 8 characters", "password", http.StatusBadRequest)
	}

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || lastName == "" {
		return model.Session{}, apierror.New("BAD_REQUEST", "first and last name are required", "", http.StatusBadRequest)
	}

	role := model.Role(strings.ToUpper(strings.TrimSpace(req.Role)))
	if !role.Valid() {
		return model.Session{}, apierror.New("BAD_REQUEST", "invalid role", req.Role, http.StatusBadRequest)
	}
	if role == model.RolePlatformAdmin {
		return model.Session{}, apierror.New("FORBIDDEN", "platform admin accounts cannot self-register", "", http.StatusForbidden)
	}

	var mobile *string
	if req.MobileNumber != nil && strings.TrimSpace(*req.MobileNumber) != "" {
		num, err := phonenumbers.Parse(strings.TrimSpace(*req.MobileNumber), "")
		if err != nil || !phonenumbers.IsValidNumber(num) {
			return model.Session{}, apierror.New("BAD_REQUEST", "invalid mobile number", "mobile_number", http.StatusBadRequest)
		}
		formatted := phonenumbers.Format(num, phonenumbers.E164)
		mobile = &formatted
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return model.Session{}, err
	}
	if exists {
		return model.Session{}, apierror.New("ALREADY_EXISTS", "user with this email already exists", "", http.StatusConflict)
	}

	var universityID *string
	if req.UniversityID != nil && *req.UniversityID != "" {
		university, err := s.universities.FindByID(ctx, *req.UniversityID)
		if errors.Is(err, model.ErrUniversityNotFound) {
			return model.Session{}, apierror.New("BAD_REQUEST", "university not found", *req.UniversityID, http.StatusBadRequest)
		}
		if err != nil {
			return model.Session{}, err
		}
		universityID = &university.ID

		if role == model.RoleUniversityAdmin {
			_, err := s.users.FindActiveUniversityAdmin(ctx, university.ID)
			if err == nil {
				return model.Session{}, apierror.New("ALREADY_EXISTS", "this university already has a registered admin", "", http.StatusConflict)
			}
			if !errors.Is(err, model.ErrUserNotFound) {
				return model.Session{}, err
			}

			// Claiming a university puts it under review.
			if err := s.universities.SetVerificationStatus(ctx, university.ID, model.VerificationUnderReview); err != nil {
				return model.Session{}, err
			}
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return model.Session{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := model.User{
		ID:                 uuid.NewString(),
		Email:              email,
		Name:               firstName + " " + lastName,
		PasswordHash:       string(hash),
		Role:               role,
		VerificationStatus: model.VerificationPending,
		MobileNumber:       mobile,
		UniversityID:       universityID,
		Major:              req.Major,
		GraduationYear:     req.GraduationYear,
		Bio:                req.Bio,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.Session{}, err
	}

	s.bus.Publish(event.New(event.TypeUserRegistered, user.ID, map[string]any{
		"email": user.Email,
		"role":  string(user.Role),
	}))

	return s.newSession(user)
}

// ForgotPassword always returns the same message. Internal failures after
// the user lookup are logged rather than surfaced, so timing aside, the
// response is identical for known and unknown emails.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", apierror.New("BAD_REQUEST", "email is required", "email", http.StatusBadRequest)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return forgotPasswordMessage, nil
	}
	if err != nil {
		return "", err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)

	now := time.Now().UTC()
	if err := s.resetTokens.Replace(ctx, model.PasswordResetToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: now.Add(resetTokenTTL),
		CreatedAt: now,
	}); err != nil {
		return "", err
	}

	resetURL := s.appBaseURL + "/auth/reset-password?token=" + token
	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
		slog.Error("failed to send password reset email", "error", err)
	}

	s.bus.Publish(event.New(event.TypePasswordResetIssued, user.ID, nil))
	return forgotPasswordMessage, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token string, password string) error {
	if strings.TrimSpace(token) == "" || password == "" {
		return apierror.New("BAD_REQUEST", "token and password are required", "", http.StatusBadRequest)
	}
	if len(password) < minPasswordLength {
		return apierror.New("BAD_REQUEST", "password must be at least 8 characters", "password", http.StatusBadRequest)
	}

	resetToken, err := s.resetTokens.FindByToken(ctx, token)
	if errors.Is(err, model.ErrTokenNotFound) {
		return apierror.New("BAD_REQUEST", "invalid or expired token", "", http.StatusBadRequest)
	}
	if err != nil {
		return err
	}

	if resetToken.Used {
		return apierror.New("BAD_REQUEST", "this reset link has already been used", "", http.StatusBadRequest)
	}
	if time.Now().After(resetToken.ExpiresAt) {
		return apierror.New("BAD_REQUEST", "this reset link has expired, please request a new one", "", http.StatusBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.resetTokens.Consume(ctx, resetToken.ID, resetToken.UserID, string(hash)); err != nil {
		if errors.Is(err, model.ErrTokenUsed) {
			return apierror.New("BAD_REQUEST", "this reset link has already been used", "", http.StatusBadRequest)
		}
		return err
	}

	s.bus.Publish(event.New(event.TypePasswordResetDone, resetToken.UserID, nil))
	return nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (model.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

func (s *AuthService) newSession(user model.User) (model.Session, error) {
	token, err := s.IssueToken(user)
	if err != nil {
		return model.Session{}, fmt.Errorf("issue token: %w", err)
	}

	return model.Session{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.tokenTTL.Seconds()),
		User:      user.Public(),
	}, nil
}
