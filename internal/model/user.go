package model

import "time"

type Role string

const (
	RoleStudent         Role = "STUDENT"
	RoleEmployer        Role = "EMPLOYER"
	RoleInvestor        Role = "INVESTOR"
	RoleUniversityAdmin Role = "UNIVERSITY_ADMIN"
	RolePlatformAdmin   Role = "PLATFORM_ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleEmployer, RoleInvestor, RoleUniversityAdmin, RolePlatformAdmin:
		return true
	}
	return false
}

type VerificationStatus string

const (
	VerificationPending     VerificationStatus = "PENDING"
	VerificationUnderReview VerificationStatus = "UNDER_REVIEW"
	VerificationVerified    VerificationStatus = "VERIFIED"
	VerificationRejected    VerificationStatus = "REJECTED"
)

func (v VerificationStatus) Valid() bool {
	switch v {
	case VerificationPending, VerificationUnderReview, VerificationVerified, VerificationRejected:
		return true
	}
	return false
}

type User struct {
	ID                 string             `json:"id"`
	Email              string             `json:"email"`
	Name               string             `json:"name"`
	PasswordHash       string             `json:"-"`
	Role               Role               `json:"role"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	MobileNumber       *string            `json:"mobile_number,omitempty"`
	UniversityID       *string            `json:"university_id,omitempty"`
	Major              *string            `json:"major,omitempty"`
	GraduationYear     *int               `json:"graduation_year,omitempty"`
	Bio                *string            `json:"bio,omitempty"`
	TotalPoints        int                `json:"total_points"`
	LoginAttempts      int                `json:"-"`
	LockedAt           *time.Time         `json:"-"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// AuthClaims is the decoded JWT payload. Tokens are stateless: validity is
// signature plus expiry, nothing is kept server-side.
type AuthClaims struct {
	UserID             string `json:"sub"`
	Email              string `json:"email"`
	Role               Role   `json:"role"`
	VerificationStatus string `json:"verification_status"`
}

// PublicUser is the user shape returned by the API.
type PublicUser struct {
	ID                 string             `json:"id"`
	Email              string             `json:"email"`
	Name               string             `json:"name"`
	Role               Role               `json:"role"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	UniversityID       *string            `json:"university_id,omitempty"`
	Major              *string            `json:"major,omitempty"`
	GraduationYear     *int               `json:"graduation_year,omitempty"`
	Bio                *string            `json:"bio,omitempty"`
	TotalPoints        int                `json:"total_points"`
	CreatedAt          time.Time          `json:"created_at"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		Role:               u.Role,
		VerificationStatus: u.VerificationStatus,
		UniversityID:       u.UniversityID,
		Major:              u.Major,
		GraduationYear:     u.GraduationYear,
		Bio:                u.Bio,
		TotalPoints:        u.TotalPoints,
		CreatedAt:          u.CreatedAt,
	}
}

type Session struct {
	Token     string     `json:"token"`
	TokenType string     `json:"token_type"`
	ExpiresIn int64      `json:"expires_in"`
	User      PublicUser `json:"user"`
}

// PasswordResetToken is a persisted single-use reset credential. At most one
// unused token exists per user; issuing a new one deletes the older ones.
type PasswordResetToken struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Token     string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
