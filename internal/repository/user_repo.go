package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"talentbridge/internal/model"
)

const userColumns = `id, email, name, password_hash, role, verification_status,
	mobile_number, university_id, major, graduation_year, bio, total_points,
	login_attempts, locked_at, created_at, updated_at`

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.VerificationStatus,
		&u.MobileNumber, &u.UniversityID, &u.Major, &u.GraduationYear, &u.Bio, &u.TotalPoints,
		&u.LoginAttempts, &u.LockedAt, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`,
		strings.TrimSpace(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) Create(ctx context.Context, u model.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, email, name, password_hash, role, verification_status,
		    mobile_number, university_id, major, graduation_year, bio, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.VerificationStatus,
		u.MobileNumber, u.UniversityID, u.Major, u.GraduationYear, u.Bio, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, u model.User) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET name = $2, bio = $3, major = $4, graduation_year = $5,
		    mobile_number = $6, updated_at = $7
		 WHERE id = $1`,
		u.ID, u.Name, u.Bio, u.Major, u.GraduationYear, u.MobileNumber, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetVerificationStatus(ctx context.Context, id string, status model.VerificationStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET verification_status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set verification status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// RecordFailedLogin bumps the failure counter and sets the lock timestamp in
// one statement, so concurrent failed logins cannot under-count. It returns
// the new counter and lock time.
func (r *UserRepository) RecordFailedLogin(ctx context.Context, userID string, maxAttempts int) (int, *time.Time, error) {
	var attempts int
	var lockedAt *time.Time
	err := r.db.QueryRow(ctx,
		`UPDATE users
		 SET login_attempts = login_attempts + 1,
		     locked_at = CASE WHEN login_attempts + 1 >= $2 THEN now() ELSE locked_at END,
		     updated_at = now()
		 WHERE id = $1
		 RETURNING login_attempts, locked_at`,
		userID, maxAttempts).Scan(&attempts, &lockedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil, model.ErrUserNotFound
	}
	if err != nil {
		return 0, nil, fmt.Errorf("record failed login: %w", err)
	}
	return attempts, lockedAt, nil
}

func (r *UserRepository) ResetLoginAttempts(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET login_attempts = 0, locked_at = NULL, updated_at = now() WHERE id = $1`,
		userID)
	if err != nil {
		return fmt.Errorf("reset login attempts: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID string, passwordHash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		userID, passwordHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// FindActiveUniversityAdmin returns the admin of a university whose
// verification is pending, under review or verified. A university may carry
// at most one such admin.
func (r *UserRepository) FindActiveUniversityAdmin(ctx context.Context, universityID string) (model.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE university_id = $1 AND role = $2
		   AND verification_status IN ($3, $4, $5)
		 LIMIT 1`,
		universityID, model.RoleUniversityAdmin,
		model.VerificationPending, model.VerificationUnderReview, model.VerificationVerified))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find university admin: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

type UserFilter struct {
	Role   string
	Status string
	Page   int
	Limit  int
}

func (r *UserRepository) List(ctx context.Context, f UserFilter) ([]model.User, int, error) {
	where := []string{"TRUE"}
	args := []any{}

	if f.Role != "" {
		args = append(args, f.Role)
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("verification_status = $%d", len(args)))
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+cond+
			fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}
