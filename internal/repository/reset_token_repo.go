package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"talentbridge/internal/model"
)

type ResetTokenRepository struct {
	db DB
}

func NewResetTokenRepository(db DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

// Replace deletes the user's outstanding unused tokens and stores the new
// one, keeping at most one unused token per user.
func (r *ResetTokenRepository) Replace(ctx context.Context, t model.PasswordResetToken) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace reset token: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM password_reset_tokens WHERE user_id = $1 AND used = FALSE`,
		t.UserID); err != nil {
		return fmt.Errorf("delete unused reset tokens: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO password_reset_tokens (id, user_id, token, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.UserID, t.Token, t.ExpiresAt, t.CreatedAt); err != nil {
		return fmt.Errorf("create reset token: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *ResetTokenRepository) FindByToken(ctx context.Context, token string) (model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, token, expires_at, used, used_at, created_at
		 FROM password_reset_tokens WHERE token = $1`, token).
		Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.Used, &t.UsedAt, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.PasswordResetToken{}, model.ErrTokenNotFound
	}
	if err != nil {
		return model.PasswordResetToken{}, fmt.Errorf("find reset token: %w", err)
	}
	return t, nil
}

// Consume marks the token used and swaps the user's password hash in one
// transaction, then clears every other token for that user. The conditional
// update on `used` makes a second consume of the same token fail even under
// concurrent requests.
func (r *ResetTokenRepository) Consume(ctx context.Context, tokenID string, userID string, passwordHash string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin consume reset token: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE password_reset_tokens SET used = TRUE, used_at = $2
		 WHERE id = $1 AND used = FALSE`,
		tokenID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark reset token used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTokenUsed
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		userID, passwordHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM password_reset_tokens WHERE user_id = $1 AND id <> $2`,
		userID, tokenID); err != nil {
		return fmt.Errorf("delete other reset tokens: %w", err)
	}

	return tx.Commit(ctx)
}
