package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"talentbridge/internal/model"
)

type UniversityRepository struct {
	db DB
}

func NewUniversityRepository(db DB) *UniversityRepository {
	return &UniversityRepository{db: db}
}

func (r *UniversityRepository) Create(ctx context.Context, u model.University) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO universities (id, name, country, website, verification_status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Name, u.Country, u.Website, u.VerificationStatus, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create university: %w", err)
	}
	return nil
}

func (r *UniversityRepository) FindByID(ctx context.Context, id string) (model.University, error) {
	var u model.University
	err := r.db.QueryRow(ctx,
		`SELECT id, name, country, website, verification_status, created_at, updated_at
		 FROM universities WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Country, &u.Website, &u.VerificationStatus, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.University{}, model.ErrUniversityNotFound
	}
	if err != nil {
		return model.University{}, fmt.Errorf("find university: %w", err)
	}
	return u, nil
}

func (r *UniversityRepository) List(ctx context.Context) ([]model.University, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, country, website, verification_status, created_at, updated_at
		 FROM universities ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list universities: %w", err)
	}
	defer rows.Close()

	out := make([]model.University, 0)
	for rows.Next() {
		var u model.University
		if err := rows.Scan(&u.ID, &u.Name, &u.Country, &u.Website,
			&u.VerificationStatus, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan university: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UniversityRepository) SetVerificationStatus(ctx context.Context, id string, status model.VerificationStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE universities SET verification_status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set university status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUniversityNotFound
	}
	return nil
}
