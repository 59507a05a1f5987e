package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"talentbridge/internal/model"
)

type JobRepository struct {
	db DB
}

func NewJobRepository(db DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, j model.Job) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO jobs (id, employer_id, title, description, location, salary_range, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		j.ID, j.EmployerID, j.Title, j.Description, j.Location, j.SalaryRange, j.Status, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (r *JobRepository) FindByID(ctx context.Context, id string) (model.Job, error) {
	var j model.Job
	err := r.db.QueryRow(ctx,
		`SELECT id, employer_id, title, description, location, salary_range, status, created_at, updated_at
		 FROM jobs WHERE id = $1`, id).
		Scan(&j.ID, &j.EmployerID, &j.Title, &j.Description, &j.Location, &j.SalaryRange,
			&j.Status, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Job{}, model.ErrJobNotFound
	}
	if err != nil {
		return model.Job{}, fmt.Errorf("find job: %w", err)
	}
	return j, nil
}

type JobFilter struct {
	EmployerID string
	Status     string
}

func (r *JobRepository) List(ctx context.Context, f JobFilter) ([]model.Job, error) {
	query := `SELECT id, employer_id, title, description, location, salary_range, status, created_at, updated_at
	          FROM jobs WHERE TRUE`
	args := []any{}

	if f.EmployerID != "" {
		args = append(args, f.EmployerID)
		query += fmt.Sprintf(" AND employer_id = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]model.Job, 0)
	for rows.Next() {
		var j model.Job
		if err := rows.Scan(&j.ID, &j.EmployerID, &j.Title, &j.Description, &j.Location,
			&j.SalaryRange, &j.Status, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *JobRepository) Update(ctx context.Context, j model.Job) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE jobs SET title = $2, description = $3, location = $4, salary_range = $5,
		    status = $6, updated_at = $7
		 WHERE id = $1`,
		j.ID, j.Title, j.Description, j.Location, j.SalaryRange, j.Status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrJobNotFound
	}
	return nil
}

func (r *JobRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrJobNotFound
	}
	return nil
}

// CreateApplication inserts the application inside a transaction with the
// duplicate check, so a double submit cannot slip past the check.
func (r *JobRepository) CreateApplication(ctx context.Context, a model.JobApplication) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create application: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM job_applications WHERE job_id = $1 AND applicant_id = $2)`,
		a.JobID, a.ApplicantID).Scan(&exists); err != nil {
		return fmt.Errorf("check existing application: %w", err)
	}
	if exists {
		return model.ErrAlreadyApplied
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO job_applications (id, job_id, applicant_id, cover_letter, resume_url,
		    portfolio_url, linkedin_url, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.JobID, a.ApplicantID, a.CoverLetter, a.ResumeURL,
		a.PortfolioURL, a.LinkedInURL, a.Status, a.CreatedAt); err != nil {
		return fmt.Errorf("create application: %w", err)
	}

	return tx.Commit(ctx)
}

// AwardPoints records a point transaction and bumps the user's running total
// atomically.
func (r *JobRepository) AwardPoints(ctx context.Context, t model.PointTransaction) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin award points: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO point_transactions (id, user_id, points, source, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.UserID, t.Points, t.Source, t.Description, t.CreatedAt); err != nil {
		return fmt.Errorf("insert point transaction: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET total_points = total_points + $2, updated_at = now() WHERE id = $1`,
		t.UserID, t.Points); err != nil {
		return fmt.Errorf("update total points: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *JobRepository) ListApplications(ctx context.Context, jobID string) ([]model.JobApplication, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, job_id, applicant_id, cover_letter, resume_url, portfolio_url, linkedin_url, status, created_at
		 FROM job_applications WHERE job_id = $1 ORDER BY created_at DESC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]model.JobApplication, 0)
	for rows.Next() {
		var a model.JobApplication
		if err := rows.Scan(&a.ID, &a.JobID, &a.ApplicantID, &a.CoverLetter, &a.ResumeURL,
			&a.PortfolioURL, &a.LinkedInURL, &a.Status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}
