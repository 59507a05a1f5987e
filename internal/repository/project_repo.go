package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"talentbridge/internal/model"
)

type ProjectRepository struct {
	db DB
}

func NewProjectRepository(db DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts the project and its owner membership together.
func (r *ProjectRepository) Create(ctx context.Context, p model.Project) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create project: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO projects (id, owner_id, name, description, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.OwnerID, p.Name, p.Description, p.Status, p.CreatedAt, p.UpdatedAt); err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO project_members (project_id, user_id, access_level, joined_at)
		 VALUES ($1, $2, $3, $4)`,
		p.ID, p.OwnerID, model.AccessOwner, p.CreatedAt); err != nil {
		return fmt.Errorf("create owner membership: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (model.Project, error) {
	var p model.Project
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, name, description, status, created_at, updated_at
		 FROM projects WHERE id = $1`, id).
		Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Project{}, model.ErrProjectNotFound
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("find project: %w", err)
	}
	return p, nil
}

func (r *ProjectRepository) ListForUser(ctx context.Context, userID string) ([]model.Project, error) {
	rows, err := r.db.Query(ctx,
		`SELECT p.id, p.owner_id, p.name, p.description, p.status, p.created_at, p.updated_at
		 FROM projects p
		 JOIN project_members m ON m.project_id = p.id
		 WHERE m.user_id = $1
		 ORDER BY p.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]model.Project, 0)
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description,
			&p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) Update(ctx context.Context, p model.Project) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE projects SET name = $2, description = $3, status = $4, updated_at = $5 WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) FindMember(ctx context.Context, projectID string, userID string) (model.ProjectMember, error) {
	var m model.ProjectMember
	err := r.db.QueryRow(ctx,
		`SELECT project_id, user_id, access_level, joined_at
		 FROM project_members WHERE project_id = $1 AND user_id = $2`,
		projectID, userID).
		Scan(&m.ProjectID, &m.UserID, &m.AccessLevel, &m.JoinedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ProjectMember{}, model.ErrNotProjectMember
	}
	if err != nil {
		return model.ProjectMember{}, fmt.Errorf("find project member: %w", err)
	}
	return m, nil
}

func (r *ProjectRepository) AddMember(ctx context.Context, m model.ProjectMember) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO project_members (project_id, user_id, access_level, joined_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (project_id, user_id) DO UPDATE SET access_level = EXCLUDED.access_level`,
		m.ProjectID, m.UserID, m.AccessLevel, m.JoinedAt)
	if err != nil {
		return fmt.Errorf("add project member: %w", err)
	}
	return nil
}
