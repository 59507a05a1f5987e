package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"talentbridge/internal/model"
)

type TaskRepository struct {
	db DB
}

func NewTaskRepository(db DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, t model.Task) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tasks (id, project_id, title, description, status, priority, current_step, assignee_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.ProjectID, t.Title, t.Description, t.Status, t.Priority, t.CurrentStep,
		t.AssigneeID, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (model.Task, error) {
	var t model.Task
	err := r.db.QueryRow(ctx,
		`SELECT id, project_id, title, description, status, priority, current_step, assignee_id, created_at, updated_at
		 FROM tasks WHERE id = $1`, id).
		Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority,
			&t.CurrentStep, &t.AssigneeID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Task{}, model.ErrTaskNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("find task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, project_id, title, description, status, priority, current_step, assignee_id, created_at, updated_at
		 FROM tasks WHERE project_id = $1 ORDER BY created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status,
			&t.Priority, &t.CurrentStep, &t.AssigneeID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTaskNotFound
	}
	return nil
}

// Move updates the task's step and status and appends the history row in one
// transaction.
func (r *TaskRepository) Move(ctx context.Context, taskID string, step model.TaskStep, status model.TaskStatus) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin move task: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE tasks SET status = $2, current_step = $3, updated_at = $4 WHERE id = $1`,
		taskID, status, step.StepNumber, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update task step: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTaskNotFound
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO task_steps (id, task_id, step_number, name, description, moved_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		step.ID, step.TaskID, step.StepNumber, step.Name, step.Description,
		step.MovedBy, step.CreatedAt); err != nil {
		return fmt.Errorf("insert task step: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *TaskRepository) History(ctx context.Context, taskID string) ([]model.TaskStep, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, task_id, step_number, name, description, moved_by, created_at
		 FROM task_steps WHERE task_id = $1 ORDER BY created_at`, taskID)
	if err != nil {
		return nil, fmt.Errorf("task history: %w", err)
	}
	defer rows.Close()

	steps := make([]model.TaskStep, 0)
	for rows.Next() {
		var s model.TaskStep
		if err := rows.Scan(&s.ID, &s.TaskID, &s.StepNumber, &s.Name, &s.Description,
			&s.MovedBy, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task step: %w", err)
		}
		steps = append(steps, s)
	}
	return steps, rows.Err()
}
