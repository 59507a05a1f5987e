package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"talentbridge/internal/event"
	"talentbridge/internal/model"
	"talentbridge/pkg/apierror"
)

type TaskStore interface {
	Create(ctx context.Context, t model.Task) error
	FindByID(ctx context.Context, id string) (model.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Task, error)
	Delete(ctx context.Context, id string) error
	Move(ctx context.Context, taskID string, step model.TaskStep, status model.TaskStatus) error
	History(ctx context.Context, taskID string) ([]model.TaskStep, error)
}

type MemberStore interface {
	FindMember(ctx context.Context, projectID string, userID string) (model.ProjectMember, error)
}

type TaskService struct {
	tasks   TaskStore
	members MemberStore
	bus     event.Bus
}

func NewTaskService(tasks TaskStore, members MemberStore, bus event.Bus) *TaskService {
	return &TaskService{tasks: tasks, members: members, bus: bus}
}

func (s *TaskService) Create(ctx context.Context, actor *model.AuthClaims, req model.CreateTaskRequest) (model.Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return model.Task{}, apierror.New("BAD_REQUEST", "task title is required", "title", http.StatusBadRequest)
	}
	if strings.TrimSpace(req.ProjectID) == "" {
		return model.Task{}, apierror.New("BAD_REQUEST", "project_id is required", "project_id", http.StatusBadRequest)
	}

	member, err := s.members.FindMember(ctx, req.ProjectID, actor.UserID)
	if err != nil {
		return model.Task{}, apierror.New("FORBIDDEN", "not a member of this project", "", http.StatusForbidden)
	}
	if member.AccessLevel == model.AccessViewer {
		return model.Task{}, apierror.New("FORBIDDEN", "viewers cannot create tasks", "", http.StatusForbidden)
	}

	priority := model.PriorityMedium
	if req.Priority != nil {
		priority = model.TaskPriority(strings.ToUpper(*req.Priority))
		switch priority {
		case model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityUrgent:
		default:
			return model.Task{}, apierror.New("BAD_REQUEST", "invalid priority", *req.Priority, http.StatusBadRequest)
		}
	}

	now := time.Now().UTC()
	t := model.Task{
		ID:          uuid.NewString(),
		ProjectID:   req.ProjectID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      model.TaskTodo,
		Priority:    priority,
		CurrentStep: 1,
		AssigneeID:  req.AssigneeID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (s *TaskService) ListByProject(ctx context.Context, actor *model.AuthClaims, projectID string) ([]model.Task, error) {
	if actor.Role != model.RolePlatformAdmin {
		if _, err := s.members.FindMember(ctx, projectID, actor.UserID); err != nil {
			return nil, apierror.New("FORBIDDEN", "not a member of this project", "", http.StatusForbidden)
		}
	}
	return s.tasks.ListByProject(ctx, projectID)
}

// Move advances a task on the four-step board. Only OWNER and
// PROJECT_MANAGER members may move tasks; every move appends a history row.
func (s *TaskService) Move(ctx context.Context, actor *model.AuthClaims, req model.MoveTaskRequest) (model.Task, error) {
	if req.TaskID == "" || req.ProjectID == "" {
		return model.Task{}, apierror.New("BAD_REQUEST", "task_id and project_id are required", "", http.StatusBadRequest)
	}

	status, ok := model.StatusForStep(req.NewStep)
	if !ok {
		return model.Task{}, apierror.New("BAD_REQUEST", "invalid step, must be 1-4", "new_step", http.StatusBadRequest)
	}

	task, err := s.tasks.FindByID(ctx, req.TaskID)
	if err != nil {
		return model.Task{}, err
	}
	if task.ProjectID != req.ProjectID {
		return model.Task{}, apierror.New("FORBIDDEN", "task does not belong to this project", "", http.StatusForbidden)
	}

	member, err := s.members.FindMember(ctx, req.ProjectID, actor.UserID)
	if err != nil {
		return model.Task{}, apierror.New("FORBIDDEN", "not a member of this project", "", http.StatusForbidden)
	}
	if !member.AccessLevel.CanMoveTasks() {
		return model.Task{}, apierror.New("FORBIDDEN", "only owner and project manager can move tasks", "", http.StatusForbidden)
	}

	step := model.TaskStep{
		ID:          uuid.NewString(),
		TaskID:      task.ID,
		StepNumber:  req.NewStep,
		Name:        model.StepName(req.NewStep),
		Description: fmt.Sprintf("Moved from step %d to step %d", task.CurrentStep, req.NewStep),
		MovedBy:     actor.UserID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.tasks.Move(ctx, task.ID, step, status); err != nil {
		return model.Task{}, err
	}

	task.Status = status
	task.CurrentStep = req.NewStep
	task.UpdatedAt = step.CreatedAt

	s.bus.Publish(event.New(event.TypeTaskMoved, actor.UserID, map[string]any{
		"task_id":  task.ID,
		"new_step": req.NewStep,
	}))

	return task, nil
}

func (s *TaskService) History(ctx context.Context, actor *model.AuthClaims, taskID string) ([]model.TaskStep, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if actor.Role != model.RolePlatformAdmin {
		if _, err := s.members.FindMember(ctx, task.ProjectID, actor.UserID); err != nil {
			return nil, apierror.New("FORBIDDEN", "not a member of this project", "", http.StatusForbidden)
		}
	}
	return s.tasks.History(ctx, taskID)
}

func (s *TaskService) Delete(ctx context.Context, actor *model.AuthClaims, taskID string) error {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return err
	}

	member, err := s.members.FindMember(ctx, task.ProjectID, actor.UserID)
	if err != nil || !member.AccessLevel.CanMoveTasks() {
		return apierror.New("FORBIDDEN", "insufficient permissions", "", http.StatusForbidden)
	}

	return s.tasks.Delete(ctx, taskID)
}
