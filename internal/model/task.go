package model

import "time"

type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskReview     TaskStatus = "REVIEW"
	TaskDone       TaskStatus = "DONE"
)

// workflowSteps maps the four board steps to task statuses.
var workflowSteps = map[int]TaskStatus{
	1: TaskTodo,
	2: TaskInProgress,
	3: TaskReview,
	4: TaskDone,
}

var workflowStepNames = map[int]string{
	1: "To Do",
	2: "In Progress",
	3: "Review",
	4: "Done",
}

// StatusForStep returns the task status for a workflow step (1-4).
func StatusForStep(step int) (TaskStatus, bool) {
	s, ok := workflowSteps[step]
	return s, ok
}

// StepName returns the display name of a workflow step.
func StepName(step int) string {
	return workflowStepNames[step]
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

type Task struct {
	ID          string       `json:"id"`
	ProjectID   string       `json:"project_id"`
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	CurrentStep int          `json:"current_step"`
	AssigneeID  *string      `json:"assignee_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TaskStep is an append-only history row recording a move on the board.
type TaskStep struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	StepNumber  int       `json:"step_number"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	MovedBy     string    `json:"moved_by"`
	CreatedAt   time.Time `json:"created_at"`
}
