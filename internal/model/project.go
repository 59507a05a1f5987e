package model

import "time"

type ProjectStatus string

const (
	ProjectIdea        ProjectStatus = "IDEA"
	ProjectPlanning    ProjectStatus = "PLANNING"
	ProjectInProgress  ProjectStatus = "IN_PROGRESS"
	ProjectUnderReview ProjectStatus = "UNDER_REVIEW"
	ProjectOnHold      ProjectStatus = "ON_HOLD"
	ProjectCompleted   ProjectStatus = "COMPLETED"
	ProjectCancelled   ProjectStatus = "CANCELLED"
)

type Project struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"owner_id"`
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type AccessLevel string

const (
	AccessOwner          AccessLevel = "OWNER"
	AccessProjectManager AccessLevel = "PROJECT_MANAGER"
	AccessContributor    AccessLevel = "CONTRIBUTOR"
	AccessViewer         AccessLevel = "VIEWER"
)

// CanMoveTasks reports whether a member with this access level may move tasks
// through the workflow.
func (a AccessLevel) CanMoveTasks() bool {
	return a == AccessOwner || a == AccessProjectManager
}

type ProjectMember struct {
	ProjectID   string      `json:"project_id"`
	UserID      string      `json:"user_id"`
	AccessLevel AccessLevel `json:"access_level"`
	JoinedAt    time.Time   `json:"joined_at"`
}
