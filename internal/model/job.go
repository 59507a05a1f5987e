package model

import "time"

type JobStatus string

const (
	JobOpen   JobStatus = "OPEN"
	JobClosed JobStatus = "CLOSED"
	JobDraft  JobStatus = "DRAFT"
)

type Job struct {
	ID          string     `json:"id"`
	EmployerID  string     `json:"employer_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    *string    `json:"location,omitempty"`
	SalaryRange *string    `json:"salary_range,omitempty"`
	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationReviewed ApplicationStatus = "REVIEWED"
	ApplicationAccepted ApplicationStatus = "ACCEPTED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

type JobApplication struct {
	ID           string            `json:"id"`
	JobID        string            `json:"job_id"`
	ApplicantID  string            `json:"applicant_id"`
	CoverLetter  string            `json:"cover_letter"`
	ResumeURL    string            `json:"resume_url"`
	PortfolioURL *string           `json:"portfolio_url,omitempty"`
	LinkedInURL  *string           `json:"linkedin_url,omitempty"`
	Status       ApplicationStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
}

// PointTransaction records a points award or deduction against a user.
type PointTransaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Points      int       `json:"points"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

const JobApplicationPoints = 5
