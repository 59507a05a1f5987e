package model

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Role           string  `json:"role"`
	MobileNumber   *string `json:"mobile_number,omitempty"`
	UniversityID   *string `json:"university_id,omitempty"`
	Major          *string `json:"major,omitempty"`
	GraduationYear *int    `json:"graduation_year,omitempty"`
	Bio            *string `json:"bio,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type UpdateUserRequest struct {
	Name           *string `json:"name,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	Major          *string `json:"major,omitempty"`
	GraduationYear *int    `json:"graduation_year,omitempty"`
	MobileNumber   *string `json:"mobile_number,omitempty"`
}

type ReviewVerificationRequest struct {
	Status string `json:"status"`
}

type CreateUniversityRequest struct {
	Name    string  `json:"name"`
	Country *string `json:"country,omitempty"`
	Website *string `json:"website,omitempty"`
}

type CreateJobRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    *string `json:"location,omitempty"`
	SalaryRange *string `json:"salary_range,omitempty"`
}

type UpdateJobRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	SalaryRange *string `json:"salary_range,omitempty"`
	Status      *string `json:"status,omitempty"`
}

type ApplyRequest struct {
	CoverLetter  string  `json:"cover_letter"`
	ResumeURL    string  `json:"resume_url"`
	PortfolioURL *string `json:"portfolio_url,omitempty"`
	LinkedInURL  *string `json:"linkedin_url,omitempty"`
}

type CreateProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

type CreateTaskRequest struct {
	ProjectID   string  `json:"project_id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	AssigneeID  *string `json:"assignee_id,omitempty"`
}

type AddMemberRequest struct {
	UserID      string `json:"user_id"`
	AccessLevel string `json:"access_level"`
}

type MoveTaskRequest struct {
	TaskID    string `json:"task_id"`
	ProjectID string `json:"project_id"`
	NewStep   int    `json:"new_step"`
}
