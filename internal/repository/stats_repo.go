package repository

import (
	"context"
	"fmt"
	"time"
)

type StatsRepository struct {
	db DB
}

func NewStatsRepository(db DB) *StatsRepository {
	return &StatsRepository{db: db}
}

type AdminStats struct {
	TotalUsers        int `json:"total_users"`
	TotalProjects     int `json:"total_projects"`
	ActiveProjects    int `json:"active_projects"`
	PendingProjects   int `json:"pending_projects"`
	CompletedProjects int `json:"completed_projects"`
	RejectedProjects  int `json:"rejected_projects"`
	TodaySubmissions  int `json:"today_submissions"`
	TodayCompleted    int `json:"today_completed"`
	PendingApprovals  int `json:"pending_approvals"`
}

// Admin aggregates the platform-wide counters in one round trip.
func (r *StatsRepository) Admin(ctx context.Context) (AdminStats, error) {
	todayStart := time.Now().UTC().Truncate(24 * time.Hour)

	var s AdminStats
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM projects),
			(SELECT COUNT(*) FROM projects WHERE status = 'IN_PROGRESS'),
			(SELECT COUNT(*) FROM projects WHERE status = 'UNDER_REVIEW'),
			(SELECT COUNT(*) FROM projects WHERE status = 'COMPLETED'),
			(SELECT COUNT(*) FROM projects WHERE status = 'CANCELLED'),
			(SELECT COUNT(*) FROM projects WHERE created_at >= $1),
			(SELECT COUNT(*) FROM projects WHERE status = 'COMPLETED' AND updated_at >= $1),
			(SELECT COUNT(*) FROM users WHERE verification_status = 'PENDING')
	`, todayStart).Scan(
		&s.TotalUsers, &s.TotalProjects, &s.ActiveProjects, &s.PendingProjects,
		&s.CompletedProjects, &s.RejectedProjects, &s.TodaySubmissions,
		&s.TodayCompleted, &s.PendingApprovals)
	if err != nil {
		return AdminStats{}, fmt.Errorf("admin stats: %w", err)
	}
	return s, nil
}

type StudentStats struct {
	Applications int `json:"applications"`
	TotalPoints  int `json:"total_points"`
	Projects     int `json:"projects"`
}

func (r *StatsRepository) Student(ctx context.Context, userID string) (StudentStats, error) {
	var s StudentStats
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM job_applications WHERE applicant_id = $1),
			(SELECT COALESCE(total_points, 0) FROM users WHERE id = $1),
			(SELECT COUNT(*) FROM project_members WHERE user_id = $1)
	`, userID).Scan(&s.Applications, &s.TotalPoints, &s.Projects)
	if err != nil {
		return StudentStats{}, fmt.Errorf("student stats: %w", err)
	}
	return s, nil
}

type EmployerStats struct {
	Jobs                 int `json:"jobs"`
	OpenJobs             int `json:"open_jobs"`
	ApplicationsReceived int `json:"applications_received"`
}

func (r *StatsRepository) Employer(ctx context.Context, userID string) (EmployerStats, error) {
	var s EmployerStats
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM jobs WHERE employer_id = $1),
			(SELECT COUNT(*) FROM jobs WHERE employer_id = $1 AND status = 'OPEN'),
			(SELECT COUNT(*) FROM job_applications a JOIN jobs j ON j.id = a.job_id WHERE j.employer_id = $1)
	`, userID).Scan(&s.Jobs, &s.OpenJobs, &s.ApplicationsReceived)
	if err != nil {
		return EmployerStats{}, fmt.Errorf("employer stats: %w", err)
	}
	return s, nil
}
