package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"talentbridge/internal/event"
	"talentbridge/internal/model"
	"talentbridge/internal/repository"
	"talentbridge/pkg/apierror"
)

type JobService struct {
	jobs *repository.JobRepository
	bus  event.Bus
}

func NewJobService(jobs *repository.JobRepository, bus event.Bus) *JobService {
	return &JobService{jobs: jobs, bus: bus}
}

func (s *JobService) Create(ctx context.Context, actor *model.AuthClaims, req model.CreateJobRequest) (model.Job, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return model.Job{}, apierror.New("BAD_REQUEST", "title and description are required", "", http.StatusBadRequest)
	}

	now := time.Now().UTC()
	job := model.Job{
		ID:          uuid.NewString(),
		EmployerID:  actor.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Location:    req.Location,
		SalaryRange: req.SalaryRange,
		Status:      model.JobOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return model.Job{}, err
	}

	s.bus.Publish(event.New(event.TypeJobCreated, actor.UserID, map[string]any{
		"job_id": job.ID,
		"title":  job.Title,
	}))
	return job, nil
}

func (s *JobService) List(ctx context.Context, f repository.JobFilter) ([]model.Job, error) {
	return s.jobs.List(ctx, f)
}

func (s *JobService) Get(ctx context.Context, id string) (model.Job, error) {
	return s.jobs.FindByID(ctx, id)
}

func (s *JobService) Update(ctx context.Context, actor *model.AuthClaims, id string, req model.UpdateJobRequest) (model.Job, error) {
	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return model.Job{}, err
	}

	if job.EmployerID != actor.UserID && actor.Role != model.RolePlatformAdmin {
		return model.Job{}, apierror.New("FORBIDDEN", "insufficient permissions", "", http.StatusForbidden)
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		job.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Location != nil {
		job.Location = req.Location
	}
	if req.SalaryRange != nil {
		job.SalaryRange = req.SalaryRange
	}
	if req.Status != nil {
		status := model.JobStatus(strings.ToUpper(*req.Status))
		if status != model.JobOpen && status != model.JobClosed && status != model.JobDraft {
			return model.Job{}, apierror.New("BAD_REQUEST", "invalid job status", *req.Status, http.StatusBadRequest)
		}
		job.Status = status
	}

	if err := s.jobs.Update(ctx, job); err != nil {
		return model.Job{}, err
	}
	return job, nil
}

func (s *JobService) Delete(ctx context.Context, actor *model.AuthClaims, id string) error {
	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if job.EmployerID != actor.UserID && actor.Role != model.RolePlatformAdmin {
		return apierror.New("FORBIDDEN", "insufficient permissions", "", http.StatusForbidden)
	}

	return s.jobs.Delete(ctx, id)
}

// Apply submits an application and awards application points. The points
// write happens after the application commits; a points failure is logged
// and never undoes the application.
func (s *JobService) Apply(ctx context.Context, actor *model.AuthClaims, jobID string, req model.ApplyRequest) (model.JobApplication, error) {
	if strings.TrimSpace(req.CoverLetter) == "" {
		return model.JobApplication{}, apierror.New("BAD_REQUEST", "cover letter is required", "cover_letter", http.StatusBadRequest)
	}
	if strings.TrimSpace(req.ResumeURL) == "" {
		return model.JobApplication{}, apierror.New("BAD_REQUEST", "resume URL is required", "resume_url", http.StatusBadRequest)
	}

	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return model.JobApplication{}, err
	}
	if job.Status != model.JobOpen {
		return model.JobApplication{}, apierror.New("BAD_REQUEST", "job is not open for applications", "", http.StatusBadRequest)
	}

	app := model.JobApplication{
		ID:           uuid.NewString(),
		JobID:        job.ID,
		ApplicantID:  actor.UserID,
		CoverLetter:  req.CoverLetter,
		ResumeURL:    req.ResumeURL,
		PortfolioURL: req.PortfolioURL,
		LinkedInURL:  req.LinkedInURL,
		Status:       model.ApplicationPending,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.jobs.CreateApplication(ctx, app); err != nil {
		return model.JobApplication{}, err
	}

	if err := s.jobs.AwardPoints(ctx, model.PointTransaction{
		ID:          uuid.NewString(),
		UserID:      actor.UserID,
		Points:      model.JobApplicationPoints,
		Source:      "JOB_APPLICATION",
		Description: fmt.Sprintf("Applied to job: %s", job.Title),
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		slog.Error("failed to award application points", "user_id", actor.UserID, "error", err)
	}

	s.bus.Publish(event.New(event.TypeApplicationSubmitted, actor.UserID, map[string]any{
		"job_id":         job.ID,
		"application_id": app.ID,
	}))

	return app, nil
}

func (s *JobService) ListApplications(ctx context.Context, actor *model.AuthClaims, jobID string) ([]model.JobApplication, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.EmployerID != actor.UserID && actor.Role != model.RolePlatformAdmin {
		return nil, apierror.New("FORBIDDEN", "insufficient permissions", "", http.StatusForbidden)
	}

	return s.jobs.ListApplications(ctx, jobID)
}
