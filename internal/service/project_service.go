package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"talentbridge/internal/event"
	"talentbridge/internal/model"
	"talentbridge/internal/repository"
	"talentbridge/pkg/apierror"
)

type ProjectService struct {
	projects *repository.ProjectRepository
	bus      event.Bus
}

func NewProjectService(projects *repository.ProjectRepository, bus event.Bus) *ProjectService {
	return &ProjectService{projects: projects, bus: bus}
}

func (s *ProjectService) Create(ctx context.Context, actor *model.AuthClaims, req model.CreateProjectRequest) (model.Project, error) {
	if strings.TrimSpace(req.Name) == "" {
		return model.Project{}, apierror.New("BAD_REQUEST", "project name is required", "name", http.StatusBadRequest)
	}

	now := time.Now().UTC()
	p := model.Project{
		ID:          uuid.NewString(),
		OwnerID:     actor.UserID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Status:      model.ProjectIdea,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projects.Create(ctx, p); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

func (s *ProjectService) ListForUser(ctx context.Context, actor *model.AuthClaims) ([]model.Project, error) {
	return s.projects.ListForUser(ctx, actor.UserID)
}

func (s *ProjectService) Get(ctx context.Context, actor *model.AuthClaims, id string) (model.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return model.Project{}, err
	}

	if actor.Role != model.RolePlatformAdmin {
		if _, err := s.projects.FindMember(ctx, id, actor.UserID); err != nil {
			return model.Project{}, apierror.New("FORBIDDEN", "not a member of this project", "", http.StatusForbidden)
		}
	}
	return p, nil
}

func (s *ProjectService) Update(ctx context.Context, actor *model.AuthClaims, id string, req model.UpdateProjectRequest) (model.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return model.Project{}, err
	}

	if err := s.requireManager(ctx, actor, p); err != nil {
		return model.Project{}, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Status != nil {
		status := model.ProjectStatus(strings.ToUpper(*req.Status))
		switch status {
		case model.ProjectIdea, model.ProjectPlanning, model.ProjectInProgress,
			model.ProjectUnderReview, model.ProjectOnHold, model.ProjectCompleted, model.ProjectCancelled:
			p.Status = status
		default:
			return model.Project{}, apierror.New("BAD_REQUEST", "invalid project status", *req.Status, http.StatusBadRequest)
		}
	}

	if err := s.projects.Update(ctx, p); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

func (s *ProjectService) Delete(ctx context.Context, actor *model.AuthClaims, id string) error {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if p.OwnerID != actor.UserID && actor.Role != model.RolePlatformAdmin {
		return apierror.New("FORBIDDEN", "only the owner can delete a project", "", http.StatusForbidden)
	}

	return s.projects.Delete(ctx, id)
}

func (s *ProjectService) AddMember(ctx context.Context, actor *model.AuthClaims, projectID string, userID string, level string) error {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return err
	}

	if err := s.requireManager(ctx, actor, p); err != nil {
		return err
	}

	access := model.AccessLevel(strings.ToUpper(strings.TrimSpace(level)))
	switch access {
	case model.AccessProjectManager, model.AccessContributor, model.AccessViewer:
	default:
		return apierror.New("BAD_REQUEST", "invalid access level", level, http.StatusBadRequest)
	}

	return s.projects.AddMember(ctx, model.ProjectMember{
		ProjectID:   projectID,
		UserID:      userID,
		AccessLevel: access,
		JoinedAt:    time.Now().UTC(),
	})
}

func (s *ProjectService) requireManager(ctx context.Context, actor *model.AuthClaims, p model.Project) error {
	if actor.Role == model.RolePlatformAdmin || p.OwnerID == actor.UserID {
		return nil
	}

	member, err := s.projects.FindMember(ctx, p.ID, actor.UserID)
	if err != nil || !member.AccessLevel.CanMoveTasks() {
		return apierror.New("FORBIDDEN", "insufficient permissions", "", http.StatusForbidden)
	}
	return nil
}
