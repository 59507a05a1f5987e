package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"talentbridge/internal/model"
	"talentbridge/internal/repository"
	"talentbridge/pkg/apierror"
)

type UniversityService struct {
	universities *repository.UniversityRepository
}

func NewUniversityService(universities *repository.UniversityRepository) *UniversityService {
	return &UniversityService{universities: universities}
}

func (s *UniversityService) Create(ctx context.Context, req model.CreateUniversityRequest) (model.University, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.University{}, apierror.New("BAD_REQUEST", "university name is required", "name", http.StatusBadRequest)
	}

	now := time.Now().UTC()
	u := model.University{
		ID:                 uuid.NewString(),
		Name:               name,
		Country:            req.Country,
		Website:            req.Website,
		VerificationStatus: model.VerificationPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.universities.Create(ctx, u); err != nil {
		return model.University{}, err
	}
	return u, nil
}

func (s *UniversityService) List(ctx context.Context) ([]model.University, error) {
	return s.universities.List(ctx)
}

func (s *UniversityService) Get(ctx context.Context, id string) (model.University, error) {
	return s.universities.FindByID(ctx, id)
}
