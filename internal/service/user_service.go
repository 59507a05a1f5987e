package service

import (
	"context"
	"net/http"
	"strings"

	"talentbridge/internal/event"
	"talentbridge/internal/model"
	"talentbridge/internal/repository"
	"talentbridge/pkg/apierror"
)

type UserService struct {
	users        *repository.UserRepository
	universities *repository.UniversityRepository
	bus          event.Bus
}

func NewUserService(users *repository.UserRepository, universities *repository.UniversityRepository, bus event.Bus) *UserService {
	return &UserService{users: users, universities: universities, bus: bus}
}

func (s *UserService) List(ctx context.Context, f repository.UserFilter) ([]model.PublicUser, int, error) {
	users, total, err := s.users.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	out := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, total, nil
}

func (s *UserService) Get(ctx context.Context, actor *model.AuthClaims, id string) (model.PublicUser, error) {
	if actor.UserID != id && actor.Role != model.RolePlatformAdmin {
		return model.PublicUser{}, apierror.New("FORBIDDEN", "insufficient permissions", "", http.StatusForbidden)
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.PublicUser{}, err
	}
	return u.Public(), nil
}

func (s *UserService) Update(ctx context.Context, actor *model.AuthClaims, id string, req model.UpdateUserRequest) (model.PublicUser, error) {
	if actor.UserID != id && actor.Role != model.RolePlatformAdmin {
		return model.PublicUser{}, apierror.New("FORBIDDEN", "insufficient permissions", "", http.StatusForbidden)
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.PublicUser{}, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		u.Bio = req.Bio
	}
	if req.Major != nil {
		u.Major = req.Major
	}
	if req.GraduationYear != nil {
		u.GraduationYear = req.GraduationYear
	}
	if req.MobileNumber != nil {
		u.MobileNumber = req.MobileNumber
	}

	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return model.PublicUser{}, err
	}
	return u.Public(), nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

// ReviewVerification settles a pending verification request. Verifying a
// university admin also verifies the claimed university.
func (s *UserService) ReviewVerification(ctx context.Context, actor *model.AuthClaims, userID string, status string) (model.PublicUser, error) {
	newStatus := model.VerificationStatus(strings.ToUpper(strings.TrimSpace(status)))
	if newStatus != model.VerificationVerified && newStatus != model.VerificationRejected {
		return model.PublicUser{}, apierror.New("BAD_REQUEST", "status must be VERIFIED or REJECTED", status, http.StatusBadRequest)
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.PublicUser{}, err
	}

	if err := s.users.SetVerificationStatus(ctx, userID, newStatus); err != nil {
		return model.PublicUser{}, err
	}
	u.VerificationStatus = newStatus

	if newStatus == model.VerificationVerified && u.Role == model.RoleUniversityAdmin && u.UniversityID != nil {
		if err := s.universities.SetVerificationStatus(ctx, *u.UniversityID, model.VerificationVerified); err != nil {
			return model.PublicUser{}, err
		}
	}

	s.bus.Publish(event.New(event.TypeUserVerified, actor.UserID, map[string]any{
		"user_id": userID,
		"status":  string(newStatus),
	}))

	return u.Public(), nil
}
