package service

import (
	"context"

	"talentbridge/internal/model"
	"talentbridge/internal/repository"
)

type StatsService struct {
	stats *repository.StatsRepository
}

func NewStatsService(stats *repository.StatsRepository) *StatsService {
	return &StatsService{stats: stats}
}

func (s *StatsService) Admin(ctx context.Context) (repository.AdminStats, error) {
	return s.stats.Admin(ctx)
}

// Dashboard shapes the counters to the caller's role.
func (s *StatsService) Dashboard(ctx context.Context, actor *model.AuthClaims) (any, error) {
	switch actor.Role {
	case model.RoleStudent:
		return s.stats.Student(ctx, actor.UserID)
	case model.RoleEmployer:
		return s.stats.Employer(ctx, actor.UserID)
	case model.RolePlatformAdmin:
		return s.stats.Admin(ctx)
	default:
		// Investors and university admins see their own activity counters.
		return s.stats.Student(ctx, actor.UserID)
	}
}
