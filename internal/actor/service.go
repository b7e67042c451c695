package actor

import (
	"context"
	"log/slog"
)

// Repository defines the data access methods for the actor directory.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Actor, error)
	GetByEmail(ctx context.Context, email string) (*Actor, error)
	ListActive(ctx context.Context) ([]*Actor, error)
	ListAllIDs(ctx context.Context) ([]int64, error)
}

// Service is the actor directory consumed by the access resolver and the
// user-facing directory endpoints.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Actor, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get actor", "error", err, "actor_id", id)
		return nil, err
	}
	return a, nil
}

// ListAvailable returns every active actor except the caller, the population
// an actor can request access from.
func (s *Service) ListAvailable(ctx context.Context, callerID int64) ([]*Actor, error) {
	actors, err := s.repo.ListActive(ctx)
	if err != nil {
		s.logger.Error("failed to list actors", "error", err, "caller_id", callerID)
		return nil, err
	}

	available := make([]*Actor, 0, len(actors))
	for _, a := range actors {
		if a.ID == callerID {
			continue
		}
		available = append(available, a)
	}
	return available, nil
}

// ListAllIDs returns every known owner identifier. The resolver uses it for
// the admin and blanket-permission branches.
func (s *Service) ListAllIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.repo.ListAllIDs(ctx)
	if err != nil {
		s.logger.Error("failed to list actor ids", "error", err)
		return nil, err
	}
	return ids, nil
}
