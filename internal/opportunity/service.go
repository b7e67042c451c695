package opportunity

import (
	"context"
	"log/slog"

	"github.com/rizkypratama/crm-management/internal/actor"
)

type Repository interface {
	Create(ctx context.Context, o *Opportunity) error
	GetByID(ctx context.Context, id int64) (*Opportunity, error)
	ListByOwners(ctx context.Context, ownerIDs []int64, limit, offset int) ([]*Opportunity, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Opportunity, error)
	Update(ctx context.Context, o *Opportunity) error
	Delete(ctx context.Context, id int64) error
}

type AccessResolver interface {
	ResolveAccessibleOwners(ctx context.Context, a *actor.Actor) []int64
}

type Service struct {
	repo     Repository
	resolver AccessResolver
	logger   *slog.Logger
}

func NewService(repo Repository, resolver AccessResolver, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		logger:   logger,
	}
}

func (s *Service) CreateOpportunity(ctx context.Context, caller *actor.Actor, dto CreateOpportunityDTO) (*Opportunity, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	stage := dto.Stage
	if stage == "" {
		stage = StageProspecting
	}

	o := &Opportunity{
		OwnerID:    caller.ID,
		CustomerID: dto.CustomerID,
		Title:      dto.Title,
		AmountIDR:  dto.AmountIDR,
		Stage:      stage,
		CloseDate:  dto.CloseDate,
		Notes:      dto.Notes,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		s.logger.Error("failed to create opportunity", "error", err, "actor_id", caller.ID)
		return nil, err
	}

	s.logger.Info("opportunity created", "opportunity_id", o.ID, "owner_id", caller.ID)
	return o, nil
}

func (s *Service) ListOpportunities(ctx context.Context, caller *actor.Actor, limit, offset int) ([]*Opportunity, error) {
	if caller.IsAdmin() {
		return s.repo.ListAll(ctx, limit, offset)
	}
	owners := s.resolver.ResolveAccessibleOwners(ctx, caller)
	return s.repo.ListByOwners(ctx, owners, limit, offset)
}

func (s *Service) GetOpportunity(ctx context.Context, caller *actor.Actor, id int64) (*Opportunity, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canView(ctx, caller, o.OwnerID) {
		s.logger.Warn("unauthorized access to opportunity",
			"opportunity_id", id, "actor_id", caller.ID, "owner_id", o.OwnerID)
		return nil, ErrUnauthorizedAccess
	}
	return o, nil
}

func (s *Service) UpdateOpportunity(ctx context.Context, caller *actor.Actor, id int64, dto UpdateOpportunityDTO) (*Opportunity, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.OwnerID != caller.ID && !caller.IsAdmin() {
		return nil, ErrUnauthorizedAccess
	}

	dto.Apply(o)
	if err := s.repo.Update(ctx, o); err != nil {
		s.logger.Error("failed to update opportunity", "error", err, "opportunity_id", id)
		return nil, err
	}
	return o, nil
}

func (s *Service) DeleteOpportunity(ctx context.Context, caller *actor.Actor, id int64) error {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if o.OwnerID != caller.ID && !caller.IsAdmin() {
		return ErrUnauthorizedAccess
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete opportunity", "error", err, "opportunity_id", id)
		return err
	}
	s.logger.Info("opportunity deleted", "opportunity_id", id, "actor_id", caller.ID)
	return nil
}

func (s *Service) canView(ctx context.Context, caller *actor.Actor, ownerID int64) bool {
	if caller.IsAdmin() {
		return true
	}
	for _, id := range s.resolver.ResolveAccessibleOwners(ctx, caller) {
		if id == ownerID {
			return true
		}
	}
	return false
}
