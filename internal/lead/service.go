package lead

import (
	"context"
	"log/slog"

	"github.com/rizkypratama/crm-management/internal/actor"
)

// Repository defines the data access methods for leads.
type Repository interface {
	Create(ctx context.Context, l *Lead) error
	GetByID(ctx context.Context, id int64) (*Lead, error)
	ListByOwners(ctx context.Context, ownerIDs []int64, limit, offset int) ([]*Lead, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Lead, error)
	Update(ctx context.Context, l *Lead) error
	Delete(ctx context.Context, id int64) error
}

// AccessResolver is the query gate dependency: the visibility set every
// listing must be intersected with.
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

func (s *Service) CreateLead(ctx context.Context, caller *actor.Actor, dto CreateLeadDTO) (*Lead, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("lead validation failed", "error", err, "actor_id", caller.ID)
		return nil, err
	}

	l := &Lead{
		OwnerID: caller.ID,
		Name:    dto.Name,
		Email:   dto.Email,
		Phone:   dto.Phone,
		Company: dto.Company,
		Source:  dto.Source,
		Status:  StatusNew,
		Notes:   dto.Notes,
	}

	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error("failed to create lead", "error", err, "actor_id", caller.ID)
		return nil, err
	}

	s.logger.Info("lead created", "lead_id", l.ID, "owner_id", caller.ID)
	return l, nil
}

// ListLeads returns the leads visible to the caller. Admins skip filtering
// entirely; everyone else is restricted to their accessible owner set.
func (s *Service) ListLeads(ctx context.Context, caller *actor.Actor, limit, offset int) ([]*Lead, error) {
	if caller.IsAdmin() {
		leads, err := s.repo.ListAll(ctx, limit, offset)
		if err != nil {
			s.logger.Error("failed to list leads", "error", err, "actor_id", caller.ID)
			return nil, err
		}
		return leads, nil
	}

	owners := s.resolver.ResolveAccessibleOwners(ctx, caller)
	leads, err := s.repo.ListByOwners(ctx, owners, limit, offset)
	if err != nil {
		s.logger.Error("failed to list leads", "error", err, "actor_id", caller.ID)
		return nil, err
	}
	return leads, nil
}

func (s *Service) GetLead(ctx context.Context, caller *actor.Actor, id int64) (*Lead, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.canView(ctx, caller, l.OwnerID) {
		s.logger.Warn("unauthorized access to lead",
			"lead_id", id, "actor_id", caller.ID, "owner_id", l.OwnerID)
		return nil, ErrUnauthorizedAccess
	}

	return l, nil
}

// UpdateLead modifies a lead. Only the owner or an admin may write; grant
// visibility is read-only.
func (s *Service) UpdateLead(ctx context.Context, caller *actor.Actor, id int64, dto UpdateLeadDTO) (*Lead, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if l.OwnerID != caller.ID && !caller.IsAdmin() {
		s.logger.Warn("unauthorized lead update",
			"lead_id", id, "actor_id", caller.ID, "owner_id", l.OwnerID)
		return nil, ErrUnauthorizedAccess
	}

	dto.Apply(l)
	if err := s.repo.Update(ctx, l); err != nil {
		s.logger.Error("failed to update lead", "error", err, "lead_id", id)
		return nil, err
	}

	s.logger.Info("lead updated", "lead_id", id, "actor_id", caller.ID)
	return l, nil
}

func (s *Service) DeleteLead(ctx context.Context, caller *actor.Actor, id int64) error {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if l.OwnerID != caller.ID && !caller.IsAdmin() {
		s.logger.Warn("unauthorized lead delete",
			"lead_id", id, "actor_id", caller.ID, "owner_id", l.OwnerID)
		return ErrUnauthorizedAccess
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete lead", "error", err, "lead_id", id)
		return err
	}

	s.logger.Info("lead deleted", "lead_id", id, "actor_id", caller.ID)
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
