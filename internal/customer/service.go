package customer

import (
	"context"
	"log/slog"

	"github.com/rizkypratama/crm-management/internal/actor"
)

type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id int64) (*Customer, error)
	ListByOwners(ctx context.Context, ownerIDs []int64, limit, offset int) ([]*Customer, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Customer, error)
	Update(ctx context.Context, c *Customer) error
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

func (s *Service) CreateCustomer(ctx context.Context, caller *actor.Actor, dto CreateCustomerDTO) (*Customer, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c := &Customer{
		OwnerID: caller.ID,
		Name:    dto.Name,
		Email:   dto.Email,
		Phone:   dto.Phone,
		Company: dto.Company,
		Address: dto.Address,
		Notes:   dto.Notes,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("failed to create customer", "error", err, "actor_id", caller.ID)
		return nil, err
	}

	s.logger.Info("customer created", "customer_id", c.ID, "owner_id", caller.ID)
	return c, nil
}

func (s *Service) ListCustomers(ctx context.Context, caller *actor.Actor, limit, offset int) ([]*Customer, error) {
	if caller.IsAdmin() {
		return s.repo.ListAll(ctx, limit, offset)
	}
	owners := s.resolver.ResolveAccessibleOwners(ctx, caller)
	return s.repo.ListByOwners(ctx, owners, limit, offset)
}

func (s *Service) GetCustomer(ctx context.Context, caller *actor.Actor, id int64) (*Customer, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canView(ctx, caller, c.OwnerID) {
		s.logger.Warn("unauthorized access to customer",
			"customer_id", id, "actor_id", caller.ID, "owner_id", c.OwnerID)
		return nil, ErrUnauthorizedAccess
	}
	return c, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, caller *actor.Actor, id int64, dto UpdateCustomerDTO) (*Customer, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != caller.ID && !caller.IsAdmin() {
		return nil, ErrUnauthorizedAccess
	}

	dto.Apply(c)
	if err := s.repo.Update(ctx, c); err != nil {
		s.logger.Error("failed to update customer", "error", err, "customer_id", id)
		return nil, err
	}
	return c, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, caller *actor.Actor, id int64) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.OwnerID != caller.ID && !caller.IsAdmin() {
		return ErrUnauthorizedAccess
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete customer", "error", err, "customer_id", id)
		return err
	}
	s.logger.Info("customer deleted", "customer_id", id, "actor_id", caller.ID)
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
