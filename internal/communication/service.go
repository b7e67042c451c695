package communication

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rizkypratama/crm-management/internal"
	"github.com/rizkypratama/crm-management/internal/actor"
	"github.com/rizkypratama/crm-management/internal/messagegateway"
)

type Repository interface {
	Create(ctx context.Context, c *Communication) error
	GetByID(ctx context.Context, id int64) (*Communication, error)
	GetByExternalID(ctx context.Context, externalID string) (*Communication, error)
	ListByOwners(ctx context.Context, ownerIDs []int64, limit, offset int) ([]*Communication, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Communication, error)
	UpdateDeliveryStatus(ctx context.Context, externalID, messageID, status string, sentAt *time.Time) error
	Delete(ctx context.Context, id int64) error
}

type AccessResolver interface {
	ResolveAccessibleOwners(ctx context.Context, a *actor.Actor) []int64
}

// Gateway queues outbound deliveries. Satisfied by messagegateway.Client.
type Gateway interface {
	Send(job messagegateway.MessageJob) (*messagegateway.DeliveryResult, error)
}

type Service struct {
	repo     Repository
	resolver AccessResolver
	gateway  Gateway
	logger   *slog.Logger
}

func NewService(repo Repository, resolver AccessResolver, gateway Gateway, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		gateway:  gateway,
		logger:   logger,
	}
}

// LogCommunication records the interaction and, for outbound email or sms,
// queues delivery through the gateway. A full queue downgrades the entry to
// failed rather than rejecting the log.
func (s *Service) LogCommunication(ctx context.Context, caller *actor.Actor, dto CreateCommunicationDTO) (*Communication, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	direction := dto.Direction
	if direction == "" {
		direction = DirectionOutbound
	}

	c := &Communication{
		OwnerID:        caller.ID,
		CustomerID:     dto.CustomerID,
		LeadID:         dto.LeadID,
		Channel:        dto.Channel,
		Direction:      direction,
		Recipient:      dto.Recipient,
		Subject:        dto.Subject,
		Body:           dto.Body,
		DeliveryStatus: DeliveryStatusLogged,
	}

	deliverable := DeliverableChannel(dto.Channel) && direction == DirectionOutbound && s.gateway != nil
	if deliverable {
		c.ExternalID = uuid.NewString()
		c.DeliveryStatus = DeliveryStatusQueued
	}

	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("failed to create communication", "error", err, "actor_id", caller.ID)
		return nil, err
	}

	if deliverable {
		_, err := s.gateway.Send(messagegateway.MessageJob{
			ExternalID: c.ExternalID,
			Channel:    c.Channel,
			Recipient:  c.Recipient,
			Subject:    c.Subject,
			Body:       c.Body,
		})
		if err != nil {
			s.logger.Warn("delivery could not be queued",
				"error", err, "communication_id", c.ID, "external_id", c.ExternalID)
			c.DeliveryStatus = DeliveryStatusFailed
			if updateErr := s.repo.UpdateDeliveryStatus(ctx, c.ExternalID, "", DeliveryStatusFailed, nil); updateErr != nil {
				s.logger.Error("failed to mark communication failed",
					"error", updateErr, "external_id", c.ExternalID)
			}
		}
	}

	s.logger.Info("communication logged",
		"communication_id", c.ID, "owner_id", caller.ID, "channel", c.Channel)
	return c, nil
}

func (s *Service) ListCommunications(ctx context.Context, caller *actor.Actor, limit, offset int) ([]*Communication, error) {
	if caller.IsAdmin() {
		return s.repo.ListAll(ctx, limit, offset)
	}
	owners := s.resolver.ResolveAccessibleOwners(ctx, caller)
	return s.repo.ListByOwners(ctx, owners, limit, offset)
}

func (s *Service) GetCommunication(ctx context.Context, caller *actor.Actor, id int64) (*Communication, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canView(ctx, caller, c.OwnerID) {
		s.logger.Warn("unauthorized access to communication",
			"communication_id", id, "actor_id", caller.ID, "owner_id", c.OwnerID)
		return nil, ErrUnauthorizedAccess
	}
	return c, nil
}

func (s *Service) DeleteCommunication(ctx context.Context, caller *actor.Actor, id int64) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.OwnerID != caller.ID && !caller.IsAdmin() {
		return ErrUnauthorizedAccess
	}
	return s.repo.Delete(ctx, id)
}

// HandleDeliveryStatus is wired as the gateway status callback. It runs on a
// worker goroutine, so it carries its own timeout.
func (s *Service) HandleDeliveryStatus(externalID, messageID, status string) {
	ctx, cancel := internal.WithTimeout(context.Background(), 0)
	defer cancel()

	var sentAt *time.Time
	if status == DeliveryStatusSent {
		now := time.Now()
		sentAt = &now
	}

	if err := s.repo.UpdateDeliveryStatus(ctx, externalID, messageID, status, sentAt); err != nil {
		if errors.Is(err, ErrCommunicationNotFound) {
			s.logger.Warn("delivery status for unknown communication", "external_id", externalID)
			return
		}
		s.logger.Error("failed to update delivery status",
			"error", err, "external_id", externalID, "status", status)
		return
	}

	s.logger.Info("delivery status updated",
		"external_id", externalID, "message_id", messageID, "status", status)
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
