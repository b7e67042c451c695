package access

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rizkypratama/crm-management/internal/actor"
	"github.com/rizkypratama/crm-management/internal/core/events"
)

// EventPublisher decouples the workflow from the event bus implementation.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service is the access request workflow: the only writer of the grant store.
type Service struct {
	repo      Repository
	directory Directory
	bus       EventPublisher
	logger    *slog.Logger
}

func NewService(repo Repository, directory Directory, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		bus:       bus,
		logger:    logger,
	}
}

// SendRequest creates a pending access request from the requester to the
// receiver. Creating a duplicate pending request for the same pair is
// idempotent: the existing row is returned.
func (s *Service) SendRequest(ctx context.Context, requester *actor.Actor, receiverID int64) (*AccessRequest, error) {
	if requester.ID == receiverID {
		s.logger.Warn("self-referencing access request rejected", "actor_id", requester.ID)
		return nil, ErrSelfReference
	}

	if _, err := s.directory.GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, actor.ErrNotFound) {
			return nil, ErrActorNotFound
		}
		s.logger.Error("failed to look up receiver", "error", err, "receiver_id", receiverID)
		return nil, err
	}

	existing, err := s.repo.GetPendingRequestByPair(ctx, requester.ID, receiverID)
	if err != nil && !errors.Is(err, ErrRequestNotFound) {
		s.logger.Error("failed to check for pending request", "error", err,
			"requester_id", requester.ID, "receiver_id", receiverID)
		return nil, err
	}
	if existing != nil {
		s.logger.Info("pending request already exists, returning it",
			"request_id", existing.ID,
			"requester_id", requester.ID,
			"receiver_id", receiverID)
		return existing, nil
	}

	req := &AccessRequest{
		RequesterID: requester.ID,
		ReceiverID:  receiverID,
		Status:      StatusPending,
	}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		// the partial unique index on pending pairs may have rejected the
		// insert when a concurrent request won the race; the winner's row is
		// the idempotent result
		if winner, raceErr := s.repo.GetPendingRequestByPair(ctx, requester.ID, receiverID); raceErr == nil && winner != nil {
			s.logger.Info("pending request created concurrently, returning it",
				"request_id", winner.ID,
				"requester_id", requester.ID,
				"receiver_id", receiverID)
			return winner, nil
		}
		s.logger.Error("failed to create access request", "error", err,
			"requester_id", requester.ID, "receiver_id", receiverID)
		return nil, err
	}

	s.publish(ctx, events.NewAccessRequestEvent(events.AccessRequestSent, req.ID, req.RequesterID, req.ReceiverID))

	s.logger.Info("access request created",
		"request_id", req.ID,
		"requester_id", requester.ID,
		"receiver_id", receiverID)

	return req, nil
}

// RespondToRequest applies the receiver's decision to a pending request.
// Accepting creates the grant (grantor = receiver, grantee = requester) in
// the same transaction. A request that already left the pending state yields
// ErrInvalidStateTransition so concurrent responses resolve to one winner.
func (s *Service) RespondToRequest(ctx context.Context, receiver *actor.Actor, requestID int64, status string) (*AccessRequest, error) {
	req, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if req.ReceiverID != receiver.ID {
		s.logger.Warn("respond denied: caller is not the receiver",
			"request_id", requestID,
			"caller_id", receiver.ID,
			"receiver_id", req.ReceiverID)
		return nil, ErrNotParticipant
	}

	if !req.IsPending() {
		s.logger.Warn("respond denied: request is not pending",
			"request_id", requestID,
			"current_status", req.Status)
		return nil, ErrInvalidStateTransition
	}

	switch status {
	case StatusAccepted:
		if err := s.repo.AcceptRequest(ctx, req); err != nil {
			if !errors.Is(err, ErrInvalidStateTransition) {
				s.logger.Error("failed to accept request", "error", err, "request_id", requestID)
			}
			return nil, err
		}
		req.Status = StatusAccepted
		s.publish(ctx, events.NewAccessRequestEvent(events.AccessRequestAccepted, req.ID, req.RequesterID, req.ReceiverID))

		s.logger.Info("access request accepted, grant created",
			"request_id", requestID,
			"grantor_id", req.ReceiverID,
			"grantee_id", req.RequesterID)

	case StatusRejected:
		if err := s.repo.RejectRequest(ctx, req); err != nil {
			if !errors.Is(err, ErrInvalidStateTransition) {
				s.logger.Error("failed to reject request", "error", err, "request_id", requestID)
			}
			return nil, err
		}
		req.Status = StatusRejected
		s.publish(ctx, events.NewAccessRequestEvent(events.AccessRequestRejected, req.ID, req.RequesterID, req.ReceiverID))

		s.logger.Info("access request rejected", "request_id", requestID)

	default:
		return nil, ErrInvalidStateTransition
	}

	return req, nil
}

// RevokeAccess revokes the grant behind an accepted request. Revoking an
// already-revoked request is a no-op success so retries never error.
func (s *Service) RevokeAccess(ctx context.Context, caller *actor.Actor, requestID int64) error {
	req, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return err
	}

	if caller.ID != req.RequesterID && caller.ID != req.ReceiverID && !caller.IsAdmin() {
		s.logger.Warn("revoke denied: caller is not a participant",
			"request_id", requestID, "caller_id", caller.ID)
		return ErrNotParticipant
	}

	if req.Status == StatusRevoked {
		s.logger.Info("request already revoked, nothing to do", "request_id", requestID)
		return nil
	}

	if !req.CanBeRevoked() {
		s.logger.Warn("revoke denied: request was never accepted",
			"request_id", requestID,
			"current_status", req.Status)
		return ErrInvalidStateTransition
	}

	if err := s.repo.RevokeRequest(ctx, req); err != nil {
		s.logger.Error("failed to revoke request", "error", err, "request_id", requestID)
		return err
	}

	s.cleanupPair(ctx, req.ReceiverID, req.RequesterID)
	s.publish(ctx, events.NewAccessRevokedEvent(req.ReceiverID, req.RequesterID))

	s.logger.Info("access revoked",
		"request_id", requestID,
		"grantor_id", req.ReceiverID,
		"grantee_id", req.RequesterID)

	return nil
}

// RevokeAccessByPair deletes a grant identified only by its (grantor,
// grantee) pair. This is the recovery path for grants without a traceable
// request. Idempotent: revoking an absent grant succeeds.
func (s *Service) RevokeAccessByPair(ctx context.Context, caller *actor.Actor, grantorID, granteeID int64) error {
	if caller.ID != grantorID && caller.ID != granteeID && !caller.IsAdmin() {
		s.logger.Warn("pair revoke denied: caller is not a participant",
			"caller_id", caller.ID, "grantor_id", grantorID, "grantee_id", granteeID)
		return ErrNotParticipant
	}

	deleted, err := s.repo.DeleteGrantByPair(ctx, grantorID, granteeID)
	if err != nil {
		s.logger.Error("failed to delete grant", "error", err,
			"grantor_id", grantorID, "grantee_id", granteeID)
		return err
	}
	if !deleted {
		s.logger.Info("no grant found for pair, revoke is a no-op",
			"grantor_id", grantorID, "grantee_id", granteeID)
	}

	s.cleanupPair(ctx, grantorID, granteeID)
	s.publish(ctx, events.NewAccessRevokedEvent(grantorID, granteeID))

	s.logger.Info("access revoked by pair",
		"grantor_id", grantorID,
		"grantee_id", granteeID)

	return nil
}

// cleanupPair removes dependent rows left behind by a revoke: stale pending
// requests between the pair, accepted requests that lost their grant, and
// permission flags the grantor handed to the grantee. Best effort; failures
// are surfaced as warnings and never mask the primary deletion.
func (s *Service) cleanupPair(ctx context.Context, grantorID, granteeID int64) {
	if n, err := s.repo.DeleteStalePendingRequests(ctx, granteeID, grantorID); err != nil {
		s.logger.Warn("cleanup: failed to delete stale pending requests",
			"error", err, "grantor_id", grantorID, "grantee_id", granteeID)
	} else if n > 0 {
		s.logger.Info("cleanup: deleted stale pending requests", "count", n)
	}

	if n, err := s.repo.MarkAcceptedRequestsRevoked(ctx, granteeID, grantorID); err != nil {
		s.logger.Warn("cleanup: failed to mark accepted requests revoked",
			"error", err, "grantor_id", grantorID, "grantee_id", granteeID)
	} else if n > 0 {
		s.logger.Info("cleanup: marked accepted requests revoked", "count", n)
	}

	if n, err := s.repo.DeletePairPermissionFlags(ctx, grantorID, granteeID); err != nil {
		s.logger.Warn("cleanup: failed to delete pair permission flags",
			"error", err, "grantor_id", grantorID, "grantee_id", granteeID)
	} else if n > 0 {
		s.logger.Info("cleanup: deleted pair permission flags", "count", n)
	}
}

func (s *Service) ListPendingForReceiver(ctx context.Context, receiver *actor.Actor) ([]*AccessRequest, error) {
	requests, err := s.repo.ListPendingForReceiver(ctx, receiver.ID)
	if err != nil {
		s.logger.Error("failed to list pending requests", "error", err, "receiver_id", receiver.ID)
		return nil, err
	}
	return requests, nil
}

func (s *Service) ListHistory(ctx context.Context, a *actor.Actor) ([]*AccessRequest, error) {
	requests, err := s.repo.ListHistoryForActor(ctx, a.ID)
	if err != nil {
		s.logger.Error("failed to list access history", "error", err, "actor_id", a.ID)
		return nil, err
	}
	return requests, nil
}

// ListGrantors returns the actors who granted the caller access, with their
// effective role labels.
func (s *Service) ListGrantors(ctx context.Context, a *actor.Actor) ([]ManagedUserDTO, error) {
	grantors, err := s.repo.GrantorsForGrantee(ctx, a.ID)
	if err != nil {
		s.logger.Error("failed to list grantors", "error", err, "actor_id", a.ID)
		return nil, err
	}

	out := make([]ManagedUserDTO, 0, len(grantors))
	for _, g := range grantors {
		out = append(out, ManagedUserDTO{
			ActorID:        g.ActorID,
			Email:          g.Email,
			Name:           g.Name,
			Role:           actor.EffectiveRole(g.Role, g.CanViewAllData),
			CanViewAllData: g.CanViewAllData,
			GrantedAt:      g.GrantedAt,
		})
	}
	return out, nil
}

// SetCanViewAllData toggles the blanket-view flag for the target actor and
// returns the derived role label. The stored role column is never mutated;
// the elevated label is display-only.
func (s *Service) SetCanViewAllData(ctx context.Context, caller *actor.Actor, targetID int64, enabled bool) (string, error) {
	if !caller.IsAdmin() {
		s.logger.Warn("permission toggle denied: admin role required",
			"caller_id", caller.ID, "target_id", targetID)
		return "", ErrAdminRequired
	}

	target, err := s.directory.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, actor.ErrNotFound) {
			return "", ErrActorNotFound
		}
		s.logger.Error("failed to look up target actor", "error", err, "target_id", targetID)
		return "", err
	}

	if err := s.repo.UpsertPermissionFlag(ctx, targetID, enabled, caller.ID); err != nil {
		s.logger.Error("failed to persist permission flag", "error", err, "target_id", targetID)
		return "", err
	}

	newRole := actor.EffectiveRole(target.Role, enabled)
	s.publish(ctx, events.NewPermissionUpdatedEvent(targetID, enabled, newRole))

	s.logger.Info("permission flag updated",
		"caller_id", caller.ID,
		"target_id", targetID,
		"can_view_all_data", enabled,
		"new_role", newRole)

	return newRole, nil
}

// GetCanViewAllData is a read-only flag lookup for directory projections.
func (s *Service) GetCanViewAllData(ctx context.Context, actorID int64) (bool, error) {
	flag, err := s.repo.GetPermissionFlag(ctx, actorID)
	if err != nil {
		return false, err
	}
	if flag == nil {
		return false, nil
	}
	return flag.CanViewAllData, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "error", err, "event_type", event.EventType())
	}
}
