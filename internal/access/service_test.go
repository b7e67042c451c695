package access_test

import (
	"context"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rizkypratama/crm-management/internal/access"
	"github.com/rizkypratama/crm-management/internal/actor"
	"github.com/rizkypratama/crm-management/internal/core/events"
)

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *recordingBus) eventTypes() []string {
	out := make([]string, 0, len(b.published))
	for _, e := range b.published {
		out = append(out, e.EventType())
	}
	return out
}

var _ = Describe("Access Service", func() {
	var (
		repo      *mockAccessRepository
		directory *mockDirectory
		bus       *recordingBus
		service   *access.Service
		ctx       context.Context

		admin, sales, otherSales *actor.Actor
	)

	BeforeEach(func() {
		ctx = context.Background()
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		admin = &actor.Actor{ID: 1, Role: actor.RoleAdmin}
		sales = &actor.Actor{ID: 2, Role: actor.RoleStandard}
		otherSales = &actor.Actor{ID: 3, Role: actor.RoleStandard}

		repo = newMockAccessRepository()
		directory = newMockDirectory(admin, sales, otherSales)
		bus = &recordingBus{}
		service = access.NewService(repo, directory, bus, lg)
	})

	Describe("SendRequest", func() {
		It("creates a pending request", func() {
			req, err := service.SendRequest(ctx, sales, otherSales.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(access.StatusPending))
			Expect(req.RequesterID).To(Equal(sales.ID))
			Expect(req.ReceiverID).To(Equal(otherSales.ID))
			Expect(bus.eventTypes()).To(ContainElement(events.AccessRequestSent))
		})

		It("rejects self-referencing requests", func() {
			_, err := service.SendRequest(ctx, sales, sales.ID)
			Expect(err).To(MatchError(access.ErrSelfReference))
		})

		It("rejects requests to unknown receivers", func() {
			_, err := service.SendRequest(ctx, sales, 999)
			Expect(err).To(MatchError(access.ErrActorNotFound))
		})

		It("is idempotent while a pending request exists", func() {
			first, err := service.SendRequest(ctx, sales, otherSales.ID)
			Expect(err).NotTo(HaveOccurred())

			second, err := service.SendRequest(ctx, sales, otherSales.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.ID).To(Equal(first.ID))
			Expect(len(repo.requests)).To(Equal(1))
		})

		It("returns the winning row when a concurrent send takes the unique index", func() {
			repo.conflictOnCreate = true

			req, err := service.SendRequest(ctx, sales, otherSales.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(access.StatusPending))
			Expect(req.RequesterID).To(Equal(sales.ID))
			Expect(req.ReceiverID).To(Equal(otherSales.ID))
			Expect(len(repo.requests)).To(Equal(1))
		})

		It("allows a new request after the previous one was rejected", func() {
			first, err := service.SendRequest(ctx, sales, otherSales.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.RespondToRequest(ctx, otherSales, first.ID, access.StatusRejected)
			Expect(err).NotTo(HaveOccurred())

			second, err := service.SendRequest(ctx, sales, otherSales.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.ID).NotTo(Equal(first.ID))
		})
	})

	Describe("RespondToRequest", func() {
		var req *access.AccessRequest

		BeforeEach(func() {
			var err error
			req, err = service.SendRequest(ctx, sales, otherSales.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("accepting creates the grant with the receiver as grantor", func() {
			updated, err := service.RespondToRequest(ctx, otherSales, req.ID, access.StatusAccepted)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(access.StatusAccepted))

			_, ok := repo.grants[[2]int64{otherSales.ID, sales.ID}]
			Expect(ok).To(BeTrue())
			Expect(bus.eventTypes()).To(ContainElement(events.AccessRequestAccepted))
		})

		It("rejecting leaves no grant", func() {
			updated, err := service.RespondToRequest(ctx, otherSales, req.ID, access.StatusRejected)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(access.StatusRejected))
			Expect(repo.grants).To(BeEmpty())
		})

		It("only the receiver may respond", func() {
			_, err := service.RespondToRequest(ctx, sales, req.ID, access.StatusAccepted)
			Expect(err).To(MatchError(access.ErrNotParticipant))
		})

		It("refuses to respond twice", func() {
			_, err := service.RespondToRequest(ctx, otherSales, req.ID, access.StatusAccepted)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.RespondToRequest(ctx, otherSales, req.ID, access.StatusRejected)
			Expect(err).To(MatchError(access.ErrInvalidStateTransition))
		})

		It("refuses unknown status values", func() {
			_, err := service.RespondToRequest(ctx, otherSales, req.ID, "revoked")
			Expect(err).To(MatchError(access.ErrInvalidStateTransition))
		})
	})

	Describe("RevokeAccess", func() {
		var req *access.AccessRequest

		BeforeEach(func() {
			var err error
			req, err = service.SendRequest(ctx, sales, otherSales.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.RespondToRequest(ctx, otherSales, req.ID, access.StatusAccepted)
			Expect(err).NotTo(HaveOccurred())
		})

		It("removes the grant and marks the request revoked", func() {
			Expect(service.RevokeAccess(ctx, otherSales, req.ID)).To(Succeed())
			Expect(repo.grants).To(BeEmpty())
			Expect(repo.requests[req.ID].Status).To(Equal(access.StatusRevoked))
			Expect(bus.eventTypes()).To(ContainElement(events.AccessRevoked))
		})

		It("either participant may revoke", func() {
			Expect(service.RevokeAccess(ctx, sales, req.ID)).To(Succeed())
		})

		It("an admin may revoke any grant", func() {
			Expect(service.RevokeAccess(ctx, admin, req.ID)).To(Succeed())
		})

		It("outsiders may not revoke", func() {
			outsider := &actor.Actor{ID: 42, Role: actor.RoleStandard}
			Expect(service.RevokeAccess(ctx, outsider, req.ID)).To(MatchError(access.ErrNotParticipant))
		})

		It("revoking twice is a no-op", func() {
			Expect(service.RevokeAccess(ctx, otherSales, req.ID)).To(Succeed())
			Expect(service.RevokeAccess(ctx, otherSales, req.ID)).To(Succeed())
		})

		It("refuses to revoke a request that was never accepted", func() {
			pending, err := service.SendRequest(ctx, otherSales, sales.ID)
			Expect(err).NotTo(HaveOccurred())

			err = service.RevokeAccess(ctx, sales, pending.ID)
			Expect(err).To(MatchError(access.ErrInvalidStateTransition))
		})

		It("cleans up a permission flag the grantor handed to the grantee", func() {
			Expect(repo.UpsertPermissionFlag(ctx, sales.ID, true, otherSales.ID)).To(Succeed())

			Expect(service.RevokeAccess(ctx, otherSales, req.ID)).To(Succeed())
			flag, err := repo.GetPermissionFlag(ctx, sales.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(flag).To(BeNil())
		})
	})

	Describe("RevokeAccessByPair", func() {
		BeforeEach(func() {
			repo.addGrant(otherSales.ID, sales.ID, actor.RoleStandard)
		})

		It("deletes the grant", func() {
			Expect(service.RevokeAccessByPair(ctx, otherSales, otherSales.ID, sales.ID)).To(Succeed())
			Expect(repo.grants).To(BeEmpty())
		})

		It("is idempotent when no grant exists", func() {
			Expect(service.RevokeAccessByPair(ctx, otherSales, otherSales.ID, sales.ID)).To(Succeed())
			Expect(service.RevokeAccessByPair(ctx, otherSales, otherSales.ID, sales.ID)).To(Succeed())
		})

		It("outsiders may not revoke by pair", func() {
			outsider := &actor.Actor{ID: 42, Role: actor.RoleStandard}
			err := service.RevokeAccessByPair(ctx, outsider, otherSales.ID, sales.ID)
			Expect(err).To(MatchError(access.ErrNotParticipant))
		})
	})

	Describe("SetCanViewAllData", func() {
		It("requires the admin role", func() {
			_, err := service.SetCanViewAllData(ctx, sales, otherSales.ID, true)
			Expect(err).To(MatchError(access.ErrAdminRequired))
		})

		It("requires an existing target", func() {
			_, err := service.SetCanViewAllData(ctx, admin, 999, true)
			Expect(err).To(MatchError(access.ErrActorNotFound))
		})

		It("enables the flag and reports the elevated role label", func() {
			newRole, err := service.SetCanViewAllData(ctx, admin, sales.ID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(newRole).To(Equal(actor.RoleManager))

			enabled, err := service.GetCanViewAllData(ctx, sales.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(enabled).To(BeTrue())
			Expect(bus.eventTypes()).To(ContainElement(events.PermissionUpdated))
		})

		It("disables the flag and reports the stored role", func() {
			_, err := service.SetCanViewAllData(ctx, admin, sales.ID, true)
			Expect(err).NotTo(HaveOccurred())

			newRole, err := service.SetCanViewAllData(ctx, admin, sales.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(newRole).To(Equal(actor.RoleStandard))

			enabled, err := service.GetCanViewAllData(ctx, sales.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(enabled).To(BeFalse())
		})

		It("never mutates the stored role column", func() {
			_, err := service.SetCanViewAllData(ctx, admin, sales.ID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(sales.Role).To(Equal(actor.RoleStandard))
		})
	})

	Describe("ListGrantors", func() {
		It("labels flagged grantors with the elevated role", func() {
			repo.addGrant(otherSales.ID, sales.ID, actor.RoleStandard)
			Expect(repo.UpsertPermissionFlag(ctx, otherSales.ID, true, admin.ID)).To(Succeed())

			grantors, err := service.ListGrantors(ctx, sales)
			Expect(err).NotTo(HaveOccurred())
			Expect(grantors).To(HaveLen(1))
			Expect(grantors[0].ActorID).To(Equal(otherSales.ID))
			Expect(grantors[0].Role).To(Equal(actor.RoleManager))
		})
	})
})
