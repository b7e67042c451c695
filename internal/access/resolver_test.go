package access_test

import (
	"context"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rizkypratama/crm-management/internal/access"
	"github.com/rizkypratama/crm-management/internal/actor"
)

var _ = Describe("Resolver", func() {
	var (
		repo      *mockAccessRepository
		directory *mockDirectory
		resolver  *access.Resolver
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
		resolver = access.NewResolver(repo, directory, lg)
	})

	Context("without identity", func() {
		It("returns an empty set for a nil actor", func() {
			Expect(resolver.ResolveAccessibleOwners(ctx, nil)).To(BeEmpty())
		})

		It("returns an empty set for a zero-valued actor", func() {
			Expect(resolver.ResolveAccessibleOwners(ctx, &actor.Actor{})).To(BeEmpty())
		})
	})

	Context("for a standard actor with no grants", func() {
		It("resolves to the self-only set", func() {
			Expect(resolver.ResolveAccessibleOwners(ctx, sales)).To(Equal([]int64{2}))
		})
	})

	Context("for an admin", func() {
		It("resolves to every actor id", func() {
			Expect(resolver.ResolveAccessibleOwners(ctx, admin)).To(Equal([]int64{1, 2, 3}))
		})

		It("falls back to self-only when the directory is unavailable", func() {
			directory.listErr = errStoreDown
			Expect(resolver.ResolveAccessibleOwners(ctx, admin)).To(Equal([]int64{1}))
		})
	})

	Context("with grants", func() {
		It("adds an admin grantor's id", func() {
			repo.addGrant(admin.ID, sales.ID, actor.RoleAdmin)
			Expect(resolver.ResolveAccessibleOwners(ctx, sales)).To(Equal([]int64{1, 2}))
		})

		It("ignores grants from standard actors", func() {
			repo.addGrant(otherSales.ID, sales.ID, actor.RoleStandard)
			Expect(resolver.ResolveAccessibleOwners(ctx, sales)).To(Equal([]int64{2}))
		})

		It("degrades to self-only when the grant store is unavailable", func() {
			repo.addGrant(admin.ID, sales.ID, actor.RoleAdmin)
			repo.grantorRolesErr = errStoreDown
			Expect(resolver.ResolveAccessibleOwners(ctx, sales)).To(Equal([]int64{2}))
		})
	})

	Context("with the blanket permission flag", func() {
		BeforeEach(func() {
			Expect(repo.UpsertPermissionFlag(ctx, sales.ID, true, admin.ID)).To(Succeed())
		})

		It("adds every actor id", func() {
			Expect(resolver.ResolveAccessibleOwners(ctx, sales)).To(Equal([]int64{1, 2, 3}))
		})

		It("skips the flag branch when the flag store is unavailable", func() {
			repo.flagErr = errStoreDown
			Expect(resolver.ResolveAccessibleOwners(ctx, sales)).To(Equal([]int64{2}))
		})

		It("skips the flag branch when the directory is unavailable", func() {
			directory.listErr = errStoreDown
			Expect(resolver.ResolveAccessibleOwners(ctx, sales)).To(Equal([]int64{2}))
		})

		It("ignores a disabled flag", func() {
			Expect(repo.UpsertPermissionFlag(ctx, sales.ID, false, admin.ID)).To(Succeed())
			Expect(resolver.ResolveAccessibleOwners(ctx, sales)).To(Equal([]int64{2}))
		})
	})

	Context("combining rules", func() {
		It("unions grants and the flag without duplicates", func() {
			repo.addGrant(admin.ID, sales.ID, actor.RoleAdmin)
			Expect(repo.UpsertPermissionFlag(ctx, sales.ID, true, admin.ID)).To(Succeed())

			set := resolver.ResolveAccessibleOwners(ctx, sales)
			Expect(set).To(Equal([]int64{1, 2, 3}))
		})

		It("always keeps the caller in the set", func() {
			repo.addGrant(admin.ID, sales.ID, actor.RoleAdmin)
			set := resolver.ResolveAccessibleOwners(ctx, sales)
			Expect(set).To(ContainElement(sales.ID))
		})
	})
})
