package lead_test

import (
	"context"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rizkypratama/crm-management/internal/actor"
	"github.com/rizkypratama/crm-management/internal/lead"
	leadpostgres "github.com/rizkypratama/crm-management/internal/lead/postgres"
)

// Fixed-set resolver: visibility is whatever the test says it is.
type staticResolver struct {
	sets map[int64][]int64
}

func (r *staticResolver) ResolveAccessibleOwners(_ context.Context, a *actor.Actor) []int64 {
	if a == nil {
		return []int64{}
	}
	if set, ok := r.sets[a.ID]; ok {
		return set
	}
	return []int64{a.ID}
}

var _ = Describe("Lead Service Integration", func() {
	var (
		db       *gorm.DB
		repo     lead.Repository
		resolver *staticResolver
		service  *lead.Service
		ctx      context.Context

		admin, sales, otherSales *actor.Actor
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&lead.Lead{})).To(Succeed())

		admin = &actor.Actor{ID: 1, Role: actor.RoleAdmin}
		sales = &actor.Actor{ID: 2, Role: actor.RoleStandard}
		otherSales = &actor.Actor{ID: 3, Role: actor.RoleStandard}

		repo = leadpostgres.NewLeadRepository(db)
		resolver = &staticResolver{sets: map[int64][]int64{}}
		service = lead.NewService(repo, resolver, lg)
	})

	createLead := func(owner *actor.Actor, name string) *lead.Lead {
		l, err := service.CreateLead(ctx, owner, lead.CreateLeadDTO{
			Name:  name,
			Email: name + "@mail.com",
		})
		Expect(err).NotTo(HaveOccurred())
		return l
	}

	Describe("CreateLead", func() {
		It("assigns ownership to the caller and defaults the status", func() {
			l := createLead(sales, "PT Sinar Jaya")
			Expect(l.OwnerID).To(Equal(sales.ID))
			Expect(l.Status).To(Equal(lead.StatusNew))
		})

		It("rejects a lead without contact details", func() {
			_, err := service.CreateLead(ctx, sales, lead.CreateLeadDTO{Name: "No Contact"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ListLeads", func() {
		BeforeEach(func() {
			createLead(sales, "mine")
			createLead(otherSales, "theirs")
		})

		It("shows only own leads without grants", func() {
			leads, err := service.ListLeads(ctx, sales, 50, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(leads).To(HaveLen(1))
			Expect(leads[0].OwnerID).To(Equal(sales.ID))
		})

		It("shows granted owners' leads", func() {
			resolver.sets[sales.ID] = []int64{sales.ID, otherSales.ID}
			leads, err := service.ListLeads(ctx, sales, 50, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(leads).To(HaveLen(2))
		})

		It("shows everything to an admin", func() {
			leads, err := service.ListLeads(ctx, admin, 50, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(leads).To(HaveLen(2))
		})

		It("returns an empty slice when the visibility set is empty", func() {
			resolver.sets[sales.ID] = []int64{}
			leads, err := service.ListLeads(ctx, sales, 50, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(leads).To(BeEmpty())
		})
	})

	Describe("GetLead", func() {
		It("denies reading outside the visibility set", func() {
			theirs := createLead(otherSales, "theirs")
			_, err := service.GetLead(ctx, sales, theirs.ID)
			Expect(err).To(MatchError(lead.ErrUnauthorizedAccess))
		})

		It("allows reading a granted owner's lead", func() {
			theirs := createLead(otherSales, "theirs")
			resolver.sets[sales.ID] = []int64{sales.ID, otherSales.ID}

			got, err := service.GetLead(ctx, sales, theirs.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(theirs.ID))
		})

		It("returns not found for a missing lead", func() {
			_, err := service.GetLead(ctx, sales, 999)
			Expect(err).To(MatchError(lead.ErrLeadNotFound))
		})
	})

	Describe("UpdateLead", func() {
		It("grant visibility is read-only: grantees cannot write", func() {
			theirs := createLead(otherSales, "theirs")
			resolver.sets[sales.ID] = []int64{sales.ID, otherSales.ID}

			name := "renamed"
			_, err := service.UpdateLead(ctx, sales, theirs.ID, lead.UpdateLeadDTO{Name: &name})
			Expect(err).To(MatchError(lead.ErrUnauthorizedAccess))
		})

		It("the owner can update", func() {
			mine := createLead(sales, "mine")
			status := lead.StatusQualified
			updated, err := service.UpdateLead(ctx, sales, mine.ID, lead.UpdateLeadDTO{Status: &status})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(lead.StatusQualified))
		})

		It("an admin can update anyone's lead", func() {
			theirs := createLead(otherSales, "theirs")
			status := lead.StatusLost
			_, err := service.UpdateLead(ctx, admin, theirs.ID, lead.UpdateLeadDTO{Status: &status})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects an invalid status", func() {
			mine := createLead(sales, "mine")
			status := "bogus"
			_, err := service.UpdateLead(ctx, sales, mine.ID, lead.UpdateLeadDTO{Status: &status})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("DeleteLead", func() {
		It("only the owner or an admin may delete", func() {
			theirs := createLead(otherSales, "theirs")
			resolver.sets[sales.ID] = []int64{sales.ID, otherSales.ID}

			Expect(service.DeleteLead(ctx, sales, theirs.ID)).To(MatchError(lead.ErrUnauthorizedAccess))
			Expect(service.DeleteLead(ctx, admin, theirs.ID)).To(Succeed())
		})
	})
})
