package opportunity_test

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
	"github.com/rizkypratama/crm-management/internal/opportunity"
	opportunitypostgres "github.com/rizkypratama/crm-management/internal/opportunity/postgres"
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

var _ = Describe("Opportunity Service Integration", func() {
	var (
		db       *gorm.DB
		repo     opportunity.Repository
		resolver *staticResolver
		service  *opportunity.Service
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
		Expect(db.AutoMigrate(&opportunity.Opportunity{})).To(Succeed())

		admin = &actor.Actor{ID: 1, Role: actor.RoleAdmin}
		sales = &actor.Actor{ID: 2, Role: actor.RoleStandard}
		otherSales = &actor.Actor{ID: 3, Role: actor.RoleStandard}

		repo = opportunitypostgres.NewOpportunityRepository(db)
		resolver = &staticResolver{sets: map[int64][]int64{}}
		service = opportunity.NewService(repo, resolver, lg)
	})

	createOpportunity := func(owner *actor.Actor, title string) *opportunity.Opportunity {
		o, err := service.CreateOpportunity(ctx, owner, opportunity.CreateOpportunityDTO{
			Title:     title,
			AmountIDR: 150_000_000,
		})
		Expect(err).NotTo(HaveOccurred())
		return o
	}

	Describe("CreateOpportunity", func() {
		It("assigns ownership to the caller and defaults the stage", func() {
			o := createOpportunity(sales, "annual license renewal")
			Expect(o.OwnerID).To(Equal(sales.ID))
			Expect(o.Stage).To(Equal(opportunity.StageProspecting))
		})

		It("rejects an unknown stage", func() {
			_, err := service.CreateOpportunity(ctx, sales, opportunity.CreateOpportunityDTO{
				Title: "bad stage",
				Stage: "daydreaming",
			})
			Expect(err).To(HaveOccurred())
		})

		It("rejects a negative amount", func() {
			_, err := service.CreateOpportunity(ctx, sales, opportunity.CreateOpportunityDTO{
				Title:     "negative",
				AmountIDR: -1,
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ListOpportunities", func() {
		BeforeEach(func() {
			createOpportunity(sales, "mine")
			createOpportunity(otherSales, "theirs")
		})

		It("shows only own opportunities without grants", func() {
			opportunities, err := service.ListOpportunities(ctx, sales, 50, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(opportunities).To(HaveLen(1))
			Expect(opportunities[0].OwnerID).To(Equal(sales.ID))
		})

		It("shows granted owners' opportunities", func() {
			resolver.sets[sales.ID] = []int64{sales.ID, otherSales.ID}
			opportunities, err := service.ListOpportunities(ctx, sales, 50, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(opportunities).To(HaveLen(2))
		})

		It("shows everything to an admin", func() {
			opportunities, err := service.ListOpportunities(ctx, admin, 50, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(opportunities).To(HaveLen(2))
		})

		It("returns an empty slice when the visibility set is empty", func() {
			resolver.sets[sales.ID] = []int64{}
			opportunities, err := service.ListOpportunities(ctx, sales, 50, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(opportunities).To(BeEmpty())
		})
	})

	Describe("GetOpportunity", func() {
		It("denies reading outside the visibility set", func() {
			theirs := createOpportunity(otherSales, "theirs")
			_, err := service.GetOpportunity(ctx, sales, theirs.ID)
			Expect(err).To(MatchError(opportunity.ErrUnauthorizedAccess))
		})

		It("allows reading a granted owner's opportunity", func() {
			theirs := createOpportunity(otherSales, "theirs")
			resolver.sets[sales.ID] = []int64{sales.ID, otherSales.ID}

			got, err := service.GetOpportunity(ctx, sales, theirs.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(theirs.ID))
		})

		It("returns not found for a missing opportunity", func() {
			_, err := service.GetOpportunity(ctx, sales, 999)
			Expect(err).To(MatchError(opportunity.ErrOpportunityNotFound))
		})
	})

	Describe("UpdateOpportunity", func() {
		It("grant visibility is read-only: grantees cannot write", func() {
			theirs := createOpportunity(otherSales, "theirs")
			resolver.sets[sales.ID] = []int64{sales.ID, otherSales.ID}

			stage := opportunity.StageClosedWon
			_, err := service.UpdateOpportunity(ctx, sales, theirs.ID, opportunity.UpdateOpportunityDTO{Stage: &stage})
			Expect(err).To(MatchError(opportunity.ErrUnauthorizedAccess))
		})

		It("the owner can move the stage", func() {
			mine := createOpportunity(sales, "mine")
			stage := opportunity.StageNegotiation
			updated, err := service.UpdateOpportunity(ctx, sales, mine.ID, opportunity.UpdateOpportunityDTO{Stage: &stage})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Stage).To(Equal(opportunity.StageNegotiation))
		})

		It("an admin can update anyone's opportunity", func() {
			theirs := createOpportunity(otherSales, "theirs")
			stage := opportunity.StageClosedLost
			_, err := service.UpdateOpportunity(ctx, admin, theirs.ID, opportunity.UpdateOpportunityDTO{Stage: &stage})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects an invalid stage", func() {
			mine := createOpportunity(sales, "mine")
			stage := "bogus"
			_, err := service.UpdateOpportunity(ctx, sales, mine.ID, opportunity.UpdateOpportunityDTO{Stage: &stage})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("DeleteOpportunity", func() {
		It("only the owner or an admin may delete", func() {
			theirs := createOpportunity(otherSales, "theirs")
			resolver.sets[sales.ID] = []int64{sales.ID, otherSales.ID}

			Expect(service.DeleteOpportunity(ctx, sales, theirs.ID)).To(MatchError(opportunity.ErrUnauthorizedAccess))
			Expect(service.DeleteOpportunity(ctx, admin, theirs.ID)).To(Succeed())
		})
	})
})
