package actor_test

import (
	"context"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rizkypratama/crm-management/internal/actor"
)

type mockActorRepository struct {
	actors map[int64]*actor.Actor
}

func (m *mockActorRepository) GetByID(_ context.Context, id int64) (*actor.Actor, error) {
	a, ok := m.actors[id]
	if !ok {
		return nil, actor.ErrNotFound
	}
	return a, nil
}

func (m *mockActorRepository) GetByEmail(_ context.Context, email string) (*actor.Actor, error) {
	for _, a := range m.actors {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, actor.ErrNotFound
}

func (m *mockActorRepository) ListActive(_ context.Context) ([]*actor.Actor, error) {
	out := make([]*actor.Actor, 0)
	for _, a := range m.actors {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockActorRepository) ListAllIDs(_ context.Context) ([]int64, error) {
	out := make([]int64, 0)
	for id := range m.actors {
		out = append(out, id)
	}
	return out, nil
}

var _ = Describe("Actor Service", func() {
	var (
		repo    *mockActorRepository
		service *actor.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		repo = &mockActorRepository{actors: map[int64]*actor.Actor{
			1: {ID: 1, Email: "admin@mail.com", Role: actor.RoleAdmin, IsActive: true},
			2: {ID: 2, Email: "sales@mail.com", Role: actor.RoleStandard, IsActive: true},
			3: {ID: 3, Email: "gone@mail.com", Role: actor.RoleStandard, IsActive: false},
		}}
		service = actor.NewService(repo, lg)
	})

	Describe("ListAvailable", func() {
		It("excludes the caller", func() {
			actors, err := service.ListAvailable(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			for _, a := range actors {
				Expect(a.ID).NotTo(Equal(int64(2)))
			}
		})

		It("excludes inactive users", func() {
			actors, err := service.ListAvailable(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			for _, a := range actors {
				Expect(a.IsActive).To(BeTrue())
			}
		})
	})

	Describe("EffectiveRole", func() {
		It("keeps the admin label regardless of the flag", func() {
			Expect(actor.EffectiveRole(actor.RoleAdmin, true)).To(Equal(actor.RoleAdmin))
			Expect(actor.EffectiveRole(actor.RoleAdmin, false)).To(Equal(actor.RoleAdmin))
		})

		It("elevates a flagged standard actor to the manager label", func() {
			Expect(actor.EffectiveRole(actor.RoleStandard, true)).To(Equal(actor.RoleManager))
		})

		It("keeps the standard label without the flag", func() {
			Expect(actor.EffectiveRole(actor.RoleStandard, false)).To(Equal(actor.RoleStandard))
		})
	})
})
