package auth_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/rizkypratama/crm-management/internal/actor"
	"github.com/rizkypratama/crm-management/internal/auth"
)

type mockAuthRepository struct {
	passwordHashes map[string]string
	actorIDs       map[string]int64
	actors         map[int64]*actor.Actor
}

func (m *mockAuthRepository) GetPasswordForEmail(email string) (string, int64, error) {
	hash, ok := m.passwordHashes[email]
	if !ok {
		return "", 0, actor.ErrNotFound
	}
	return hash, m.actorIDs[email], nil
}

func (m *mockAuthRepository) GetActorByID(_ context.Context, id int64) (*actor.Actor, error) {
	a, ok := m.actors[id]
	if !ok {
		return nil, actor.ErrNotFound
	}
	return a, nil
}

var _ = Describe("Auth Service", func() {
	var (
		repo     *mockAuthRepository
		tokenGen *auth.JWTTokenGenerator
		service  *auth.Service
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())

		repo = &mockAuthRepository{
			passwordHashes: map[string]string{"sales@mail.com": string(hash)},
			actorIDs:       map[string]int64{"sales@mail.com": 2},
			actors: map[int64]*actor.Actor{
				2: {ID: 2, Email: "sales@mail.com", Role: actor.RoleStandard, IsActive: true},
				3: {ID: 3, Email: "gone@mail.com", Role: actor.RoleStandard, IsActive: false},
			},
		}

		tokenGen = auth.NewJWTTokenGenerator(
			"test-access-secret-0123456789abcdef",
			"test-refresh-secret-0123456789abcde",
			15*time.Minute,
			7*24*time.Hour,
		)
		service = auth.NewService(repo, tokenGen)
	})

	Describe("Authenticate", func() {
		It("returns a token pair for valid credentials", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "sales@mail.com",
				Password: "rahasia123",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())
		})

		It("rejects a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "sales@mail.com",
				Password: "salah",
			})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("rejects an unknown email", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "nobody@mail.com",
				Password: "rahasia123",
			})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})
	})

	Describe("token validation", func() {
		It("round-trips claims through an access token", func() {
			token, err := tokenGen.GenerateAccessToken(2, "sales@mail.com")
			Expect(err).NotTo(HaveOccurred())

			claims, err := service.ValidateAccessToken(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.ActorID).To(Equal(int64(2)))
			Expect(claims.Email).To(Equal("sales@mail.com"))
		})

		It("rejects garbage tokens", func() {
			_, err := service.ValidateAccessToken("not-a-token")
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})
	})

	Describe("RefreshTokens", func() {
		It("issues a fresh pair from a refresh token", func() {
			refreshToken, err := tokenGen.GenerateRefreshToken(2, "sales@mail.com")
			Expect(err).NotTo(HaveOccurred())

			tokens, err := service.RefreshTokens(refreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
		})
	})

	Describe("GetActorByID", func() {
		It("loads an active actor", func() {
			a, err := service.GetActorByID(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Email).To(Equal("sales@mail.com"))
		})

		It("refuses inactive actors", func() {
			_, err := service.GetActorByID(ctx, 3)
			Expect(err).To(MatchError(auth.ErrActorInactive))
		})
	})
})
