package auth

import (
	"log/slog"
	"net/http"

	"github.com/rizkypratama/crm-management/internal/actor"
)

// RoleAuthorization guards routes that require a specific role. Record-level
// visibility is not decided here; that is the access resolver's job.
type RoleAuthorization struct {
	logger *slog.Logger
}

func NewRoleAuthorization(logger *slog.Logger) *RoleAuthorization {
	return &RoleAuthorization{logger: logger}
}

func (ra *RoleAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, ok := actor.FromContext(r.Context())
			if !ok || a == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !a.IsAdmin() {
				ra.logger.WarnContext(r.Context(), "access denied: admin role required",
					"actor_id", a.ID,
					"role", a.Role)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
