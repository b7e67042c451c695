package actor

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rizkypratama/crm-management/internal/transport"
	"github.com/rizkypratama/crm-management/pkg/logger"
)

// PermissionReader exposes the blanket-view flag lookup the directory needs
// for the /users/me projection. Satisfied by the access service.
type PermissionReader interface {
	GetCanViewAllData(ctx context.Context, actorID int64) (bool, error)
}

type Handler struct {
	*transport.BaseHandler
	Service     *Service
	Permissions PermissionReader
}

func NewHandler(service *Service, permissions PermissionReader) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Permissions: permissions,
	}
}

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	canViewAll := false
	if h.Permissions != nil {
		flag, err := h.Permissions.GetCanViewAllData(r.Context(), caller.ID)
		if err != nil {
			h.Logger.Warn("GetCurrentUser: failed to read permission flag", "error", err, "actor_id", caller.ID)
		} else {
			canViewAll = flag
		}
	}

	h.WriteJSON(w, http.StatusOK, CurrentUserDTO{
		ID:             caller.ID,
		Email:          caller.Email,
		Name:           caller.Name,
		Role:           caller.Role,
		EffectiveRole:  EffectiveRole(caller.Role, canViewAll),
		CanViewAllData: canViewAll,
	})
}

func (h *Handler) GetAvailableUsers(w http.ResponseWriter, r *http.Request) {
	caller, ok := FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	actors, err := h.Service.ListAvailable(r.Context(), caller.ID)
	if err != nil {
		h.Logger.Error("GetAvailableUsers: service error", "error", err, "caller_id", caller.ID)
		if errors.Is(err, ErrNotFound) {
			h.WriteError(w, http.StatusNotFound, "user not found")
			return
		}
		h.WriteError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	users := make([]AvailableUserDTO, 0, len(actors))
	for _, a := range actors {
		users = append(users, ToAvailableUserDTO(a))
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
	})
}
