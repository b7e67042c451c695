package access

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/rizkypratama/crm-management/internal/actor"
	"github.com/rizkypratama/crm-management/internal/transport"
	"github.com/rizkypratama/crm-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(service *Service) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) SendRequest(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto SendRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SendRequest: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := h.Service.SendRequest(r.Context(), caller, dto.ReceiverID)
	if err != nil {
		h.Logger.Error("SendRequest: service error", "error", err, "caller_id", caller.ID)
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, req)
}

func (h *Handler) GetPendingRequests(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	requests, err := h.Service.ListPendingForReceiver(r.Context(), caller)
	if err != nil {
		h.Logger.Error("GetPendingRequests: service error", "error", err, "caller_id", caller.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to list pending requests")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
	})
}

func (h *Handler) UpdateRequestStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	requestIDStr := chi.URLParam(r, "id")
	requestID, err := strconv.ParseInt(requestIDStr, 10, 64)
	if err != nil {
		h.Logger.Error("UpdateRequestStatus: invalid request ID", "id", requestIDStr)
		h.WriteError(w, http.StatusBadRequest, "invalid request ID")
		return
	}

	var dto RespondDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := h.Service.RespondToRequest(r.Context(), caller, requestID, dto.Status)
	if err != nil {
		h.Logger.Error("UpdateRequestStatus: service error", "error", err,
			"request_id", requestID, "caller_id", caller.ID)
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) GetAccessHistory(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	requests, err := h.Service.ListHistory(r.Context(), caller)
	if err != nil {
		h.Logger.Error("GetAccessHistory: service error", "error", err, "caller_id", caller.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to list access history")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
	})
}

func (h *Handler) GetManagedUsers(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	grantors, err := h.Service.ListGrantors(r.Context(), caller)
	if err != nil {
		h.Logger.Error("GetManagedUsers: service error", "error", err, "caller_id", caller.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to list managed users")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"users": grantors,
	})
}

func (h *Handler) RevokeAccess(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto RevokeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var err error
	if dto.RequestID != nil {
		err = h.Service.RevokeAccess(r.Context(), caller, *dto.RequestID)
	} else {
		err = h.Service.RevokeAccessByPair(r.Context(), caller, dto.GrantorID, dto.GranteeID)
	}
	if err != nil {
		h.Logger.Error("RevokeAccess: service error", "error", err, "caller_id", caller.ID)
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

func (h *Handler) UpdateUserPermission(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	targetIDStr := chi.URLParam(r, "id")
	targetID, err := strconv.ParseInt(targetIDStr, 10, 64)
	if err != nil {
		h.Logger.Error("UpdateUserPermission: invalid user ID", "id", targetIDStr)
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var dto UpdatePermissionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newRole, err := h.Service.SetCanViewAllData(r.Context(), caller, targetID, dto.CanViewAllData)
	if err != nil {
		h.Logger.Error("UpdateUserPermission: service error", "error", err,
			"caller_id", caller.ID, "target_id", targetID)
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, UpdatePermissionResponse{
		ActorID:        targetID,
		CanViewAllData: dto.CanViewAllData,
		NewRole:        newRole,
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSelfReference):
		h.WriteError(w, http.StatusBadRequest, "cannot request access to your own data")
	case errors.Is(err, ErrRequestNotFound):
		h.WriteError(w, http.StatusNotFound, "access request not found")
	case errors.Is(err, ErrActorNotFound):
		h.WriteError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, ErrGrantNotFound):
		h.WriteError(w, http.StatusNotFound, "grant not found")
	case errors.Is(err, ErrInvalidStateTransition):
		h.WriteError(w, http.StatusConflict, "request state does not permit this operation")
	case errors.Is(err, ErrNotParticipant):
		h.WriteError(w, http.StatusForbidden, "not a participant of this request")
	case errors.Is(err, ErrAdminRequired):
		h.WriteError(w, http.StatusForbidden, "admin access required")
	default:
		h.WriteAppError(w, err)
	}
}
