package communication

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

func (h *Handler) CreateCommunication(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateCommunicationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.LogCommunication(r.Context(), caller, dto)
	if err != nil {
		h.Logger.Error("CreateCommunication: service error", "error", err, "caller_id", caller.ID)
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) GetCommunications(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := transport.Pagination(r)
	communications, err := h.Service.ListCommunications(r.Context(), caller, limit, offset)
	if err != nil {
		h.Logger.Error("GetCommunications: service error", "error", err, "caller_id", caller.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to list communications")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"communications": communications,
	})
}

func (h *Handler) GetCommunication(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid communication ID")
		return
	}

	c, err := h.Service.GetCommunication(r.Context(), caller, id)
	if err != nil {
		h.handleServiceError(w, err, caller.ID, id)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCommunication(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid communication ID")
		return
	}

	if err := h.Service.DeleteCommunication(r.Context(), caller, id); err != nil {
		h.handleServiceError(w, err, caller.ID, id)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error, callerID, communicationID int64) {
	h.Logger.Error("communication handler: service error", "error", err,
		"caller_id", callerID, "communication_id", communicationID)
	switch {
	case errors.Is(err, ErrCommunicationNotFound):
		h.WriteError(w, http.StatusNotFound, "communication not found")
	case errors.Is(err, ErrUnauthorizedAccess):
		h.WriteError(w, http.StatusForbidden, "access to this communication is not permitted")
	default:
		h.WriteAppError(w, err)
	}
}
