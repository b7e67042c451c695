package lead

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

func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateLeadDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateLead: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	l, err := h.Service.CreateLead(r.Context(), caller, dto)
	if err != nil {
		h.Logger.Error("CreateLead: service error", "error", err, "caller_id", caller.ID)
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.WriteJSON(w, http.StatusCreated, l)
}

func (h *Handler) GetLeads(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := transport.Pagination(r)
	leads, err := h.Service.ListLeads(r.Context(), caller, limit, offset)
	if err != nil {
		h.Logger.Error("GetLeads: service error", "error", err, "caller_id", caller.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to list leads")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"leads": leads,
	})
}

func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid lead ID")
		return
	}

	l, err := h.Service.GetLead(r.Context(), caller, id)
	if err != nil {
		h.handleServiceError(w, err, caller.ID, id)
		return
	}

	h.WriteJSON(w, http.StatusOK, l)
}

func (h *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid lead ID")
		return
	}

	var dto UpdateLeadDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	l, err := h.Service.UpdateLead(r.Context(), caller, id, dto)
	if err != nil {
		h.handleServiceError(w, err, caller.ID, id)
		return
	}

	h.WriteJSON(w, http.StatusOK, l)
}

func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid lead ID")
		return
	}

	if err := h.Service.DeleteLead(r.Context(), caller, id); err != nil {
		h.handleServiceError(w, err, caller.ID, id)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error, callerID, leadID int64) {
	h.Logger.Error("lead handler: service error", "error", err, "caller_id", callerID, "lead_id", leadID)
	switch {
	case errors.Is(err, ErrLeadNotFound):
		h.WriteError(w, http.StatusNotFound, "lead not found")
	case errors.Is(err, ErrUnauthorizedAccess):
		h.WriteError(w, http.StatusForbidden, "access to this lead is not permitted")
	default:
		h.WriteAppError(w, err)
	}
}
