package opportunity

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

func (h *Handler) CreateOpportunity(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateOpportunityDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.Service.CreateOpportunity(r.Context(), caller, dto)
	if err != nil {
		h.Logger.Error("CreateOpportunity: service error", "error", err, "caller_id", caller.ID)
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.WriteJSON(w, http.StatusCreated, o)
}

func (h *Handler) GetOpportunities(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := transport.Pagination(r)
	opportunities, err := h.Service.ListOpportunities(r.Context(), caller, limit, offset)
	if err != nil {
		h.Logger.Error("GetOpportunities: service error", "error", err, "caller_id", caller.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to list opportunities")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"opportunities": opportunities,
	})
}

func (h *Handler) GetOpportunity(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid opportunity ID")
		return
	}

	o, err := h.Service.GetOpportunity(r.Context(), caller, id)
	if err != nil {
		h.handleServiceError(w, err, caller.ID, id)
		return
	}

	h.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) UpdateOpportunity(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid opportunity ID")
		return
	}

	var dto UpdateOpportunityDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.Service.UpdateOpportunity(r.Context(), caller, id, dto)
	if err != nil {
		h.handleServiceError(w, err, caller.ID, id)
		return
	}

	h.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) DeleteOpportunity(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid opportunity ID")
		return
	}

	if err := h.Service.DeleteOpportunity(r.Context(), caller, id); err != nil {
		h.handleServiceError(w, err, caller.ID, id)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error, callerID, opportunityID int64) {
	h.Logger.Error("opportunity handler: service error", "error", err,
		"caller_id", callerID, "opportunity_id", opportunityID)
	switch {
	case errors.Is(err, ErrOpportunityNotFound):
		h.WriteError(w, http.StatusNotFound, "opportunity not found")
	case errors.Is(err, ErrUnauthorizedAccess):
		h.WriteError(w, http.StatusForbidden, "access to this opportunity is not permitted")
	default:
		h.WriteAppError(w, err)
	}
}
