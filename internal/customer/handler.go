package customer

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

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateCustomerDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.CreateCustomer(r.Context(), caller, dto)
	if err != nil {
		h.Logger.Error("CreateCustomer: service error", "error", err, "caller_id", caller.ID)
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) GetCustomers(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := transport.Pagination(r)
	customers, err := h.Service.ListCustomers(r.Context(), caller, limit, offset)
	if err != nil {
		h.Logger.Error("GetCustomers: service error", "error", err, "caller_id", caller.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to list customers")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"customers": customers,
	})
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid customer ID")
		return
	}

	c, err := h.Service.GetCustomer(r.Context(), caller, id)
	if err != nil {
		h.handleServiceError(w, err, caller.ID, id)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid customer ID")
		return
	}

	var dto UpdateCustomerDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.UpdateCustomer(r.Context(), caller, id, dto)
	if err != nil {
		h.handleServiceError(w, err, caller.ID, id)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid customer ID")
		return
	}

	if err := h.Service.DeleteCustomer(r.Context(), caller, id); err != nil {
		h.handleServiceError(w, err, caller.ID, id)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error, callerID, customerID int64) {
	h.Logger.Error("customer handler: service error", "error", err,
		"caller_id", callerID, "customer_id", customerID)
	switch {
	case errors.Is(err, ErrCustomerNotFound):
		h.WriteError(w, http.StatusNotFound, "customer not found")
	case errors.Is(err, ErrUnauthorizedAccess):
		h.WriteError(w, http.StatusForbidden, "access to this customer is not permitted")
	default:
		h.WriteAppError(w, err)
	}
}
