package handler

import (
	"crm-rep/internal/api/handler/dto"
	"crm-rep/internal/api/middleware"
	"crm-rep/internal/domain/customer"
	"crm-rep/internal/domain/user"
	"crm-rep/internal/infrastructure/monitoring"
	"crm-rep/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type CustomerHandler struct {
	service customer.Service
	users   user.Service
	logger  *slog.Logger
}

func NewCustomerHandler(s customer.Service, users user.Service, l *slog.Logger) *CustomerHandler {
	if s == nil {
		panic("customer service cannot be nil")
	}
	if users == nil {
		panic("user service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		service: s,
		users:   users,
		logger:  l.With("component", "CustomerHandler"),
	}
}

func getCustomerIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "customerID")
	if idStr == "" {
		return 0, fmt.Errorf("%w: customerID not found in URL path", apperrors.ErrInvalidArgument)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid customerID format in URL path: %s", apperrors.ErrInvalidArgument, idStr)
	}
	return id, nil
}

// CreateCustomer handles POST /api/customers/.
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var body dto.CreateCustomerRequest
	if err := decodeJSON(r, &body); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, badRequest(err))
		return
	}

	req, err := body.ToDomain()
	if err != nil {
		h.logger.WarnContext(r.Context(), "Validation failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	if _, err := h.users.Get(r.Context(), req.Rep); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			err = apperrors.FieldErrors{{Field: "rep", Message: fmt.Sprintf("invalid pk %d", req.Rep)}}
		}
		respondError(w, err)
		return
	}
	if callerID, ok := middleware.UserIDFromContext(r.Context()); ok && callerID != req.Rep {
		h.logger.InfoContext(r.Context(), "Customer created on behalf of another representative",
			slog.Int64("caller", callerID), slog.Int64("rep", req.Rep))
	}

	created, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to create customer", slog.Any("error", err))
		respondError(w, err)
		return
	}
	monitoring.RecordCustomerCreated()

	respondJSON(w, http.StatusCreated, dto.NewCustomerResponse(created))
}

// GetCustomer handles GET /api/customers/{customerID}/.
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	c, err := h.service.Get(r.Context(), customerID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(c))
}

// ListCustomers handles GET /api/customers/.
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewCustomerListResponse(customers))
}

// ListReference returns a handler for one lookup collection.
func (h *CustomerHandler) ListReference(kind customer.ReferenceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.service.ListReference(r.Context(), kind)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, dto.NewReferenceListResponse(items))
	}
}
