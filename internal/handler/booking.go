package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yourorg/carbook/internal/domain"
	"github.com/yourorg/carbook/internal/security/audit"
	"github.com/yourorg/carbook/internal/security/middleware"
	"github.com/yourorg/carbook/internal/service"
)

// BookingHandler serves the booking CRUD endpoints. Every route is mounted
// behind middleware.JWTMiddleware, so a populated claims context is a
// precondition here.
type BookingHandler struct {
	bookingService *service.BookingService
	auditLog       *audit.Logger
	logger         *slog.Logger
}

func NewBookingHandler(bookingService *service.BookingService, auditLog *audit.Logger, logger *slog.Logger) *BookingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingHandler{
		bookingService: bookingService,
		auditLog:       auditLog,
		logger:         logger,
	}
}

// Create handles POST /bookings.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var in service.CreateBookingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	booking, err := h.bookingService.Create(r.Context(), claims.UserID, in)
	if err != nil {
		h.respondBookingError(w, err)
		return
	}

	h.auditLog.LogBookingChange(r.Context(), "booking_create", booking.ID, claims.UserID, "success")
	respondData(w, http.StatusCreated, booking)
}

// List handles GET /bookings.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	bookings, err := h.bookingService.List(r.Context(), claims.UserID)
	if err != nil {
		h.respondBookingError(w, err)
		return
	}
	respondData(w, http.StatusOK, bookings)
}

// Get handles GET /bookings/{id}.
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	booking, err := h.bookingService.Get(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		h.respondBookingError(w, err)
		return
	}
	respondData(w, http.StatusOK, booking)
}

// Update handles PUT /bookings/{id}.
func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var in service.UpdateBookingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := r.PathValue("id")
	booking, err := h.bookingService.Update(r.Context(), claims.UserID, id, in)
	if err != nil {
		h.respondBookingError(w, err)
		return
	}

	h.auditLog.LogBookingChange(r.Context(), "booking_update", id, claims.UserID, "success")
	respondData(w, http.StatusOK, booking)
}

// Delete handles DELETE /bookings/{id}.
func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := r.PathValue("id")
	if err := h.bookingService.Delete(r.Context(), claims.UserID, id); err != nil {
		h.respondBookingError(w, err)
		return
	}

	h.auditLog.LogBookingChange(r.Context(), "booking_delete", id, claims.UserID, "success")
	respondData(w, http.StatusOK, map[string]string{"id": id})
}

func (h *BookingHandler) respondBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		respondError(w, http.StatusBadRequest, "invalid booking data")
	case errors.Is(err, domain.ErrBookingNotFound), errors.Is(err, domain.ErrNotOwner):
		// Foreign bookings look identical to missing ones.
		respondError(w, http.StatusNotFound, "booking not found")
	default:
		respondError(w, http.StatusInternalServerError, "booking operation failed")
	}
}
