package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/carbook/internal/domain"
	"github.com/yourorg/carbook/internal/observability/metrics"
	"github.com/yourorg/carbook/internal/security"
	"github.com/yourorg/carbook/pkg/cache"
)

const listCacheTTL = 30 * time.Second

// BookingService implements the booking operations behind the auth gate.
// Every operation takes the verified caller's userID; listing is scoped to
// it and mutations require ownership.
type BookingService struct {
	bookings  domain.BookingRepository
	policy    security.OwnershipPolicy
	listCache *cache.Cache[[]*domain.Booking]
	logger    *slog.Logger
}

func NewBookingService(bookings domain.BookingRepository, logger *slog.Logger) *BookingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingService{
		bookings:  bookings,
		policy:    security.NewOwnershipPolicy(),
		listCache: cache.New[[]*domain.Booking](),
		logger:    logger,
	}
}

// CreateBookingInput carries the fields a client may set on create.
type CreateBookingInput struct {
	CarName    string  `json:"carName"`
	Days       int     `json:"days"`
	RentPerDay float64 `json:"rentPerDay"`
}

// UpdateBookingInput carries a partial update; nil fields are left as-is.
type UpdateBookingInput struct {
	CarName    *string  `json:"carName"`
	Days       *int     `json:"days"`
	RentPerDay *float64 `json:"rentPerDay"`
}

func (s *BookingService) Create(ctx context.Context, userID string, in CreateBookingInput) (*domain.Booking, error) {
	if err := validateBookingFields(in.CarName, in.Days, in.RentPerDay); err != nil {
		metrics.ObserveBookingOp("create", "invalid")
		return nil, err
	}

	now := time.Now()
	booking := &domain.Booking{
		ID:         uuid.NewString(),
		UserID:     userID,
		CarName:    in.CarName,
		Days:       in.Days,
		RentPerDay: in.RentPerDay,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.bookings.Save(ctx, booking); err != nil {
		s.logger.Error("failed to save booking", slog.String("error", err.Error()))
		metrics.ObserveBookingOp("create", "error")
		return nil, errors.New("failed to create booking")
	}

	s.listCache.Delete(userID)
	metrics.ObserveBookingOp("create", "success")
	s.logger.Info("booking created",
		slog.String("booking_id", booking.ID),
		slog.String("user_id", userID),
	)
	return booking, nil
}

func (s *BookingService) List(ctx context.Context, userID string) ([]*domain.Booking, error) {
	if cached, ok := s.listCache.Get(userID); ok {
		return cached, nil
	}

	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list bookings", slog.String("error", err.Error()))
		metrics.ObserveBookingOp("list", "error")
		return nil, errors.New("failed to list bookings")
	}
	if bookings == nil {
		bookings = []*domain.Booking{}
	}

	s.listCache.Set(userID, bookings, listCacheTTL)
	metrics.ObserveBookingOp("list", "success")
	return bookings, nil
}

func (s *BookingService) Get(ctx context.Context, userID, id string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, s.notFoundOr(err, "get")
	}
	if !s.policy.CanRead(userID, booking) {
		// Reported as not-found so callers cannot probe foreign IDs.
		metrics.ObserveBookingOp("get", "denied")
		return nil, domain.ErrNotOwner
	}
	metrics.ObserveBookingOp("get", "success")
	return booking, nil
}

func (s *BookingService) Update(ctx context.Context, userID, id string, in UpdateBookingInput) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, s.notFoundOr(err, "update")
	}
	if !s.policy.CanModify(userID, booking) {
		metrics.ObserveBookingOp("update", "denied")
		return nil, domain.ErrNotOwner
	}

	carName := booking.CarName
	days := booking.Days
	rentPerDay := booking.RentPerDay
	if in.CarName != nil {
		carName = *in.CarName
	}
	if in.Days != nil {
		days = *in.Days
	}
	if in.RentPerDay != nil {
		rentPerDay = *in.RentPerDay
	}
	if err := validateBookingFields(carName, days, rentPerDay); err != nil {
		metrics.ObserveBookingOp("update", "invalid")
		return nil, err
	}

	booking.CarName = carName
	booking.Days = days
	booking.RentPerDay = rentPerDay
	booking.UpdatedAt = time.Now()

	if err := s.bookings.Save(ctx, booking); err != nil {
		s.logger.Error("failed to update booking", slog.String("error", err.Error()))
		metrics.ObserveBookingOp("update", "error")
		return nil, errors.New("failed to update booking")
	}

	s.listCache.Delete(userID)
	metrics.ObserveBookingOp("update", "success")
	return booking, nil
}

func (s *BookingService) Delete(ctx context.Context, userID, id string) error {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return s.notFoundOr(err, "delete")
	}
	if !s.policy.CanModify(userID, booking) {
		metrics.ObserveBookingOp("delete", "denied")
		return domain.ErrNotOwner
	}

	if err := s.bookings.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete booking", slog.String("error", err.Error()))
		metrics.ObserveBookingOp("delete", "error")
		return errors.New("failed to delete booking")
	}

	s.listCache.Delete(userID)
	metrics.ObserveBookingOp("delete", "success")
	s.logger.Info("booking deleted",
		slog.String("booking_id", id),
		slog.String("user_id", userID),
	)
	return nil
}

func (s *BookingService) notFoundOr(err error, op string) error {
	if errors.Is(err, domain.ErrBookingNotFound) {
		metrics.ObserveBookingOp(op, "not_found")
		return domain.ErrBookingNotFound
	}
	s.logger.Error("booking lookup failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
	metrics.ObserveBookingOp(op, "error")
	return errors.New("booking lookup failed")
}

func validateBookingFields(carName string, days int, rentPerDay float64) error {
	if carName == "" {
		return fmt.Errorf("%w: carName is required", domain.ErrValidation)
	}
	if days <= 0 {
		return fmt.Errorf("%w: days must be positive", domain.ErrValidation)
	}
	if rentPerDay <= 0 {
		return fmt.Errorf("%w: rentPerDay must be positive", domain.ErrValidation)
	}
	return nil
}
