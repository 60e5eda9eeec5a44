package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/carbook/internal/domain"
	"github.com/yourorg/carbook/internal/infrastructure/redis"
	"github.com/yourorg/carbook/internal/reliability/circuitbreaker"
	"github.com/yourorg/carbook/internal/reliability/retry"
)

// RedisBookingRepository implements domain.BookingRepository using Redis.
// Bookings are stored as JSON under booking:<id> with a per-user index set
// at user:<userID>:bookings. Reads retry on transient failures; writes go
// through a circuit breaker so a degraded Redis fast-fails instead of
// piling up requests.
type RedisBookingRepository struct {
	redis    *redis.Client
	breaker  *circuitbreaker.Breaker
	retryCfg *retry.Config
	logger   *slog.Logger
}

func NewRedisBookingRepository(redisClient *redis.Client, logger *slog.Logger) *RedisBookingRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisBookingRepository{
		redis:    redisClient,
		breaker:  circuitbreaker.New(5, 15*time.Second),
		retryCfg: retry.DefaultConfig(),
		logger:   logger,
	}
}

func bookingKey(id string) string { return "booking:" + id }

func userBookingsKey(userID string) string { return "user:" + userID + ":bookings" }

func (r *RedisBookingRepository) Save(ctx context.Context, booking *domain.Booking) error {
	data, err := json.Marshal(booking)
	if err != nil {
		return fmt.Errorf("failed to marshal booking: %w", err)
	}

	err = r.breaker.Do(func() error {
		if err := r.redis.Set(ctx, bookingKey(booking.ID), string(data), 0); err != nil {
			return err
		}
		return r.redis.SetAdd(ctx, userBookingsKey(booking.UserID), booking.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to store booking: %w", err)
	}

	r.logger.Debug("booking saved", slog.String("booking_id", booking.ID))
	return nil
}

func (r *RedisBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	data, err := retry.Do(ctx, r.retryCfg, r.logger, "booking.get", func(ctx context.Context) (string, error) {
		val, err := r.redis.Get(ctx, bookingKey(id))
		if errors.Is(err, redis.ErrNotFound) {
			// Missing key is a final answer, not a transient fault.
			return "", nil
		}
		return val, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if data == "" {
		return nil, domain.ErrBookingNotFound
	}

	var booking domain.Booking
	if err := json.Unmarshal([]byte(data), &booking); err != nil {
		return nil, fmt.Errorf("failed to unmarshal booking: %w", err)
	}
	return &booking, nil
}

func (r *RedisBookingRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	ids, err := retry.Do(ctx, r.retryCfg, r.logger, "booking.list", func(ctx context.Context) ([]string, error) {
		return r.redis.SetMembers(ctx, userBookingsKey(userID))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*domain.Booking, 0, len(ids))
	for _, id := range ids {
		booking, err := r.GetByID(ctx, id)
		if errors.Is(err, domain.ErrBookingNotFound) {
			// Stale index entry; drop it and move on.
			if remErr := r.redis.SetRemove(ctx, userBookingsKey(userID), id); remErr != nil {
				r.logger.Warn("failed to prune stale booking index entry",
					slog.String("booking_id", id),
					slog.String("error", remErr.Error()),
				)
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, nil
}

func (r *RedisBookingRepository) Delete(ctx context.Context, id string) error {
	booking, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = r.breaker.Do(func() error {
		if err := r.redis.Delete(ctx, bookingKey(id)); err != nil {
			return err
		}
		return r.redis.SetRemove(ctx, userBookingsKey(booking.UserID), id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	r.logger.Debug("booking deleted", slog.String("booking_id", id))
	return nil
}

func (r *RedisBookingRepository) Count(ctx context.Context) (int, error) {
	keys, err := r.redis.Keys(ctx, "booking:*")
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return len(keys), nil
}
