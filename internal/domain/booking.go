package domain

import (
	"context"
	"time"
)

// Booking is a car rental booking owned by a single user.
type Booking struct {
	ID         string    `json:"id"` // UUID
	UserID     string    `json:"userId"`
	CarName    string    `json:"carName"`
	Days       int       `json:"days"`
	RentPerDay float64   `json:"rentPerDay"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// BookingRepository defines data access for bookings.
type BookingRepository interface {
	Save(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	ListByUser(ctx context.Context, userID string) ([]*Booking, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
