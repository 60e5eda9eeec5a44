package security

import "github.com/yourorg/carbook/internal/domain"

// OwnershipPolicy decides what an authenticated user may do with a booking.
// Bookings have a single owner and no role hierarchy: the owner can do
// everything, everyone else nothing.
type OwnershipPolicy struct{}

func NewOwnershipPolicy() OwnershipPolicy { return OwnershipPolicy{} }

// CanRead reports whether the user may see the booking.
func (OwnershipPolicy) CanRead(userID string, b *domain.Booking) bool {
	return b != nil && b.UserID == userID
}

// CanModify reports whether the user may update or delete the booking.
func (OwnershipPolicy) CanModify(userID string, b *domain.Booking) bool {
	return b != nil && b.UserID == userID
}
