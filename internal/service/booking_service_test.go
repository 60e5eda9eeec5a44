package service

import (
	"context"
	"errors"
	"testing"

	"github.com/yourorg/carbook/internal/domain"
	"github.com/yourorg/carbook/internal/repository"
)

func newTestBookingService() *BookingService {
	return NewBookingService(repository.NewMemoryBookingRepository(), nil)
}

func TestCreateAndListBooking(t *testing.T) {
	s := newTestBookingService()
	ctx := context.Background()

	booking, err := s.Create(ctx, "user-1", CreateBookingInput{
		CarName:    "BMW",
		Days:       5,
		RentPerDay: 1000,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if booking.ID == "" || booking.UserID != "user-1" {
		t.Fatalf("unexpected booking: %+v", booking)
	}

	list, err := s.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != booking.ID {
		t.Fatalf("expected the created booking, got %+v", list)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	s := newTestBookingService()
	ctx := context.Background()

	cases := []CreateBookingInput{
		{CarName: "", Days: 3, RentPerDay: 100},
		{CarName: "BMW", Days: 0, RentPerDay: 100},
		{CarName: "BMW", Days: -1, RentPerDay: 100},
		{CarName: "BMW", Days: 3, RentPerDay: 0},
	}
	for _, in := range cases {
		if _, err := s.Create(ctx, "user-1", in); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Create(%+v) = %v, want ErrValidation", in, err)
		}
	}
}

func TestListScopedToUser(t *testing.T) {
	s := newTestBookingService()
	ctx := context.Background()

	if _, err := s.Create(ctx, "user-1", CreateBookingInput{CarName: "BMW", Days: 2, RentPerDay: 500}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := s.Create(ctx, "user-2", CreateBookingInput{CarName: "Audi", Days: 3, RentPerDay: 700}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	list, err := s.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 || list[0].CarName != "BMW" {
		t.Fatalf("expected only user-1 bookings, got %+v", list)
	}
}

func TestListInvalidatedAfterCreate(t *testing.T) {
	s := newTestBookingService()
	ctx := context.Background()

	if _, err := s.Create(ctx, "user-1", CreateBookingInput{CarName: "BMW", Days: 2, RentPerDay: 500}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := s.List(ctx, "user-1"); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	// Second create must invalidate the cached list.
	if _, err := s.Create(ctx, "user-1", CreateBookingInput{CarName: "Audi", Days: 1, RentPerDay: 300}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	list, err := s.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 bookings after cache invalidation, got %d", len(list))
	}
}

func TestUpdateBookingPartial(t *testing.T) {
	s := newTestBookingService()
	ctx := context.Background()

	booking, err := s.Create(ctx, "user-1", CreateBookingInput{CarName: "BMW", Days: 5, RentPerDay: 1000})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	days := 10
	updated, err := s.Update(ctx, "user-1", booking.ID, UpdateBookingInput{Days: &days})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Days != 10 {
		t.Fatalf("expected days=10, got %d", updated.Days)
	}
	if updated.CarName != "BMW" || updated.RentPerDay != 1000 {
		t.Fatalf("unrelated fields changed: %+v", updated)
	}
}

func TestUpdateRejectsInvalidFields(t *testing.T) {
	s := newTestBookingService()
	ctx := context.Background()

	booking, err := s.Create(ctx, "user-1", CreateBookingInput{CarName: "BMW", Days: 5, RentPerDay: 1000})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	days := -3
	if _, err := s.Update(ctx, "user-1", booking.ID, UpdateBookingInput{Days: &days}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestMutationsRequireOwnership(t *testing.T) {
	s := newTestBookingService()
	ctx := context.Background()

	booking, err := s.Create(ctx, "user-1", CreateBookingInput{CarName: "BMW", Days: 5, RentPerDay: 1000})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	days := 7
	if _, err := s.Update(ctx, "user-2", booking.ID, UpdateBookingInput{Days: &days}); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner on update, got %v", err)
	}
	if err := s.Delete(ctx, "user-2", booking.ID); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner on delete, got %v", err)
	}
	if _, err := s.Get(ctx, "user-2", booking.ID); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner on get, got %v", err)
	}
}

func TestDeleteBooking(t *testing.T) {
	s := newTestBookingService()
	ctx := context.Background()

	booking, err := s.Create(ctx, "user-1", CreateBookingInput{CarName: "BMW", Days: 5, RentPerDay: 1000})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := s.Delete(ctx, "user-1", booking.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "user-1", booking.ID); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound after delete, got %v", err)
	}
}

func TestOperationsOnMissingBooking(t *testing.T) {
	s := newTestBookingService()
	ctx := context.Background()

	days := 7
	if _, err := s.Update(ctx, "user-1", "no-such-id", UpdateBookingInput{Days: &days}); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound on update, got %v", err)
	}
	if err := s.Delete(ctx, "user-1", "no-such-id"); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound on delete, got %v", err)
	}
}
