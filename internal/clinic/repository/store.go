package repository

import (
	"context"

	"github.com/clinicbook/clinicbook/backend/go-services/internal/clinic"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the persistence gateway for the three clinic collections.
// Create methods assign ID and CreatedAt on the passed record.
type Store interface {
	CreateService(ctx context.Context, s *clinic.Service) error
	ListServices(ctx context.Context) ([]*clinic.Service, error)
	// FindServices returns the services whose ids are in ids, in no particular order.
	// Unknown ids are ignored.
	FindServices(ctx context.Context, ids []primitive.ObjectID) ([]*clinic.Service, error)

	CreateDoctor(ctx context.Context, d *clinic.Doctor) error
	ListDoctors(ctx context.Context) ([]*clinic.Doctor, error)

	CreateBooking(ctx context.Context, b *clinic.Booking) error
	// ListBookings returns bookings ordered by Date descending, ties by ID descending.
	ListBookings(ctx context.Context) ([]*clinic.Booking, error)

	Ping(ctx context.Context) error
}

// Options configures store behavior shared by all implementations.
type Options struct {
	// UniqueServices rejects services that repeat an existing name or a
	// non-empty doctor name.
	UniqueServices bool
}
