package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/clinicbook/clinicbook/backend/go-services/internal/clinic"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-memory Store used when no MongoDB URI is configured
// and in unit tests. Records are kept in insertion order.
type MemoryStore struct {
	opts Options

	mu       sync.RWMutex
	services []*clinic.Service
	doctors  []*clinic.Doctor
	bookings []*clinic.Booking
}

func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{opts: opts}
}

func (m *MemoryStore) CreateService(ctx context.Context, s *clinic.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// duplicate check and insert share the critical section
	if m.opts.UniqueServices {
		for _, existing := range m.services {
			if existing.Name == s.Name {
				return &clinic.DuplicateError{Kind: clinic.KindService, Field: "name", Value: s.Name}
			}
			if s.DoctorName != "" && existing.DoctorName == s.DoctorName {
				return &clinic.DuplicateError{Kind: clinic.KindService, Field: "doctorName", Value: s.DoctorName}
			}
		}
	}
	s.ID = primitive.NewObjectID()
	s.CreatedAt = time.Now().UTC()
	cp := *s
	m.services = append(m.services, &cp)
	return nil
}

func (m *MemoryStore) ListServices(ctx context.Context) ([]*clinic.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*clinic.Service, 0, len(m.services))
	for _, s := range m.services {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryStore) FindServices(ctx context.Context, ids []primitive.ObjectID) ([]*clinic.Service, error) {
	want := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*clinic.Service{}
	for _, s := range m.services {
		if _, ok := want[s.ID]; ok {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryStore) CreateDoctor(ctx context.Context, d *clinic.Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = primitive.NewObjectID()
	d.CreatedAt = time.Now().UTC()
	cp := *d
	cp.Services = append([]primitive.ObjectID{}, d.Services...)
	m.doctors = append(m.doctors, &cp)
	return nil
}

func (m *MemoryStore) ListDoctors(ctx context.Context) ([]*clinic.Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*clinic.Doctor, 0, len(m.doctors))
	for _, d := range m.doctors {
		cp := *d
		cp.Services = append([]primitive.ObjectID{}, d.Services...)
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryStore) CreateBooking(ctx context.Context, b *clinic.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = primitive.NewObjectID()
	b.CreatedAt = time.Now().UTC()
	cp := *b
	m.bookings = append(m.bookings, &cp)
	return nil
}

func (m *MemoryStore) ListBookings(ctx context.Context) ([]*clinic.Booking, error) {
	m.mu.RLock()
	out := make([]*clinic.Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		cp := *b
		out = append(out, &cp)
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
