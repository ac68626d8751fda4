package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clinicbook/clinicbook/backend/go-services/internal/clinic"
	"github.com/clinicbook/clinicbook/backend/go-services/internal/clinic/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// failingStore wraps a MemoryStore and fails the operations named in failOn.
type failingStore struct {
	*repository.MemoryStore
	failOn map[string]bool
}

var errStorage = errors.New("connection refused")

func (f *failingStore) FindServices(ctx context.Context, ids []primitive.ObjectID) ([]*clinic.Service, error) {
	if f.failOn["FindServices"] {
		return nil, errStorage
	}
	return f.MemoryStore.FindServices(ctx, ids)
}

func (f *failingStore) CreateBooking(ctx context.Context, b *clinic.Booking) error {
	if f.failOn["CreateBooking"] {
		return errStorage
	}
	return f.MemoryStore.CreateBooking(ctx, b)
}

func newTestService(unique bool) Service {
	return New(repository.NewMemoryStore(repository.Options{UniqueServices: unique}))
}

func requireValidation(t *testing.T, err error, msg string) {
	t.Helper()
	var ve *clinic.ValidationError
	require.ErrorAs(t, err, &ve)
	if msg != "" {
		require.Equal(t, msg, ve.Message)
	}
}

func TestCreateService(t *testing.T) {
	svc := newTestService(true)
	ctx := context.Background()
	dur := 30.0

	got, err := svc.CreateService(ctx, ServiceInput{Name: "Cleaning", Description: "Teeth cleaning", Duration: &dur})
	require.NoError(t, err)
	require.False(t, got.ID.IsZero())
	assert.Equal(t, "Cleaning", got.Name)
	assert.Equal(t, "Teeth cleaning", got.Description)
	require.NotNil(t, got.Duration)
	assert.Equal(t, 30.0, *got.Duration)

	// doctorName alone satisfies the description requirement
	_, err = svc.CreateService(ctx, ServiceInput{Name: "Checkup", DoctorName: "Dr. Grey"})
	require.NoError(t, err)
}

func TestCreateService_Validation(t *testing.T) {
	svc := newTestService(true)
	ctx := context.Background()
	neg := -5.0

	cases := []struct {
		name string
		in   ServiceInput
		msg  string
	}{
		{"missing name", ServiceInput{Description: "d"}, "name is required"},
		{"missing description and doctor", ServiceInput{Name: "n"}, "description or doctorName is required"},
		{"negative duration", ServiceInput{Name: "n", Description: "d", Duration: &neg}, "duration must be greater than or equal to 0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateService(ctx, tc.in)
			requireValidation(t, err, tc.msg)
			require.True(t, clinic.IsClientError(err))
		})
	}
}

func TestCreateService_Duplicate(t *testing.T) {
	svc := newTestService(true)
	ctx := context.Background()
	_, err := svc.CreateService(ctx, ServiceInput{Name: "X-Ray", Description: "scan"})
	require.NoError(t, err)

	_, err = svc.CreateService(ctx, ServiceInput{Name: "X-Ray", Description: "scan"})
	require.ErrorIs(t, err, clinic.ErrDuplicate)
	require.True(t, clinic.IsClientError(err))

	lenient := newTestService(false)
	_, err = lenient.CreateService(ctx, ServiceInput{Name: "X-Ray", Description: "scan"})
	require.NoError(t, err)
	_, err = lenient.CreateService(ctx, ServiceInput{Name: "X-Ray", Description: "scan"})
	require.NoError(t, err)
}

func TestCreateDoctor(t *testing.T) {
	svc := newTestService(false)
	ctx := context.Background()
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	d, err := svc.CreateDoctor(ctx, DoctorInput{Name: "House", Specialization: "Diagnostics", Services: []string{b.Hex(), a.Hex(), b.Hex()}})
	require.NoError(t, err)
	require.Equal(t, []primitive.ObjectID{b, a}, d.Services)

	_, err = svc.CreateDoctor(ctx, DoctorInput{Name: "House"})
	requireValidation(t, err, "specialization is required")

	_, err = svc.CreateDoctor(ctx, DoctorInput{Name: "House", Specialization: "x", Services: []string{"nope"}})
	requireValidation(t, err, "services[0] is not a valid id")
}

func TestCreateDoctor_NoServices(t *testing.T) {
	svc := newTestService(false)
	d, err := svc.CreateDoctor(context.Background(), DoctorInput{Name: "Quinn", Specialization: "GP"})
	require.NoError(t, err)
	require.NotNil(t, d.Services)
	require.Empty(t, d.Services)
}

func TestListDoctors_PopulatesInOrder(t *testing.T) {
	svc := newTestService(false)
	ctx := context.Background()
	s1, err := svc.CreateService(ctx, ServiceInput{Name: "One", Description: "1"})
	require.NoError(t, err)
	s2, err := svc.CreateService(ctx, ServiceInput{Name: "Two", Description: "2"})
	require.NoError(t, err)
	missing := primitive.NewObjectID()

	_, err = svc.CreateDoctor(ctx, DoctorInput{Name: "House", Specialization: "Diagnostics", Services: []string{s2.ID.Hex(), missing.Hex(), s1.ID.Hex()}})
	require.NoError(t, err)
	_, err = svc.CreateDoctor(ctx, DoctorInput{Name: "Quinn", Specialization: "GP"})
	require.NoError(t, err)

	doctors, err := svc.ListDoctors(ctx)
	require.NoError(t, err)
	require.Len(t, doctors, 2)
	require.Len(t, doctors[0].Services, 2)
	assert.Equal(t, "Two", doctors[0].Services[0].Name)
	assert.Equal(t, "One", doctors[0].Services[1].Name)
	assert.Empty(t, doctors[1].Services)
}

func TestListDoctors_StorageError(t *testing.T) {
	store := &failingStore{MemoryStore: repository.NewMemoryStore(repository.Options{}), failOn: map[string]bool{"FindServices": true}}
	svc := New(store)
	_, err := svc.ListDoctors(context.Background())
	require.ErrorIs(t, err, errStorage)
	require.False(t, clinic.IsClientError(err))
}

func validBooking() BookingInput {
	return BookingInput{
		PatientName: "Jane Doe",
		Phone:       "+15550100",
		Date:        "2026-05-01T10:30:00Z",
		Service:     primitive.NewObjectID().Hex(),
		Doctor:      primitive.NewObjectID().Hex(),
	}
}

func TestCreateBooking(t *testing.T) {
	svc := newTestService(false)
	in := validBooking()
	b, err := svc.CreateBooking(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", b.PatientName)
	assert.Equal(t, "+15550100", b.Phone)
	assert.True(t, b.Date.Equal(time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC)))
	assert.Equal(t, in.Service, b.Service.Hex())
	assert.Equal(t, in.Doctor, b.Doctor.Hex())
}

func TestCreateBooking_MissingFields(t *testing.T) {
	svc := newTestService(false)
	blank := map[string]func(*BookingInput){
		"patientName": func(b *BookingInput) { b.PatientName = "" },
		"phone":       func(b *BookingInput) { b.Phone = "" },
		"date":        func(b *BookingInput) { b.Date = "" },
		"service":     func(b *BookingInput) { b.Service = "" },
		"doctor":      func(b *BookingInput) { b.Doctor = "" },
	}
	for field, fn := range blank {
		t.Run(field, func(t *testing.T) {
			in := validBooking()
			fn(&in)
			_, err := svc.CreateBooking(context.Background(), in)
			requireValidation(t, err, MsgBookingFieldsRequired)
		})
	}
}

func TestCreateBooking_InvalidValues(t *testing.T) {
	svc := newTestService(false)

	in := validBooking()
	in.Date = "next tuesday"
	_, err := svc.CreateBooking(context.Background(), in)
	requireValidation(t, err, "")

	in = validBooking()
	in.Service = "123"
	_, err = svc.CreateBooking(context.Background(), in)
	requireValidation(t, err, "service is not a valid id")

	in = validBooking()
	in.Doctor = "zzz"
	_, err = svc.CreateBooking(context.Background(), in)
	requireValidation(t, err, "doctor is not a valid id")
}

func TestCreateBooking_StorageError(t *testing.T) {
	store := &failingStore{MemoryStore: repository.NewMemoryStore(repository.Options{}), failOn: map[string]bool{"CreateBooking": true}}
	svc := New(store)
	_, err := svc.CreateBooking(context.Background(), validBooking())
	require.ErrorIs(t, err, errStorage)
	require.False(t, clinic.IsClientError(err))
}

func TestParseDate(t *testing.T) {
	cases := map[string]time.Time{
		"2026-05-01T10:30:00Z":           time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC),
		"2026-05-01T10:30:00.250Z":       time.Date(2026, 5, 1, 10, 30, 0, 250_000_000, time.UTC),
		"2026-05-01T10:30:00.123456789Z": time.Date(2026, 5, 1, 10, 30, 0, 123_000_000, time.UTC),
		"2026-05-01T12:30:00+02:00":      time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC),
		"2026-05-01T10:30":               time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC),
		"2026-05-01":                     time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		require.True(t, want.Equal(got), "%s: got %v want %v", in, got, want)
	}

	_, err := ParseDate("01/05/2026")
	requireValidation(t, err, "")
}

func TestListBookings_SortedByDateDesc(t *testing.T) {
	svc := newTestService(false)
	ctx := context.Background()
	for _, d := range []string{"2026-05-02", "2026-05-04", "2026-05-01", "2026-05-03"} {
		in := validBooking()
		in.Date = d
		_, err := svc.CreateBooking(ctx, in)
		require.NoError(t, err)
	}
	list, err := svc.ListBookings(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)
	got := make([]string, 0, len(list))
	for _, b := range list {
		got = append(got, b.Date.Format("2006-01-02"))
	}
	require.Equal(t, []string{"2026-05-04", "2026-05-03", "2026-05-02", "2026-05-01"}, got)
}
