package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/clinicbook/clinicbook/backend/go-services/internal/clinic"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ServicesCollection = "services"
	DoctorsCollection  = "doctors"
	BookingsCollection = "bookings"

	idxServiceName       = "uniq_service_name"
	idxServiceDoctorName = "uniq_service_doctor_name"
	idxBookingDate       = "booking_date_desc"
)

// ErrIndexConflict reports that existing documents violate a unique index,
// typically services saved while uniqueness was off. It does not go away on
// retry; the duplicates must be removed or SERVICES_UNIQUE disabled.
var ErrIndexConflict = errors.New("existing services violate the uniqueness rule")

// MongoStore implements Store on a MongoDB database.
// Uniqueness of services is enforced by unique indexes so the duplicate check
// and the insert are a single server-side operation.
type MongoStore struct {
	db       *mongo.Database
	services *mongo.Collection
	doctors  *mongo.Collection
	bookings *mongo.Collection
	opts     Options

	idxMu           sync.Mutex
	serviceIdxReady bool
	bookingIdxReady bool
}

// NewMongoStore returns a store on db and tries to create its indexes.
// The store is usable even when index creation fails (for example while the
// server is unreachable); creation is retried before the next insert that
// depends on it.
func NewMongoStore(ctx context.Context, db *mongo.Database, opts Options) (*MongoStore, error) {
	s := &MongoStore{
		db:       db,
		services: db.Collection(ServicesCollection),
		doctors:  db.Collection(DoctorsCollection),
		bookings: db.Collection(BookingsCollection),
		opts:     opts,
	}
	return s, s.EnsureIndexes(ctx)
}

// EnsureIndexes creates the indexes the store relies on. It is idempotent.
// The booking index is attempted even when the service indexes fail.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	bookingErr := s.ensureBookingIndexes(ctx)
	if err := s.ensureServiceIndexes(ctx); err != nil {
		return err
	}
	return bookingErr
}

func (s *MongoStore) ensureServiceIndexes(ctx context.Context) error {
	if !s.opts.UniqueServices {
		return nil
	}
	s.idxMu.Lock()
	defer s.idxMu.Unlock()
	if s.serviceIdxReady {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	serviceIdx := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(idxServiceName),
		},
		{
			// empty or missing doctor names never collide
			Keys: bson.D{{Key: "doctorName", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(idxServiceDoctorName).
				SetPartialFilterExpression(bson.M{"doctorName": bson.M{"$type": "string", "$gt": ""}}),
		},
	}
	if _, err := s.services.Indexes().CreateMany(ctx, serviceIdx); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", ErrIndexConflict, err)
		}
		return fmt.Errorf("failed to create service indexes: %w", err)
	}
	s.serviceIdxReady = true
	return nil
}

func (s *MongoStore) ensureBookingIndexes(ctx context.Context) error {
	s.idxMu.Lock()
	defer s.idxMu.Unlock()
	if s.bookingIdxReady {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	bookingIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}},
		Options: options.Index().SetName(idxBookingDate),
	}
	if _, err := s.bookings.Indexes().CreateOne(ctx, bookingIdx); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	s.bookingIdxReady = true
	return nil
}

func (s *MongoStore) CreateService(ctx context.Context, svc *clinic.Service) error {
	if err := s.ensureServiceIndexes(ctx); err != nil {
		return err
	}
	svc.ID = primitive.NewObjectID()
	svc.CreatedAt = time.Now().UTC()
	if _, err := s.services.InsertOne(ctx, svc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateServiceError(err, svc)
		}
		return fmt.Errorf("insert service: %w", err)
	}
	return nil
}

// duplicateServiceError maps a duplicate-key error to the index that raised it.
func duplicateServiceError(err error, svc *clinic.Service) error {
	if strings.Contains(err.Error(), idxServiceDoctorName) {
		return &clinic.DuplicateError{Kind: clinic.KindService, Field: "doctorName", Value: svc.DoctorName}
	}
	return &clinic.DuplicateError{Kind: clinic.KindService, Field: "name", Value: svc.Name}
}

func (s *MongoStore) ListServices(ctx context.Context) ([]*clinic.Service, error) {
	return findAll[clinic.Service](ctx, s.services, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (s *MongoStore) FindServices(ctx context.Context, ids []primitive.ObjectID) ([]*clinic.Service, error) {
	if len(ids) == 0 {
		return []*clinic.Service{}, nil
	}
	return findAll[clinic.Service](ctx, s.services, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (s *MongoStore) CreateDoctor(ctx context.Context, d *clinic.Doctor) error {
	d.ID = primitive.NewObjectID()
	d.CreatedAt = time.Now().UTC()
	if d.Services == nil {
		d.Services = []primitive.ObjectID{}
	}
	if _, err := s.doctors.InsertOne(ctx, d); err != nil {
		return fmt.Errorf("insert doctor: %w", err)
	}
	return nil
}

func (s *MongoStore) ListDoctors(ctx context.Context) ([]*clinic.Doctor, error) {
	return findAll[clinic.Doctor](ctx, s.doctors, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (s *MongoStore) CreateBooking(ctx context.Context, b *clinic.Booking) error {
	// the date index only speeds up listing; a failure here must not block the insert
	_ = s.ensureBookingIndexes(ctx)
	b.ID = primitive.NewObjectID()
	b.CreatedAt = time.Now().UTC()
	if _, err := s.bookings.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (s *MongoStore) ListBookings(ctx context.Context) ([]*clinic.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	return findAll[clinic.Booking](ctx, s.bookings, bson.M{}, opts)
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

func findAll[T any](ctx context.Context, col *mongo.Collection, filter interface{}, opts *options.FindOptions) ([]*T, error) {
	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", col.Name(), err)
	}
	defer cur.Close(ctx)
	out := []*T{}
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", col.Name(), err)
		}
		out = append(out, &v)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", col.Name(), err)
	}
	return out, nil
}
