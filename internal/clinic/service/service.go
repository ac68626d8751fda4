package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/clinicbook/clinicbook/backend/go-services/internal/clinic"
	"github.com/clinicbook/clinicbook/backend/go-services/internal/clinic/repository"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MsgBookingFieldsRequired is the message returned when a booking misses any required field.
const MsgBookingFieldsRequired = "All fields are required"

// Service defines the clinic operations used by the handler layer.
// Client mistakes come back as *clinic.ValidationError or a clinic.ErrDuplicate;
// anything else is a storage failure.
type Service interface {
	CreateService(ctx context.Context, in ServiceInput) (*clinic.Service, error)
	ListServices(ctx context.Context) ([]*clinic.Service, error)
	CreateDoctor(ctx context.Context, in DoctorInput) (*clinic.Doctor, error)
	ListDoctors(ctx context.Context) ([]*clinic.PopulatedDoctor, error)
	CreateBooking(ctx context.Context, in BookingInput) (*clinic.Booking, error)
	ListBookings(ctx context.Context) ([]*clinic.Booking, error)
}

// ServiceInput is the POST /services body.
type ServiceInput struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"required_without=DoctorName"`
	DoctorName  string   `json:"doctorName"`
	Duration    *float64 `json:"duration" validate:"omitempty,gte=0"`
}

// DoctorInput is the POST /doctors body.
type DoctorInput struct {
	Name           string   `json:"name" validate:"required"`
	Specialization string   `json:"specialization" validate:"required"`
	Services       []string `json:"services"`
}

// BookingInput is the POST /bookings body.
type BookingInput struct {
	PatientName string `json:"patientName" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Service     string `json:"service" validate:"required"`
	Doctor      string `json:"doctor" validate:"required"`
}

// dateLayouts are tried in order when parsing a booking date.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// New returns a Service backed by store.
func New(store repository.Store) Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &clinicService{store: store, validate: v}
}

type clinicService struct {
	store    repository.Store
	validate *validator.Validate
}

func (s *clinicService) CreateService(ctx context.Context, in ServiceInput) (*clinic.Service, error) {
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	svc := &clinic.Service{
		Name:        in.Name,
		Description: in.Description,
		DoctorName:  in.DoctorName,
		Duration:    in.Duration,
	}
	if err := s.store.CreateService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *clinicService) ListServices(ctx context.Context) ([]*clinic.Service, error) {
	return s.store.ListServices(ctx)
}

func (s *clinicService) CreateDoctor(ctx context.Context, in DoctorInput) (*clinic.Doctor, error) {
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	ids, err := parseServiceRefs(in.Services)
	if err != nil {
		return nil, err
	}
	d := &clinic.Doctor{
		Name:           in.Name,
		Specialization: in.Specialization,
		Services:       ids,
	}
	if err := s.store.CreateDoctor(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// parseServiceRefs converts hex ids to ObjectIDs, dropping repeats but keeping first-seen order.
func parseServiceRefs(refs []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(refs))
	seen := make(map[primitive.ObjectID]struct{}, len(refs))
	for i, ref := range refs {
		id, err := primitive.ObjectIDFromHex(ref)
		if err != nil {
			return nil, clinic.Invalid("services[%d] is not a valid id", i)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// ListDoctors resolves each doctor's service references to full records,
// keeping the stored order and skipping references that no longer resolve.
func (s *clinicService) ListDoctors(ctx context.Context) ([]*clinic.PopulatedDoctor, error) {
	doctors, err := s.store.ListDoctors(ctx)
	if err != nil {
		return nil, err
	}

	var refs []primitive.ObjectID
	seen := map[primitive.ObjectID]struct{}{}
	for _, d := range doctors {
		for _, id := range d.Services {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				refs = append(refs, id)
			}
		}
	}
	services, err := s.store.FindServices(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("resolve doctor services: %w", err)
	}
	byID := make(map[primitive.ObjectID]*clinic.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}

	out := make([]*clinic.PopulatedDoctor, 0, len(doctors))
	for _, d := range doctors {
		pd := &clinic.PopulatedDoctor{
			ID:             d.ID,
			Name:           d.Name,
			Specialization: d.Specialization,
			Services:       make([]*clinic.Service, 0, len(d.Services)),
			CreatedAt:      d.CreatedAt,
		}
		for _, id := range d.Services {
			if svc, ok := byID[id]; ok {
				pd.Services = append(pd.Services, svc)
			}
		}
		out = append(out, pd)
	}
	return out, nil
}

func (s *clinicService) CreateBooking(ctx context.Context, in BookingInput) (*clinic.Booking, error) {
	if err := s.validate.Struct(in); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return nil, clinic.Invalid(MsgBookingFieldsRequired)
		}
		return nil, err
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return nil, err
	}
	serviceID, err := primitive.ObjectIDFromHex(in.Service)
	if err != nil {
		return nil, clinic.Invalid("service is not a valid id")
	}
	doctorID, err := primitive.ObjectIDFromHex(in.Doctor)
	if err != nil {
		return nil, clinic.Invalid("doctor is not a valid id")
	}
	b := &clinic.Booking{
		PatientName: in.PatientName,
		Phone:       in.Phone,
		Date:        date,
		Service:     serviceID,
		Doctor:      doctorID,
	}
	if err := s.store.CreateBooking(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *clinicService) ListBookings(ctx context.Context) ([]*clinic.Booking, error) {
	return s.store.ListBookings(ctx)
}

// ParseDate accepts RFC 3339 timestamps and the shorter ISO forms browsers send.
// Dates without a zone are taken as UTC. Precision is cut to milliseconds, the
// resolution of a BSON datetime, so every store returns the date it was given.
func ParseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC().Truncate(time.Millisecond), nil
		}
	}
	return time.Time{}, clinic.Invalid("date %q is not a valid date", v)
}

// validateStruct runs the struct tags and reports the first failure as a ValidationError.
func (s *clinicService) validateStruct(in interface{}) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}
	fe := ve[0]
	switch fe.Tag() {
	case "required":
		return clinic.Invalid("%s is required", fe.Field())
	case "required_without":
		return clinic.Invalid("%s or doctorName is required", fe.Field())
	case "gte":
		return clinic.Invalid("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	}
	return clinic.Invalid("%s is invalid", fe.Field())
}
