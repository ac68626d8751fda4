package clinic

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service is a bookable medical offering.
type Service struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	DoctorName  string             `json:"doctorName,omitempty" bson:"doctorName,omitempty"`
	Duration    *float64           `json:"duration,omitempty" bson:"duration,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

// Doctor is a practitioner. Services holds soft references to Service records,
// in the order they were submitted.
type Doctor struct {
	ID             primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Name           string               `json:"name" bson:"name"`
	Specialization string               `json:"specialization" bson:"specialization"`
	Services       []primitive.ObjectID `json:"services" bson:"services"`
	CreatedAt      time.Time            `json:"createdAt" bson:"createdAt"`
}

// PopulatedDoctor is a Doctor with its service references resolved.
type PopulatedDoctor struct {
	ID             primitive.ObjectID `json:"_id"`
	Name           string             `json:"name"`
	Specialization string             `json:"specialization"`
	Services       []*Service         `json:"services"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// Booking is a patient's reservation of a service with a doctor at a given time.
type Booking struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	PatientName string             `json:"patientName" bson:"patientName"`
	Phone       string             `json:"phone" bson:"phone"`
	Date        time.Time          `json:"date" bson:"date"`
	Service     primitive.ObjectID `json:"service" bson:"service"`
	Doctor      primitive.ObjectID `json:"doctor" bson:"doctor"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

// Record kinds, used as metric labels and in error messages.
const (
	KindService = "service"
	KindDoctor  = "doctor"
	KindBooking = "booking"
)
