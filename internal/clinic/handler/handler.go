package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/clinicbook/clinicbook/backend/go-services/internal/clinic"
	"github.com/clinicbook/clinicbook/backend/go-services/internal/clinic/service"
	"github.com/clinicbook/clinicbook/backend/go-services/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the services, doctors and bookings endpoints on r.
func RegisterRoutes(r gin.IRoutes, svc service.Service) {
	r.POST("/services", func(c *gin.Context) {
		var req service.ServiceInput
		if !bindJSON(c, &req) {
			return
		}
		s, err := svc.CreateService(c.Request.Context(), req)
		if err != nil {
			writeError(c, clinic.KindService, err)
			return
		}
		metrics.RecordsCreated.WithLabelValues(clinic.KindService).Inc()
		c.JSON(http.StatusCreated, s)
	})

	r.GET("/services", func(c *gin.Context) {
		list, err := svc.ListServices(c.Request.Context())
		if err != nil {
			writeError(c, clinic.KindService, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	r.POST("/doctors", func(c *gin.Context) {
		var req service.DoctorInput
		if !bindJSON(c, &req) {
			return
		}
		d, err := svc.CreateDoctor(c.Request.Context(), req)
		if err != nil {
			writeError(c, clinic.KindDoctor, err)
			return
		}
		metrics.RecordsCreated.WithLabelValues(clinic.KindDoctor).Inc()
		c.JSON(http.StatusCreated, d)
	})

	r.GET("/doctors", func(c *gin.Context) {
		list, err := svc.ListDoctors(c.Request.Context())
		if err != nil {
			writeError(c, clinic.KindDoctor, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	r.POST("/bookings", func(c *gin.Context) {
		var req service.BookingInput
		if !bindJSON(c, &req) {
			return
		}
		b, err := svc.CreateBooking(c.Request.Context(), req)
		if err != nil {
			writeError(c, clinic.KindBooking, err)
			return
		}
		metrics.RecordsCreated.WithLabelValues(clinic.KindBooking).Inc()
		c.JSON(http.StatusCreated, b)
	})

	r.GET("/bookings", func(c *gin.Context) {
		list, err := svc.ListBookings(c.Request.Context())
		if err != nil {
			writeError(c, clinic.KindBooking, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})
}

// bindJSON decodes the request body into v. An empty body decodes to the zero
// value so the service reports the missing fields.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return false
	}
	return true
}

func writeError(c *gin.Context, kind string, err error) {
	_ = c.Error(err)
	if clinic.IsClientError(err) {
		if errors.Is(err, clinic.ErrDuplicate) {
			metrics.DuplicatesRejected.WithLabelValues(kind).Inc()
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
}
