package appointment

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/guhospital/hospital-api/internal/handler"
	"github.com/guhospital/hospital-api/internal/middleware"
	"github.com/guhospital/hospital-api/internal/model"
	appointmentsvc "github.com/guhospital/hospital-api/internal/service/appointment"
)

type Handler struct {
	service *appointmentsvc.Service
}

func NewHandler(service *appointmentsvc.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Book(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	result, err := h.service.Book(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": result})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid appointment ID"})
		return
	}

	if err := h.service.Cancel(c.Request.Context(), id); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "appointment cancelled"})
}

func (h *Handler) Reschedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid appointment ID"})
		return
	}

	var req model.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if err := h.service.Reschedule(c.Request.Context(), id, &req); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "appointment rescheduled"})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid appointment ID"})
		return
	}

	appointment, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": appointment})
}

func (h *Handler) List(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	appointments, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": appointments})
}

// ListMine serves the authenticated doctor's schedule.
func (h *Handler) ListMine(c *gin.Context) {
	doctorID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "not authenticated"})
		return
	}

	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	appointments, err := h.service.ListForDoctor(c.Request.Context(), doctorID, filters)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": appointments})
}

func (h *Handler) ListUpcoming(c *gin.Context) {
	patientID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "not authenticated"})
		return
	}

	appointments, err := h.service.ListUpcomingForPatient(c.Request.Context(), patientID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": appointments})
}

func (h *Handler) ListPast(c *gin.Context) {
	patientID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "not authenticated"})
		return
	}

	appointments, err := h.service.ListPastForPatient(c.Request.Context(), patientID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": appointments})
}

func (h *Handler) AvailableSlots(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid doctor ID"})
		return
	}

	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "date is required"})
		return
	}

	slots, err := h.service.AvailableSlots(c.Request.Context(), doctorID, date)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": slots})
}

func parseFilters(c *gin.Context) (*model.AppointmentFilters, error) {
	filters := &model.AppointmentFilters{}

	if v := c.Query("date"); v != "" {
		date, err := time.Parse(model.DateLayout, v)
		if err != nil {
			return nil, err
		}
		filters.Date = &date
	}
	filters.Time = c.Query("time")
	if v := c.Query("doctor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		filters.DoctorID = &id
	}
	if v := c.Query("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		filters.PatientID = &id
	}
	if v := c.Query("room_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		filters.RoomID = &id
	}
	filters.Status = model.AppointmentStatus(c.Query("status"))
	filters.PatientName = c.Query("patient_name")

	return filters, nil
}
