package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/guhospital/hospital-api/internal/handler"
	doctorsvc "github.com/guhospital/hospital-api/internal/service/doctor"
)

type Handler struct {
	service *doctorsvc.Service
}

func NewHandler(service *doctorsvc.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid doctor ID"})
		return
	}

	record, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": record})
}

func (h *Handler) Profile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid doctor ID"})
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": profile})
}

func (h *Handler) ListSpecialties(c *gin.Context) {
	specialties, err := h.service.ListSpecialties(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": specialties})
}

func (h *Handler) AvailableDays(c *gin.Context) {
	specialty := c.Query("specialty")
	if specialty == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "specialty is required"})
		return
	}

	days, err := h.service.AvailableDays(c.Request.Context(), specialty)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": days})
}

func (h *Handler) AvailableHours(c *gin.Context) {
	specialty := c.Query("specialty")
	day := c.Query("day")
	if specialty == "" || day == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "specialty and day are required"})
		return
	}

	hours, err := h.service.AvailableHours(c.Request.Context(), specialty, day)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": hours})
}

func (h *Handler) FindBySlot(c *gin.Context) {
	records, err := h.service.FindBySlot(c.Request.Context(), c.Query("specialty"), c.Query("day"), c.Query("hour"))
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": records})
}

func (h *Handler) ListByDepartment(c *gin.Context) {
	departmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid department ID"})
		return
	}

	records, err := h.service.ListByDepartment(c.Request.Context(), departmentID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": records})
}
