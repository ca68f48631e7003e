package room

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guhospital/hospital-api/internal/handler"
	roomsvc "github.com/guhospital/hospital-api/internal/service/room"
)

type Handler struct {
	service *roomsvc.Service
}

func NewHandler(service *roomsvc.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListAvailable(c *gin.Context) {
	rooms, err := h.service.ListAvailable(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": rooms})
}

func (h *Handler) ListDepartments(c *gin.Context) {
	departments, err := h.service.ListDepartments(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": departments})
}
