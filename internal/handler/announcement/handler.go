package announcement

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guhospital/hospital-api/internal/handler"
	"github.com/guhospital/hospital-api/internal/middleware"
	"github.com/guhospital/hospital-api/internal/model"
	announcementsvc "github.com/guhospital/hospital-api/internal/service/announcement"
)

type Handler struct {
	service *announcementsvc.Service
}

func NewHandler(service *announcementsvc.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	createdBy, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "not authenticated"})
		return
	}

	var req model.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	announcement, err := h.service.Create(c.Request.Context(), createdBy, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": announcement})
}

func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "not authenticated"})
		return
	}

	announcements, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": announcements})
}
