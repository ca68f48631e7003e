package pharmacy

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guhospital/hospital-api/internal/handler"
	pharmacysvc "github.com/guhospital/hospital-api/internal/service/pharmacy"
)

type Handler struct {
	service *pharmacysvc.Service
}

func NewHandler(service *pharmacysvc.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	medications, err := h.service.ListMedications(c.Request.Context(), c.Query("name"))
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": medications})
}

func (h *Handler) StockLevels(c *gin.Context) {
	levels, err := h.service.StockLevels(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": levels})
}

func (h *Handler) LowStock(c *gin.Context) {
	items, err := h.service.LowStock(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": items})
}

func (h *Handler) ExpirationAlerts(c *gin.Context) {
	alerts, err := h.service.ExpirationAlerts(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": alerts})
}

func (h *Handler) Suggest(c *gin.Context) {
	suggestions, err := h.service.Suggest(c.Request.Context(), c.Query("q"))
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": suggestions})
}
