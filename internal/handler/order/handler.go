package order

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/guhospital/hospital-api/internal/handler"
	"github.com/guhospital/hospital-api/internal/middleware"
	"github.com/guhospital/hospital-api/internal/model"
	ordersvc "github.com/guhospital/hospital-api/internal/service/order"
)

// Handler serves one order kind; the router mounts one instance for lab and
// one for radiology.
type Handler struct {
	service *ordersvc.Service
	kind    model.OrderKind
}

func NewHandler(service *ordersvc.Service, kind model.OrderKind) *Handler {
	return &Handler{service: service, kind: kind}
}

func (h *Handler) Place(c *gin.Context) {
	doctorID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "not authenticated"})
		return
	}

	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	result, err := h.service.Place(c.Request.Context(), h.kind, doctorID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": result})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid order ID"})
		return
	}

	detail, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": detail})
}

func (h *Handler) ListPending(c *gin.Context) {
	orders, err := h.service.ListPending(c.Request.Context(), h.kind)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": orders})
}

func (h *Handler) ListCompleted(c *gin.Context) {
	orders, err := h.service.ListCompleted(c.Request.Context(), h.kind)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": orders})
}

func (h *Handler) Complete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid order ID"})
		return
	}

	var req model.CompleteOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if err := h.service.Complete(c.Request.Context(), id, &req); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "order completed"})
}

func (h *Handler) Suggest(c *gin.Context) {
	suggestions, err := h.service.SuggestCatalog(c.Request.Context(), h.kind, c.Query("q"))
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": suggestions})
}
