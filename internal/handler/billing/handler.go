package billing

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/guhospital/hospital-api/internal/handler"
	"github.com/guhospital/hospital-api/internal/middleware"
	"github.com/guhospital/hospital-api/internal/model"
	billingsvc "github.com/guhospital/hospital-api/internal/service/billing"
)

type Handler struct {
	service *billingsvc.Service
}

func NewHandler(service *billingsvc.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid billing ID"})
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": summary})
}

func (h *Handler) List(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	billings, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": billings})
}

func (h *Handler) ListPending(c *gin.Context) {
	billings, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": billings})
}

// ListMine serves the authenticated patient's own billings.
func (h *Handler) ListMine(c *gin.Context) {
	patientID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "not authenticated"})
		return
	}

	status := model.PaymentStatus(c.Query("status"))
	billings, err := h.service.ListByPatient(c.Request.Context(), patientID, status)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": billings})
}

func (h *Handler) ProcessPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid billing ID"})
		return
	}

	var req model.ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	summary, err := h.service.ProcessPayment(c.Request.Context(), id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": summary})
}

func (h *Handler) DownloadInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid billing ID"})
		return
	}

	path, err := h.service.InvoicePath(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.FileAttachment(path, "invoice_"+id.String()+".pdf")
}

func (h *Handler) Export(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	data, err := h.service.ExportXLSX(c.Request.Context(), filters)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="billings.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func parseFilters(c *gin.Context) (*model.BillingFilters, error) {
	filters := &model.BillingFilters{}

	if v := c.Query("date"); v != "" {
		date, err := time.Parse(model.DateLayout, v)
		if err != nil {
			return nil, err
		}
		filters.Date = &date
	}
	if v := c.Query("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		filters.PatientID = &id
	}
	filters.PatientName = c.Query("patient_name")
	filters.Status = model.PaymentStatus(c.Query("status"))

	return filters, nil
}
