package router

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/guhospital/hospital-api/internal/handler"
	announcementh "github.com/guhospital/hospital-api/internal/handler/announcement"
	appointmenth "github.com/guhospital/hospital-api/internal/handler/appointment"
	authh "github.com/guhospital/hospital-api/internal/handler/auth"
	billingh "github.com/guhospital/hospital-api/internal/handler/billing"
	doctorh "github.com/guhospital/hospital-api/internal/handler/doctor"
	orderh "github.com/guhospital/hospital-api/internal/handler/order"
	patienth "github.com/guhospital/hospital-api/internal/handler/patient"
	pharmacyh "github.com/guhospital/hospital-api/internal/handler/pharmacy"
	prescriptionh "github.com/guhospital/hospital-api/internal/handler/prescription"
	roomh "github.com/guhospital/hospital-api/internal/handler/room"
	"github.com/guhospital/hospital-api/internal/middleware"
	"github.com/guhospital/hospital-api/internal/model"
	"github.com/guhospital/hospital-api/pkg/validator"
)

type Handlers struct {
	Base         *handler.Handler
	Auth         *authh.Handler
	Patient      *patienth.Handler
	Appointment  *appointmenth.Handler
	Billing      *billingh.Handler
	Doctor       *doctorh.Handler
	Prescription *prescriptionh.Handler
	Pharmacy     *pharmacyh.Handler
	Lab          *orderh.Handler
	Radiology    *orderh.Handler
	Announcement *announcementh.Handler
	Room         *roomh.Handler
}

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration
	MaxUploadBytes int64
	MetricsPrefix  string
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, cfg Config) *Router {
	gin.SetMode(gin.ReleaseMode)
	validator.Register()

	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		metrics:  initRouterMetrics(cfg.MetricsPrefix),
	}

	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = middleware.DefaultTimeoutConfig().Duration
	}

	sizeLimit := middleware.DefaultSizeLimitConfig()
	if cfg.MaxUploadBytes > 0 {
		sizeLimit.MaxUploadSize = cfg.MaxUploadBytes
	}
	sizeLimit.UploadPaths = []string{
		"/api/v1/patients/me/photo",
		"/api/v1/patients/me/insurance/document",
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: cfg.RequestTimeout}),
		middleware.SizeLimit(sizeLimit),
	)

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderXRequestID},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	if cfg.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		engine.Use(limiter.Middleware())
	}

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	r.setupHealthCheck(api)
	r.setupPublicRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.setupProtectedRoutes(protected)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.handlers.Base.LivenessCheck)
		health.GET("/ready", r.handlers.Base.ReadinessCheck)
		health.GET("/metrics", r.handlers.Base.MetricsHandler)
	}
}

func (r *Router) setupPublicRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/login", r.handlers.Auth.Login)
		auth.POST("/refresh", r.handlers.Auth.Refresh)
		auth.POST("/forgot-password", r.handlers.Auth.ForgotPassword)
		auth.POST("/reset-password", r.handlers.Auth.ResetPassword)
	}
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/change-password", r.handlers.Auth.ChangePassword)

	// Shared directory lookups.
	doctors := rg.Group("/doctors")
	{
		doctors.GET("/specialties", r.handlers.Doctor.ListSpecialties)
		doctors.GET("/availability/days", r.handlers.Doctor.AvailableDays)
		doctors.GET("/availability/hours", r.handlers.Doctor.AvailableHours)
		doctors.GET("/search", r.handlers.Doctor.FindBySlot)
		doctors.GET("/:id", r.handlers.Doctor.Get)
		doctors.GET("/:id/profile", r.handlers.Doctor.Profile)
		doctors.GET("/:id/slots", r.handlers.Appointment.AvailableSlots)
	}

	rg.GET("/departments", r.handlers.Room.ListDepartments)
	rg.GET("/departments/:id/doctors", r.handlers.Doctor.ListByDepartment)
	rg.GET("/rooms/available", r.handlers.Room.ListAvailable)
	rg.GET("/announcements", r.handlers.Announcement.ListMine)

	// Patient self-service portal.
	me := rg.Group("", r.auth.RequireRole(model.RolePatient))
	{
		me.GET("/patients/me", r.handlers.Patient.Profile)
		me.PUT("/patients/me", r.handlers.Patient.UpdateProfile)
		me.POST("/patients/me/photo", r.handlers.Patient.UploadPhoto)
		me.PUT("/patients/me/insurance", r.handlers.Patient.UpdateInsurance)
		me.POST("/patients/me/insurance/document", r.handlers.Patient.UploadInsuranceDocument)
		me.GET("/appointments/upcoming", r.handlers.Appointment.ListUpcoming)
		me.GET("/appointments/history", r.handlers.Appointment.ListPast)
		me.GET("/billings/me", r.handlers.Billing.ListMine)
		me.POST("/billings/:id/pay", r.handlers.Billing.ProcessPayment)
		me.GET("/prescriptions/me", r.handlers.Prescription.ListMine)
	}

	// Reception desk.
	reception := rg.Group("", r.auth.RequireRole(model.RoleReceptionist))
	{
		reception.POST("/patients", r.handlers.Patient.Register)
		reception.GET("/patients", r.handlers.Patient.List)
		reception.GET("/patients/search", r.handlers.Patient.Search)
		reception.POST("/appointments", r.handlers.Appointment.Book)
		reception.GET("/appointments", r.handlers.Appointment.List)
		reception.PUT("/appointments/:id/reschedule", r.handlers.Appointment.Reschedule)
		reception.DELETE("/appointments/:id", r.handlers.Appointment.Cancel)
		reception.GET("/billings", r.handlers.Billing.List)
		reception.GET("/billings/pending", r.handlers.Billing.ListPending)
		reception.GET("/billings/export", r.handlers.Billing.Export)
	}

	// Clinical staff.
	clinical := rg.Group("", r.auth.RequireRole(model.RoleDoctor, model.RoleReceptionist))
	{
		clinical.GET("/patients/:id", r.handlers.Patient.Get)
		clinical.GET("/patients/:id/allergies", r.handlers.Patient.ListAllergies)
		clinical.GET("/appointments/:id", r.handlers.Appointment.Get)
		clinical.GET("/billings/:id", r.handlers.Billing.Get)
		clinical.GET("/billings/:id/invoice", r.handlers.Billing.DownloadInvoice)
	}

	// Doctor portal.
	doctor := rg.Group("", r.auth.RequireRole(model.RoleDoctor))
	{
		doctor.GET("/appointments/mine", r.handlers.Appointment.ListMine)
		doctor.PUT("/patients/:id/status", r.handlers.Patient.UpdateStatus)
		doctor.PUT("/patients/:id/diagnosis", r.handlers.Patient.UpdateDiagnosis)
		doctor.PUT("/patients/:id/allergies", r.handlers.Patient.ReplaceAllergies)
		doctor.POST("/prescriptions", r.handlers.Prescription.Create)
		doctor.GET("/prescriptions", r.handlers.Prescription.List)
		doctor.POST("/orders/lab", r.handlers.Lab.Place)
		doctor.POST("/orders/radiology", r.handlers.Radiology.Place)
		doctor.GET("/orders/lab/suggest", r.handlers.Lab.Suggest)
		doctor.GET("/orders/radiology/suggest", r.handlers.Radiology.Suggest)
		doctor.GET("/orders/lab/completed", r.handlers.Lab.ListCompleted)
		doctor.GET("/orders/radiology/completed", r.handlers.Radiology.ListCompleted)
		doctor.POST("/announcements", r.handlers.Announcement.Create)
	}

	// Pharmacy portal.
	pharmacy := rg.Group("", r.auth.RequireRole(model.RolePharmacist))
	{
		pharmacy.GET("/medications", r.handlers.Pharmacy.List)
		pharmacy.GET("/medications/stock", r.handlers.Pharmacy.StockLevels)
		pharmacy.GET("/medications/low-stock", r.handlers.Pharmacy.LowStock)
		pharmacy.GET("/medications/expiring", r.handlers.Pharmacy.ExpirationAlerts)
		pharmacy.GET("/medications/suggest", r.handlers.Pharmacy.Suggest)
		pharmacy.GET("/prescriptions/:id", r.handlers.Prescription.Get)
		pharmacy.PUT("/prescriptions/:id", r.handlers.Prescription.Update)
		pharmacy.POST("/prescriptions/:id/confirm", r.handlers.Prescription.Confirm)
		pharmacy.GET("/prescriptions/refills", r.handlers.Prescription.ListRefillGroups)
		pharmacy.POST("/prescriptions/refills", r.handlers.Prescription.RefillBatch)
	}

	// Lab and radiology worklists are shared by clinical staff.
	worklists := rg.Group("", r.auth.RequireRole(model.RoleDoctor, model.RoleReceptionist))
	{
		worklists.GET("/orders/lab/pending", r.handlers.Lab.ListPending)
		worklists.GET("/orders/radiology/pending", r.handlers.Radiology.ListPending)
		worklists.GET("/orders/lab/:id", r.handlers.Lab.Get)
		worklists.GET("/orders/radiology/:id", r.handlers.Radiology.Get)
		worklists.POST("/orders/lab/:id/complete", r.handlers.Lab.Complete)
		worklists.POST("/orders/radiology/:id/complete", r.handlers.Radiology.Complete)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
