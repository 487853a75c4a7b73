package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"medunit-portal/internal/config"
	"medunit-portal/internal/domain"
	"medunit-portal/internal/handlers"
	"medunit-portal/internal/middleware"
	"medunit-portal/internal/resetstore"
)

// Deps is everything the handlers need.
type Deps struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Resets resetstore.Store
	Log    zerolog.Logger
	// Now defaults to time.Now.
	Now handlers.Clock
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}

	authHandler := handlers.NewAuthHandler(d.DB, d.Cfg, d.Resets, d.Log)
	userHandler := handlers.NewUserHandler(d.DB)
	appointmentHandler := handlers.NewAppointmentHandler(d.DB, d.Now, d.Log)
	recordHandler := handlers.NewRecordHandler(d.DB, d.Log)

	api := router.Group("/api")

	// Public routes (no authentication required)
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
		authRoutes.POST("/reset-password", authHandler.ResetPassword)
	}

	// Authenticated routes
	private := api.Group("")
	private.Use(middleware.AuthMiddleware(d.Cfg))
	{
		private.GET("/auth/profile", authHandler.GetProfile)

		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.GET("/doctors", userHandler.GetDoctors)
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(domain.RolePatient), appointmentHandler.CreateAppointment)
			// Ownership and the lifecycle table are checked in the handler.
			appointmentRoutes.PATCH("/:id", middleware.RoleAuthMiddleware(domain.RoleDoctor, domain.RolePatient), appointmentHandler.UpdateAppointmentStatus)
			appointmentRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(domain.RolePatient), appointmentHandler.WithdrawAppointment)
		}

		recordRoutes := private.Group("/records")
		{
			recordRoutes.GET("", recordHandler.GetRecords)
			recordRoutes.POST("", middleware.RoleAuthMiddleware(domain.RoleDoctor), recordHandler.CreateRecord)
			recordRoutes.GET("/patients", middleware.RoleAuthMiddleware(domain.RoleDoctor, domain.RoleAdmin), userHandler.GetPatients)
		}

		private.GET("/admin/stats", middleware.RoleAuthMiddleware(domain.RoleAdmin), userHandler.GetStats)
	}

	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
