package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medconsult/consultation-service/internal/api/http/handlers"
	"github.com/medconsult/consultation-service/internal/auth"
	"github.com/medconsult/consultation-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Admin          *handlers.AdminHandler
	Profiles       *handlers.ProfileHandler
	Consultations  *handlers.ConsultationHandler
	Prescriptions  *handlers.PrescriptionHandler
	Documents      *handlers.DocumentHandler
	AuthMiddleware *auth.AuthMiddleware
	// AuthRateLimit guards register and login. Nil disables it.
	AuthRateLimit fiber.Handler
	// Metrics serves /metrics when set.
	Metrics fiber.Handler
}

// RegisterRoutes wires HTTP routes. Each role group admits exactly one role.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}
	app.Get("/uploads/profile/:file", cfg.Profiles.ServePicture)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	if cfg.AuthRateLimit != nil {
		authGroup.Use(cfg.AuthRateLimit)
	}
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	admin := api.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/overview", cfg.Admin.Overview)
	admin.Get("/users", cfg.Admin.Users)
	admin.Get("/doctors/pending", cfg.Admin.PendingDoctors)
	admin.Patch("/doctors/approve/:id", cfg.Admin.ApproveDoctor)
	admin.Patch("/doctors/reject/:id", cfg.Admin.RejectDoctor)
	admin.Get("/notifications/failed", cfg.Admin.FailedNotifications)

	doctor := api.Group("/doctor", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleDoctor))
	doctor.Get("/dashboard", cfg.Profiles.DoctorDashboard)
	doctor.Get("/profile", cfg.Profiles.DoctorProfile)
	doctor.Put("/profile", cfg.Profiles.UpdateDoctor)
	doctor.Post("/upload-profile-pic", cfg.Profiles.UploadPicture)
	doctor.Get("/consultations", cfg.Consultations.List)
	doctor.Patch("/consultations/:id/status", cfg.Consultations.UpdateStatus)
	doctor.Post("/prescriptions", cfg.Prescriptions.Create)
	doctor.Get("/prescriptions", cfg.Prescriptions.List)
	doctor.Patch("/prescriptions/:id", cfg.Prescriptions.Update)
	doctor.Delete("/prescriptions/:id", cfg.Prescriptions.Delete)
	registerDocumentRoutes(doctor, cfg.Documents)

	patient := api.Group("/patient", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RolePatient))
	patient.Get("/profile", cfg.Profiles.PatientProfile)
	patient.Put("/profile", cfg.Profiles.UpdatePatient)
	patient.Post("/upload-profile-pic", cfg.Profiles.UploadPicture)
	patient.Get("/doctors", cfg.Consultations.Doctors)
	patient.Post("/consultations", cfg.Consultations.Book)
	patient.Get("/consultations", cfg.Consultations.List)
	patient.Get("/prescriptions", cfg.Prescriptions.List)
	patient.Get("/prescriptions/:id/download", cfg.Prescriptions.Download)
	registerDocumentRoutes(patient, cfg.Documents)
}

func registerDocumentRoutes(group fiber.Router, h *handlers.DocumentHandler) {
	group.Post("/upload-document", h.Upload)
	group.Get("/documents", h.List)
	group.Get("/documents/:id/download", h.Download)
	group.Delete("/documents/:id", h.Delete)
}
