package routes

import (
	"github.com/go-chi/chi/v5"

	"greenia/internal/handlers"
	"greenia/internal/middleware"
	"greenia/internal/models"
)

func RegisterAdminRoutes(router chi.Router, d *deps) {
	adminHandler := handlers.NewAdminHandler(d.db, d.cfg, d.mailer)
	reportHandler := handlers.NewReportHandler(d.db)

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.JWTAuth(d.sessions))
		r.Use(middleware.RequireRole(models.RoleAdmin))

		r.Get("/profile", adminHandler.GetProfile)
		r.Put("/profile", adminHandler.UpdateProfile)
		r.Put("/profile/password", adminHandler.ChangePassword)
		r.Get("/license", adminHandler.License)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", adminHandler.ListUsers)
			r.Post("/", adminHandler.CreateUser)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", adminHandler.GetUser)
				r.Put("/", adminHandler.UpdateUser)
				r.Patch("/status", adminHandler.SetUserStatus)
			})
		})

		r.Get("/dashboard", reportHandler.Dashboard)
		r.Route("/reports", func(r chi.Router) {
			r.Get("/activity", reportHandler.Activity)
			r.Get("/activity/export", reportHandler.ExportActivity)
			r.Get("/impact", reportHandler.Impact)
			r.Get("/impact/export", reportHandler.ExportImpact)
			r.Get("/summary", reportHandler.Summary)
		})
	})
}
