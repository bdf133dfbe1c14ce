package routes

import (
	"github.com/go-chi/chi/v5"

	"greenia/internal/handlers"
	"greenia/internal/middleware"
	"greenia/internal/models"
)

func RegisterUserRoutes(router chi.Router, d *deps) {
	userHandler := handlers.NewUserHandler(d.db, d.cfg, d.mailer)
	recognitionHandler := handlers.NewRecognitionHandler(d.db, d.cfg, d.detector, d.images)

	router.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(d.sessions))
		r.Use(middleware.RequireRole(models.RoleUser))

		r.Route("/me", func(r chi.Router) {
			r.Get("/", userHandler.Me)
			r.Get("/home", userHandler.Home)
			r.Put("/password", userHandler.ChangePassword)
		})

		r.Route("/recognitions", func(r chi.Router) {
			r.Get("/", recognitionHandler.List)
			r.Post("/", recognitionHandler.Create)
		})
	})
}

func RegisterPlasticTypeRoutes(router chi.Router, d *deps) {
	plasticTypeHandler := handlers.NewPlasticTypeHandler(d.db)
	router.Get("/plastic-types", plasticTypeHandler.List)
}
