package routes

import (
	"github.com/go-chi/chi/v5"

	"greenia/internal/handlers"
	"greenia/internal/middleware"
)

func RegisterAuthRoutes(router chi.Router, d *deps) {
	authHandler := handlers.NewAuthHandler(d.db, d.cfg, d.mailer, d.sessions)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Get("/reset-password/verify", authHandler.VerifyResetToken)
		r.Post("/reset-password", authHandler.ResetPassword)

		r.With(middleware.JWTAuth(d.sessions)).Post("/logout", authHandler.Logout)
	})
}
