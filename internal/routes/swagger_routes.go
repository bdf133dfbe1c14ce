package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"greenia/docs"
	"greenia/internal/config"
)

// RegisterSwaggerRoutes mounts the API docs UI. Production deployments do not expose it.
func RegisterSwaggerRoutes(r chi.Router, cfg *config.Config) {
	if cfg.IsProduction() {
		log.Info().Msg("Swagger UI disabled in production")
		return
	}

	docs.SwaggerInfo.Title = "Greenia API"
	toIndex := func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/swagger/index.html", http.StatusMovedPermanently)
	}
	r.Get("/swagger", toIndex)
	r.Get("/swagger/", toIndex)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
		httpSwagger.PersistAuthorization(true),
	))
}
