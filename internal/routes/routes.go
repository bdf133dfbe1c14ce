// internal/routes/routes.go
package routes

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"greenia/internal/config"
	"greenia/internal/detection"
	"greenia/internal/interfaces"
	appmw "greenia/internal/middleware"
	"greenia/internal/metrics"
	"greenia/internal/services"
)

// Externals are the collaborators that talk to the outside world. Nil fields are
// built from cfg.
type Externals struct {
	Mailer   services.EmailSender
	Detector detection.Detector
	Sessions *services.SessionIssuer
}

type deps struct {
	db       *sql.DB
	cfg      *config.Config
	mailer   services.EmailSender
	detector detection.Detector
	sessions *services.SessionIssuer
	images   interfaces.ImageStore
}

func SetupRoutes(db *sql.DB, cfg *config.Config, s3Config *config.S3Config, ext Externals) *chi.Mux {
	d := &deps{
		db:       db,
		cfg:      cfg,
		mailer:   ext.Mailer,
		detector: ext.Detector,
		sessions: ext.Sessions,
	}
	if d.mailer == nil {
		d.mailer = services.NewEmailSender(cfg)
	}
	if d.detector == nil {
		d.detector = detection.NewRoboflowClient(detection.Options{
			BaseURL:    cfg.DetectionBaseURL,
			APIKey:     cfg.DetectionAPIKey,
			Model:      cfg.DetectionModel,
			Version:    cfg.DetectionVersion,
			Confidence: cfg.DetectionConfidence,
			Overlap:    cfg.DetectionOverlap,
			MaxBytes:   cfg.MaxUploadBytes,
			MaxSide:    cfg.DetectionImageSize,
			Timeout:    cfg.DetectionTimeout,
		})
	}
	if d.sessions == nil {
		d.sessions = services.NewSessionIssuer(cfg.JWTSecret, cfg.SessionTTL, nil)
	}
	if store := services.NewS3ImageStore(s3Config); store != nil {
		d.images = store
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appmw.RequestLogger)
	r.Use(appmw.Metrics)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"message": "Greenia API"})
	})
	r.Get("/health", healthHandler(db))
	r.Handle("/metrics", metrics.Handler())
	RegisterSwaggerRoutes(r, cfg)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		RegisterAuthRoutes(r, d)
		RegisterPlasticTypeRoutes(r, d)
		RegisterAdminRoutes(r, d)
		RegisterUserRoutes(r, d)
	})

	log.Info().
		Bool("image_archive", d.images != nil).
		Msg("Routes registered")
	return r
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		dbStatus := map[string]any{"status": "ok"}
		status := http.StatusOK
		if err := db.PingContext(ctx); err != nil {
			log.Warn().Err(err).Msg("Health check: database unreachable")
			dbStatus = map[string]any{"status": "down", "error": err.Error()}
			status = http.StatusServiceUnavailable
		}
		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		writeJSON(w, status, map[string]any{"status": overall, "db": dbStatus})
	}
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
