package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/doseline/doseline/internal/api"
	"github.com/doseline/doseline/internal/assessing"
	"github.com/doseline/doseline/internal/config"
	"github.com/doseline/doseline/internal/repository/postgres"
	"github.com/doseline/doseline/internal/storage"
	"github.com/doseline/doseline/pkg/models"
)

func main() {
	// Configure zerolog for structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	repo := postgres.NewPostgresAssessmentRepository(db)

	archive, err := storage.NewArchiveService(storage.ArchiveConfig{
		Bucket:    cfg.AWS.S3Bucket,
		Endpoint:  cfg.AWS.S3Endpoint,
		Region:    cfg.AWS.Region,
		AccessKey: cfg.AWS.AccessKeyID,
		SecretKey: cfg.AWS.SecretAccessKey,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create archive service")
	}

	svc := assessing.NewAssessmentService(repo, archive, assessing.Defaults{
		ReferenceHours:   cfg.Exposure.ReferenceHours,
		ExchangeRateDB:   cfg.Exposure.ExchangeRateDB,
		CriterionLevelDB: cfg.Exposure.CriterionLevelDB,
	})

	// Create Chi router
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(zerologLogger())
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Create Huma API
	humaConfig := huma.DefaultConfig("Doseline API", "1.0.0")
	humaConfig.DocsPath = "/api/docs"
	humaAPI := humachi.New(router, humaConfig)

	// Register health endpoint
	huma.Register(humaAPI, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns the health status of the service",
	}, func(ctx context.Context, input *struct{}) (*models.HealthResponse, error) {
		resp := &models.HealthResponse{}
		resp.Body.Status = "healthy"
		resp.Body.Version = "1.0.0"
		resp.Body.Time = time.Now()
		return resp, nil
	})

	api.RegisterRoutes(humaAPI, svc)

	// Serve OpenAPI spec at /api/docs
	router.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		spec, err := humaAPI.OpenAPI().MarshalJSON()
		if err != nil {
			http.Error(w, "Failed to generate OpenAPI spec", http.StatusInternalServerError)
			return
		}
		w.Write(spec)
	})

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting Doseline API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologLogger returns a Chi middleware that logs HTTP requests using zerolog
func zerologLogger() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				log.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("remote_ip", r.RemoteAddr).
					Int("status", ww.Status()).
					Dur("latency", time.Since(start)).
					Str("user_agent", r.UserAgent()).
					Msg("HTTP request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
