// Package api exposes an open well-log file over a small REST surface so
// that records and metadata can be browsed without local tooling.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter builds the chi router for a server instance.
func NewRouter(server *Server, metrics *Metrics, apiKey string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API key authentication middleware for protected routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(apiKey)))

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		r.Get("/label", metrics.InstrumentHandler("GET", "/api/v1/label", server.handleLabel))
		r.Get("/records", metrics.InstrumentHandler("GET", "/api/v1/records", server.handleRecords))
		r.Get("/records/{pos}", metrics.InstrumentHandler("GET", "/api/v1/records/{pos}", server.handleRecord))
		r.Get("/records/{pos}/sets", metrics.InstrumentHandler("GET", "/api/v1/records/{pos}/sets", server.handleRecordSets))

		r.Get("/stats", metrics.InstrumentHandler("GET", "/api/v1/stats", server.handleStats))
	})

	return r
}

// StartServer starts the HTTP server with all routes configured
func StartServer(file FileReader, config ServerConfig, logger *zap.Logger) error {
	metrics := NewMetrics()
	server := NewServer(file, config, metrics, logger)
	router := NewRouter(server, metrics, config.APIKey)

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	logger.Info("serving file",
		zap.String("path", file.Path()),
		zap.String("addr", addr))

	return http.ListenAndServe(addr, router)
}
