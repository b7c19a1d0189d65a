// Package api exposes the settlement engine over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/splitweek/internal/auth"
	"github.com/mmynk/splitweek/internal/middleware"
	"github.com/mmynk/splitweek/internal/models"
	"github.com/mmynk/splitweek/internal/service"
)

// Server is the splitweek HTTP API server.
type Server struct {
	svc            *service.SettlementService
	jwt            *auth.JWTManager
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(svc *service.SettlementService, jwt *auth.JWTManager) *Server {
	return &Server{svc: svc, jwt: jwt}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(corsMiddleware)
	r.Use(middleware.RequestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/v1/spaces/{spaceID}", func(r chi.Router) {
		r.Route("/settlement", func(r chi.Router) {
			r.Get("/current", s.handleCurrentPeriod)
			r.Get("/schedule", s.handleGetSchedule)
			r.With(middleware.RequireAuth(s.jwt)).Put("/schedule", s.handlePutSchedule)

			r.Route("/{periodID}", func(r chi.Router) {
				r.Get("/", s.handleGetPeriod)
				r.Get("/receipts", s.handleListReceipts)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAuth(s.jwt))
					r.Put("/receipts/{receiptID}", s.handleUpdateReceipt)
					r.Delete("/receipts/{receiptID}", s.handleDeleteReceipt)
					r.Post("/finalize", s.handleFinalize)
					r.Post("/participants/{userID}/payment-confirmed", s.handlePaymentConfirmed)
					r.Post("/participants/{userID}/transfer-completed", s.handleTransferCompleted)
				})
			})
		})

		r.With(middleware.RequireAuth(s.jwt)).Post("/receipts", s.handleSubmitReceipt)
	})

	return r
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps engine errors onto HTTP statuses: validation 400,
// missing entities 404, state conflicts 409, everything else 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case models.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrPeriodNotFound),
		errors.Is(err, models.ErrReceiptNotFound),
		errors.Is(err, models.ErrParticipantNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrPeriodSettled),
		errors.Is(err, models.ErrPeriodNotSettled):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
