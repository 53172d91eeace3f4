package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/AchilleasB/sangria/donor-service/internal/adapters/middleware"
	"github.com/AchilleasB/sangria/donor-service/internal/core/domain"
)

const requestTimeout = 30 * time.Second

type RouterDeps struct {
	Auth           *AuthHandler
	Donors         *DonorHandler
	Health         *HealthHandler
	AuthMiddleware *middleware.AuthMiddleware
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewRouter wires every public endpoint.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(middleware.CORSMiddleware(d.AllowedOrigins))

	r.Get("/health", d.Health.Health)
	r.Get("/health/live", d.Health.Health)
	r.Get("/health/ready", d.Health.Ready)
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/register", d.Auth.Register)
	r.Post("/login", d.Auth.Login)

	r.Group(func(r chi.Router) {
		r.Use(d.AuthMiddleware.Authenticate)

		r.Post("/logout", d.Auth.Logout)
		r.Post("/api/triage", d.Donors.Screen)
		r.Post("/api/donors", d.Donors.Create)
		r.Get("/api/donors", d.Donors.List)
		r.With(middleware.RequireRole(string(domain.RoleAdmin))).
			Get("/api/donors/spreadsheet", d.Donors.Spreadsheet)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			)
		})
	}
}
