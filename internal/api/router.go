package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hackgods/appointment-booking/internal/appointment"
	"github.com/hackgods/appointment-booking/internal/flash"
)

// DefaultMaxFormBytes caps the size of a booking form submission.
const DefaultMaxFormBytes = 64 << 10

type AppointmentService interface {
	Book(ctx context.Context, date, time string) (appointment.Result, error)
	List(ctx context.Context) ([]appointment.Appointment, error)
}

type RouterConfig struct {
	Service      AppointmentService
	Flash        flash.Store // nil disables flash messages
	Dependencies []Dependency
	Logger       *slog.Logger
	CORSOrigins  []string
	MaxFormBytes int64
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	maxForm := cfg.MaxFormBytes
	if maxForm <= 0 {
		maxForm = DefaultMaxFormBytes
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(chimiddleware.RealIP)
	r.Use(NewLoggingMiddleware(logger))
	r.Use(chimiddleware.Recoverer)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(NewCORSMiddleware(cfg.CORSOrigins))
	}

	health := NewHealthHandler(cfg.Dependencies, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	h := &appointmentHandlers{
		svc:    cfg.Service,
		flash:  cfg.Flash,
		logger: logger,
	}
	r.Get("/", h.bookingForm)
	r.Get("/appointments", h.listAppointments)
	r.With(NewMaxBodySizeMiddleware(maxForm)).Post("/appointments", h.createAppointment)

	return r
}
