// Package api REST API планировщика тренеров
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter собирает маршруты и middleware
func NewRouter(h *Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", UserIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/trainers", func(r chi.Router) {
			r.Get("/available", h.AvailableTrainers)
			r.Get("/available/extended", h.AvailableTrainersWeek)
			r.Get("/{id}/timeline", h.TrainerTimeline)
			r.Get("/{id}/occupation", h.TrainerOccupation)
			r.Get("/{id}/schedule", h.TrainerSchedule)
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Post("/", h.CreateAssignment)
			r.Patch("/{id}", h.UpdateAssignment)
		})

		r.Route("/courses", func(r chi.Router) {
			r.Post("/{id}/assign-trainers", h.AssignGroupTrainers)
			r.Get("/{id}/schedule", h.CourseSchedule)
		})

		r.Route("/personal-slots", func(r chi.Router) {
			r.Post("/", h.EnrollPersonalSlot)
			r.Post("/{id}/reassign", h.ReassignTrainer)
			r.Post("/{id}/extend", h.ExtendCourse)
		})

		r.Route("/holds", func(r chi.Router) {
			r.Get("/", h.ListPendingHolds)
			r.Post("/", h.CreateHold)
			r.Get("/active", h.ListActiveHolds)
			r.Get("/history", h.HoldHistory)
			r.Post("/{id}/approve", h.ApproveHold)
			r.Post("/{id}/reject", h.RejectHold)
		})
	})

	return r
}

// requestLogger пишет каждый запрос в zap
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}

			logger.Debug("HTTP request",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// Server HTTP-сервер с корректной остановкой
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// Start блокируется до остановки сервера
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.srv.Addr))

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown дожидается завершения активных запросов
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.srv.Shutdown(ctx)
}
