package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/SudityaSenaNimmala/Access-Requests/internal/api/handler"
	mw "github.com/SudityaSenaNimmala/Access-Requests/internal/api/middleware"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/config"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/core"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/model"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/notify"
)

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
	pool     *pgxpool.Pool
	hub      *notify.Hub
	cfg      *config.Config
}

func NewServer(logger zerolog.Logger, pool *pgxpool.Pool, runner core.TargetRunner, cfg *config.Config) (*Server, error) {
	secretsKey, err := cfg.DecodedSecretsKey()
	if err != nil {
		return nil, err
	}

	hub := notify.NewHub(logger)
	services := core.NewServices(pool, runner, hub, secretsKey)

	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		services: services,
		pool:     pool,
		hub:      hub,
		cfg:      cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	// Status event stream; authenticates its own token query param.
	events := handler.NewEvents(s.hub, s.services.User)
	s.router.Get("/ws", events.Stream)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(s.services.User))

		user := handler.NewUser(s.services.User)
		r.Get("/me", user.Me)

		accessRequest := handler.NewAccessRequest(s.services.AccessRequest)
		r.Post("/requests", accessRequest.Create)
		r.Get("/requests/my", accessRequest.ListMine)
		r.Get("/requests/{id}", accessRequest.Get)
		r.Post("/requests/{id}/resubmit", accessRequest.Resubmit)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(model.RoleTeamLead, model.RoleAdmin))
			r.Get("/requests/team", accessRequest.ListTeam)
			r.Post("/requests/{id}/approve", accessRequest.Approve)
			r.Post("/requests/{id}/reject", accessRequest.Reject)
		})

		dbInstance := handler.NewDBInstance(s.services.DBInstance)
		r.Get("/instances", dbInstance.List)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(model.RoleAdmin))
			r.Get("/requests", accessRequest.List)
			r.Post("/instances", dbInstance.Create)
			r.Get("/instances/{id}", dbInstance.Get)
			r.Put("/instances/{id}", dbInstance.Update)
			r.Delete("/instances/{id}", dbInstance.Delete)
			r.Post("/instances/{id}/test", dbInstance.TestConnection)
			r.Post("/users", user.Create)
		})
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.pool.Ping(r.Context()); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
