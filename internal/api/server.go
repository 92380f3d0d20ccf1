package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/voyager/internal/planner"
	"github.com/MikeSquared-Agency/voyager/internal/store"
)

// Planner generates travel text. *planner.Planner satisfies it.
type Planner interface {
	EstimateBudget(ctx context.Context, r planner.BudgetRequest) (string, error)
	PlanTrip(ctx context.Context, r planner.TripRequest) (string, error)
	RecommendMusic(ctx context.Context, r planner.MusicRequest) (string, error)
	Run(ctx context.Context, task planner.Task, prompt string, tap func(string)) (string, error)
}

// Accounts manages sign in and profiles. *store.Store satisfies it.
type Accounts interface {
	SignUp(ctx context.Context, username, password string) (*store.Session, error)
	SignIn(ctx context.Context, username, password string) (*store.Session, error)
	SignOut(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*store.Profile, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*store.Profile, error)
	ListProfiles(ctx context.Context) ([]store.Profile, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) (*store.Profile, error)
}

type Server struct {
	router   *chi.Mux
	http     *http.Server
	planner  Planner
	accounts Accounts
	logger   *slog.Logger
}

// NewServer builds the HTTP API. accounts may be nil, in which case the
// auth and profile routes are not mounted and plan routes are open.
func NewServer(port int, p Planner, accounts Accounts, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		planner:  p,
		accounts: accounts,
		logger:   logger,
	}
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 30 * time.Second,
	}

	router.Get("/health", s.health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.status)

		if accounts != nil {
			r.Post("/auth/signup", s.signUp)
			r.Post("/auth/signin", s.signIn)

			r.Group(func(r chi.Router) {
				r.Use(s.requireSession)
				r.Post("/auth/signout", s.signOut)
				r.Get("/me", s.me)
				r.Get("/profiles/{id}", s.getProfile)

				r.Group(func(r chi.Router) {
					r.Use(requireAdmin)
					r.Get("/profiles", s.listProfiles)
					r.Patch("/profiles/{id}/role", s.updateRole)
				})
			})
		}

		r.Group(func(r chi.Router) {
			if accounts != nil {
				r.Use(s.requireSession)
			}
			r.Post("/budget", s.estimateBudget)
			r.Post("/trips", s.planTrip)
			r.Post("/music", s.recommendMusic)
			r.Post("/budget/stream", s.streamBudget)
			r.Post("/trips/stream", s.streamTrip)
			r.Post("/music/stream", s.streamMusic)
		})
	})

	return s
}

func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests,
// including open streams, until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":  "voyager",
		"status":   "ok",
		"accounts": s.accounts != nil,
	})
}
