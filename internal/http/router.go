package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"pollboard/internal/domain/question"
	"pollboard/internal/domain/user"
	"pollboard/internal/domain/vote"
	jwtpkg "pollboard/internal/platform/jwt"
	"pollboard/internal/worker"
)

type Handler struct {
	userSvc     *user.Service
	questionSvc *question.Service
	voteSvc     *vote.Service
	jwtMgr      *jwtpkg.Manager
	voteCh      chan<- worker.VoteEvent
	db          *sql.DB
	now         func() time.Time
}

func NewRouter(
	userSvc *user.Service,
	questionSvc *question.Service,
	voteSvc *vote.Service,
	jwtMgr *jwtpkg.Manager,
	voteCh chan<- worker.VoteEvent,
	db *sql.DB,
) http.Handler {
	return newRouter(userSvc, questionSvc, voteSvc, jwtMgr, voteCh, db, time.Now)
}

func newRouter(
	userSvc *user.Service,
	questionSvc *question.Service,
	voteSvc *vote.Service,
	jwtMgr *jwtpkg.Manager,
	voteCh chan<- worker.VoteEvent,
	db *sql.DB,
	now func() time.Time,
) http.Handler {
	h := &Handler{
		userSvc:     userSvc,
		questionSvc: questionSvc,
		voteSvc:     voteSvc,
		jwtMgr:      jwtMgr,
		voteCh:      voteCh,
		db:          db,
		now:         now,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(RequestLogger)
	r.Use(CORSMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", h.handleReady)
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", h.handleRegister)
		r.Post("/auth/login", h.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(MaybeAuthMiddleware(jwtMgr))

			r.Get("/questions", h.handleListQuestions)
			r.Get("/questions/{id}", h.handleGetQuestion)
			r.Get("/questions/{id}/results", h.handleResults)
		})

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(jwtMgr))

			r.With(RateLimitVotes(rate.Every(time.Minute/10), 3)).
				Post("/questions/{id}/vote", h.handleVote)

			r.Group(func(r chi.Router) {
				r.Use(RequireRole("admin"))
				r.Post("/questions", h.handleCreateQuestion)
				r.Delete("/questions/{id}", h.handleDeleteQuestion)
				r.Get("/users", h.handleListUsers)
				r.Patch("/users/{id}/role", h.handleUpdateUserRole)
			})
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	return strconv.ParseInt(idStr, 10, 64)
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":   "db_unavailable",
			"message": "database not configured",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":   "db_unavailable",
			"message": "database not ready",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
