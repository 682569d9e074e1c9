// Package api declares HTTP contracts and route registration helpers.
//
// Three surfaces share one router: the persistence API under /api that
// exposes the durable store, the storefront API under /app that runs on the
// optimistic synchronizer, and the live score channel at /ws/scores.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Showrav193/Sportsworld/internal/adapters/http/swagger"
	"github.com/Showrav193/Sportsworld/internal/adapters/textgen"
	"github.com/Showrav193/Sportsworld/internal/domain/model"
	"github.com/Showrav193/Sportsworld/internal/state"
	"github.com/Showrav193/Sportsworld/pkg/logger"
)

const maxBodyBytes = 4 << 20

// Persistence is the durable store served under /api.
type Persistence interface {
	Load(ctx context.Context, c model.Collection, dst any) error
	Replace(ctx context.Context, c model.Collection, records any) error
	AppendOrder(ctx context.Context, o model.Order) error
	RegisterUser(ctx context.Context, u model.User) error
	SetUserBlocked(ctx context.Context, userID string, blocked bool) error
}

// Storefront is the optimistic state served under /app.
type Storefront interface {
	Snapshot(c model.Collection) (any, error)
	Scores() []model.Match
	Replace(ctx context.Context, c model.Collection, records any) error
	PlaceOrder(ctx context.Context, o model.Order) error
	Checkout(ctx context.Context, userID string, items []model.CartItem) (model.Order, error)
	Login(email, password string) (model.User, error)
	RegisterUser(ctx context.Context, username, email string) (model.User, error)
	SetUserBlocked(ctx context.Context, userID string, blocked bool) error
	AddComment(ctx context.Context, articleID, username, text string) (model.Comment, error)
	PublishArticle(ctx context.Context, a model.Article) (model.Article, error)
	Status() state.Status
	Watch(fn func(state.ScoresEvent)) (cancel func())
}

// Writer generates article copy for the newsroom and match commentary.
type Writer interface {
	GenerateArticle(ctx context.Context, topic string) textgen.Article
	MatchSummary(ctx context.Context, description string) string
}

// Server wires HTTP routes for the storefront.
type Server struct {
	store       Persistence
	storefront  Storefront
	writer      Writer
	stats       StatsProvider
	corsOrigins []string
	logger      logger.Logger

	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	hub           *Hub
}

// NewServer creates a new API server. Surfaces whose dependency is missing
// are not mounted.
func NewServer(opts ...Option) *Server {
	s := &Server{
		corsOrigins: []string{"*"},
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.writer == nil {
		s.writer = textgen.New()
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(s.stats)
	if s.storefront != nil {
		s.hub = NewHub(s.storefront, s.logger.Named("ws"))
	}
	return s
}

// Hub returns the live score hub, or nil when no storefront is mounted.
func (s *Server) Hub() *Hub { return s.hub }

// Handler builds the router with every mounted surface.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth))
	if s.stats != nil {
		r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats))
	}
	swagger.Register(ctx, r)

	if s.store != nil {
		r.Route("/api", func(r chi.Router) {
			r.Post("/users/block", MetricsMiddleware(s.handleStoreBlock))
			r.Post("/users/register", MetricsMiddleware(s.handleStoreRegister))
			r.Get("/{collection}", MetricsMiddleware(s.handleStoreRead))
			r.Post("/{collection}", MetricsMiddleware(s.handleStoreWrite))
		})
	}

	if s.storefront != nil {
		r.Route("/app", func(r chi.Router) {
			r.Get("/status", MetricsMiddleware(s.handleStatus))
			r.Post("/checkout", MetricsMiddleware(s.handleCheckout))
			r.Post("/login", MetricsMiddleware(s.handleLogin))
			r.Post("/register", MetricsMiddleware(s.handleRegister))
			r.Post("/users/block", MetricsMiddleware(s.handleBlock))
			r.Post("/news/generate", MetricsMiddleware(s.handleGenerate))
			r.Post("/news/{id}/comments", MetricsMiddleware(s.handleComment))
			r.Get("/scores/{id}/summary", MetricsMiddleware(s.handleSummary))
			r.Get("/{collection}", MetricsMiddleware(s.handleSnapshot))
			r.Put("/{collection}", MetricsMiddleware(s.handleReplace))
			r.Post("/{collection}", MetricsMiddleware(s.handleAppend))
		})
		r.Get("/ws/scores", s.hub.ServeHTTP)
	}

	return r
}

type successResponse struct {
	Success bool `json:"success"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", chimw.GetReqID(r.Context())),
			logger.Error(err))
	}
	writeError(w, status, code, err)
}

// decode reads a JSON body into dst.
func decode(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %w", ErrBadRequest, err)
	}
	return nil
}

func collectionParam(r *http.Request) (model.Collection, bool) {
	c, err := model.ParseCollection(chi.URLParam(r, "collection"))
	return c, err == nil
}
