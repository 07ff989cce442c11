package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/alphatracker/backend/internal/auth"
	"github.com/alphatracker/backend/internal/notifications"
	"github.com/alphatracker/backend/internal/repository"
)

// QuoteService is the outbound price collaborator.
type QuoteService interface {
	GetQuote(ctx context.Context, ticker string) (float64, error)
}

type Server struct {
	pool       *pgxpool.Pool
	trades     *repository.TradeRepo
	quotes     QuoteService
	notify     *notifications.Sender
	verifier   *auth.Verifier
	validate   *validator.Validate
	log        *zap.Logger
	corsOrigin string
	httpServer *http.Server
}

// NewServer wires the HTTP surface. The pool, quote client, notifier and
// verifier are constructed in main and injected; a nil verifier means
// identity tokens are not enforced and the explicit user_id is trusted.
func NewServer(pool *pgxpool.Pool, quotes QuoteService, notify *notifications.Sender,
	verifier *auth.Verifier, port int, corsOrigin string, log *zap.Logger) *Server {

	s := &Server{
		pool:       pool,
		trades:     repository.NewTradeRepo(pool),
		quotes:     quotes,
		notify:     notify,
		verifier:   verifier,
		validate:   newValidator(),
		log:        log,
		corsOrigin: corsOrigin,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	origin := s.corsOrigin
	if origin == "" {
		origin = "*"
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{origin},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.requestLogger)
	r.Use(s.identityMiddleware)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Route("/trades", func(r chi.Router) {
		r.Post("/", s.handleCreateTrade)
		r.Get("/", s.handleListTrades)
		r.Get("/allocation", s.handleAllocation)
		r.Get("/stats", s.handleStats)
		r.Delete("/{id}", s.handleDeleteTrade)
	})

	r.Get("/api/price/{ticker}", s.handlePrice)

	// Static single-page client.
	r.Handle("/app/*", http.StripPrefix("/app/", http.FileServer(http.Dir("frontend"))))

	return r
}

func (s *Server) Start() error {
	s.log.Info("API server listening", zap.String("addr", s.httpServer.Addr))
	if s.verifier != nil {
		s.log.Info("identity token verification enabled")
	} else {
		s.log.Warn("identity token verification disabled, trusting explicit user_id")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

type identityKey struct{}

// identityMiddleware resolves the request identity from a bearer token when a
// verifier is configured. A missing header falls through to the explicit
// user_id parameter so pre-token clients keep working; a present but invalid
// token is rejected.
func (s *Server) identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.verifier == nil {
			next.ServeHTTP(w, r)
			return
		}

		authz := r.Header.Get("Authorization")
		if authz == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimPrefix(authz, "Bearer ")
		if token == authz {
			writeError(w, http.StatusUnauthorized, "malformed Authorization header")
			return
		}

		userID, err := s.verifier.VerifyToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// identity returns the authenticated user id from the request context, or the
// explicit user_id query parameter when no token identity is present.
func (s *Server) identity(r *http.Request) string {
	if uid, ok := r.Context().Value(identityKey{}).(string); ok && uid != "" {
		return uid
	}
	return r.URL.Query().Get("user_id")
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
