// internal/httpserver/server.go
//
// HTTP server wiring for the ARG backend.
// Responsibilities:
//   - Router + middleware (CORS, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/metrics".
//   - Game endpoints: POST /generate_story, POST /check_answer, GET /history.
//   - Player identification via a signed cookie (see player.go).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled so the player cookie works
//     from a separately served client.
//   - /generate_story is bounded by the generation timeout rather than the
//     short timeout used for the other game routes.

package httpserver

import (
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arg-server/assets"
	"github.com/robalobadob/arg-server/internal/controller"
	"github.com/robalobadob/arg-server/internal/metrics"
)

// Options configures the HTTP layer.
type Options struct {
	JWTSecret         string
	ClientOrigin      string
	SecureCookies     bool
	RedactSolutions   bool
	GenerationTimeout time.Duration
}

// Server bundles router, game controller and HTTP options.
type Server struct {
	r     *chi.Mux
	ctl   *controller.Controller
	opts  Options
	index *template.Template
}

// New constructs a Server, installs middleware, and registers routes.
func New(ctl *controller.Controller, opts Options) (*Server, error) {
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = 90 * time.Second
	}
	if opts.JWTSecret == "" {
		opts.JWTSecret = "dev_secret_change_me"
	}
	index, err := assets.IndexTemplate()
	if err != nil {
		return nil, err
	}
	s := &Server{r: chi.NewRouter(), ctl: ctl, opts: opts, index: index}

	// --- middleware ---
	s.r.Use(chimw.RequestID)            // add X-Request-ID
	s.r.Use(chimw.RealIP)               // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)              // zerolog access log
	s.r.Use(chimw.Recoverer)            // recover from panics
	s.r.Use(corsFor(opts.ClientOrigin)) // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", s.handleIndex)
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Handle("/metrics", metrics.Handler())

	// --- game ---
	s.r.Group(func(r chi.Router) {
		r.Use(s.withPlayer)
		r.Post("/generate_story", s.handleGenerateStory)
		r.With(chimw.Timeout(10*time.Second)).Post("/check_answer", s.handleCheckAnswer)
		r.With(chimw.Timeout(10*time.Second)).Get("/history", s.handleHistory)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s, nil
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// requestLogger writes one zerolog line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("requestId", chimw.GetReqID(r.Context())).
			Msg("request")
	})
}

// corsFor enables credentialed CORS for a single origin.
func corsFor(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
