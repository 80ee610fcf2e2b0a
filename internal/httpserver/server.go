// internal/httpserver/server.go
//
// HTTP server wiring for the Wordibble backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/definitions/{word}".
//   - Player endpoints (optional auth; guests play under an anonymous id):
//     /game/*, /stats, /settings, /archive.
//   - Auth endpoints: /auth/signup, /auth/login, /auth/logout, /auth/me.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Every player request resolves to one player id: the account id when a
//     valid token is present, else the anonymous cookie id.
//   - Input rejections from the game engine are 422 with a message; lookup
//     failures are 503; anything else is a generic 500.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordibble/internal/config"
	"github.com/robalobadob/wordibble/internal/daily"
	"github.com/robalobadob/wordibble/internal/game"
	"github.com/robalobadob/wordibble/internal/store"
	"github.com/robalobadob/wordibble/internal/words"
)

// Deps are the collaborators a Server needs.
type Deps struct {
	Config  *config.Config
	Repo    *store.Repo
	Catalog *words.Catalog

	// Now defaults to time.Now. Schedule defaults to time.AfterFunc.
	Now      func() time.Time
	Schedule game.Scheduler
}

// Server bundles router, repositories, word data and active sessions.
type Server struct {
	r        *chi.Mux
	cfg      *config.Config
	repo     *store.Repo
	catalog  *words.Catalog
	now      func() time.Time
	schedule game.Scheduler
	sessions *sessionRegistry
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		cfg:      d.Config,
		repo:     d.Repo,
		catalog:  d.Catalog,
		now:      d.Now,
		schedule: d.Schedule,
		sessions: newSessionRegistry(),
	}
	if s.now == nil {
		s.now = time.Now
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // last-resort panic recovery
	s.r.Use(recoverJSON)                     // JSON 500 body for handler panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "wordibble",
			"endpoints": []string{"/health", "/game/*", "/stats", "/settings", "/archive", "/definitions/{word}", "/auth/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/definitions/{word}", s.handleDefinitions)

	// Player endpoints: OPTIONAL AUTH (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		s.mountGame(r)
		s.mountPlayer(r)
	})

	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Shutdown closes every active session so pending completions are flushed.
func (s *Server) Shutdown() { s.sessions.closeAll() }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoverJSON turns a handler panic into a generic recoverable 500 body.
func recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Str("request_id", chimw.GetReqID(r.Context())).
					Msg("handler panicked")
				writeJSON(w, http.StatusInternalServerError, errorRes{Error: "internal", Message: "Something went wrong. Please try again."})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ responses ----------------------------------

// errorRes is the body of every non-2xx response.
type errorRes struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Shake   bool   `json:"shake,omitempty"`
	View    *view  `json:"view,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_request", Message: msg})
}

// rejectionCodes maps engine rejections to stable error codes.
var rejectionCodes = map[error]string{
	game.ErrNotEnoughLetters:   "not_enough_letters",
	game.ErrNotInWordList:      "not_in_word_list",
	game.ErrGameOver:           "game_over",
	game.ErrCompletionPending:  "completion_pending",
	game.ErrNoRevealsLeft:      "no_reveals_left",
	game.ErrRevealWindowClosed: "reveal_window_closed",
	game.ErrNoRevealCandidates: "no_reveal_candidates",
}

// writeEngineError reports err from a game operation. v, if non-nil, is the
// unchanged view returned alongside rejections.
func writeEngineError(w http.ResponseWriter, err error, v *view) {
	switch {
	case game.IsRejection(err):
		code := "rejected"
		for target, c := range rejectionCodes {
			if errors.Is(err, target) {
				code = c
				break
			}
		}
		log.Debug().Str("code", code).Msg("input rejected")
		writeJSON(w, http.StatusUnprocessableEntity, errorRes{
			Error:   code,
			Message: err.Error(),
			Shake:   errors.Is(err, game.ErrNotInWordList),
			View:    v,
		})
	case errors.Is(err, daily.ErrInvalidIdentity):
		badRequest(w, err.Error())
	case errors.Is(err, game.ErrLookup):
		log.Error().Err(err).Msg("puzzle load failed")
		writeJSON(w, http.StatusServiceUnavailable, errorRes{Error: "puzzle_unavailable", Message: "Today's puzzle could not be loaded."})
	case errors.Is(err, game.ErrSessionClosed):
		writeJSON(w, http.StatusConflict, errorRes{Error: "session_closed", Message: "This puzzle was replaced; reload it."})
	default:
		log.Error().Err(err).Msg("game operation failed")
		writeJSON(w, http.StatusInternalServerError, errorRes{Error: "internal", Message: "Something went wrong. Please try again."})
	}
}
