// internal/httpserver/routes_game.go
//
// HTTP routes for playing a puzzle.
// Endpoints under /game:
//   - POST   /game/load         → start or resume a puzzle (today, archive date, or random)
//   - GET    /game              → view of the active puzzle
//   - PUT    /game/row          → store the in-progress row
//   - POST   /game/guess        → submit a guess (body or the stored row)
//   - POST   /game/reveal       → use a letter-reveal lifeline
//   - POST   /game/complete     → apply a deferred won/lost transition now
//   - DELETE /game/puzzles/{id} → reset one puzzle
//   - DELETE /game/puzzles      → clear every puzzle
//
// Each player has at most one active session. Loading a puzzle closes the
// previous session before the new one starts.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordibble/internal/daily"
	"github.com/robalobadob/wordibble/internal/game"
	"github.com/robalobadob/wordibble/internal/settings"
)

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/load", s.handleLoad)
		r.Get("/", s.handleGetGame)
		r.Put("/row", s.handleRow)
		r.Post("/guess", s.handleGuess)
		r.Post("/reveal", s.handleReveal)
		r.Post("/complete", s.handleComplete)
		r.Delete("/puzzles/{id}", s.handleResetPuzzle)
		r.Delete("/puzzles", s.handleClearPuzzles)
	})
}

// today returns today's puzzle date in the configured timezone.
func (s *Server) today() string {
	return daily.DateKey(s.now(), s.cfg.Location)
}

// -----------------------------------------------------------------------------
// /game/load

// loadReq is the request payload for /game/load. Missing fields fall back to
// the player's settings; a missing date means today.
type loadReq struct {
	Date       string `json:"date"`
	WordLength int    `json:"wordLength"`
	Random     *bool  `json:"random"`
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	player := s.playerID(w, r)

	var req loadReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
	}

	set := s.repo.LoadSettings(player)
	n := req.WordLength
	if n == 0 {
		n = set.WordLength
	}
	random := set.RandomPuzzle && req.Date == ""
	if req.Random != nil {
		random = *req.Random
	}

	id, err := s.resolveIdentity(req.Date, n)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	sess, err := s.startSession(player, id, random, set)
	if err != nil {
		writeEngineError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, s.viewOf(sess))
}

// resolveIdentity validates an archive date (or picks today) for length n.
// Archive dates must fall between ARCHIVE_START and today.
func (s *Server) resolveIdentity(date string, n int) (daily.Identity, error) {
	if date == "" {
		return daily.Resolve(s.now(), s.cfg.Location, n)
	}
	id, err := daily.New(date, n)
	if err != nil {
		return daily.Identity{}, err
	}
	if date < s.cfg.ArchiveStart || date > s.today() {
		return daily.Identity{}, errors.New("date is outside the archive")
	}
	return id, nil
}

// startSession closes the player's current session and loads id.
func (s *Server) startSession(player string, id daily.Identity, random bool, set settings.Settings) (*game.Session, error) {
	s.sessions.drop(player)
	sess, err := game.Load(s.catalog, game.LoadRequest{Identity: id, Random: random}, game.Options{
		Settings:        set,
		Store:           s.repo.Puzzles(player),
		Dictionary:      s.catalog,
		CompletionDelay: s.cfg.CompletionDelay,
		Schedule:        s.schedule,
		Now:             s.now,
	})
	if err != nil {
		return nil, err
	}
	s.sessions.set(player, sess)
	log.Info().Str("player", player).Str("puzzle", id.Key()).Bool("random", random).Msg("session started")
	return sess, nil
}

// activeSession returns the player's session, resuming the last-played
// puzzle (or today's) when none is active, e.g. after a restart.
func (s *Server) activeSession(w http.ResponseWriter, r *http.Request) (string, *game.Session, error) {
	player := s.playerID(w, r)
	if sess, ok := s.sessions.get(player); ok {
		return player, sess, nil
	}
	set := s.repo.LoadSettings(player)
	id, err := daily.Resolve(s.now(), s.cfg.Location, set.WordLength)
	if last, ok := s.repo.Puzzles(player).LastPlayed(); ok {
		if prev, perr := daily.ParseKey(last); perr == nil {
			id, err = prev, nil
		}
	}
	if err != nil {
		return player, nil, err
	}
	sess, err := s.startSession(player, id, false, set)
	return player, sess, err
}

// -----------------------------------------------------------------------------
// /game

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	_, sess, err := s.activeSession(w, r)
	if err != nil {
		writeEngineError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, s.viewOf(sess))
}

// -----------------------------------------------------------------------------
// /game/row

type rowReq struct {
	Letters []string `json:"letters"`
}

func (s *Server) handleRow(w http.ResponseWriter, r *http.Request) {
	var req rowReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	_, sess, err := s.activeSession(w, r)
	if err != nil {
		writeEngineError(w, err, nil)
		return
	}
	if err := sess.SetCurrentGuess(req.Letters); err != nil {
		writeEngineError(w, err, s.viewOf(sess))
		return
	}
	writeJSON(w, http.StatusOK, s.viewOf(sess))
}

// -----------------------------------------------------------------------------
// /game/guess

// guessReq is the request payload for /game/guess. An empty guess submits
// the stored row.
type guessReq struct {
	Guess string `json:"guess"`
}

type guessRes struct {
	Result game.GuessResult `json:"result"`
	View   *view            `json:"view"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
	}
	_, sess, err := s.activeSession(w, r)
	if err != nil {
		writeEngineError(w, err, nil)
		return
	}
	guess := req.Guess
	if strings.TrimSpace(guess) == "" {
		guess = sess.Row()
	}
	res, err := sess.SubmitGuess(guess)
	if err != nil {
		writeEngineError(w, err, s.viewOf(sess))
		return
	}
	writeJSON(w, http.StatusOK, guessRes{Result: res, View: s.viewOf(sess)})
}

// -----------------------------------------------------------------------------
// /game/reveal

type revealRes struct {
	Reveal game.RevealResult `json:"reveal"`
	View   *view             `json:"view"`
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	_, sess, err := s.activeSession(w, r)
	if err != nil {
		writeEngineError(w, err, nil)
		return
	}
	res, err := sess.RevealLetter()
	if err != nil {
		writeEngineError(w, err, s.viewOf(sess))
		return
	}
	writeJSON(w, http.StatusOK, revealRes{Reveal: res, View: s.viewOf(sess)})
}

// -----------------------------------------------------------------------------
// /game/complete

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	_, sess, err := s.activeSession(w, r)
	if err != nil {
		writeEngineError(w, err, nil)
		return
	}
	sess.Complete()
	writeJSON(w, http.StatusOK, s.viewOf(sess))
}

// -----------------------------------------------------------------------------
// /game/puzzles

// handleResetPuzzle deletes one stored puzzle. If it is the active one, the
// session is dropped so the next request starts it fresh.
func (s *Server) handleResetPuzzle(w http.ResponseWriter, r *http.Request) {
	id, err := daily.ParseKey(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	player := s.playerID(w, r)
	s.sessions.dropIf(player, func(sess *game.Session) bool { return sess.Identity() != id })
	s.repo.Puzzles(player).Delete(id.Key())
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id.Key()})
}

func (s *Server) handleClearPuzzles(w http.ResponseWriter, r *http.Request) {
	player := s.playerID(w, r)
	s.sessions.drop(player)
	s.repo.Puzzles(player).DeleteAll()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
