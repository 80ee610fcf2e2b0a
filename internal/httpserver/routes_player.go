// internal/httpserver/routes_player.go
//
// Player-level endpoints that sit beside the game itself:
//   - GET /stats              → aggregated statistics over completed puzzles
//   - GET /settings           → current settings (defaults when none saved)
//   - PUT /settings           → partial update; applies to the active session
//   - GET /archive?length=N   → every archive date with the player's status
//   - GET /definitions/{word} → dictionary definitions for a finished word

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/robalobadob/wordibble/internal/daily"
	"github.com/robalobadob/wordibble/internal/stats"
)

func (s *Server) mountPlayer(r chi.Router) {
	r.Get("/stats", s.handleStats)
	r.Get("/settings", s.handleGetSettings)
	r.Put("/settings", s.handlePutSettings)
	r.Get("/archive", s.handleArchive)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	player := s.playerID(w, r)
	all := s.repo.Puzzles(player).GetAll()
	writeJSON(w, http.StatusOK, stats.Compute(lo.Values(all)))
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.repo.LoadSettings(s.playerID(w, r)))
}

// handlePutSettings decodes the body over the stored settings, so omitted
// fields keep their values. Out-of-range values are normalised on save.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	player := s.playerID(w, r)
	set := s.repo.LoadSettings(player)
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	saved, err := s.repo.SaveSettings(player, set)
	if err != nil {
		log.Error().Err(err).Str("player", player).Msg("save settings")
		writeJSON(w, http.StatusInternalServerError, errorRes{Error: "internal", Message: "Settings could not be saved."})
		return
	}
	if sess, ok := s.sessions.get(player); ok {
		sess.UpdateSettings(saved)
	}
	writeJSON(w, http.StatusOK, saved)
}

type archiveEntry struct {
	ID      string `json:"id"`
	DateISO string `json:"dateISO"`
	Status  string `json:"status"`
}

// handleArchive lists archive dates newest first.
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	player := s.playerID(w, r)
	n := s.repo.LoadSettings(player).WordLength
	if v := r.URL.Query().Get("length"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || !daily.ValidLength(parsed) {
			badRequest(w, "length must be between 5 and 7")
			return
		}
		n = parsed
	}

	dates, err := daily.DatesBetween(s.cfg.ArchiveStart, s.today())
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	played := s.repo.Puzzles(player).GetAll()
	entries := lo.Map(dates, func(d string, _ int) archiveEntry {
		id := daily.Identity{DateISO: d, WordLength: n}.Key()
		status := "none"
		if st, ok := played[id]; ok {
			status = string(st.GameStatus)
		}
		return archiveEntry{ID: id, DateISO: d, Status: status}
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"wordLength": n,
		"start":      s.cfg.ArchiveStart,
		"today":      s.today(),
		"entries":    lo.Reverse(entries),
	})
}

func (s *Server) handleDefinitions(w http.ResponseWriter, r *http.Request) {
	word := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "word")))
	defs, ok := s.catalog.Definitions(word)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorRes{Error: "not_found", Message: "No definition for " + word + "."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"word": word, "definitions": defs})
}
