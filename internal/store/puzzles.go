// internal/store/puzzles.go
//
// Puzzle State Store: per-player map of puzzle id -> snapshot, plus the
// last-played pointer. Implements game.StateStore.
//
// On first access a namespace without a v2 map is migrated from the legacy
// single-puzzle snapshot if one exists, otherwise initialised empty. When the
// map cannot be read the store answers empty and writes nothing, so a failing
// backend never overwrites stored history.

package store

import (
	"errors"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordibble/internal/daily"
	"github.com/robalobadob/wordibble/internal/game"
)

// PuzzleStore is one player's view of the puzzle map.
type PuzzleStore struct {
	repo   *Repo
	player string
}

var _ game.StateStore = (*PuzzleStore)(nil)

type lastPlayed struct {
	ID string `json:"id"`
}

// Puzzles returns the puzzle store for player.
func (r *Repo) Puzzles(player string) *PuzzleStore {
	return &PuzzleStore{repo: r, player: player}
}

// Player returns the namespace owner.
func (p *PuzzleStore) Player() string { return p.player }

func (p *PuzzleStore) key(name string) string { return playerKey(p.player, name) }

// GetAll returns every stored snapshot keyed by puzzle id. A read failure
// yields an empty map.
func (p *PuzzleStore) GetAll() map[string]game.State {
	mu := p.repo.lock(p.player)
	mu.Lock()
	defer mu.Unlock()
	all, err := p.loadLocked()
	if err != nil {
		return map[string]game.State{}
	}
	return all
}

// Get returns the snapshot for id.
func (p *PuzzleStore) Get(id string) (game.State, bool) {
	all := p.GetAll()
	st, ok := all[id]
	return st, ok
}

// Upsert stores s under s.ID and marks it as last played. Nothing is written
// if the existing map cannot be read.
func (p *PuzzleStore) Upsert(s game.State) {
	mu := p.repo.lock(p.player)
	mu.Lock()
	defer mu.Unlock()
	all, err := p.loadLocked()
	if err != nil {
		log.Warn().Err(err).Str("player", p.player).Str("puzzle", s.ID).Msg("puzzle map unreadable; snapshot not saved")
		return
	}
	all[s.ID] = s
	if p.repo.writeJSON(p.key(keyPuzzles), all) {
		p.repo.writeJSON(p.key(keyLastPlayed), lastPlayed{ID: s.ID})
	}
}

// Delete removes one snapshot. The last-played pointer is cleared if it
// named that snapshot.
func (p *PuzzleStore) Delete(id string) {
	mu := p.repo.lock(p.player)
	mu.Lock()
	defer mu.Unlock()
	all, err := p.loadLocked()
	if err != nil {
		return
	}
	if _, ok := all[id]; !ok {
		return
	}
	delete(all, id)
	p.repo.writeJSON(p.key(keyPuzzles), all)
	if last, ok := p.lastPlayedLocked(); ok && last == id {
		p.repo.delete(p.key(keyLastPlayed))
	}
}

// DeleteAll clears every snapshot and the last-played pointer. The legacy
// snapshot is removed too so it is not migrated back.
func (p *PuzzleStore) DeleteAll() {
	mu := p.repo.lock(p.player)
	mu.Lock()
	defer mu.Unlock()
	p.repo.writeJSON(p.key(keyPuzzles), map[string]game.State{})
	p.repo.delete(p.key(keyLastPlayed))
	p.repo.delete(p.key(keyLegacy))
}

// LastPlayed returns the id most recently upserted.
func (p *PuzzleStore) LastPlayed() (string, bool) {
	mu := p.repo.lock(p.player)
	mu.Lock()
	defer mu.Unlock()
	if _, err := p.loadLocked(); err != nil {
		return "", false
	}
	return p.lastPlayedLocked()
}

func (p *PuzzleStore) lastPlayedLocked() (string, bool) {
	var lp lastPlayed
	if p.repo.readJSON(p.key(keyLastPlayed), &lp) != nil || lp.ID == "" {
		return "", false
	}
	return lp.ID, true
}

// loadLocked reads the v2 map. A missing or undecodable map is migrated or
// initialised; any other read failure is returned and nothing is written.
// Callers hold the player lock.
func (p *PuzzleStore) loadLocked() (map[string]game.State, error) {
	all := map[string]game.State{}
	err := p.repo.readJSON(p.key(keyPuzzles), &all)
	switch {
	case err == nil:
		if all == nil {
			all = map[string]game.State{}
		}
		return all, nil
	case errors.Is(err, ErrNotFound), errors.Is(err, errCorrupt):
		return p.migrateLocked()
	default:
		return nil, err
	}
}

// ---- legacy v1 migration ----

// legacyState is the single-puzzle snapshot written before puzzles were
// keyed by identity.
type legacyState struct {
	WordLength             int               `json:"wordLength"`
	SecretWord             string            `json:"secretWord"`
	Attempts               []string          `json:"attempts"`
	LockedLetters          map[string]string `json:"lockedLetters"`
	GameStatus             game.Status       `json:"gameStatus"`
	AttemptIndex           *int              `json:"attemptIndex"`
	RevealedLetters        map[string]string `json:"revealedLetters"`
	LetterRevealsRemaining *int              `json:"letterRevealsRemaining"`
	Date                   string            `json:"date"`
	CurrentGuess           []string          `json:"currentGuess"`
}

func (p *PuzzleStore) migrateLocked() (map[string]game.State, error) {
	all := map[string]game.State{}
	var v1 legacyState
	err := p.repo.readJSON(p.key(keyLegacy), &v1)
	if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, errCorrupt) {
		return nil, err
	}
	if err != nil {
		p.repo.writeJSON(p.key(keyPuzzles), all)
		return all, nil
	}

	date := v1.Date
	if date == "" && p.repo.today != nil {
		date = p.repo.today()
	}
	st := convertLegacy(v1, date)
	all[st.ID] = st
	if p.repo.writeJSON(p.key(keyPuzzles), all) {
		p.repo.writeJSON(p.key(keyLastPlayed), lastPlayed{ID: st.ID})
	}
	log.Info().Str("player", p.player).Str("puzzle", st.ID).Msg("migrated legacy puzzle snapshot")
	return all, nil
}

func convertLegacy(v1 legacyState, date string) game.State {
	n := min(max(v1.WordLength, daily.MinWordLength), daily.MaxWordLength)
	id := daily.Identity{DateISO: date, WordLength: n}

	attempts := v1.Attempts
	if attempts == nil {
		attempts = []string{}
	}
	idx := len(attempts)
	if v1.AttemptIndex != nil {
		idx = *v1.AttemptIndex
	}
	reveals := 1
	if v1.LetterRevealsRemaining != nil {
		reveals = *v1.LetterRevealsRemaining
	}
	guess := v1.CurrentGuess
	if len(guess) != n {
		guess = make([]string, n)
	}

	locked := map[int]string{}
	for k, v := range v1.LockedLetters {
		if pos, err := strconv.Atoi(k); err == nil {
			locked[pos] = v
		}
	}
	revealed := []int{}
	for k := range v1.RevealedLetters {
		if pos, err := strconv.Atoi(k); err == nil {
			revealed = append(revealed, pos)
		}
	}
	sort.Ints(revealed)

	status := v1.GameStatus
	if status == "" {
		status = game.Playing
	}

	return game.State{
		ID:                     id.Key(),
		DateISO:                date,
		WordLength:             n,
		SecretWord:             v1.SecretWord,
		Attempts:               attempts,
		LockedLetters:          locked,
		RevealedLetters:        revealed,
		LetterRevealsRemaining: reveals,
		AttemptIndex:           idx,
		GameStatus:             status,
		CurrentGuess:           guess,
	}
}
