// internal/game/load.go
//
// Session start and restore.
// Load fetches the secret word, checks the dictionary, and either restores
// the stored snapshot for the identity or starts fresh. The stored snapshot is
// a cache: it is discarded whenever it disagrees with the freshly fetched
// word or fails structural checks.

package game

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordibble/internal/daily"
)

// LoadRequest selects the puzzle to play.
type LoadRequest struct {
	Identity daily.Identity
	// Random plays an unpersisted random puzzle of Identity.WordLength.
	Random bool
}

// Load starts a session for req. Lookup or dictionary failures are returned
// wrapped in ErrLookup; the session never starts half-loaded.
func Load(lookup PuzzleLookup, req LoadRequest, opts Options) (*Session, error) {
	id := req.Identity
	n := id.WordLength
	if !daily.ValidLength(n) {
		return nil, fmt.Errorf("%w: word length %d", daily.ErrInvalidIdentity, n)
	}
	if opts.Dictionary == nil || opts.Dictionary.Size(n) == 0 {
		return nil, fmt.Errorf("%w: no dictionary for %d letters", ErrLookup, n)
	}

	var (
		p   Puzzle
		err error
	)
	if req.Random {
		p, err = lookup.RandomPuzzle(n)
	} else {
		p, err = lookup.PuzzleForDate(id.DateISO, n)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookup, err)
	}
	word := Normalize(p.Word)
	if !IsWellFormed(word, n) {
		return nil, fmt.Errorf("%w: puzzle word %q is not %d letters", ErrLookup, p.Word, n)
	}

	if req.Random {
		opts.Store = nil
		return newSession(id, NewState(id, word), p.Clue, true, opts), nil
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	st, restored, changed := restore(opts.Store, id, word, opts.Settings.Normalize().MaxGuesses, now)
	if (!restored || changed) && opts.Store != nil {
		opts.Store.Upsert(st.Clone())
	}
	return newSession(id, st, p.Clue, false, opts), nil
}

// restore returns the stored snapshot for id if it is usable with word,
// otherwise a fresh state. changed reports that reconcile finished the game.
func restore(store StateStore, id daily.Identity, word string, maxGuesses int, now func() time.Time) (st State, restored, changed bool) {
	fresh := NewState(id, word)
	if store == nil {
		return fresh, false, false
	}
	snap, ok := store.Get(id.Key())
	if !ok {
		return fresh, false, false
	}
	if snap.SecretWord != word {
		log.Warn().Str("puzzle", id.Key()).Msg("stored snapshot has a different secret word; starting fresh")
		return fresh, false, false
	}
	if snap.Identity() != id {
		log.Warn().Str("puzzle", id.Key()).Str("stored", snap.ID).Msg("stored snapshot belongs to another identity; starting fresh")
		return fresh, false, false
	}
	if problem := snap.check(); problem != "" {
		log.Warn().Str("puzzle", id.Key()).Str("problem", problem).Msg("stored snapshot is corrupt; starting fresh")
		return fresh, false, false
	}
	st, changed = reconcile(snap, maxGuesses, now)
	return st, true, changed
}

// reconcile applies a status left unapplied by an interrupted deferred
// completion, and normalises empty collections. The loss check uses the
// guess limit the puzzle was played under; maxGuesses is the fallback for
// snapshots that predate it.
func reconcile(st State, maxGuesses int, now func() time.Time) (State, bool) {
	if st.LockedLetters == nil {
		st.LockedLetters = map[int]string{}
	}
	if st.RevealedLetters == nil {
		st.RevealedLetters = []int{}
	}
	if st.Attempts == nil {
		st.Attempts = []string{}
	}
	if st.GameStatus.Terminal() || len(st.Attempts) == 0 {
		return st, false
	}
	if st.MaxGuesses > 0 {
		maxGuesses = st.MaxGuesses
	}
	last := st.Attempts[len(st.Attempts)-1]
	switch {
	case last == st.SecretWord:
		st.GameStatus = Won
	case st.AttemptIndex >= maxGuesses:
		st.GameStatus = Lost
	default:
		return st, false
	}
	if st.CompletedAt == nil {
		t := now().UTC()
		st.CompletedAt = &t
	}
	log.Info().Str("puzzle", st.ID).Str("status", string(st.GameStatus)).Msg("applied interrupted completion")
	return st, true
}
