// internal/httpserver/view.go
//
// Read model returned by every /game endpoint.

package httpserver

import (
	"time"

	"github.com/robalobadob/wordibble/internal/game"
)

// view is everything a client needs to draw the board.
// A pending completion is reported as its eventual status with Pending set.
type view struct {
	ID               string                  `json:"id"`
	DateISO          string                  `json:"dateISO"`
	WordLength       int                     `json:"wordLength"`
	Random           bool                    `json:"random"`
	Status           game.Status             `json:"status"`
	Pending          bool                    `json:"pending"`
	Attempts         []game.GuessResult      `json:"attempts"`
	Row              []string                `json:"row"`
	Editable         []bool                  `json:"editable"`
	Keyboard         map[string]game.Verdict `json:"keyboard"`
	LockedLetters    map[int]string          `json:"lockedLetters"`
	RevealedLetters  []int                   `json:"revealedLetters"`
	RevealsRemaining int                     `json:"revealsRemaining"`
	MaxGuesses       int                     `json:"maxGuesses"`
	AttemptsLeft     int                     `json:"attemptsLeft"`
	Clue             string                  `json:"clue,omitempty"`
	SecretWord       string                  `json:"secretWord"`
	CompletedAt      *time.Time              `json:"completedAt,omitempty"`
	HasDefinition    bool                    `json:"hasDefinition,omitempty"`
}

func (s *Server) viewOf(sess *game.Session) *view {
	st := sess.Snapshot()
	set := sess.Settings()

	v := &view{
		ID:               st.ID,
		DateISO:          st.DateISO,
		WordLength:       st.WordLength,
		Random:           sess.Random(),
		Status:           st.GameStatus,
		Attempts:         sess.History(),
		Editable:         sess.EditableMask(),
		Keyboard:         game.KeyboardStates(st),
		LockedLetters:    st.LockedLetters,
		RevealedLetters:  st.RevealedLetters,
		RevealsRemaining: st.LetterRevealsRemaining,
		MaxGuesses:       set.MaxGuesses,
		AttemptsLeft:     max(set.MaxGuesses-st.AttemptIndex, 0),
		SecretWord:       st.SecretWord,
		CompletedAt:      st.CompletedAt,
	}
	if pending, ok := sess.Pending(); ok {
		v.Status = pending
		v.Pending = true
	}
	if !set.HideClue {
		v.Clue = sess.Clue()
	}

	row := sess.Row()
	v.Row = make([]string, len(row))
	for i := range row {
		if row[i] != ' ' {
			v.Row[i] = row[i : i+1]
		}
	}

	// Definitions are optional enrichment; a lookup problem only hides them.
	if v.Status.Terminal() && s.catalog != nil {
		v.HasDefinition = s.catalog.HasDefinition(st.SecretWord)
	}
	return v
}
