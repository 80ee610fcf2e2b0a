// internal/game/types.go
//
// Core type definitions for the puzzle engine.
// Defines:
//   - Verdict: per-letter result of a guess (correct/present/absent).
//   - Status: the session state machine's states.
//   - State: the persisted snapshot of one puzzle.
//   - Collaborator interfaces the engine depends on (lookup, dictionary, store).

package game

import (
	"strconv"
	"time"

	"github.com/robalobadob/wordibble/internal/daily"
)

// Verdict represents the evaluation result for a single letter in a guess.
//   - "correct": letter is in the secret at this position.
//   - "present": letter is in the secret elsewhere (count permitting).
//   - "absent":  letter is not in the secret, or all its occurrences are used.
type Verdict string

const (
	Correct Verdict = "correct"
	Present Verdict = "present"
	Absent  Verdict = "absent"
)

// rank orders verdicts for keyboard aggregation: correct > present > absent.
func (v Verdict) rank() int {
	switch v {
	case Correct:
		return 3
	case Present:
		return 2
	case Absent:
		return 1
	}
	return 0
}

// Status is the game status. Won and Lost are terminal.
type Status string

const (
	NotStarted Status = "not_started"
	Playing    Status = "playing"
	Won        Status = "won"
	Lost       Status = "lost"
)

// Terminal reports whether no further mutation is allowed.
func (s Status) Terminal() bool { return s == Won || s == Lost }

func (s Status) valid() bool {
	switch s {
	case NotStarted, Playing, Won, Lost:
		return true
	}
	return false
}

// State is the persisted snapshot of one puzzle, keyed by ID.
type State struct {
	ID                     string         `json:"id"`
	DateISO                string         `json:"dateISO"`
	WordLength             int            `json:"wordLength"`
	SecretWord             string         `json:"secretWord"`
	Attempts               []string       `json:"attempts"`
	LockedLetters          map[int]string `json:"lockedLetters"`
	RevealedLetters        []int          `json:"revealedLetters"`
	RevealsReleased        bool           `json:"revealsReleased,omitempty"`
	LetterRevealsRemaining int            `json:"letterRevealsRemaining"`
	AttemptIndex           int            `json:"attemptIndex"`
	GameStatus             Status         `json:"gameStatus"`
	CurrentGuess           []string       `json:"currentGuess"`
	CompletedAt            *time.Time     `json:"completedAt,omitempty"`
	// MaxGuesses is the guess limit in force when the last attempt was made.
	MaxGuesses             int            `json:"maxGuesses,omitempty"`
}

// Identity returns the puzzle identity the snapshot claims.
func (s State) Identity() daily.Identity {
	return daily.Identity{DateISO: s.DateISO, WordLength: s.WordLength}
}

// Clone returns a deep copy so callers never alias session internals.
func (s State) Clone() State {
	out := s
	out.Attempts = append([]string(nil), s.Attempts...)
	out.RevealedLetters = append([]int(nil), s.RevealedLetters...)
	out.CurrentGuess = append([]string(nil), s.CurrentGuess...)
	if s.Attempts != nil && out.Attempts == nil {
		out.Attempts = []string{}
	}
	if s.RevealedLetters != nil && out.RevealedLetters == nil {
		out.RevealedLetters = []int{}
	}
	if s.CurrentGuess != nil && out.CurrentGuess == nil {
		out.CurrentGuess = []string{}
	}
	if s.LockedLetters != nil {
		out.LockedLetters = make(map[int]string, len(s.LockedLetters))
		for k, v := range s.LockedLetters {
			out.LockedLetters[k] = v
		}
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

// Puzzle is what the lookup service returns for an identity.
type Puzzle struct {
	Word string `json:"word"`
	Clue string `json:"clue"`
}

// PuzzleLookup supplies secret words. Must be idempotent for a given date.
type PuzzleLookup interface {
	PuzzleForDate(dateISO string, wordLength int) (Puzzle, error)
	RandomPuzzle(wordLength int) (Puzzle, error)
}

// Dictionary answers guess-membership questions for a word length.
type Dictionary interface {
	IsValidWord(word string, wordLength int) bool
	Size(wordLength int) int
}

// StateStore is the slice of the puzzle store the engine needs.
// Implementations swallow their own failures.
type StateStore interface {
	Get(id string) (State, bool)
	Upsert(s State)
}

// revealBudget is the lifeline allowance per word length.
var revealBudget = map[int]int{5: 1, 6: 2, 7: 3}

// RevealBudget returns the number of letter reveals a new puzzle of the
// given length starts with.
func RevealBudget(wordLength int) int {
	if n, ok := revealBudget[wordLength]; ok {
		return n
	}
	return 1
}

// NewState builds the initial snapshot for an identity and secret word.
func NewState(id daily.Identity, secret string) State {
	return State{
		ID:                     id.Key(),
		DateISO:                id.DateISO,
		WordLength:             id.WordLength,
		SecretWord:             secret,
		Attempts:               []string{},
		LockedLetters:          map[int]string{},
		RevealedLetters:        []int{},
		LetterRevealsRemaining: RevealBudget(id.WordLength),
		AttemptIndex:           0,
		GameStatus:             NotStarted,
		CurrentGuess:           blankRow(id.WordLength),
	}
}

func blankRow(n int) []string { return make([]string, n) }

// check reports the first structural problem with a snapshot, if any.
func (s State) check() string {
	switch {
	case !daily.ValidLength(s.WordLength):
		return "word length " + strconv.Itoa(s.WordLength)
	case s.ID != s.Identity().Key():
		return "id " + s.ID + " does not match its fields"
	case len(s.SecretWord) != s.WordLength:
		return "secret length"
	case !s.GameStatus.valid():
		return "status " + string(s.GameStatus)
	case s.AttemptIndex != len(s.Attempts):
		return "attempt index"
	case s.LetterRevealsRemaining < 0:
		return "negative reveal budget"
	case len(s.CurrentGuess) != s.WordLength:
		return "current guess length"
	}
	for _, a := range s.Attempts {
		if !IsWellFormed(a, s.WordLength) {
			return "malformed attempt " + a
		}
	}
	for pos := range s.LockedLetters {
		if pos < 0 || pos >= s.WordLength {
			return "locked position out of range"
		}
	}
	for _, pos := range s.RevealedLetters {
		if pos < 0 || pos >= s.WordLength {
			return "revealed position out of range"
		}
	}
	return ""
}
