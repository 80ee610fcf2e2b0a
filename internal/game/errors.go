// internal/game/errors.go
//
// Input rejections and lookup failures returned by the engine.

package game

import "errors"

// Input rejections. None of them change session state.
var (
	ErrNotEnoughLetters   = errors.New("not enough letters")
	ErrNotInWordList      = errors.New("not in word list")
	ErrGameOver           = errors.New("game finished")
	ErrCompletionPending  = errors.New("game is finishing")
	ErrNoRevealsLeft      = errors.New("no letter reveals left")
	ErrRevealWindowClosed = errors.New("letters can only be revealed before the first guess")
	ErrNoRevealCandidates = errors.New("no letters left to reveal")
	ErrSessionClosed      = errors.New("session closed")
)

// ErrLookup marks failures of the puzzle or dictionary lookup. They are fatal
// to session start and reported as load failures.
var ErrLookup = errors.New("puzzle lookup failed")

var rejections = []error{
	ErrNotEnoughLetters, ErrNotInWordList, ErrGameOver, ErrCompletionPending,
	ErrNoRevealsLeft, ErrRevealWindowClosed, ErrNoRevealCandidates,
}

// IsRejection reports whether err is a deliberate input rejection as opposed
// to a failure.
func IsRejection(err error) bool {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}
