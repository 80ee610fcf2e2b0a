// internal/settings/settings.go
//
// Player settings.
// Settings are persisted per player as a JSON blob. The struct is versioned
// and defaults are applied exactly once, when a blob is decoded, so no call
// site ever has to re-default a missing field.

package settings

import (
	"encoding/json"

	"github.com/robalobadob/wordibble/internal/daily"
)

// CurrentVersion is the schema version written by Encode.
const CurrentVersion = 2

const (
	MinGuesses = 3
	MaxGuesses = 10
)

// Settings is the player-level configuration consumed by the game engine.
type Settings struct {
	Version                 int  `json:"version"`
	WordLength              int  `json:"wordLength"`
	MaxGuesses              int  `json:"maxGuesses"`
	HideClue                bool `json:"hideClue"`
	LockGreenMatchedLetters bool `json:"lockGreenMatchedLetters"`
	RandomPuzzle            bool `json:"randomPuzzle"`
}

// Defaults returns the settings a new player starts with.
func Defaults() Settings {
	return Settings{
		Version:                 CurrentVersion,
		WordLength:              5,
		MaxGuesses:              6,
		HideClue:                false,
		LockGreenMatchedLetters: true,
		RandomPuzzle:            false,
	}
}

// raw mirrors Settings with pointer fields so absent keys are detectable.
// Version 1 blobs stored the clue toggle inverted as "revealClue".
type raw struct {
	Version                 int   `json:"version"`
	WordLength              *int  `json:"wordLength"`
	MaxGuesses              *int  `json:"maxGuesses"`
	HideClue                *bool `json:"hideClue"`
	RevealClue              *bool `json:"revealClue"`
	LockGreenMatchedLetters *bool `json:"lockGreenMatchedLetters"`
	RandomPuzzle            *bool `json:"randomPuzzle"`
}

// Decode parses a stored blob, filling missing or out-of-range fields from
// Defaults. An empty or unreadable blob yields Defaults and a non-nil error
// so callers can log it; the returned Settings are always usable.
func Decode(b []byte) (Settings, error) {
	s := Defaults()
	if len(b) == 0 {
		return s, nil
	}
	var r raw
	if err := json.Unmarshal(b, &r); err != nil {
		return s, err
	}
	if r.WordLength != nil {
		s.WordLength = *r.WordLength
	}
	if r.MaxGuesses != nil {
		s.MaxGuesses = *r.MaxGuesses
	}
	switch {
	case r.HideClue != nil:
		s.HideClue = *r.HideClue
	case r.RevealClue != nil:
		s.HideClue = !*r.RevealClue
	}
	if r.LockGreenMatchedLetters != nil {
		s.LockGreenMatchedLetters = *r.LockGreenMatchedLetters
	}
	if r.RandomPuzzle != nil {
		s.RandomPuzzle = *r.RandomPuzzle
	}
	return s.Normalize(), nil
}

// Encode serialises s at the current version.
func Encode(s Settings) ([]byte, error) {
	s = s.Normalize()
	return json.Marshal(s)
}

// Normalize clamps fields into their valid ranges and stamps the version.
func (s Settings) Normalize() Settings {
	d := Defaults()
	if !daily.ValidLength(s.WordLength) {
		s.WordLength = d.WordLength
	}
	if s.MaxGuesses < MinGuesses || s.MaxGuesses > MaxGuesses {
		s.MaxGuesses = d.MaxGuesses
	}
	s.Version = CurrentVersion
	return s
}
