package game

import (
	"errors"
	"strings"
	"time"

	"github.com/robalobadob/wordibble/internal/daily"
	"github.com/robalobadob/wordibble/internal/settings"
)

type memStore struct {
	states  map[string]State
	upserts int
}

func newMemStore() *memStore { return &memStore{states: map[string]State{}} }

func (m *memStore) Get(id string) (State, bool) {
	s, ok := m.states[id]
	if !ok {
		return State{}, false
	}
	return s.Clone(), true
}

func (m *memStore) Upsert(s State) {
	m.upserts++
	m.states[s.ID] = s.Clone()
}

type wordSet map[string]bool

func dictOf(words ...string) wordSet {
	d := wordSet{}
	for _, w := range words {
		d[strings.ToUpper(w)] = true
	}
	return d
}

func (d wordSet) IsValidWord(word string, n int) bool {
	return len(word) == n && d[strings.ToUpper(word)]
}

func (d wordSet) Size(n int) int {
	c := 0
	for w := range d {
		if len(w) == n {
			c++
		}
	}
	return c
}

type fixedLookup struct {
	word string
	clue string
	err  error
}

func (f fixedLookup) PuzzleForDate(string, int) (Puzzle, error) {
	return Puzzle{Word: f.word, Clue: f.clue}, f.err
}

func (f fixedLookup) RandomPuzzle(int) (Puzzle, error) {
	return Puzzle{Word: f.word, Clue: f.clue}, f.err
}

var errLookupDown = errors.New("lookup down")

// firstRand always picks the first candidate.
type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

// manualScheduler records scheduled callbacks so tests fire them explicitly.
type manualScheduler struct {
	fns     []func()
	stopped int
}

func (m *manualScheduler) schedule(_ time.Duration, fn func()) func() bool {
	m.fns = append(m.fns, fn)
	return func() bool { m.stopped++; return true }
}

func (m *manualScheduler) fireAll() {
	fns := m.fns
	m.fns = nil
	for _, fn := range fns {
		fn()
	}
}

var testNow = time.Date(2025, 1, 1, 15, 0, 0, 0, time.UTC)

func testSettings(lock bool, maxGuesses int) settings.Settings {
	s := settings.Defaults()
	s.LockGreenMatchedLetters = lock
	s.MaxGuesses = maxGuesses
	return s
}

func mustIdentity(date string, n int) daily.Identity {
	id, err := daily.New(date, n)
	if err != nil {
		panic(err)
	}
	return id
}

var fiveLetterWords = []string{
	"CRANE", "CRONE", "TRACE", "GRATE", "BUMPY", "GHOST", "FLICK", "SLATE", "ABCDE", "FGHIJ",
}

// startSession loads a fresh 5-letter CRANE session on 2025-01-01.
func startSession(st *memStore, set settings.Settings, mutate func(*Options)) *Session {
	opts := Options{
		Settings:   set,
		Store:      st,
		Dictionary: dictOf(fiveLetterWords...),
		Rand:       firstRand{},
		Now:        func() time.Time { return testNow },
	}
	if mutate != nil {
		mutate(&opts)
	}
	s, err := Load(fixedLookup{word: "crane", clue: "A bird"}, LoadRequest{Identity: mustIdentity("2025-01-01", 5)}, opts)
	if err != nil {
		panic(err)
	}
	return s
}
