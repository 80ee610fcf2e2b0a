// internal/game/session.go
//
// Game session state machine for a single puzzle identity.
// Responsibilities:
//   - Accept guess submissions and letter-reveal events.
//   - Track attempts, locked letters, revealed letters and the reveal budget.
//   - Drive status transitions: not_started → playing → won/lost.
//   - Upsert the snapshot after every mutation, only ever under the identity
//     the session was hydrated for.
//
// Deferred completion:
//   When a completion delay is configured, the won/lost transition is held
//   back so a reveal animation can finish. While it is pending, guesses are
//   rejected. The scheduled callback captures the session generation; Close
//   bumps the generation, so a callback that fires after the session was
//   replaced is a no-op.

package game

import (
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordibble/internal/daily"
	"github.com/robalobadob/wordibble/internal/settings"
)

// Rand is the random source used to pick reveal positions.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Scheduler runs fn once after d and returns a function that cancels it.
// fn must not be invoked synchronously from within the Scheduler call.
type Scheduler func(d time.Duration, fn func()) (stop func() bool)

func afterFunc(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

// Options configure a Session.
type Options struct {
	Settings settings.Settings

	// Store receives a snapshot after each mutation. Nil disables persistence
	// (random puzzles).
	Store StateStore

	Dictionary Dictionary

	// CompletionDelay defers the won/lost transition. Zero applies it at once.
	CompletionDelay time.Duration

	Rand     Rand
	Schedule Scheduler
	Now      func() time.Time
}

// GuessResult describes an accepted (or shaken) guess.
type GuessResult struct {
	Guess    string    `json:"guess"`
	Verdicts []Verdict `json:"verdicts,omitempty"`
	Status   Status    `json:"status"`
	Pending  bool      `json:"pending,omitempty"`
	Shake    bool      `json:"shake,omitempty"`
}

// RevealResult describes a successful letter reveal.
type RevealResult struct {
	Position  int    `json:"position"`
	Letter    string `json:"letter"`
	Remaining int    `json:"remaining"`
}

type pendingCompletion struct {
	status Status
	gen    uint64
	stop   func() bool
}

// Session holds the live state of one puzzle. Safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	identity daily.Identity
	clue     string
	random   bool
	state    State
	opts     Options

	gen     uint64
	pending *pendingCompletion
	closed  bool
}

func newSession(id daily.Identity, st State, clue string, random bool, opts Options) *Session {
	if opts.Rand == nil {
		opts.Rand = globalRand{}
	}
	if opts.Schedule == nil {
		opts.Schedule = afterFunc
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Settings = opts.Settings.Normalize()
	return &Session{identity: id, state: st, clue: clue, random: random, opts: opts}
}

// Identity returns the puzzle identity this session is bound to.
func (s *Session) Identity() daily.Identity { return s.identity }

// Clue returns the clue text delivered with the puzzle.
func (s *Session) Clue() string { return s.clue }

// Random reports whether this is an unpersisted random puzzle.
func (s *Session) Random() bool { return s.random }

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Settings returns the settings the session currently applies.
func (s *Session) Settings() settings.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.Settings
}

// UpdateSettings applies changed player settings from the next event on.
// The reveal budget is never recomputed.
func (s *Session) UpdateSettings(st settings.Settings) {
	s.mu.Lock()
	s.opts.Settings = st.Normalize()
	s.mu.Unlock()
}

// Pending reports the deferred status, if a completion is waiting.
func (s *Session) Pending() (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return "", false
	}
	return s.pending.status, true
}

// SubmitGuess evaluates raw (the full current row) and advances the game.
// With letter locking on, locked and revealed positions take their known
// letters whatever raw holds there.
//
// Rejections leave state untouched:
//   - ErrGameOver / ErrCompletionPending when the game is (conceptually) over.
//   - ErrNotEnoughLetters when raw is not wordLength letters A-Z.
//   - ErrNotInWordList (with Shake set) when the dictionary does not know it.
func (s *Session) SubmitGuess(raw string) (GuessResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return GuessResult{}, ErrSessionClosed
	}
	if s.state.GameStatus.Terminal() {
		return GuessResult{Status: s.state.GameStatus}, ErrGameOver
	}
	if s.pending != nil {
		return GuessResult{Status: s.pending.status, Pending: true}, ErrCompletionPending
	}

	n := s.state.WordLength
	guess := Normalize(raw)
	if !IsWellFormed(guess, n) {
		return GuessResult{Guess: guess, Status: s.state.GameStatus}, ErrNotEnoughLetters
	}
	if s.opts.Settings.LockGreenMatchedLetters {
		guess = s.mergeKnown(guess)
	}
	if s.opts.Dictionary == nil || !s.opts.Dictionary.IsValidWord(guess, n) {
		return GuessResult{Guess: guess, Status: s.state.GameStatus, Shake: true}, ErrNotInWordList
	}

	verdicts := Evaluate(guess, s.state.SecretWord)
	s.state.Attempts = append(s.state.Attempts, guess)
	s.state.AttemptIndex++
	s.state.MaxGuesses = s.opts.Settings.MaxGuesses

	if s.opts.Settings.LockGreenMatchedLetters {
		if s.state.LockedLetters == nil {
			s.state.LockedLetters = map[int]string{}
		}
		for i, v := range verdicts {
			if v == Correct {
				s.state.LockedLetters[i] = guess[i : i+1]
			}
		}
	} else {
		s.state.LockedLetters = map[int]string{}
		if len(s.state.RevealedLetters) > 0 {
			s.state.RevealsReleased = true
		}
	}

	next := Playing
	if allCorrect(verdicts) {
		next = Won
	} else if s.state.AttemptIndex >= s.opts.Settings.MaxGuesses {
		next = Lost
	}
	s.state.CurrentGuess = blankRow(n)

	res := GuessResult{Guess: guess, Verdicts: verdicts, Status: next}
	if next.Terminal() && s.opts.CompletionDelay > 0 {
		s.state.GameStatus = Playing
		gen := s.gen
		p := &pendingCompletion{status: next, gen: gen}
		p.stop = s.opts.Schedule(s.opts.CompletionDelay, func() { s.completeDeferred(gen) })
		s.pending = p
		res.Pending = true
	} else {
		s.setStatus(next)
	}
	s.persist()
	return res, nil
}

// Complete applies a pending won/lost transition immediately, for example
// when the client reports that its reveal animation finished.
func (s *Session) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.pending == nil {
		return
	}
	s.applyPending()
	s.persist()
}

func (s *Session) completeDeferred(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.pending == nil || s.pending.gen != gen || s.gen != gen {
		return
	}
	s.applyPending()
	s.persist()
}

func (s *Session) applyPending() {
	p := s.pending
	s.pending = nil
	if p.stop != nil {
		p.stop()
	}
	s.setStatus(p.status)
}

func (s *Session) setStatus(next Status) {
	s.state.GameStatus = next
	if next.Terminal() && s.state.CompletedAt == nil {
		t := s.opts.Now().UTC()
		s.state.CompletedAt = &t
	}
}

// RevealLetter discloses one secret letter.
//
// Allowed only before the first guess, while the game is live and budget
// remains. Vowel positions are preferred; among the preferred candidates the
// position is chosen uniformly at random.
func (s *Session) RevealLetter() (RevealResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return RevealResult{}, ErrSessionClosed
	}
	if s.state.GameStatus.Terminal() || s.pending != nil {
		return RevealResult{}, ErrGameOver
	}
	if s.state.LetterRevealsRemaining <= 0 {
		return RevealResult{}, ErrNoRevealsLeft
	}
	if s.state.AttemptIndex > 0 {
		return RevealResult{}, ErrRevealWindowClosed
	}

	taken := make(map[int]bool, s.state.WordLength)
	for pos := range s.state.LockedLetters {
		taken[pos] = true
	}
	for _, pos := range s.state.RevealedLetters {
		taken[pos] = true
	}
	var all, vowels []int
	for i := 0; i < s.state.WordLength; i++ {
		if taken[i] {
			continue
		}
		all = append(all, i)
		if isVowel(s.state.SecretWord[i]) {
			vowels = append(vowels, i)
		}
	}
	pool := all
	if len(vowels) > 0 {
		pool = vowels
	}
	if len(pool) == 0 {
		return RevealResult{}, ErrNoRevealCandidates
	}

	pos := pool[s.opts.Rand.IntN(len(pool))]
	s.state.RevealedLetters = append(s.state.RevealedLetters, pos)
	sort.Ints(s.state.RevealedLetters)
	s.state.LetterRevealsRemaining--
	letter := s.state.SecretWord[pos : pos+1]
	if len(s.state.CurrentGuess) == s.state.WordLength {
		s.state.CurrentGuess[pos] = letter
	}
	s.persist()

	return RevealResult{Position: pos, Letter: letter, Remaining: s.state.LetterRevealsRemaining}, nil
}

// SetCurrentGuess stores the in-progress row. Non-editable positions keep
// their known letter whatever the caller sent.
func (s *Session) SetCurrentGuess(letters []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.state.GameStatus.Terminal() || s.pending != nil {
		return ErrGameOver
	}
	n := s.state.WordLength
	row := blankRow(n)
	for i := 0; i < n && i < len(letters); i++ {
		l := Normalize(letters[i])
		if len(l) == 1 && l[0] >= 'A' && l[0] <= 'Z' {
			row[i] = l
		}
	}
	for i := 0; i < n; i++ {
		if !s.editable(i) {
			row[i] = s.knownLetter(i)
		}
	}
	s.state.CurrentGuess = row
	s.persist()
	return nil
}

// Row returns the candidate row: known letters at non-editable positions
// merged with the typed letters elsewhere.
func (s *Session) Row() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := make([]byte, 0, s.state.WordLength)
	for i := 0; i < s.state.WordLength; i++ {
		l := ""
		if !s.editable(i) {
			l = s.knownLetter(i)
		} else if i < len(s.state.CurrentGuess) {
			l = s.state.CurrentGuess[i]
		}
		if l == "" {
			l = " "
		}
		b = append(b, l[0])
	}
	return string(b)
}

// Close ends the session. A pending completion is applied under this
// session's own identity first; any deferred callback still scheduled
// becomes a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.pending != nil {
		s.applyPending()
		s.persist()
	}
	s.gen++
	s.closed = true
}

// persist upserts the snapshot. Callers hold s.mu.
func (s *Session) persist() {
	if s.opts.Store == nil {
		return
	}
	if s.state.ID != s.identity.Key() {
		log.Error().
			Str("session", s.identity.Key()).
			Str("state", s.state.ID).
			Msg("refusing to persist snapshot under a foreign identity")
		return
	}
	s.opts.Store.Upsert(s.state.Clone())
}
