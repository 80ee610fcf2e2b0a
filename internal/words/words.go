// internal/words/words.go
//
// Puzzle lookup, dictionary and definitions.
//
// Responsibilities:
//   - Load per-length answer and allowed-guess lists, the dated puzzle table,
//     clues and definitions from an fs.FS (embedded assets, optionally
//     overridden file-by-file from WORDS_DIR).
//   - Cache each word length's data in a Catalog on first use.
//   - Serve game.PuzzleLookup and game.Dictionary.
//
// Word Lists:
//   - "answers": words a puzzle may use (alphabetic, exactly n letters).
//   - "allowed": valid guesses (always includes answers).
//
// Lookup failures are errors, never an empty success: a length with no
// answers or no dictionary fails to load and nothing is cached for it.

package words

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/robalobadob/wordibble/assets"
	"github.com/robalobadob/wordibble/internal/daily"
	"github.com/robalobadob/wordibble/internal/game"
)

// NoClue is the clue text for words without one.
const NoClue = "I literally have no clue"

var ErrNoWords = errors.New("words: no words for length")

type entry struct {
	Word string `json:"word"`
	Clue string `json:"clue,omitempty"`
}

// lengthData is everything cached for one word length.
type lengthData struct {
	answers []string
	allowed map[string]struct{}
	dated   map[string]entry
}

// Catalog is the per-length cache behind puzzle and dictionary lookups.
// Safe for concurrent use.
type Catalog struct {
	fsys fs.FS
	salt string
	intN func(int) int

	mu      sync.RWMutex
	lengths map[int]*lengthData

	sharedOnce  sync.Once
	sharedErr   error
	puzzles     map[string]map[string]entry // length -> date -> entry
	clues       map[string]string
	definitions map[string][]string
}

var (
	_ game.PuzzleLookup = (*Catalog)(nil)
	_ game.Dictionary   = (*Catalog)(nil)
)

// New returns a Catalog reading from fsys. salt keys the deterministic
// fallback for dates missing from the puzzle table.
func New(fsys fs.FS, salt string) *Catalog {
	return &Catalog{fsys: fsys, salt: salt, intN: rand.IntN, lengths: map[int]*lengthData{}}
}

// Default returns a Catalog over the embedded assets, with files in dir (if
// non-empty) taking precedence.
func Default(dir, salt string) *Catalog {
	var fsys fs.FS = assets.FS
	if dir != "" {
		fsys = overlay{primary: os.DirFS(dir), fallback: assets.FS}
	}
	return New(fsys, salt)
}

// WithRand replaces the random source used by RandomPuzzle.
func (c *Catalog) WithRand(intN func(int) int) *Catalog {
	c.intN = intN
	return c
}

// Warm loads every supported length, returning the first failure.
func (c *Catalog) Warm() error {
	for n := daily.MinWordLength; n <= daily.MaxWordLength; n++ {
		if _, err := c.length(n); err != nil {
			return err
		}
	}
	return nil
}

// ---- game.PuzzleLookup ----

// PuzzleForDate returns the puzzle for dateISO. Dates missing from the table
// map deterministically onto the answers list.
func (c *Catalog) PuzzleForDate(dateISO string, n int) (game.Puzzle, error) {
	if _, err := daily.New(dateISO, n); err != nil {
		return game.Puzzle{}, err
	}
	d, err := c.length(n)
	if err != nil {
		return game.Puzzle{}, err
	}
	if e, ok := d.dated[dateISO]; ok {
		return c.puzzle(e), nil
	}
	w := d.answers[daily.WordIndex(dateISO, c.salt, len(d.answers))]
	return c.puzzle(entry{Word: w}), nil
}

// RandomPuzzle picks uniformly from the answers for n.
func (c *Catalog) RandomPuzzle(n int) (game.Puzzle, error) {
	d, err := c.length(n)
	if err != nil {
		return game.Puzzle{}, err
	}
	return c.puzzle(entry{Word: d.answers[c.intN(len(d.answers))]}), nil
}

func (c *Catalog) puzzle(e entry) game.Puzzle {
	clue := e.Clue
	if clue == "" {
		clue = c.Clue(e.Word)
	}
	return game.Puzzle{Word: strings.ToUpper(e.Word), Clue: clue}
}

// Clue returns the clue for word, or NoClue.
func (c *Catalog) Clue(word string) string {
	if c.loadShared() != nil {
		return NoClue
	}
	if s, ok := c.clues[strings.ToLower(word)]; ok && s != "" {
		return s
	}
	return NoClue
}

// ---- game.Dictionary ----

// IsValidWord reports whether word is an allowed guess of length n.
func (c *Catalog) IsValidWord(word string, n int) bool {
	d, err := c.length(n)
	if err != nil {
		return false
	}
	_, ok := d.allowed[strings.ToLower(word)]
	return ok
}

// Size returns the number of allowed guesses for n, 0 if none load.
func (c *Catalog) Size(n int) int {
	d, err := c.length(n)
	if err != nil {
		return 0
	}
	return len(d.allowed)
}

// Stats returns counts of loaded words for n: (answers, allowed).
func (c *Catalog) Stats(n int) (answersCount int, allowedCount int) {
	d, err := c.length(n)
	if err != nil {
		return 0, 0
	}
	return len(d.answers), len(d.allowed)
}

// ---- definitions ----

// HasDefinition reports whether a definition exists for word.
func (c *Catalog) HasDefinition(word string) bool {
	_, ok := c.Definitions(word)
	return ok
}

// Definitions returns the definitions for word. A missing definitions file
// reads as no definitions.
func (c *Catalog) Definitions(word string) ([]string, bool) {
	if c.loadShared() != nil {
		return nil, false
	}
	defs, ok := c.definitions[strings.ToUpper(word)]
	return defs, ok && len(defs) > 0
}

// ---- loading ----

func (c *Catalog) length(n int) (*lengthData, error) {
	if !daily.ValidLength(n) {
		return nil, fmt.Errorf("%w: %d", daily.ErrInvalidIdentity, n)
	}
	c.mu.RLock()
	d, ok := c.lengths[n]
	c.mu.RUnlock()
	if ok {
		return d, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.lengths[n]; ok {
		return d, nil
	}
	d, err := c.loadLength(n)
	if err != nil {
		log.Error().Err(err).Int("length", n).Msg("word data failed to load")
		return nil, err
	}
	c.lengths[n] = d
	log.Info().Int("length", n).Int("answers", len(d.answers)).Int("allowed", len(d.allowed)).
		Int("dated", len(d.dated)).Msg("word data loaded")
	return d, nil
}

func (c *Catalog) loadLength(n int) (*lengthData, error) {
	if err := c.loadShared(); err != nil {
		return nil, err
	}
	suffix := strconv.Itoa(n) + ".txt"
	ansRaw, err := assets.ReadLines(c.fsys, "answers"+suffix)
	if err != nil {
		return nil, fmt.Errorf("read answers for %d: %w", n, err)
	}
	allowRaw, err := assets.ReadLines(c.fsys, "dictionary"+suffix)
	if err != nil {
		return nil, fmt.Errorf("read dictionary for %d: %w", n, err)
	}

	valid := func(w string, _ int) bool { return len(w) == n && isAlpha(w) }
	answers := lo.Uniq(lo.Filter(ansRaw, valid))
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w %d", ErrNoWords, n)
	}

	dated := map[string]entry{}
	for date, e := range c.puzzles[strconv.Itoa(n)] {
		w := strings.ToLower(strings.TrimSpace(e.Word))
		if _, err := daily.New(date, n); err != nil || !valid(w, 0) {
			log.Warn().Str("date", date).Str("word", e.Word).Int("length", n).Msg("skipping malformed puzzle entry")
			continue
		}
		dated[date] = entry{Word: w, Clue: e.Clue}
	}

	// Every word a puzzle can use is also an allowed guess.
	allowed := toSet(lo.Filter(allowRaw, valid))
	for _, w := range answers {
		allowed[w] = struct{}{}
	}
	for _, e := range dated {
		allowed[e.Word] = struct{}{}
	}
	return &lengthData{answers: answers, allowed: allowed, dated: dated}, nil
}

// loadShared reads the files shared by all lengths. The puzzle table and
// clues are optional; a malformed file is an error.
func (c *Catalog) loadShared() error {
	c.sharedOnce.Do(func() {
		c.puzzles = map[string]map[string]entry{}
		c.clues = map[string]string{}
		var defs struct {
			Definitions map[string][]string `json:"definitions"`
		}
		for _, f := range []struct {
			name string
			into any
		}{
			{"puzzles.json", &c.puzzles},
			{"clues.json", &c.clues},
			{"definitions.json", &defs},
		} {
			if err := readJSON(c.fsys, f.name, f.into); err != nil {
				c.sharedErr = err
				return
			}
		}
		c.definitions = lo.MapKeys(defs.Definitions, func(_ []string, k string) string {
			return strings.ToUpper(k)
		})
		c.clues = lo.MapKeys(c.clues, func(_ string, k string) string {
			return strings.ToLower(k)
		})
	})
	return c.sharedErr
}

func readJSON(fsys fs.FS, name string, v any) error {
	b, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return s != ""
}

// overlay serves files from primary, falling back to fallback when primary
// does not have them.
type overlay struct {
	primary, fallback fs.FS
}

func (o overlay) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return o.fallback.Open(name)
	}
	return nil, err
}
