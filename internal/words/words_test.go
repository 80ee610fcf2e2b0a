package words

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/robalobadob/wordibble/internal/daily"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"answers5.txt":    {Data: []byte("# answers\ncrane\nslate\nghost\nCRANE\nbad1\n")},
		"dictionary5.txt": {Data: []byte("trace\ncrone\nslate\ntoolong\n")},
		"answers6.txt":    {Data: []byte("planet\n")},
		"dictionary6.txt": {Data: []byte("plates\n")},
		"puzzles.json": {Data: []byte(`{
			"5": {
				"2025-08-24": {"word": "FLICK", "clue": "A quick jerk"},
				"2025-08-25": {"word": "GHOST"},
				"2025-08-26": {"word": "TOOLONG"}
			}
		}`)},
		"clues.json":       {Data: []byte(`{"Ghost": "Spooky", "crane": "A bird"}`)},
		"definitions.json": {Data: []byte(`{"definitions": {"crane": ["A wading bird."]}}`)},
	}
}

func TestPuzzleForDate(t *testing.T) {
	c := New(testFS(), "salt")

	p, err := c.PuzzleForDate("2025-08-24", 5)
	if err != nil {
		t.Fatal(err)
	}
	if p.Word != "FLICK" || p.Clue != "A quick jerk" {
		t.Errorf("dated entry = %+v", p)
	}

	p, err = c.PuzzleForDate("2025-08-25", 5)
	if err != nil {
		t.Fatal(err)
	}
	if p.Clue != "Spooky" {
		t.Errorf("clue from clue table = %q", p.Clue)
	}
}

func TestPuzzleForDateFallbackIsDeterministic(t *testing.T) {
	c := New(testFS(), "salt")
	a, err := c.PuzzleForDate("2026-01-15", 5)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		b, _ := c.PuzzleForDate("2026-01-15", 5)
		if b != a {
			t.Fatalf("fallback not idempotent: %+v then %+v", a, b)
		}
	}
	answers := []string{"CRANE", "SLATE", "GHOST"}
	if want := answers[daily.WordIndex("2026-01-15", "salt", 3)]; a.Word != want {
		t.Errorf("fallback word = %s, want %s", a.Word, want)
	}
}

func TestMalformedDatedEntrySkipped(t *testing.T) {
	c := New(testFS(), "salt")
	p, err := c.PuzzleForDate("2025-08-26", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Word) != 5 {
		t.Errorf("malformed entry served: %+v", p)
	}
}

func TestNoClue(t *testing.T) {
	c := New(testFS(), "salt")
	if got := c.Clue("slate"); got != NoClue {
		t.Errorf("Clue(slate) = %q", got)
	}
	p, _ := c.PuzzleForDate("2025-09-01", 6)
	if p.Word != "PLANET" || p.Clue != NoClue {
		t.Errorf("6-letter fallback = %+v", p)
	}
}

func TestDictionary(t *testing.T) {
	c := New(testFS(), "salt")
	tests := []struct {
		word string
		n    int
		want bool
	}{
		{"TRACE", 5, true},
		{"crane", 5, true},  // answers are allowed
		{"FLICK", 5, true},  // dated words are allowed
		{"ZZZZZ", 5, false}, // unknown
		{"PLATES", 6, true},
		{"PLATES", 5, false},
		{"TOOLONG", 7, false},
	}
	for _, tt := range tests {
		if got := c.IsValidWord(tt.word, tt.n); got != tt.want {
			t.Errorf("IsValidWord(%s, %d) = %v, want %v", tt.word, tt.n, got, tt.want)
		}
	}
	if ans, allowed := c.Stats(5); ans != 3 || allowed != 6 {
		t.Errorf("Stats(5) = %d, %d", ans, allowed)
	}
}

func TestMissingLengthIsAnError(t *testing.T) {
	c := New(testFS(), "salt")
	if _, err := c.PuzzleForDate("2025-08-24", 7); err == nil {
		t.Error("expected an error for a length with no word files")
	}
	if c.Size(7) != 0 {
		t.Error("Size for missing length should be 0")
	}
	if _, err := c.RandomPuzzle(4); !errors.Is(err, daily.ErrInvalidIdentity) {
		t.Errorf("RandomPuzzle(4) err = %v", err)
	}
}

func TestEmptyAnswersIsAnError(t *testing.T) {
	fsys := testFS()
	fsys["answers5.txt"] = &fstest.MapFile{Data: []byte("# nothing\n")}
	c := New(fsys, "salt")
	if _, err := c.RandomPuzzle(5); !errors.Is(err, ErrNoWords) {
		t.Errorf("err = %v, want ErrNoWords", err)
	}
}

func TestRandomPuzzle(t *testing.T) {
	c := New(testFS(), "salt").WithRand(func(n int) int { return n - 1 })
	p, err := c.RandomPuzzle(5)
	if err != nil {
		t.Fatal(err)
	}
	if p.Word != "GHOST" || p.Clue != "Spooky" {
		t.Errorf("RandomPuzzle = %+v", p)
	}
}

func TestDefinitions(t *testing.T) {
	c := New(testFS(), "salt")
	defs, ok := c.Definitions("Crane")
	if !ok || len(defs) != 1 {
		t.Errorf("Definitions(Crane) = %v, %v", defs, ok)
	}
	if c.HasDefinition("SLATE") {
		t.Error("HasDefinition(SLATE) = true")
	}
}

func TestMalformedSharedFile(t *testing.T) {
	fsys := testFS()
	fsys["clues.json"] = &fstest.MapFile{Data: []byte("{oops")}
	c := New(fsys, "salt")
	if _, err := c.PuzzleForDate("2025-08-24", 5); err == nil {
		t.Error("malformed clues file should fail the load")
	}
}

func TestOverlayPrefersPrimary(t *testing.T) {
	o := overlay{
		primary:  fstest.MapFS{"answers5.txt": {Data: []byte("flick\n")}},
		fallback: testFS(),
	}
	c := New(o, "salt")
	if ans, _ := c.Stats(5); ans != 1 {
		t.Errorf("answers from overlay = %d, want 1", ans)
	}
	if !c.IsValidWord("TRACE", 5) {
		t.Error("dictionary should come from the fallback")
	}
}

func TestEmbeddedAssetsLoad(t *testing.T) {
	c := Default("", "salt")
	if err := c.Warm(); err != nil {
		t.Fatal(err)
	}
	for n := daily.MinWordLength; n <= daily.MaxWordLength; n++ {
		p, err := c.PuzzleForDate("2025-08-24", n)
		if err != nil {
			t.Fatalf("length %d: %v", n, err)
		}
		if len(p.Word) != n || !c.IsValidWord(p.Word, n) {
			t.Errorf("length %d: puzzle %+v is not a valid guess", n, p)
		}
	}
}
