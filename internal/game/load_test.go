package game

import (
	"errors"
	"testing"
)

func TestLoadDiscardsStaleSnapshot(t *testing.T) {
	st := newMemStore()
	id := mustIdentity("2025-01-01", 5)

	stale := NewState(id, "ABCDE")
	stale.Attempts = []string{"FGHIJ"}
	stale.AttemptIndex = 1
	stale.GameStatus = Playing
	stale.LockedLetters = map[int]string{0: "A"}
	st.Upsert(stale)

	s, err := Load(fixedLookup{word: "FGHIJ"}, LoadRequest{Identity: id}, Options{
		Settings: testSettings(true, 6), Store: st, Dictionary: dictOf(fiveLetterWords...),
	})
	if err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if snap.SecretWord != "FGHIJ" {
		t.Errorf("secret = %s, want FGHIJ", snap.SecretWord)
	}
	if snap.AttemptIndex != 0 || len(snap.Attempts) != 0 || len(snap.LockedLetters) != 0 {
		t.Errorf("stale fields leaked into fresh state: %+v", snap)
	}
	if snap.GameStatus != NotStarted {
		t.Errorf("status = %s, want not_started", snap.GameStatus)
	}
	stored, _ := st.Get(id.Key())
	if stored.SecretWord != "FGHIJ" {
		t.Errorf("store still holds stale snapshot: %+v", stored)
	}
}

func TestLoadRestoresMatchingSnapshot(t *testing.T) {
	st := newMemStore()
	s := startSession(st, testSettings(true, 6), nil)
	if _, err := s.SubmitGuess("CRONE"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCurrentGuess([]string{"", "", "O", "", ""}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	again := startSession(st, testSettings(true, 6), nil)
	snap := again.Snapshot()
	if snap.AttemptIndex != 1 || snap.Attempts[0] != "CRONE" {
		t.Errorf("attempts not restored: %+v", snap.Attempts)
	}
	if snap.CurrentGuess[2] != "O" {
		t.Errorf("typed letters lost on reload: %v", snap.CurrentGuess)
	}
	if snap.GameStatus != Playing {
		t.Errorf("status = %s, want playing", snap.GameStatus)
	}
	if again.Clue() != "A bird" {
		t.Errorf("clue = %q", again.Clue())
	}
}

func TestLoadReconcilesInterruptedCompletion(t *testing.T) {
	st := newMemStore()
	id := mustIdentity("2025-01-01", 5)
	snap := NewState(id, "CRANE")
	snap.Attempts = []string{"CRANE"}
	snap.AttemptIndex = 1
	snap.GameStatus = Playing
	st.Upsert(snap)

	s := startSession(st, testSettings(true, 6), nil)
	got := s.Snapshot()
	if got.GameStatus != Won {
		t.Errorf("status = %s, want won", got.GameStatus)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(testNow) {
		t.Errorf("completedAt = %v, want %v", got.CompletedAt, testNow)
	}
	stored, _ := st.Get(id.Key())
	if stored.GameStatus != Won || stored.CompletedAt == nil {
		t.Errorf("stored snapshot = %s at %v, want won with a completion time", stored.GameStatus, stored.CompletedAt)
	}
}

func TestLoadReconcilesInterruptedLoss(t *testing.T) {
	st := newMemStore()
	id := mustIdentity("2025-01-01", 5)
	snap := NewState(id, "CRANE")
	snap.Attempts = []string{"BUMPY", "GHOST", "FLICK"}
	snap.AttemptIndex = 3
	snap.MaxGuesses = 3
	snap.GameStatus = Playing
	st.Upsert(snap)

	s := startSession(st, testSettings(true, 6), nil)
	if got := s.Snapshot().GameStatus; got != Lost {
		t.Errorf("status = %s, want lost under the limit it was played with", got)
	}
	if stored, _ := st.Get(id.Key()); stored.GameStatus != Lost || stored.CompletedAt == nil {
		t.Errorf("stored snapshot = %s at %v, want lost", stored.GameStatus, stored.CompletedAt)
	}
}

func TestLoadKeepsPlayingUnderRecordedLimit(t *testing.T) {
	st := newMemStore()
	id := mustIdentity("2025-01-01", 5)
	snap := NewState(id, "CRANE")
	snap.Attempts = []string{"BUMPY", "GHOST", "FLICK"}
	snap.AttemptIndex = 3
	snap.MaxGuesses = 6
	snap.GameStatus = Playing
	st.Upsert(snap)
	writes := st.upserts

	// The limit was lowered after the puzzle started.
	s := startSession(st, testSettings(true, 3), nil)
	if got := s.Snapshot().GameStatus; got != Playing {
		t.Errorf("status = %s, want playing", got)
	}
	if st.upserts != writes {
		t.Errorf("unchanged snapshot rewritten %d times", st.upserts-writes)
	}
}

func TestAcceptedGuessRecordsLimit(t *testing.T) {
	st := newMemStore()
	s := startSession(st, testSettings(true, 4), nil)
	if _, err := s.SubmitGuess("BUMPY"); err != nil {
		t.Fatal(err)
	}
	if stored, _ := st.Get("2025-01-01:5"); stored.MaxGuesses != 4 {
		t.Errorf("stored maxGuesses = %d, want 4", stored.MaxGuesses)
	}
}

func TestLoadDiscardsCorruptSnapshot(t *testing.T) {
	st := newMemStore()
	id := mustIdentity("2025-01-01", 5)
	snap := NewState(id, "CRANE")
	snap.Attempts = []string{"CRANE"}
	snap.AttemptIndex = 4
	st.Upsert(snap)

	s := startSession(st, testSettings(true, 6), nil)
	if got := s.Snapshot().AttemptIndex; got != 0 {
		t.Errorf("attemptIndex = %d, want fresh state", got)
	}
}

func TestLoadLookupFailures(t *testing.T) {
	id := mustIdentity("2025-01-01", 5)
	tests := []struct {
		name   string
		lookup fixedLookup
		dict   Dictionary
	}{
		{"lookup error", fixedLookup{err: errLookupDown}, dictOf("CRANE")},
		{"wrong length word", fixedLookup{word: "CRANES"}, dictOf("CRANE")},
		{"empty dictionary", fixedLookup{word: "CRANE"}, dictOf()},
		{"nil dictionary", fixedLookup{word: "CRANE"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newMemStore()
			s, err := Load(tt.lookup, LoadRequest{Identity: id}, Options{Settings: testSettings(true, 6), Store: st, Dictionary: tt.dict})
			if !errors.Is(err, ErrLookup) {
				t.Fatalf("err = %v, want ErrLookup", err)
			}
			if s != nil {
				t.Error("session started despite lookup failure")
			}
			if st.upserts != 0 {
				t.Error("failed load wrote to the store")
			}
		})
	}
}

func TestRandomPuzzleIsNotPersisted(t *testing.T) {
	st := newMemStore()
	id := mustIdentity("2025-01-01", 5)
	s, err := Load(fixedLookup{word: "SLATE"}, LoadRequest{Identity: id, Random: true}, Options{
		Settings: testSettings(true, 6), Store: st, Dictionary: dictOf(fiveLetterWords...),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !s.Random() {
		t.Error("Random() = false")
	}
	if _, err := s.SubmitGuess("SLATE"); err != nil {
		t.Fatal(err)
	}
	if st.upserts != 0 {
		t.Errorf("random puzzle persisted %d times", st.upserts)
	}
}
