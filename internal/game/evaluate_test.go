package game

import (
	"math/rand/v2"
	"testing"
)

func TestEvaluate(t *testing.T) {
	C, P, A := Correct, Present, Absent
	tests := []struct {
		name   string
		secret string
		guess  string
		want   []Verdict
	}{
		{"exact", "CRANE", "CRANE", []Verdict{C, C, C, C, C}},
		{"nothing shared", "CRANE", "BUMPY", []Verdict{A, A, A, A, A}},
		{"two E in secret, both present", "SPEED", "ERASE", []Verdict{P, A, A, P, P}},
		{"surplus letter absent in scan order", "CRANE", "EERIE", []Verdict{A, A, P, A, C}},
		{"correct consumes before present", "ABBEY", "KEBAB", []Verdict{A, P, C, P, P}},
		{"single secret letter, two guessed", "PLANT", "PAPAS", []Verdict{C, P, A, A, A}},
		{"six letters", "PLANET", "PLATES", []Verdict{C, C, C, P, C, A}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.guess, tt.secret)
			if len(got) != len(tt.want) {
				t.Fatalf("Evaluate(%s, %s) = %v, want %v", tt.guess, tt.secret, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Evaluate(%s, %s)[%d] = %s, want %s", tt.guess, tt.secret, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestEvaluateLengthMismatch(t *testing.T) {
	if got := Evaluate("CRAN", "CRANE"); got != nil {
		t.Errorf("Evaluate with mismatched lengths = %v, want nil", got)
	}
}

// For any letter, correct+present marks never exceed its count in the secret.
func TestEvaluateNeverOvercounts(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	const alphabet = "ABCDE"
	word := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = alphabet[r.IntN(len(alphabet))]
		}
		return string(b)
	}
	for iter := 0; iter < 2000; iter++ {
		n := 5 + r.IntN(3)
		secret, guess := word(n), word(n)
		v := Evaluate(guess, secret)
		marked := map[byte]int{}
		for i, x := range v {
			if x != Absent {
				marked[guess[i]]++
			}
			if (x == Correct) != (guess[i] == secret[i]) {
				t.Fatalf("Evaluate(%s, %s) position %d: %s", guess, secret, i, x)
			}
		}
		for letter, cnt := range marked {
			inSecret := 0
			for i := 0; i < n; i++ {
				if secret[i] == letter {
					inSecret++
				}
			}
			if cnt > inSecret {
				t.Fatalf("Evaluate(%s, %s) marks %c %d times, secret has %d", guess, secret, letter, cnt, inSecret)
			}
		}
	}
}

func TestIsWellFormed(t *testing.T) {
	tests := []struct {
		guess string
		n     int
		want  bool
	}{
		{"CRANE", 5, true},
		{"PLANET", 6, true},
		{"CRAN", 5, false},
		{"CRANES", 5, false},
		{"crane", 5, false},
		{"CR4NE", 5, false},
		{"CR NE", 5, false},
		{"", 5, false},
	}
	for _, tt := range tests {
		if got := IsWellFormed(tt.guess, tt.n); got != tt.want {
			t.Errorf("IsWellFormed(%q, %d) = %v, want %v", tt.guess, tt.n, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  crane\n"); got != "CRANE" {
		t.Errorf("Normalize = %q", got)
	}
}
