// internal/game/evaluate.go
//
// Letter evaluation and guess validation.
// Responsibilities:
//   - Score guesses with the two-pass algorithm (exact matches first, then
//     partial matches left to right while letter counts remain).
//   - Check guess well-formedness (length, A-Z only).
//
// Dictionary membership is not decided here; see Dictionary.

package game

import "strings"

// Evaluate scores guess against secret. Both must have equal length;
// otherwise nil is returned.
//
// Pass 1:
//   - Count every secret letter.
//   - Mark exact matches Correct and consume their count.
//
// Pass 2 (left to right):
//   - For each remaining position, mark Present if the letter still has
//     count left (and consume it), otherwise Absent.
//
// The number of Correct+Present marks for a letter never exceeds its count
// in secret; surplus occurrences are Absent in scan order.
func Evaluate(guess, secret string) []Verdict {
	n := len(secret)
	if len(guess) != n {
		return nil
	}
	res := make([]Verdict, n)

	var counts [256]int
	for i := 0; i < n; i++ {
		counts[secret[i]]++
	}

	for i := 0; i < n; i++ {
		if guess[i] == secret[i] {
			res[i] = Correct
			counts[guess[i]]--
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == Correct {
			continue
		}
		if c := guess[i]; counts[c] > 0 {
			res[i] = Present
			counts[c]--
		} else {
			res[i] = Absent
		}
	}
	return res
}

// IsWellFormed reports whether guess has exactly wordLength letters A-Z.
func IsWellFormed(guess string, wordLength int) bool {
	if len(guess) != wordLength {
		return false
	}
	for i := 0; i < len(guess); i++ {
		if guess[i] < 'A' || guess[i] > 'Z' {
			return false
		}
	}
	return true
}

// Normalize trims and uppercases raw input.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// allCorrect returns true if every verdict is Correct.
func allCorrect(v []Verdict) bool {
	if len(v) == 0 {
		return false
	}
	for _, x := range v {
		if x != Correct {
			return false
		}
	}
	return true
}

func isVowel(c byte) bool {
	switch c {
	case 'A', 'E', 'I', 'O', 'U', 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
