// internal/game/board.go
//
// Board read models over a live session: editable cells, locked-letter
// merging, guess history and keyboard states.

package game

// editable reports whether position i accepts typed input. Callers hold s.mu.
// Locked positions are never editable. Revealed positions are not editable
// until a lock-off submission released them.
func (s *Session) editable(i int) bool {
	if _, ok := s.state.LockedLetters[i]; ok {
		return false
	}
	if s.state.RevealsReleased {
		return true
	}
	for _, pos := range s.state.RevealedLetters {
		if pos == i {
			return false
		}
	}
	return true
}

func (s *Session) knownLetter(i int) string {
	if l, ok := s.state.LockedLetters[i]; ok && l != "" {
		return l
	}
	return s.state.SecretWord[i : i+1]
}

// mergeKnown overwrites every non-editable position of guess with its locked
// or revealed letter. Callers hold s.mu.
func (s *Session) mergeKnown(guess string) string {
	b := []byte(guess)
	for i := range b {
		if !s.editable(i) {
			b[i] = s.knownLetter(i)[0]
		}
	}
	return string(b)
}

// EditableMask returns, per position, whether the cell accepts input.
func (s *Session) EditableMask() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bool, s.state.WordLength)
	for i := range out {
		out[i] = s.editable(i)
	}
	return out
}

// History returns every attempt with its verdicts, in submission order.
func (s *Session) History() []GuessResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]GuessResult, 0, len(s.state.Attempts))
	for _, a := range s.state.Attempts {
		out = append(out, GuessResult{Guess: a, Verdicts: Evaluate(a, s.state.SecretWord)})
	}
	return out
}

// KeyboardStates returns the best verdict seen for each letter.
func (s *Session) KeyboardStates() map[string]Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()
	return KeyboardStates(s.state)
}

// KeyboardStates aggregates per-letter verdicts over locked letters, revealed
// secret letters and every past attempt. Precedence is
// correct > present > absent; a letter is never downgraded.
func KeyboardStates(st State) map[string]Verdict {
	out := map[string]Verdict{}
	mark := func(letter string, v Verdict) {
		if v.rank() > out[letter].rank() {
			out[letter] = v
		}
	}
	for _, l := range st.LockedLetters {
		if l != "" {
			mark(l, Correct)
		}
	}
	for _, pos := range st.RevealedLetters {
		if pos >= 0 && pos < len(st.SecretWord) {
			mark(st.SecretWord[pos:pos+1], Correct)
		}
	}
	for _, a := range st.Attempts {
		for i, v := range Evaluate(a, st.SecretWord) {
			mark(a[i:i+1], v)
		}
	}
	return out
}
