// internal/daily/identity.go
//
// Puzzle identity resolution.
// A puzzle is identified by the calendar date in a fixed reference timezone
// plus the word length. The combined key "YYYY-MM-DD:N" is the persistence
// key for a puzzle snapshot and the guard that ties a session to its slot.
//
// Notes:
//   - Dates are always computed with an explicit *time.Location, never the
//     process-local zone, so every player sees the same rollover.
//   - Archive dates bypass "now" and are parsed directly.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the ISO calendar date format used in identity keys.
	DateLayout = "2006-01-02"

	MinWordLength = 5
	MaxWordLength = 7
)

// ErrInvalidIdentity is returned for malformed dates, keys or word lengths.
var ErrInvalidIdentity = errors.New("invalid puzzle identity")

// Identity names one daily puzzle instance.
type Identity struct {
	DateISO    string `json:"dateISO"`
	WordLength int    `json:"wordLength"`
}

// ValidLength reports whether n is a supported word length (5, 6 or 7).
func ValidLength(n int) bool { return n >= MinWordLength && n <= MaxWordLength }

// Key returns the combined "{dateISO}:{wordLength}" key.
func (id Identity) Key() string { return id.DateISO + ":" + strconv.Itoa(id.WordLength) }

func (id Identity) String() string { return id.Key() }

// IsZero reports whether id was never set.
func (id Identity) IsZero() bool { return id.DateISO == "" && id.WordLength == 0 }

// New builds an identity from a caller-supplied date string (archive path).
func New(dateISO string, wordLength int) (Identity, error) {
	if !ValidLength(wordLength) {
		return Identity{}, fmt.Errorf("%w: word length %d", ErrInvalidIdentity, wordLength)
	}
	t, err := time.Parse(DateLayout, dateISO)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: date %q", ErrInvalidIdentity, dateISO)
	}
	// Reject non-canonical forms such as "2025-1-01".
	if t.Format(DateLayout) != dateISO {
		return Identity{}, fmt.Errorf("%w: date %q", ErrInvalidIdentity, dateISO)
	}
	return Identity{DateISO: dateISO, WordLength: wordLength}, nil
}

// ParseKey is the inverse of Identity.Key.
func ParseKey(key string) (Identity, error) {
	i := strings.LastIndexByte(key, ':')
	if i <= 0 {
		return Identity{}, fmt.Errorf("%w: key %q", ErrInvalidIdentity, key)
	}
	n, err := strconv.Atoi(key[i+1:])
	if err != nil {
		return Identity{}, fmt.Errorf("%w: key %q", ErrInvalidIdentity, key)
	}
	return New(key[:i], n)
}

// Resolve returns the identity of the puzzle live at instant ref in loc.
// A nil loc means UTC.
func Resolve(ref time.Time, loc *time.Location, wordLength int) (Identity, error) {
	return New(DateKey(ref, loc), wordLength)
}

// DateKey returns YYYY-MM-DD for t as observed in loc (UTC when loc is nil).
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// IsNextDay reports whether next is exactly one calendar day after prev.
// Both must be YYYY-MM-DD; anything unparsable is never "next".
func IsNextDay(prev, next string) bool {
	p, err := time.Parse(DateLayout, prev)
	if err != nil {
		return false
	}
	n, err := time.Parse(DateLayout, next)
	if err != nil {
		return false
	}
	return p.AddDate(0, 0, 1).Equal(n)
}

// DatesBetween lists every calendar date from start through end inclusive.
// Returns nil when end precedes start.
func DatesBetween(start, end string) ([]string, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q", ErrInvalidIdentity, start)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q", ErrInvalidIdentity, end)
	}
	var out []string
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(DateLayout))
	}
	return out, nil
}

// WordIndex returns a deterministic index for a date using
// HMAC(salt, YYYY-MM-DD) % n. Used when the dated puzzle table has no entry.
func WordIndex(dateISO, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(dateISO))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}
