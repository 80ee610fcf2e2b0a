// internal/stats/stats.go
//
// Statistics Aggregator.
// Derives play/win counts, streaks, the guess distribution and a bounded
// recent-results view from a player's stored puzzle snapshots. Compute is a
// pure function of its input; nothing here reads or writes the store.

package stats

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/robalobadob/wordibble/internal/daily"
	"github.com/robalobadob/wordibble/internal/game"
)

const (
	// Buckets is the number of guess-distribution slots. Wins taking more
	// guesses than this are counted in the last slot.
	Buckets = 7

	// RecentLimit bounds the recent-results view.
	RecentLimit = 20
)

// Result is one completed puzzle.
type Result struct {
	DateISO     string     `json:"dateISO"`
	WordLength  int        `json:"wordLength"`
	Won         bool       `json:"won"`
	Guesses     int        `json:"guesses"`
	Solution    string     `json:"solution"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Snapshot is the aggregate view.
type Snapshot struct {
	Played            int      `json:"played"`
	Wins              int      `json:"wins"`
	WinRate           int      `json:"winRate"`
	CurrentStreak     int      `json:"currentStreak"`
	MaxStreak         int      `json:"maxStreak"`
	GuessDistribution []int    `json:"guessDistribution"` // index 0 = won in 1 guess
	LastPlayedDate    string   `json:"lastPlayedDate,omitempty"`
	Recent            []Result `json:"recent"`
}

// Completed reports whether st counts towards statistics.
func Completed(st game.State) bool {
	return st.GameStatus.Terminal() && len(st.Attempts) > 0
}

// Compute aggregates the completed states in all.
//
// Streaks walk completed puzzles by date ascending (word length breaks ties):
// a win on the day after the previous win extends the streak, a win on the
// same day as the previous win leaves it unchanged, any other win restarts
// it at 1, and a loss resets it to 0.
func Compute(all []game.State) Snapshot {
	done := lo.Filter(all, func(st game.State, _ int) bool { return Completed(st) })
	slices.SortFunc(done, func(a, b game.State) int {
		return cmp.Or(cmp.Compare(a.DateISO, b.DateISO), cmp.Compare(a.WordLength, b.WordLength))
	})

	s := Snapshot{GuessDistribution: make([]int, Buckets), Recent: []Result{}}
	var lastWin string
	for _, st := range done {
		s.Played++
		won := st.GameStatus == game.Won
		if !won {
			s.CurrentStreak = 0
			continue
		}
		s.Wins++
		s.GuessDistribution[min(len(st.Attempts), Buckets)-1]++

		switch {
		case s.CurrentStreak > 0 && st.DateISO == lastWin:
		case s.CurrentStreak > 0 && daily.IsNextDay(lastWin, st.DateISO):
			s.CurrentStreak++
		default:
			s.CurrentStreak = 1
		}
		lastWin = st.DateISO
		s.MaxStreak = max(s.MaxStreak, s.CurrentStreak)
	}

	s.WinRate = WinRate(s.Wins, s.Played)
	if len(done) > 0 {
		s.LastPlayedDate = done[len(done)-1].DateISO
	}
	s.Recent = recent(done)
	return s
}

// WinRate returns wins/played as a rounded percentage, 0 when nothing was
// played.
func WinRate(wins, played int) int {
	if played == 0 {
		return 0
	}
	return int(math.Round(float64(wins) / float64(played) * 100))
}

// recent returns up to RecentLimit results, most recent first. done is
// sorted ascending.
func recent(done []game.State) []Result {
	out := lo.Map(done, func(st game.State, _ int) Result {
		return Result{
			DateISO:     st.DateISO,
			WordLength:  st.WordLength,
			Won:         st.GameStatus == game.Won,
			Guesses:     len(st.Attempts),
			Solution:    st.SecretWord,
			CompletedAt: st.CompletedAt,
		}
	})
	out = lo.Reverse(out)
	if len(out) > RecentLimit {
		out = out[:RecentLimit]
	}
	return out
}
