package stats

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/robalobadob/wordibble/internal/game"
)

func completed(date string, n int, status game.Status, guesses int) game.State {
	st := game.State{
		ID:         fmt.Sprintf("%s:%d", date, n),
		DateISO:    date,
		WordLength: n,
		SecretWord: "CRANE",
		GameStatus: status,
	}
	for i := 0; i < guesses; i++ {
		st.Attempts = append(st.Attempts, "SLATE")
	}
	st.AttemptIndex = guesses
	return st
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil)
	if s.Played != 0 || s.WinRate != 0 || len(s.GuessDistribution) != Buckets || s.Recent == nil {
		t.Errorf("Compute(nil) = %+v", s)
	}
}

func TestComputeFiltersUnfinished(t *testing.T) {
	s := Compute([]game.State{
		completed("2025-01-01", 5, game.Playing, 2),
		completed("2025-01-02", 5, game.NotStarted, 0),
		completed("2025-01-03", 5, game.Won, 0), // no attempts
		completed("2025-01-04", 5, game.Won, 3),
	})
	if s.Played != 1 || s.Wins != 1 {
		t.Errorf("played/wins = %d/%d, want 1/1", s.Played, s.Wins)
	}
}

func TestStreaks(t *testing.T) {
	tests := []struct {
		name        string
		states      []game.State
		current     int
		max         int
		lastPlayed  string
		wantWinRate int
	}{
		{
			name: "gap restarts at one",
			states: []game.State{
				completed("2025-01-01", 5, game.Won, 3),
				completed("2025-01-03", 5, game.Won, 4),
			},
			current: 1, max: 1, lastPlayed: "2025-01-03", wantWinRate: 100,
		},
		{
			name: "consecutive days accumulate",
			states: []game.State{
				completed("2025-01-03", 5, game.Won, 2),
				completed("2025-01-01", 5, game.Won, 3),
				completed("2025-01-02", 5, game.Won, 4),
			},
			current: 3, max: 3, lastPlayed: "2025-01-03", wantWinRate: 100,
		},
		{
			name: "loss resets to zero",
			states: []game.State{
				completed("2025-01-01", 5, game.Won, 3),
				completed("2025-01-02", 5, game.Won, 3),
				completed("2025-01-03", 5, game.Lost, 6),
			},
			current: 0, max: 2, lastPlayed: "2025-01-03", wantWinRate: 67,
		},
		{
			name: "same-day second win leaves streak unchanged",
			states: []game.State{
				completed("2025-01-01", 5, game.Won, 3),
				completed("2025-01-02", 5, game.Won, 3),
				completed("2025-01-02", 6, game.Won, 3),
				completed("2025-01-03", 7, game.Won, 3),
			},
			current: 3, max: 3, lastPlayed: "2025-01-03", wantWinRate: 100,
		},
		{
			name: "win after loss starts at one",
			states: []game.State{
				completed("2025-01-01", 5, game.Won, 3),
				completed("2025-01-02", 5, game.Lost, 6),
				completed("2025-01-03", 5, game.Won, 3),
			},
			current: 1, max: 1, lastPlayed: "2025-01-03", wantWinRate: 67,
		},
		{
			name: "month boundary",
			states: []game.State{
				completed("2025-02-28", 5, game.Won, 3),
				completed("2025-03-01", 5, game.Won, 3),
			},
			current: 2, max: 2, lastPlayed: "2025-03-01", wantWinRate: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Compute(tt.states)
			if s.CurrentStreak != tt.current || s.MaxStreak != tt.max {
				t.Errorf("streak current/max = %d/%d, want %d/%d", s.CurrentStreak, s.MaxStreak, tt.current, tt.max)
			}
			if s.LastPlayedDate != tt.lastPlayed {
				t.Errorf("LastPlayedDate = %s, want %s", s.LastPlayedDate, tt.lastPlayed)
			}
			if s.WinRate != tt.wantWinRate {
				t.Errorf("WinRate = %d, want %d", s.WinRate, tt.wantWinRate)
			}
		})
	}
}

func TestGuessDistribution(t *testing.T) {
	s := Compute([]game.State{
		completed("2025-01-01", 5, game.Won, 1),
		completed("2025-01-02", 5, game.Won, 3),
		completed("2025-01-03", 5, game.Won, 3),
		completed("2025-01-04", 5, game.Won, 9), // capped into the last bucket
		completed("2025-01-05", 5, game.Lost, 6),
	})
	want := []int{1, 0, 2, 0, 0, 0, 1}
	if !reflect.DeepEqual(s.GuessDistribution, want) {
		t.Errorf("GuessDistribution = %v, want %v", s.GuessDistribution, want)
	}
}

func TestRecentIsBoundedAndNewestFirst(t *testing.T) {
	var all []game.State
	for d := 1; d <= 25; d++ {
		all = append(all, completed(fmt.Sprintf("2025-01-%02d", d), 5, game.Won, 2))
	}
	s := Compute(all)
	if len(s.Recent) != RecentLimit {
		t.Fatalf("len(Recent) = %d", len(s.Recent))
	}
	if s.Recent[0].DateISO != "2025-01-25" || s.Recent[RecentLimit-1].DateISO != "2025-01-06" {
		t.Errorf("Recent spans %s..%s", s.Recent[0].DateISO, s.Recent[RecentLimit-1].DateISO)
	}
}

func TestComputeDoesNotMutateInput(t *testing.T) {
	in := []game.State{
		completed("2025-01-02", 5, game.Won, 2),
		completed("2025-01-01", 5, game.Won, 2),
	}
	Compute(in)
	if in[0].DateISO != "2025-01-02" {
		t.Error("Compute reordered its input")
	}
}

func TestWinRate(t *testing.T) {
	tests := []struct{ wins, played, want int }{
		{0, 0, 0}, {1, 3, 33}, {2, 3, 67}, {1, 2, 50}, {5, 5, 100},
	}
	for _, tt := range tests {
		if got := WinRate(tt.wins, tt.played); got != tt.want {
			t.Errorf("WinRate(%d, %d) = %d, want %d", tt.wins, tt.played, got, tt.want)
		}
	}
}
