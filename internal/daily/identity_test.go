package daily

import (
	"errors"
	"testing"
	"time"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("timezone %s unavailable: %v", name, err)
	}
	return loc
}

func TestResolveAcrossDST(t *testing.T) {
	ny := mustLoc(t, "America/New_York")

	tests := []struct {
		name string
		at   string
		want string
	}{
		{"before spring forward, late evening", "2025-03-09T04:59:59Z", "2025-03-08"},
		{"spring forward night, EST", "2025-03-09T06:59:59Z", "2025-03-09"},
		{"first EDT evening", "2025-03-10T03:30:00Z", "2025-03-09"},
		{"fall back night, still EDT", "2025-11-02T04:30:00Z", "2025-11-02"},
		{"fall back eve", "2025-11-02T03:59:00Z", "2025-11-01"},
		{"UTC already next day", "2025-06-01T02:00:00Z", "2025-05-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at, err := time.Parse(time.RFC3339, tt.at)
			if err != nil {
				t.Fatal(err)
			}
			id, err := Resolve(at, ny, 5)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if id.DateISO != tt.want {
				t.Errorf("Resolve(%s) = %s, want %s", tt.at, id.DateISO, tt.want)
			}
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	now := time.Now()
	a, err := Resolve(now, ny, 6)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Resolve(now, ny, 6)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("Resolve not idempotent: %v vs %v", a, b)
	}
	// Same instant expressed in another zone resolves identically.
	c, _ := Resolve(now.In(time.FixedZone("X", 9*3600)), ny, 6)
	if a != c {
		t.Errorf("Resolve depends on input zone: %v vs %v", a, c)
	}
}

func TestKeyRoundTrip(t *testing.T) {
	id, err := New("2025-01-01", 5)
	if err != nil {
		t.Fatal(err)
	}
	if id.Key() != "2025-01-01:5" {
		t.Fatalf("Key() = %q", id.Key())
	}
	back, err := ParseKey(id.Key())
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	if back != id {
		t.Errorf("ParseKey(Key()) = %v, want %v", back, id)
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	tests := []struct {
		date string
		n    int
	}{
		{"2025-01-01", 4},
		{"2025-01-01", 8},
		{"2025-1-01", 5},
		{"2025-02-30", 5},
		{"yesterday", 5},
	}
	for _, tt := range tests {
		if _, err := New(tt.date, tt.n); !errors.Is(err, ErrInvalidIdentity) {
			t.Errorf("New(%q, %d) err = %v, want ErrInvalidIdentity", tt.date, tt.n, err)
		}
	}
	for _, key := range []string{"", "2025-01-01", ":5", "2025-01-01:x"} {
		if _, err := ParseKey(key); err == nil {
			t.Errorf("ParseKey(%q) succeeded", key)
		}
	}
}

func TestIsNextDay(t *testing.T) {
	tests := []struct {
		prev, next string
		want       bool
	}{
		{"2025-01-01", "2025-01-02", true},
		{"2025-01-01", "2025-01-03", false},
		{"2025-02-28", "2025-03-01", true},
		{"2024-02-28", "2024-03-01", false},
		{"2025-12-31", "2026-01-01", true},
		{"2025-01-02", "2025-01-01", false},
		{"", "2025-01-01", false},
	}
	for _, tt := range tests {
		if got := IsNextDay(tt.prev, tt.next); got != tt.want {
			t.Errorf("IsNextDay(%q, %q) = %v, want %v", tt.prev, tt.next, got, tt.want)
		}
	}
}

func TestDatesBetween(t *testing.T) {
	got, err := DatesBetween("2025-08-30", "2025-09-02")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2025-08-30", "2025-08-31", "2025-09-01", "2025-09-02"}
	if len(got) != len(want) {
		t.Fatalf("DatesBetween = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DatesBetween[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if out, _ := DatesBetween("2025-09-02", "2025-08-30"); out != nil {
		t.Errorf("reversed range = %v, want nil", out)
	}
}

func TestWordIndexDeterministic(t *testing.T) {
	a := WordIndex("2025-01-01", "salt", 100)
	b := WordIndex("2025-01-01", "salt", 100)
	if a != b {
		t.Fatalf("WordIndex not deterministic: %d vs %d", a, b)
	}
	if a < 0 || a >= 100 {
		t.Fatalf("WordIndex out of range: %d", a)
	}
	if WordIndex("2025-01-01", "salt", 0) != 0 {
		t.Error("WordIndex with empty list should be 0")
	}
}
