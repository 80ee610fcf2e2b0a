// internal/httpserver/sessions.go
//
// Active game sessions, one per player.
// Replacing or dropping a player's session closes the old one first, so a
// completion it deferred is flushed under its own identity and its timer can
// no longer write anything.

package httpserver

import (
	"sync"

	"github.com/robalobadob/wordibble/internal/game"
)

type sessionRegistry struct {
	mu     sync.Mutex               // guards active
	active map[string]*game.Session // keyed by player id
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{active: make(map[string]*game.Session)}
}

func (sr *sessionRegistry) get(player string) (*game.Session, bool) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	s, ok := sr.active[player]
	return s, ok
}

// set installs s as the player's session, closing any other.
func (sr *sessionRegistry) set(player string, s *game.Session) {
	sr.mu.Lock()
	old := sr.active[player]
	sr.active[player] = s
	sr.mu.Unlock()
	if old != nil && old != s {
		old.Close()
	}
}

// drop closes and forgets the player's session.
func (sr *sessionRegistry) drop(player string) {
	sr.mu.Lock()
	old := sr.active[player]
	delete(sr.active, player)
	sr.mu.Unlock()
	if old != nil {
		old.Close()
	}
}

// dropIf closes the player's session when keep reports false for it.
func (sr *sessionRegistry) dropIf(player string, keep func(*game.Session) bool) {
	sr.mu.Lock()
	old, ok := sr.active[player]
	if !ok || keep(old) {
		sr.mu.Unlock()
		return
	}
	delete(sr.active, player)
	sr.mu.Unlock()
	old.Close()
}

func (sr *sessionRegistry) closeAll() {
	sr.mu.Lock()
	all := sr.active
	sr.active = make(map[string]*game.Session)
	sr.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
}
