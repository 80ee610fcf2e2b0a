// internal/store/repo.go
//
// Typed repositories over a Backend.
// Responsibilities:
//   - Namespacing every key by player ("player:user:<id>:<name>" for
//     accounts, "player:anon:<id>:<name>" for guests).
//   - Serialising per-player read-modify-write cycles with a per-player lock.
//   - Bounding each backend call with a timeout.
//   - Moving anonymous progress into an account on signup/login.
//
// Persistence failures inside the typed repositories are logged and
// swallowed: a broken store degrades to "nothing saved", never to a crash.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Keys inside a player namespace.
const (
	keyPuzzles    = "wordibble:puzzles:v2"
	keyLastPlayed = "wordibble:lastPlayed:v2"
	keySettings   = "wordibble:settings"
	keyLegacy     = "wordibble-puzzle-state"
)

// DefaultTimeout bounds a single backend call made by a repository.
const DefaultTimeout = 5 * time.Second

// Repo hands out per-player typed views over one Backend.
type Repo struct {
	backend Backend
	timeout time.Duration
	today   func() string
	locks   sync.Map // player id -> *sync.Mutex
}

// NewRepo wraps backend. today returns the current puzzle date; it dates
// legacy snapshots that carry none.
func NewRepo(backend Backend, today func() string) *Repo {
	return &Repo{backend: backend, timeout: DefaultTimeout, today: today}
}

// Backend exposes the underlying backend.
func (r *Repo) Backend() Backend { return r.backend }

func (r *Repo) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

func (r *Repo) lock(player string) *sync.Mutex {
	mu, _ := r.locks.LoadOrStore(player, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func namespace(player string) string { return "player:" + player + ":" }

func playerKey(player, name string) string { return namespace(player) + name }

// UserPlayer and GuestPlayer name the namespace owner for an account id and
// an anonymous id. The two kinds never share a namespace, so an anonymous
// cookie carrying an account id cannot reach that account's data.
func UserPlayer(id string) string  { return "user:" + id }
func GuestPlayer(id string) string { return "anon:" + id }

// errCorrupt marks a stored value that exists but does not decode.
var errCorrupt = errors.New("stored value is not valid JSON")

// readJSON decodes key into v. A missing key returns ErrNotFound without
// logging. Backend failures and undecodable values (errCorrupt) are logged
// and returned, so callers can tell "nothing stored" from "could not read".
func (r *Repo) readJSON(key string, v any) error {
	ctx, cancel := r.ctx()
	defer cancel()
	raw, err := r.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("store read failed")
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("stored value is not valid JSON")
		return fmt.Errorf("%w: %s: %v", errCorrupt, key, err)
	}
	return nil
}

func (r *Repo) writeJSON(key string, v any) bool {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("encode failed")
		return false
	}
	ctx, cancel := r.ctx()
	defer cancel()
	if err := r.backend.Set(ctx, key, raw); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("store write failed")
		return false
	}
	return true
}

func (r *Repo) delete(key string) {
	ctx, cancel := r.ctx()
	defer cancel()
	if err := r.backend.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("store delete failed")
	}
}

// ForgetPlayer removes every key in the player's namespace.
func (r *Repo) ForgetPlayer(player string) error {
	mu := r.lock(player)
	mu.Lock()
	defer mu.Unlock()
	ctx, cancel := r.ctx()
	defer cancel()
	return r.backend.DeletePrefix(ctx, namespace(player))
}

// MergePlayer copies puzzles from one namespace into another for every
// identity the target has not played, then forgets the source namespace.
// Settings are copied only when the target has none. Returns the number of
// puzzles copied. If either puzzle map cannot be read the merge is abandoned
// and the source is kept.
func (r *Repo) MergePlayer(from, to string) (int, error) {
	if from == "" || from == to {
		return 0, nil
	}
	src := r.Puzzles(from)
	srcMu := r.lock(from)
	srcMu.Lock()
	fromAll, err := src.loadLocked()
	srcMu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("read %s puzzles: %w", from, err)
	}

	dst := r.Puzzles(to)
	mu := r.lock(to)
	mu.Lock()
	all, err := dst.loadLocked()
	if err != nil {
		mu.Unlock()
		return 0, fmt.Errorf("read %s puzzles: %w", to, err)
	}
	copied := 0
	var last string
	for id, st := range fromAll {
		if _, ok := all[id]; ok {
			continue
		}
		all[id] = st
		copied++
		if id > last {
			last = id
		}
	}
	if copied > 0 {
		if !r.writeJSON(playerKey(to, keyPuzzles), all) {
			mu.Unlock()
			return 0, errors.New("could not save merged puzzles")
		}
		if _, ok := dst.lastPlayedLocked(); !ok {
			r.writeJSON(playerKey(to, keyLastPlayed), lastPlayed{ID: last})
		}
	}
	mu.Unlock()

	var raw json.RawMessage
	if r.readJSON(playerKey(from, keySettings), &raw) == nil {
		var existing json.RawMessage
		if errors.Is(r.readJSON(playerKey(to, keySettings), &existing), ErrNotFound) {
			r.writeJSON(playerKey(to, keySettings), raw)
		}
	}

	if err := r.ForgetPlayer(from); err != nil {
		return copied, err
	}
	log.Info().Str("from", from).Str("to", to).Int("puzzles", copied).Msg("merged anonymous progress")
	return copied, nil
}
