// internal/store/prefs.go
//
// Per-player settings persistence. Decoding, defaults and the legacy field
// mapping live in internal/settings; this file only moves bytes.

package store

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordibble/internal/settings"
)

// LoadSettings returns the player's settings, or defaults when none are
// stored or the stored value cannot be read.
func (r *Repo) LoadSettings(player string) settings.Settings {
	ctx, cancel := r.ctx()
	defer cancel()
	key := playerKey(player, keySettings)
	raw, err := r.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warn().Err(err).Str("key", key).Msg("settings read failed; using defaults")
		}
		return settings.Defaults()
	}
	s, err := settings.Decode(raw)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("stored settings unreadable; using defaults")
	}
	return s
}

// SaveSettings normalises and stores s for player.
func (r *Repo) SaveSettings(player string, s settings.Settings) (settings.Settings, error) {
	s = s.Normalize()
	raw, err := settings.Encode(s)
	if err != nil {
		return s, err
	}
	ctx, cancel := r.ctx()
	defer cancel()
	return s, r.backend.Set(ctx, playerKey(player, keySettings), raw)
}
