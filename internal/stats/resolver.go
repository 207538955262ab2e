package stats

import (
	"context"
	"errors"
	"strings"

	"github.com/emeraldservers/killfeed/internal/storage"
)

// ErrNotFound is returned when a stats target cannot be mapped to any
// in-game character.
var ErrNotFound = errors.New("player not found")

// Resolver maps a command target to the in-game characters it refers to.
type Resolver struct {
	store *storage.Store
}

// NewResolver creates a Resolver backed by the given store.
func NewResolver(store *storage.Store) *Resolver {
	return &Resolver{store: store}
}

// ResolveDiscordUser resolves a Discord account to its linked characters.
// displayName is passed through so the caller can name the profile after
// the Discord member rather than a character.
func (r *Resolver) ResolveDiscordUser(ctx context.Context, guildID, discordID, displayName string) ([]string, string, error) {
	player, err := r.store.GetLinkedPlayer(ctx, guildID, discordID)
	if err != nil {
		return nil, "", err
	}
	if player == nil || len(player.Characters) == 0 {
		return nil, "", ErrNotFound
	}
	return player.Characters, displayName, nil
}

// ResolveName resolves a free-text player name against the guild's PvP
// summaries, case-insensitively. The stored spelling of the matched
// character is returned as both the character list and the display name.
func (r *Resolver) ResolveName(ctx context.Context, guildID, name string) ([]string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", ErrNotFound
	}

	summary, err := r.store.FindSummaryByName(ctx, guildID, name)
	if err != nil {
		return nil, "", err
	}
	if summary == nil || summary.Character == "" {
		return nil, "", ErrNotFound
	}
	return []string{summary.Character}, summary.Character, nil
}
